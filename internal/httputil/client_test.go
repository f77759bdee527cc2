package httputil

import (
	"context"
	"testing"
)

func TestNewRequestHeaders(t *testing.T) {
	req, err := NewRequest(context.Background(), "https://cdn.example.com/a/index.m3u8", "https://fmovies.ps/")
	if err != nil {
		t.Fatalf("NewRequest() error: %v", err)
	}
	if got := req.Header.Get("User-Agent"); got != UserAgent {
		t.Errorf("User-Agent = %q", got)
	}
	if got := req.Header.Get("Referer"); got != "https://fmovies.ps/" {
		t.Errorf("Referer = %q", got)
	}
}

func TestNewRequestRejectsPlainHTTP(t *testing.T) {
	if _, err := NewRequest(context.Background(), "http://cdn.example.com/a.ts", ""); err == nil {
		t.Error("expected error for non-HTTPS URL")
	}
}

func TestNewRequestWithoutReferer(t *testing.T) {
	req, err := NewRequest(context.Background(), "https://cdn.example.com/a.ts", "")
	if err != nil {
		t.Fatalf("NewRequest() error: %v", err)
	}
	if _, ok := req.Header["Referer"]; ok {
		t.Error("Referer should be omitted when empty")
	}
}
