// Package player hands a resolved stream URL to a local media player.
// Players are started with explicit argument slices, never through a shell.
package player

import (
	"context"
	"fmt"
	"os"
	"os/exec"
)

// Player launches one media player binary.
type Player struct {
	name string
	args func(url, title, referer string) []string
}

// New returns the player for name: mpv, vlc, iina or celluloid.
func New(name string) (*Player, error) {
	switch name {
	case "mpv":
		return &Player{name: name, args: mpvArgs}, nil
	case "vlc":
		return &Player{name: name, args: vlcArgs}, nil
	case "iina", "celluloid":
		return &Player{name: name, args: genericArgs}, nil
	default:
		return nil, fmt.Errorf("unsupported player %q (valid: mpv, vlc, iina, celluloid)", name)
	}
}

// Name returns the player binary name.
func (p *Player) Name() string { return p.name }

// Available checks if the player binary exists in PATH.
func (p *Player) Available() bool {
	_, err := exec.LookPath(p.name)
	return err == nil
}

// Play blocks until the player exits or ctx is cancelled.
func (p *Player) Play(ctx context.Context, url, title, referer string) error {
	cmd := exec.CommandContext(ctx, p.name, p.args(url, title, referer)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		// mpv exits 4 when the user quits
		if exitErr, ok := err.(*exec.ExitError); ok && p.name == "mpv" && exitErr.ExitCode() == 4 {
			return nil
		}
		return fmt.Errorf("running %s: %w", p.name, err)
	}
	return nil
}

func mpvArgs(url, title, referer string) []string {
	args := []string{
		url,
		"--force-media-title=" + title,
		"--really-quiet",
	}
	if referer != "" {
		args = append(args, "--referrer="+referer)
	}
	return args
}

func vlcArgs(url, title, referer string) []string {
	args := []string{
		"--meta-title=" + title,
		"--play-and-exit",
	}
	if referer != "" {
		args = append(args, "--http-referrer="+referer)
	}
	return append(args, url)
}

func genericArgs(url, title, referer string) []string {
	return []string{url}
}
