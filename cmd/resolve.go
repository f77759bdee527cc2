package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"videoapi/internal/media"
	"videoapi/internal/player"
	"videoapi/internal/provider"
	"videoapi/internal/resolver"
	"videoapi/internal/server"
	"videoapi/internal/ui"
)

// errNotFound makes the process exit non-zero after the message is printed.
var errNotFound = errors.New("nothing found")

var (
	flagSeason  int
	flagEpisode int
	flagPlay    bool
	flagPlayer  string
)

var movieCmd = &cobra.Command{
	Use:   "movie <title>",
	Short: "Resolve a movie's stream URL",
	Args:  cobra.MinimumNArgs(1),
	RunE:  movieRun,
}

var showCmd = &cobra.Command{
	Use:   "show <title> --season N --episode N",
	Short: "Resolve an episode's stream URL",
	Args:  cobra.MinimumNArgs(1),
	RunE:  showRun,
}

func init() {
	for _, c := range []*cobra.Command{movieCmd, showCmd} {
		c.Flags().BoolVarP(&flagPlay, "play", "p", false, "Open the stream in a media player")
		c.Flags().StringVar(&flagPlayer, "player", "", "Media player: mpv | vlc | iina | celluloid")
	}
	showCmd.Flags().IntVarP(&flagSeason, "season", "s", 0, "Season number")
	showCmd.Flags().IntVarP(&flagEpisode, "episode", "e", 0, "Episode number")
	_ = showCmd.MarkFlagRequired("season")
	_ = showCmd.MarkFlagRequired("episode")
}

type resolveResult struct {
	URL     string `json:"url"`
	Name    string `json:"name"`
	Season  int    `json:"season,omitempty"`
	Episode int    `json:"episode,omitempty"`
	Cached  bool   `json:"cached"`
}

func movieRun(cmd *cobra.Command, args []string) error {
	q := media.MovieQuery(strings.Join(args, " "))
	return resolveQuery(cmd, q)
}

func showRun(cmd *cobra.Command, args []string) error {
	q := media.ShowQuery(strings.Join(args, " "), flagSeason, flagEpisode)
	return resolveQuery(cmd, q)
}

func resolveQuery(cmd *cobra.Command, q media.Query) error {
	if err := q.Validate(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	result := resolveResult{Name: q.Title, Season: q.Season, Episode: q.Episode}

	c, err := openCache()
	if err != nil {
		return err
	}
	if c != nil {
		var url string
		var ok bool
		if q.Kind == media.TV {
			url, ok, err = c.Episode(ctx, q.Title, q.Season, q.Episode)
		} else {
			url, ok, err = c.Movie(ctx, q.Title)
		}
		if err != nil {
			logger.Warn("reading cache", zap.Error(err))
		}
		if ok {
			c.Close()
			result.URL = url
			result.Cached = true
			return printResult(cmd, result)
		}
	}

	a, err := newApp(ctx, c)
	if err != nil {
		return err
	}
	defer a.Close()

	var found bool
	err = spin(ctx, fmt.Sprintf("Resolving %s", q), func(ctx context.Context) error {
		var err error
		if q.Kind == media.TV {
			result.URL, found, err = a.resolver.ResolveShow(ctx, q.Title, q.Season, q.Episode)
		} else {
			result.URL, found, err = a.resolver.ResolveMovie(ctx, q.Title)
		}
		return err
	})
	if err != nil {
		if errors.Is(err, resolver.ErrTransient) {
			fmt.Fprintln(os.Stderr, ui.Error(server.ErrorMessage))
		}
		return err
	}
	if !found {
		fmt.Fprintln(os.Stderr, ui.Error(server.NotFoundMessage))
		return errNotFound
	}

	if c != nil {
		if q.Kind == media.TV {
			err = c.PutEpisode(ctx, q.Title, q.Season, q.Episode, result.URL)
		} else {
			err = c.PutMovie(ctx, q.Title, result.URL)
		}
		if err != nil {
			logger.Warn("caching result", zap.Error(err))
		}
	}
	return printResult(cmd, result)
}

func printResult(cmd *cobra.Command, r resolveResult) error {
	if flagPlay {
		return play(cmd, r)
	}
	if flagJSON {
		return writeJSON(r)
	}
	out := cmd.OutOrStdout()
	if ui.IsTerminal(os.Stdout) {
		fmt.Fprintln(out, ui.URL(r.URL))
		if r.Cached {
			fmt.Fprintln(os.Stderr, ui.Faint("(from cache)"))
		}
		return nil
	}
	fmt.Fprintln(out, r.URL)
	return nil
}

func play(cmd *cobra.Command, r resolveResult) error {
	p, err := player.New(cfg.Player)
	if err != nil {
		return err
	}
	if !p.Available() {
		return fmt.Errorf("player %q not found in PATH", p.Name())
	}

	title := r.Name
	if r.Season > 0 {
		title = media.ShowQuery(r.Name, r.Season, r.Episode).String()
	}
	logger.Debug("starting player", zap.String("player", p.Name()), zap.String("url", r.URL))

	site := provider.NewFMovies(cfg.Base)
	return p.Play(cmd.Context(), r.URL, title, site.BaseURL()+"/")
}
