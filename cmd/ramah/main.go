// Command ramah is a terminal reader for a curated feed of good news.
//
// Usage:
//
//	ramah [#fragment]       Browse the feed (fragments: stats, embed, data)
//	ramah stats             Print feed statistics
//	ramah version           Print version information
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/abelbrown/ramah/internal/browser"
	"github.com/abelbrown/ramah/internal/config"
	"github.com/abelbrown/ramah/internal/feed"
	"github.com/abelbrown/ramah/internal/fetch"
	"github.com/abelbrown/ramah/internal/logging"
	"github.com/abelbrown/ramah/internal/otel"
	"github.com/abelbrown/ramah/internal/prefs"
	"github.com/abelbrown/ramah/internal/share"
	"github.com/abelbrown/ramah/internal/ui"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/time/rate"
)

var version = "dev"

// options collects flag values shared by the commands.
type options struct {
	configPath string
	endpoint   string
	theme      string
	batch      int
	debug      bool
}

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "ramah:", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "ramah [#fragment]",
		Short: "Browse a feed of good news in the terminal",
		Long: `ramah shows a curated feed of positive news stories.

Stories load in batches as you scroll. Press s for feed stats, e for the
embed snippet and d for data access notes. A fragment argument opens one of
those pages directly:

  ramah            # the feed
  ramah '#stats'   # feed stats over the feed`,
		Args:          cobra.MaximumNArgs(1),
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initLogging(opts)
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			logging.Close()
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			fragment := ""
			if len(args) > 0 {
				fragment = args[0]
			}
			return runTUI(cmd.Context(), opts, fragment)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&opts.configPath, "config", "", "config file (default ~/.ramah/config.json)")
	pf.StringVar(&opts.endpoint, "endpoint", "", "feed URL (overrides config)")
	pf.BoolVar(&opts.debug, "debug", false, "write debug lines to the log file")
	root.Flags().StringVar(&opts.theme, "theme", "", "colour theme for this session: light or dark")
	root.Flags().IntVar(&opts.batch, "batch", 0, "stories rendered per batch")

	root.AddCommand(newStatsCmd(opts), newVersionCmd())
	return root
}

// loadConfig reads the config file and applies flag overrides.
func loadConfig(opts *options) (*config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if opts.endpoint != "" {
		cfg.Feed.Endpoint = opts.endpoint
	}
	if opts.theme != "" {
		if opts.theme != prefs.ThemeLight && opts.theme != prefs.ThemeDark {
			return nil, fmt.Errorf("unknown theme %q (want light or dark)", opts.theme)
		}
		cfg.UI.Theme = opts.theme
	}
	if opts.batch > 0 {
		cfg.Feed.BatchSize = opts.batch
	}
	if opts.debug {
		cfg.UI.Debug = true
	}
	return cfg, nil
}

// initLogging starts the file logger. A logging failure is reported but
// never stops the program.
func initLogging(opts *options) error {
	logging.Version = version
	level := log.InfoLevel
	if opts.debug {
		level = log.DebugLevel
	}
	dir, err := logging.DefaultDir()
	if err == nil {
		err = logging.Init(dir, level)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "ramah: logging disabled: %v\n", err)
	}
	return nil
}

func newFetcher(cfg *config.Config, store *feed.Store, opts ...fetch.Option) *fetch.Fetcher {
	opts = append(opts, fetch.WithUserAgent("ramah/"+version+" (+"+cfg.UI.SiteURL+")"))
	return fetch.NewFetcher(cfg.Feed.Endpoint, cfg.Timeout(), store, opts...)
}

func runTUI(ctx context.Context, opts *options, fragment string) error {
	cfg, err := loadConfig(opts)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(config.Dir(), 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	var saveTheme func(string) error
	prefStore, err := prefs.Open(filepath.Join(config.Dir(), "prefs.db"))
	if err != nil {
		// Without preferences the theme follows the terminal.
		logging.Warn("Preferences unavailable", "err", err)
		prefStore = nil
	} else {
		defer prefStore.Close()
		saveTheme = prefStore.SaveTheme
	}
	// The background query waits on the terminal, so skip it when the
	// theme is already fixed.
	systemDark := true
	if cfg.UI.Theme == "" {
		systemDark = lipgloss.HasDarkBackground()
	}
	theme := prefStore.Theme(cfg.UI.Theme, systemDark)

	store := feed.NewStore()
	loading := &atomic.Bool{}
	events := otel.NewRingBuffer(otel.DefaultRingSize)
	fetcher := newFetcher(cfg, store, fetch.WithLoading(func(on bool) { loading.Store(on) }))

	app := ui.NewApp(ui.AppConfig{
		Context:    ctx,
		Store:      store,
		Fetch:      fetcher.Fetch,
		Opener:     browser.New(),
		CopyEmbed:  share.Copy,
		SaveTheme:  saveTheme,
		Loading:    loading,
		Events:     events,
		Theme:      theme,
		Fragment:   fragment,
		Endpoint:   fetcher.Endpoint(),
		SiteURL:    cfg.UI.SiteURL,
		BatchSize:  cfg.Feed.BatchSize,
		BatchDelay: cfg.BatchDelay(),
		LeadMargin: cfg.Feed.LeadMargin,
		// Key repeat can fire dozens of moves a second; loads need not.
		Limiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 2),
	})

	program := tea.NewProgram(app, tea.WithContext(ctx), tea.WithAltScreen(), tea.WithMouseCellMotion())
	_, err = program.Run()
	if cfg.UI.Debug {
		dumpEvents(events)
	}
	if err != nil && ctx.Err() != nil {
		logging.Info("Interrupted", "err", err)
		return nil
	}
	if err != nil {
		return fmt.Errorf("run program: %w", err)
	}
	return nil
}

// dumpEvents writes the session's events next to the log file.
func dumpEvents(events *otel.RingBuffer) {
	dir, err := logging.DefaultDir()
	if err != nil {
		logging.Warn("Event dump skipped", "err", err)
		return
	}
	path := filepath.Join(dir, "events-"+time.Now().Format("20060102-150405")+".jsonl")
	f, err := os.Create(path)
	if err != nil {
		logging.Warn("Event dump failed", "err", err)
		return
	}
	defer f.Close()
	if err := events.WriteJSONL(f); err != nil {
		logging.Warn("Event dump failed", "path", path, "err", err)
		return
	}
	logging.Info("Events written", "path", path, "count", events.Len())
}
