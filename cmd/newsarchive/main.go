package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"newsarchive/internal/archive"
	"newsarchive/internal/config"
	"newsarchive/internal/dateparse"
	"newsarchive/internal/fetcher"
	"newsarchive/internal/index"
	"newsarchive/internal/pipeline"
	"newsarchive/internal/rewrite"
	"newsarchive/internal/sites"
	"newsarchive/internal/types"
)

var (
	cfgFile string
	verbose bool

	dateFlag     string
	rootFlag     string
	siteFlag     string
	forceFlag    bool
	limitFlag    int
	noIndexFlag  bool
	retentionFlg int
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "newsarchive",
		Short: "newsarchive — local news scraper and rewrite archive",
		Long: `newsarchive collects local news stories from a fixed set of New England
news sites, archives them as plain text under a date/site folder layout,
produces AI-rewritten drafts, and manages the published copies.`,
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	rootCmd.PersistentFlags().StringVar(&rootFlag, "root", "", "archive root directory (overrides config)")

	rootCmd.AddCommand(scrapeCmd())
	rootCmd.AddCommand(rewriteCmd())
	rootCmd.AddCommand(publishCmd())
	rootCmd.AddCommand(unpublishCmd())
	rootCmd.AddCommand(sweepCmd())
	rootCmd.AddCommand(sitesCmd())
	rootCmd.AddCommand(versionCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// scrapeCmd creates the "scrape" subcommand.
func scrapeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "scrape [site|all]",
		Short: "Scrape one site, or all sites, for a date",
		Long: `Scrape articles published on the target date and save them under
<root>/<date>/<site>/Original. With no argument or "all", every enabled
site is scraped in order; a failing site is logged and the rest continue.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runScrape,
	}
	cmd.Flags().StringVarP(&dateFlag, "date", "d", "", "target date YYYY-MM-DD (default: today)")
	cmd.Flags().BoolVar(&noIndexFlag, "no-index", false, "skip the MongoDB run index even if enabled in config")
	return cmd
}

func runScrape(cmd *cobra.Command, args []string) error {
	logger := setupLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	// Resolve the target date before touching the network.
	target, err := targetDate()
	if err != nil {
		return err
	}

	slugs := config.DefaultSites
	if len(args) == 1 && args[0] != "all" {
		slug := strings.ToLower(args[0])
		if !sites.Registered(slug) {
			return fmt.Errorf("unknown site %q (known: %s)", slug, strings.Join(sites.Slugs(), ", "))
		}
		slugs = []string{slug}
	}

	client := fetcher.New(cfg.Fetcher, logger)
	writer := archive.NewWriter(cfg.Archive.Root, logger)

	var idx *index.Index
	if cfg.Index.Enabled && !noIndexFlag {
		idx, err = index.New(cfg.Index, logger)
		if err != nil {
			logger.Warn("run index unavailable, continuing without it", "error", err)
		} else {
			defer idx.Close()
		}
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	// Expired folders go before new ones are written.
	if _, err := archive.Sweep(cfg.Archive.Root, cfg.Archive.RetentionDays, time.Now(), logger); err != nil {
		logger.Warn("retention sweep failed", "error", err)
	}

	logger.Info("starting scrape",
		"date", types.ISODate(target),
		"sites", slugs,
		"root", cfg.Archive.Root)

	start := time.Now()
	results := pipeline.NewDriver(cfg, client, writer, idx, logger).Run(ctx, slugs, target)

	var total, failed int
	for _, res := range results {
		total += res.Articles
		if res.Err != nil {
			failed++
		}
	}
	fmt.Printf("Scraped %d article(s) from %d site(s) in %s", total, len(results), time.Since(start).Round(time.Millisecond))
	if failed > 0 {
		fmt.Printf(" (%d site(s) failed)", failed)
	}
	fmt.Println()
	return nil
}

// rewriteCmd creates the "rewrite" subcommand.
func rewriteCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rewrite",
		Short: "Rewrite a date's archived articles with the configured LLM",
		Long: `Walk <root>/<date>/<site>/Original and write AI-rewritten drafts to the
sibling Rewritten directory. Articles that already have a rewritten file
are skipped unless --force is given.`,
		RunE: runRewrite,
	}
	cmd.Flags().StringVarP(&dateFlag, "date", "d", "", "target date YYYY-MM-DD (default: today)")
	cmd.Flags().StringVarP(&siteFlag, "site", "s", "", "only rewrite this site's articles")
	cmd.Flags().BoolVar(&forceFlag, "force", false, "overwrite existing rewritten files")
	cmd.Flags().IntVar(&limitFlag, "limit", 0, "maximum new rewrites this run (0 = unlimited)")
	return cmd
}

func runRewrite(cmd *cobra.Command, args []string) error {
	logger := setupLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	target, err := targetDate()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext(logger)
	defer cancel()

	client := rewrite.NewClient(cfg.Rewrite, logger)
	rewriter := rewrite.NewRewriter(client, cfg.Archive.Root, logger)
	stats, err := rewriter.RewriteDate(ctx, target, rewrite.Options{
		Site:  siteFlag,
		Force: forceFlag,
		Limit: limitFlag,
	})
	if err != nil {
		return err
	}
	fmt.Printf("Rewrote %d article(s), skipped %d, %d error(s)\n", stats.Rewritten, stats.Skipped, stats.Errors)
	return nil
}

// publishCmd creates the "publish" subcommand.
func publishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "publish <site> <filename>",
		Short: "Promote a rewritten article to the published area",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(args[0], args[1], false)
		},
	}
	cmd.Flags().StringVarP(&dateFlag, "date", "d", "", "archive date YYYY-MM-DD (default: today)")
	return cmd
}

// unpublishCmd creates the "unpublish" subcommand.
func unpublishCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "unpublish <site> <filename>",
		Short: "Move a published article back to its site's Rewritten folder",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPublish(args[0], args[1], true)
		},
	}
	cmd.Flags().StringVarP(&dateFlag, "date", "d", "", "archive date YYYY-MM-DD (default: today)")
	return cmd
}

func runPublish(site, name string, undo bool) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	target, err := targetDate()
	if err != nil {
		return err
	}

	var dest string
	if undo {
		dest, err = archive.Unpublish(cfg.Archive.Root, target, site, name)
	} else {
		dest, err = archive.Publish(cfg.Archive.Root, target, site, name)
	}
	if err != nil {
		return err
	}
	fmt.Println(dest)
	return nil
}

// sweepCmd creates the "sweep" subcommand.
func sweepCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sweep",
		Short: "Delete archive folders older than the retention window",
		RunE:  runSweep,
	}
	cmd.Flags().IntVar(&retentionFlg, "retention-days", -1, "retention window in days (overrides config)")
	return cmd
}

func runSweep(cmd *cobra.Command, args []string) error {
	logger := setupLogger()

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	days := cfg.Archive.RetentionDays
	if retentionFlg >= 0 {
		days = retentionFlg
	}

	removed, err := archive.Sweep(cfg.Archive.Root, days, time.Now(), logger)
	if err != nil {
		return err
	}
	fmt.Printf("Removed %d expired folder(s)\n", removed)
	return nil
}

// sitesCmd creates the "sites" subcommand.
func sitesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sites",
		Short: "List supported site slugs",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			for _, slug := range sites.Slugs() {
				state := "enabled"
				if !cfg.Site(slug).Enabled {
					state = "disabled"
				}
				fmt.Printf("%-14s %s\n", slug, state)
			}
			return nil
		},
	}
}

// versionCmd creates the "version" subcommand.
func versionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("newsarchive %s\n", config.Version)
		},
	}
}

// loadConfig loads and validates configuration, applying CLI overrides.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if rootFlag != "" {
		cfg.Archive.Root = rootFlag
	}
	if err := config.Validate(cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// targetDate resolves --date, defaulting to today. An unparseable value is
// an error before any network or filesystem work happens.
func targetDate() (time.Time, error) {
	if dateFlag == "" {
		return types.Day(time.Now()), nil
	}
	day, ok := dateparse.ParseISODay(dateFlag)
	if !ok {
		return time.Time{}, fmt.Errorf("invalid --date %q: expected YYYY-MM-DD", dateFlag)
	}
	return day, nil
}

// signalContext returns a context cancelled on SIGINT/SIGTERM.
func signalContext(logger *slog.Logger) (context.Context, context.CancelFunc) {
	ctx, cancel := context.WithCancel(context.Background())
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		select {
		case sig := <-sigCh:
			logger.Info("received signal, shutting down...", "signal", sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	return ctx, cancel
}

// setupLogger creates a structured logger.
func setupLogger() *slog.Logger {
	level := slog.LevelInfo
	if verbose {
		level = slog.LevelDebug
	}
	handler := slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level})
	return slog.New(handler)
}
