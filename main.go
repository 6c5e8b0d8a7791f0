// potool — gettext PO catalog utilities: extract translation pairs into
// a JSON mapping, and fill missing translations through a machine
// translation API with a persistent cache.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/leonelquinteros/gotext"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/localehub/potool/cache"
	"github.com/localehub/potool/config"
	"github.com/localehub/potool/extract"
	"github.com/localehub/potool/fill"
	"github.com/localehub/potool/pofile"
	"github.com/localehub/potool/settings"
	"github.com/localehub/potool/translator"
)

// Version information (set via -ldflags during build)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	tagInfo    = color.New(color.FgBlue).Sprint("[INFO]")
	tagOK      = color.New(color.FgGreen).Sprint("[OK]")
	tagWarning = color.New(color.Bold, color.FgYellow).Sprint("[WARN]")
	tagError   = color.New(color.FgRed).Sprint("[ERROR]")
)

func logInfo(format string, args ...any) {
	fmt.Fprintf(os.Stderr, tagInfo+" "+format+"\n", args...)
}

func logSuccess(format string, args ...any) {
	fmt.Fprintf(os.Stderr, tagOK+" "+format+"\n", args...)
}

func logWarning(format string, args ...any) {
	fmt.Fprintf(os.Stderr, tagWarning+" "+format+"\n", args...)
}

func logError(format string, args ...any) {
	fmt.Fprintf(os.Stderr, tagError+" "+format+"\n", args...)
}

// ---------------------------------------------------------------------------
// Root command
// ---------------------------------------------------------------------------

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "potool",
		Short: "gettext PO catalog extraction and machine-translation fill",
		Long: `potool — gettext PO catalog utilities.

Commands:
  extract     Flatten translated catalog entries into a JSON mapping
  fill        Fill missing translations via the translation API
  check       Validate catalogs and show translation statistics
  auth        Manage stored provider credentials`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(
		newExtractCmd(),
		newFillCmd(),
		newCheckCmd(),
		newAuthCmd(),
		newVersionCmd(),
	)

	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		logError("%v", err)
		os.Exit(1)
	}
}

// ---------------------------------------------------------------------------
// version
// ---------------------------------------------------------------------------

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Printf("potool version %s\n", version)
			fmt.Printf("  commit:    %s\n", commit)
			fmt.Printf("  built:     %s\n", date)
		},
	}
}

// ---------------------------------------------------------------------------
// extract
// ---------------------------------------------------------------------------

// DefaultMappingFile is where extract writes when no output is given.
const DefaultMappingFile = "translations.json"

func newExtractCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "extract <po_path> [output_path]",
		Short: "Flatten translated catalog entries into a JSON mapping",
		Long: `Extract existing translation pairs from a catalog file or a
directory of catalog files into one flat JSON object mapping source
text to translated text. Entries without a translation are omitted;
on duplicate source text the file processed last wins.`,
		Args: cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			output := DefaultMappingFile
			if len(args) > 1 {
				output = args[1]
			}

			mapping, err := extract.Extract(args[0])
			if err != nil {
				return err
			}
			if err := extract.WriteMapping(output, mapping); err != nil {
				return err
			}

			logSuccess("Extracted %d translation(s) to %s", len(mapping), output)
			return nil
		},
	}
}

// ---------------------------------------------------------------------------
// fill
// ---------------------------------------------------------------------------

func newFillCmd() *cobra.Command {
	var (
		output       string
		fromLang     string
		toLang       string
		appID        string
		appKey       string
		cacheFile    string
		retries      int
		retryDelay   time.Duration
		requestDelay time.Duration
		endpoint     string
		dryRun       bool
	)

	cmd := &cobra.Command{
		Use:   "fill <input.po>",
		Short: "Fill missing translations via the translation API",
		Long: `Translate every untranslated entry of a catalog through the
provider API and write the filled catalog. Results are memoized in a
local cache file, so interrupted runs resume without repeating
completed requests. When the provider keeps failing for an entry, the
source text is kept unchanged and the run continues.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(filepath.Dir(args[0]))
			if err != nil {
				return err
			}
			cfg.Input = args[0]

			// Flag overrides
			if output != "" {
				cfg.Output = output
			}
			if fromLang != "" {
				cfg.From = fromLang
			}
			if toLang != "" {
				cfg.To = toLang
			}
			if cacheFile != "" {
				cfg.CacheFile = cacheFile
			}
			if cmd.Flags().Changed("retries") {
				cfg.Retries = retries
			}
			if cmd.Flags().Changed("retry-delay") {
				cfg.RetryDelay = retryDelay
			}
			if cmd.Flags().Changed("request-delay") {
				cfg.RequestDelay = requestDelay
			}
			if endpoint != "" {
				cfg.Endpoint = endpoint
			}
			if cfg.Output == "" {
				cfg.Output = cfg.Input
			}

			cfg.AppID, cfg.AppKey = resolveCredentials(appID, appKey)
			if err := cfg.Validate(); err != nil {
				return err
			}

			return runFill(cfg, dryRun)
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "Output catalog path (default: overwrite input)")
	cmd.Flags().StringVar(&fromLang, "from", "", "Source language code")
	cmd.Flags().StringVar(&toLang, "to", "", "Target language code")
	cmd.Flags().StringVar(&appID, "app-id", "", "Provider application id (or "+config.EnvAppID+")")
	cmd.Flags().StringVar(&appKey, "app-key", "", "Provider secret key (or "+config.EnvAppKey+")")
	cmd.Flags().StringVar(&cacheFile, "cache", "", "Translation cache file")
	cmd.Flags().IntVar(&retries, "retries", 0, "Attempts per entry before keeping the source text")
	cmd.Flags().DurationVar(&retryDelay, "retry-delay", 0, "Base backoff delay, doubled per attempt")
	cmd.Flags().DurationVar(&requestDelay, "request-delay", 0, "Pause after each successful API call")
	cmd.Flags().StringVar(&endpoint, "endpoint", "", "Override the provider API URL")
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "Report what would be translated without calling the API")
	_ = cmd.Flags().MarkHidden("endpoint")

	return cmd
}

// resolveCredentials applies the lookup order: flags, environment,
// credential store.
func resolveCredentials(flagID, flagKey string) (string, string) {
	id, key := flagID, flagKey
	if id == "" {
		id = os.Getenv(config.EnvAppID)
	}
	if key == "" {
		key = os.Getenv(config.EnvAppKey)
	}
	if id == "" || key == "" {
		stored, err := settings.Load()
		if err != nil {
			logWarning("credential store: %v", err)
		} else {
			if id == "" {
				id = stored.AppID
			}
			if key == "" {
				key = stored.AppKey
			}
		}
	}
	return id, key
}

func runFill(cfg config.Config, dryRun bool) error {
	catalog, err := pofile.ParseFile(cfg.Input)
	if err != nil {
		return fmt.Errorf("reading %s: %w", cfg.Input, err)
	}

	pending := fill.Pending(catalog)
	logInfo("Catalog: %s (%s -> %s)", cfg.Input, cfg.From, cfg.To)
	logInfo("Untranslated entries: %d", len(pending))
	if dryRun || len(pending) == 0 {
		if len(pending) == 0 {
			logSuccess("All entries are translated")
		}
		return nil
	}

	store, warn := cache.Load(cfg.CacheFile)
	if warn != nil {
		logWarning("%v", warn)
	}
	logInfo("Cache: %s (%d entries)", cfg.CacheFile, store.Len())

	client := translator.New(translator.Config{
		Endpoint:     cfg.Endpoint,
		AppID:        cfg.AppID,
		AppKey:       cfg.AppKey,
		From:         cfg.From,
		To:           cfg.To,
		Retries:      cfg.Retries,
		BaseDelay:    cfg.RetryDelay,
		RequestDelay: cfg.RequestDelay,
		Logf:         logWarning,
	}, store)

	// Graceful interrupt: stop between requests, keep cache progress.
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt)
	go func() {
		<-sigCh
		logWarning("Interrupted, stopping after current request...")
		cancel()
	}()

	bar := progressbar.NewOptions(len(pending),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionSetDescription("translating"),
		progressbar.OptionShowCount(),
		progressbar.OptionOnCompletion(func() { fmt.Fprintln(os.Stderr) }),
	)

	filled, err := fill.Run(ctx, catalog, fill.Options{
		Translator: client,
		OnProgress: func(done, total int) { _ = bar.Set(done) },
		OnError:    logError,
	})
	if err != nil {
		if ctx.Err() != nil {
			logWarning("Interrupted after %d translation(s); cache progress is saved", filled)
			return nil
		}
		return err
	}

	if err := catalog.WriteFile(cfg.Output); err != nil {
		return fmt.Errorf("writing %s: %w", cfg.Output, err)
	}
	logSuccess("Filled %d translation(s), wrote %s", filled, cfg.Output)
	return nil
}

// ---------------------------------------------------------------------------
// check
// ---------------------------------------------------------------------------

func newCheckCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "check <po_path>",
		Short: "Validate catalogs and show translation statistics",
		Long: `Parse one catalog file or a directory of catalogs and print
per-file translation statistics. Each file is additionally re-read with
the gotext library to confirm it stays consumable by standard gettext
tooling.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			files, err := catalogFiles(args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(os.Stderr, "%-30s %-8s %-12s %-8s %-10s\n",
				"File", "Total", "Translated", "Fuzzy", "Untrans.")
			fmt.Fprintln(os.Stderr, strings.Repeat("─", 70))

			for _, file := range files {
				catalog, err := pofile.ParseFile(file)
				if err != nil {
					logError("Reading %s: %v", file, err)
					continue
				}
				total, translated, fuzzy, untranslated := catalog.Stats()
				fmt.Fprintf(os.Stderr, "%-30s %-8d %-12d %-8d %-10d\n",
					filepath.Base(file), total, translated, fuzzy, untranslated)

				if warn := gotextCheck(file); warn != "" {
					logWarning("%s: %s", filepath.Base(file), warn)
				}
			}
			return nil
		},
	}
}

func catalogFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("invalid input path %s: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}
	matches, err := filepath.Glob(filepath.Join(path, "*"+extract.Ext))
	if err != nil {
		return nil, err
	}
	if len(matches) == 0 {
		return nil, fmt.Errorf("no %s files in %s", extract.Ext, path)
	}
	return matches, nil
}

// gotextCheck re-parses the catalog with the ecosystem PO reader and
// returns a warning string when it disagrees with our own parse.
func gotextCheck(path string) string {
	data, err := os.ReadFile(path)
	if err != nil {
		return err.Error()
	}
	p := gotext.NewPo()
	p.Parse(data)
	domain := p.GetDomain()
	if len(domain.GetTranslations()) == 0 {
		return "gotext found no translations (file may be malformed)"
	}
	return ""
}

// ---------------------------------------------------------------------------
// auth
// ---------------------------------------------------------------------------

func newAuthCmd() *cobra.Command {
	auth := &cobra.Command{
		Use:   "auth",
		Short: "Manage stored provider credentials",
	}

	var appID, appKey string
	set := &cobra.Command{
		Use:   "set",
		Short: "Store provider credentials",
		RunE: func(cmd *cobra.Command, args []string) error {
			if appID == "" || appKey == "" {
				return fmt.Errorf("both --app-id and --app-key are required")
			}
			if err := settings.Save(settings.Credentials{AppID: appID, AppKey: appKey}); err != nil {
				return err
			}
			path, _ := settings.FilePath()
			logSuccess("Credentials saved to %s", path)
			return nil
		},
	}
	set.Flags().StringVar(&appID, "app-id", "", "Provider application id")
	set.Flags().StringVar(&appKey, "app-key", "", "Provider secret key")

	status := &cobra.Command{
		Use:   "status",
		Short: "Show where credentials come from",
		Run: func(cmd *cobra.Command, args []string) {
			id, _ := resolveCredentials("", "")
			if id == "" {
				logInfo("No credentials configured")
				return
			}
			logInfo("Application id: %s", id)
		},
	}

	auth.AddCommand(set, status)
	return auth
}
