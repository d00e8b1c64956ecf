package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/cobra"

	"media-indexer/internal/database"
	"media-indexer/internal/extractor"
	"media-indexer/internal/filesystem"
	"media-indexer/internal/handlers"
	"media-indexer/internal/indexer"
	"media-indexer/internal/logging"
	"media-indexer/internal/mediatypes"
	"media-indexer/internal/memory"
	"media-indexer/internal/metrics"
	"media-indexer/internal/probe"
	"media-indexer/internal/startup"
	"media-indexer/internal/workers"
)

const (
	collectInterval = 30 * time.Second
	shutdownTimeout = 5 * time.Second
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := execute(ctx, os.Args[1:], os.Stdout, os.Stderr)
	stop()
	logging.Sync()
	os.Exit(code)
}

// execute runs the command line and returns the process exit code.
func execute(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	code := 0
	root := newRootCmd(stdout, stderr, &code)
	root.SetArgs(args)

	if err := root.ExecuteContext(ctx); err != nil {
		printError(stderr, err)
		return 1
	}
	return code
}

type runOptions struct {
	configFile string
	storeURI   string
	truncate   bool
}

func newRootCmd(stdout, stderr io.Writer, code *int) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "media-indexer",
		Short: "Extract file metadata and ingest it into a document store",
		Long: `media-indexer walks a directory tree, extracts metadata from every regular
file with a pool of parallel workers and writes one document per file to the
store in batches.

Configuration is read from the environment (see "media-indexer run --help").`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	rootCmd.AddCommand(newRunCmd(stdout, stderr, code))
	rootCmd.AddCommand(newVersionCmd(stdout))
	return rootCmd
}

func newRunCmd(stdout, stderr io.Writer, code *int) *cobra.Command {
	var opts runOptions

	cmd := &cobra.Command{
		Use:   "run <root_directory>",
		Short: "Index every file under root_directory",
		Long:  "Index every file under root_directory.\n\nEnvironment:\n" + startup.Usage(),
		Example: `  media-indexer run ~/Pictures
  media-indexer run /srv/media --truncate --store-uri=postgres://indexer@db/media`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			state, err := runIndex(cmd.Context(), args[0], opts, stdout, stderr)
			*code = state.ExitCode()
			return err
		},
	}

	cmd.Flags().BoolVar(&opts.truncate, "truncate", false, "delete every stored document before indexing")
	cmd.Flags().StringVar(&opts.storeURI, "store-uri", "", "store target, overrides STORE_URI")
	cmd.Flags().StringVar(&opts.configFile, "config", "", "YAML configuration file, overrides CONFIG_FILE")
	return cmd
}

func newVersionCmd(stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Fprintln(stdout, startup.GetBuildInfo().String())
		},
	}
}

// runIndex performs one run. Setup failures come back as errors with
// StateIdle; the outcome of the run itself is reported by the console and
// carried by the returned state.
func runIndex(ctx context.Context, rootArg string, opts runOptions, stdout, stderr io.Writer) (indexer.State, error) {
	cfg, err := loadConfig(opts)
	if err != nil {
		return indexer.StateIdle, err
	}

	root, err := homedir.Expand(rootArg)
	if err != nil {
		return indexer.StateIdle, errors.Wrapf(err, "expanding %s", rootArg)
	}
	if err := indexer.ValidateRoot(root); err != nil {
		return indexer.StateIdle, err
	}

	startup.PrintBanner(stderr)
	startup.LogSystemInfo(ctx, root)
	cfg.Log()
	for _, name := range startup.CheckProbes(cfg.ProbeSet()) {
		logging.Warn("%s not found on PATH, its metadata will be omitted", name)
	}

	memory.Configure(cfg.MemoryLimit, cfg.MemoryRatio)
	monitor := memory.NewMonitor(memory.DefaultConfig())
	if monitor.Enabled() {
		monitor.Start()
		defer monitor.Stop()
	}

	metrics.InitializeMetrics()
	info := startup.GetBuildInfo()
	metrics.SetAppInfo(info.Version, info.Commit, info.GoVersion)
	filesystem.SetObserver(metrics.NewFilesystemObserver())
	filesystem.SetDefaultVolumeResolver(filesystem.NewVolumeResolver(map[string]string{"media": root}))

	storeStart := time.Now()
	store, err := database.Open(ctx, cfg.StoreURI)
	if err != nil {
		return indexer.StateIdle, err
	}
	defer store.Close()
	startup.LogStoreInit(time.Since(storeStart))

	collector := metrics.NewCollector(store, collectInterval)
	collector.Start()
	defer collector.Stop()

	runID := uuid.NewString()
	ix := indexer.New(indexer.Config{
		RunID:     runID,
		Workers:   resolveWorkers(cfg.Workers),
		BatchSize: cfg.BatchSize,
		Truncate:  opts.truncate,
		Memory:    monitor,
		Reporter:  indexer.NewConsole(stdout, stderr),
	}, store, newSetup(cfg, runID))

	if cfg.MetricsAddr != "" {
		srv, err := handlers.Listen(cfg.MetricsAddr, handlers.New(ix, monitor))
		if err != nil {
			return indexer.StateIdle, errors.WithHint(err, "check METRICS_ADDR or leave it empty")
		}
		startup.LogMetricsServer(srv.Addr())
		defer shutdownServer(srv)
	}

	state, err := ix.Run(ctx, root)
	if state == indexer.StateInterrupted {
		startup.LogShutdownInitiated("signal")
	}
	if err != nil {
		logging.Debug("Run %s ended in state %s: %v", runID, state, err)
	}
	return state, nil
}

func loadConfig(opts runOptions) (*startup.Config, error) {
	cfg, err := startup.LoadConfig(opts.configFile)
	if err != nil {
		return nil, err
	}
	if opts.storeURI != "" {
		cfg.StoreURI = opts.storeURI
		if err := cfg.Validate(); err != nil {
			return nil, errors.Wrap(err, "--store-uri")
		}
	}
	return cfg, nil
}

// resolveWorkers applies an explicit worker count from configuration, or
// one worker per CPU; both are capped at workers.MaxExtractionWorkers.
func resolveWorkers(configured int) int {
	if configured > 0 {
		return workers.Compute(configured, 1.0, workers.MaxExtractionWorkers, configured)
	}
	return workers.ForExtraction()
}

// newSetup returns the per-worker setup step: each worker loads its own
// content-type table and probe set.
func newSetup(cfg *startup.Config, runID string) indexer.SetupFunc {
	return func(worker int) (indexer.Extractor, error) {
		table, err := mediatypes.NewTable(cfg.MimeTypesFile)
		if err != nil {
			return nil, errors.Wrapf(err, "worker %d: loading content types", worker)
		}
		probes, err := probe.NewSet(cfg.ProbeSet())
		if err != nil {
			return nil, errors.Wrapf(err, "worker %d: parsing probe commands", worker)
		}
		return extractor.New(table, probes, extractor.Options{
			RunID:    runID,
			Checksum: cfg.Checksum,
			Retry:    filesystem.DefaultRetryConfig(),
		}), nil
	}
}

func shutdownServer(srv *handlers.Server) {
	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	startup.LogShutdownStep("Stopping metrics server")
	if err := srv.Shutdown(ctx); err != nil {
		logging.Warn("Metrics server shutdown error: %v", err)
		return
	}
	startup.LogShutdownStepComplete("Metrics server stopped")
}

// printError writes err and any hints attached to it.
func printError(w io.Writer, err error) {
	fmt.Fprintf(w, "Error: %v\n", err)
	for _, hint := range errors.GetAllHints(err) {
		fmt.Fprintf(w, "Hint: %s\n", hint)
	}
}
