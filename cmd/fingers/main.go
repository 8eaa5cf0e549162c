// Package main provides the CLI entrypoint for fingers.
package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"os/exec"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/verte-zerg/fingers/internal/config"
	"github.com/verte-zerg/fingers/internal/dashboard"
	"github.com/verte-zerg/fingers/internal/flush"
	"github.com/verte-zerg/fingers/internal/history"
	"github.com/verte-zerg/fingers/internal/input"
	"github.com/verte-zerg/fingers/internal/logging"
	"github.com/verte-zerg/fingers/internal/model"
	"github.com/verte-zerg/fingers/internal/report"
	"github.com/verte-zerg/fingers/internal/tally"
)

const (
	defaultRefresh     = 100 * time.Millisecond
	defaultPersist     = 60 * time.Second
	defaultShutdown    = 5 * time.Second
	defaultTopKeys     = 20
	defaultLogLevel    = "info"
	defaultCurveWindow = 7
	reportPlotHeight   = 8
)

var (
	configPath      string
	dataPath        string
	historyPath     string
	dedupWindow     time.Duration
	refreshInterval time.Duration
	persistInterval time.Duration
	shutdownTimeout time.Duration
	topKeys         int
	logLevel        string
	logPath         string
	replayPath      string
	replayPace      bool

	historySince  string
	historyLast   int
	historyWindow int
)

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "fingers",
		Short:         "Live keyboard and mouse activity stats",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runDashboardCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", config.DefaultConfigPath(), "config file path")
	flags.StringVar(&dataPath, "data-path", config.DefaultStatsPath(), "stats file path")
	flags.StringVar(&historyPath, "history-path", config.DefaultHistoryPath(), "history database path")
	flags.DurationVar(&dedupWindow, "dedup-window", tally.DefaultDedupWindow, "ignore repeats of the same key or button within this window")
	flags.DurationVar(&persistInterval, "persist", defaultPersist, "stats save interval")
	flags.DurationVar(&shutdownTimeout, "shutdown-timeout", defaultShutdown, "max time for the final save on exit")
	flags.StringVar(&logLevel, "log-level", defaultLogLevel, "log level (debug, info, warn, error)")
	flags.StringVar(&logPath, "log-path", config.DefaultLogPath(), "log file path ('-' for stderr)")
	flags.StringVar(&replayPath, "replay", "", "read events from a JSON-lines file instead of the global hook")
	flags.BoolVar(&replayPace, "replay-pace", false, "replay events at their recorded pace")

	rootCmd.Flags().DurationVar(&refreshInterval, "refresh", defaultRefresh, "dashboard refresh interval")
	rootCmd.Flags().IntVar(&topKeys, "top-keys", defaultTopKeys, "rows in the top keys table")

	rootCmd.AddCommand(newRecordCmd())
	rootCmd.AddCommand(newReportCmd())
	rootCmd.AddCommand(newHistoryCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

// resolveSettings merges the config file under the CLI flags.
func resolveSettings(cmd *cobra.Command) (model.Settings, error) {
	fileCfg, err := config.LoadConfig(configPath)
	if err != nil {
		return model.Settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	applyDurationConfig(cmd, "dedup-window", &dedupWindow, fileCfg.Tally.DedupWindow)
	applyStringConfig(cmd, "data-path", &dataPath, fileCfg.Tally.DataPath)
	applyStringConfig(cmd, "history-path", &historyPath, fileCfg.Tally.HistoryPath)
	applyDurationConfig(cmd, "refresh", &refreshInterval, fileCfg.Intervals.Refresh)
	applyDurationConfig(cmd, "persist", &persistInterval, fileCfg.Intervals.Persist)
	applyDurationConfig(cmd, "shutdown-timeout", &shutdownTimeout, fileCfg.Intervals.Shutdown)
	applyIntConfig(cmd, "top-keys", &topKeys, fileCfg.Display.TopKeys)
	applyStringConfig(cmd, "log-level", &logLevel, fileCfg.Log.Level)
	applyStringConfig(cmd, "log-path", &logPath, fileCfg.Log.Path)

	settings := model.Settings{
		DedupWindow: dedupWindow,
		DataPath:    expandHome(dataPath),
		HistoryPath: expandHome(historyPath),
		Refresh:     refreshInterval,
		Persist:     persistInterval,
		Shutdown:    shutdownTimeout,
		TopKeys:     topKeys,
		LogLevel:    logLevel,
		LogPath:     expandHome(logPath),
	}
	if err := validateSettings(settings); err != nil {
		return model.Settings{}, err
	}
	return settings, nil
}

// session bundles the collaborators shared by the dashboard and record modes.
type session struct {
	settings model.Settings
	logger   *zap.Logger
	store    *tally.Store
	archive  *history.Store
	flusher  *flush.Flusher
}

func openSession(cmd *cobra.Command) (*session, error) {
	settings, err := resolveSettings(cmd)
	if err != nil {
		return nil, err
	}
	logger, err := logging.New(settings.LogLevel, settings.LogPath)
	if err != nil {
		return nil, fmt.Errorf("failed to set up logging: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(settings.DataPath), 0o755); err != nil {
		return nil, fmt.Errorf("failed to create stats directory: %w", err)
	}
	st := tally.Open(settings.DataPath, tally.Options{
		DedupWindow: settings.DedupWindow,
		Logger:      logger.With(zap.String("mod", "tally")),
	})

	var archive flush.Archive
	hist, err := history.Open(settings.HistoryPath)
	if err != nil {
		logger.Warn("history archive unavailable", zap.String("path", settings.HistoryPath), zap.Error(err))
		logErrf("history archive unavailable: %v\n", err)
	} else {
		archive = hist
	}

	return &session{
		settings: settings,
		logger:   logger,
		store:    st,
		archive:  hist,
		flusher:  flush.New(st, archive, settings.Persist, logger),
	}, nil
}

// close runs the bounded final save and releases resources.
func (s *session) close() {
	if err := s.flusher.Final(s.settings.Shutdown); err != nil {
		logErrf("failed to save stats on exit: %v\n", err)
	}
	if s.archive != nil {
		if err := s.archive.Close(); err != nil {
			logErrf("failed to close history: %v\n", err)
		}
	}
	if err := s.logger.Sync(); err != nil {
		// Best-effort logger sync.
		_ = err
	}
}

// startInput attaches the event source on its own goroutine. The returned
// channel yields the adapter result once the source ends.
func (s *session) startInput(ctx context.Context) <-chan error {
	adapter := input.NewAdapter(s.store, s.logger)
	src := newSource()
	done := make(chan error, 1)
	go func() {
		done <- adapter.Run(ctx, src)
	}()
	return done
}

func newSource() input.Source {
	if replayPath != "" {
		return input.ReplaySource{Path: expandHome(replayPath), Pace: replayPace}
	}
	return input.NewHookSource()
}

func runDashboardCmd(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer s.close()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	inputDone := s.startInput(ctx)
	go s.flusher.Run(ctx)

	ui := dashboard.NewModel(s.store, dashboard.Options{
		Refresh: s.settings.Refresh,
		TopKeys: s.settings.TopKeys,
	})
	program := tea.NewProgram(ui, tea.WithAltScreen(), tea.WithContext(ctx))
	_, runErr := program.Run()
	stop()
	if err := <-inputDone; err != nil {
		s.logger.Warn("input stopped", zap.Error(err))
	}
	if runErr != nil && !errors.Is(runErr, tea.ErrProgramKilled) {
		return fmt.Errorf("failed to run dashboard: %w", runErr)
	}
	return nil
}

func newRecordCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "record",
		Short: "Record activity without the dashboard",
		Args:  cobra.NoArgs,
		RunE:  runRecordCmd,
	}
}

func runRecordCmd(cmd *cobra.Command, _ []string) error {
	s, err := openSession(cmd)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	inputDone := s.startInput(ctx)
	go s.flusher.Run(ctx)
	logErrf("Recording to %s (Ctrl+C to stop)\n", s.store.Path())

	var inputErr error
	select {
	case <-ctx.Done():
		inputErr = <-inputDone
	case inputErr = <-inputDone:
	}
	stop()
	s.close()

	if err := report.RenderSummary(cmd.OutOrStdout(), s.store.Snapshot(), s.store.Now()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if inputErr != nil {
		return inputErr
	}
	return nil
}

func newReportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report",
		Short: "Print a summary of the stats file",
		Args:  cobra.NoArgs,
		RunE:  runReportCmd,
	}
	cmd.Flags().IntVar(&topKeys, "top-keys", defaultTopKeys, "rows in the top keys table")
	return cmd
}

func runReportCmd(cmd *cobra.Command, _ []string) error {
	settings, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	now := time.Now()
	agg, err := tally.LoadFile(settings.DataPath, now)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			logErrf("No stats file at %s yet. Run: fingers\n", settings.DataPath)
			return fmt.Errorf("stats file does not exist")
		}
		return fmt.Errorf("failed to load stats: %w", err)
	}

	out := cmd.OutOrStdout()
	if err := report.RenderSummary(out, agg, now); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := report.RenderTopKeys(out, agg.TopKeys(settings.TopKeys), agg.TotalKeys()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := report.RenderHourly(out, report.HourlyFromAggregate(agg), now.Hour()); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Show archived daily activity",
		Args:  cobra.NoArgs,
		RunE:  runHistoryCmd,
	}
	cmd.Flags().StringVar(&historySince, "since", "", "start date (YYYY-MM-DD)")
	cmd.Flags().IntVar(&historyLast, "last", 0, "limit to last N days")
	cmd.Flags().IntVar(&historyWindow, "window", defaultCurveWindow, "moving average window in days")
	cmd.Flags().IntVar(&topKeys, "top-keys", defaultTopKeys, "rows in the top keys table")
	return cmd
}

func runHistoryCmd(cmd *cobra.Command, _ []string) error {
	settings, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	var sinceTime *time.Time
	if historySince != "" {
		parsed, err := time.ParseInLocation("2006-01-02", historySince, time.Local)
		if err != nil {
			return fmt.Errorf("invalid --since value: %w", err)
		}
		sinceTime = &parsed
	}
	if historyLast < 0 {
		return fmt.Errorf("--last must be >= 0")
	}
	if historyWindow < 1 {
		return fmt.Errorf("--window must be >= 1")
	}
	filter := model.HistoryFilter{
		Since:       sinceTime,
		Last:        historyLast,
		CurveWindow: historyWindow,
	}

	st, err := history.Open(settings.HistoryPath)
	if err != nil {
		return fmt.Errorf("failed to open history: %w", err)
	}
	defer func() {
		if cerr := st.Close(); cerr != nil {
			logErrf("failed to close history: %v\n", cerr)
		}
	}()

	rep, err := report.BuildReport(context.Background(), st, filter, settings.TopKeys)
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	if err := report.RenderDays(out, rep.Days); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := report.RenderDayCurves(out, rep.Days, filter.CurveWindow, 0, reportPlotHeight, false); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := report.RenderHourly(out, rep.Hourly, -1); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	if err := report.RenderArchivedKeys(out, rep.Keys); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	return nil
}

func newConfigCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "config",
		Short: "Create/open config file",
		Args:  cobra.NoArgs,
		RunE:  runConfigCmd,
	}
}

func runConfigCmd(_ *cobra.Command, _ []string) error {
	path := configPath
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}
	if _, err := os.Stat(path); err != nil {
		if !os.IsNotExist(err) {
			return fmt.Errorf("failed to stat config: %w", err)
		}
		if err := os.WriteFile(path, []byte(defaultConfigTemplate()), 0o644); err != nil {
			return fmt.Errorf("failed to write config: %w", err)
		}
	}

	editor := strings.TrimSpace(os.Getenv("EDITOR"))
	if editor == "" {
		editor = "vi"
	}
	parts := strings.Fields(editor)
	if len(parts) == 0 {
		return fmt.Errorf("editor command is empty")
	}
	cmd := exec.Command(parts[0], append(parts[1:], path)...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("failed to open editor: %w", err)
	}
	return nil
}

func applyStringConfig(cmd *cobra.Command, name string, target, value *string) {
	if value == nil || cmd.Flags().Lookup(name) == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil || cmd.Flags().Lookup(name) == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyDurationConfig(cmd *cobra.Command, name string, target *time.Duration, value *config.Duration) {
	if value == nil || cmd.Flags().Lookup(name) == nil || cmd.Flags().Changed(name) {
		return
	}
	*target = *value.Std()
}

func defaultConfigTemplate() string {
	return fmt.Sprintf(`# fingers configuration
# Uncomment a value to enable it. CLI flags override config values.

[tally]
# dedup-window = %q       # Ignore repeats of the same key or button within this window
# data-path = %q
# history-path = %q

[intervals]
# refresh = %q           # Dashboard refresh
# persist = %q           # Stats save interval
# shutdown = %q           # Max time for the final save on exit

[display]
# top-keys = %d            # Rows in the top keys table

[log]
# level = %q           # debug, info, warn, error
# path = %q
`,
		tally.DefaultDedupWindow.String(),
		config.DefaultStatsPath(),
		config.DefaultHistoryPath(),
		defaultRefresh.String(),
		defaultPersist.String(),
		defaultShutdown.String(),
		defaultTopKeys,
		defaultLogLevel,
		config.DefaultLogPath(),
	)
}

func validateSettings(s model.Settings) error {
	if s.DedupWindow < 0 {
		return fmt.Errorf("--dedup-window must be >= 0")
	}
	if s.Refresh <= 0 {
		return fmt.Errorf("--refresh must be > 0")
	}
	if s.Persist <= 0 {
		return fmt.Errorf("--persist must be > 0")
	}
	if s.Shutdown <= 0 {
		return fmt.Errorf("--shutdown-timeout must be > 0")
	}
	if s.TopKeys <= 0 {
		return fmt.Errorf("--top-keys must be > 0")
	}
	if s.DataPath == "" {
		return fmt.Errorf("--data-path must not be empty")
	}
	if _, err := logging.ParseLevel(s.LogLevel); err != nil {
		return err
	}
	return nil
}

func expandHome(path string) string {
	if path != "~" && !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return path
	}
	return filepath.Join(home, strings.TrimPrefix(path, "~"))
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
