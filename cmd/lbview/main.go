// Package main provides the CLI entrypoint for lbview.
package main

import (
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/verte-zerg/lbview/internal/api"
	"github.com/verte-zerg/lbview/internal/config"
	"github.com/verte-zerg/lbview/internal/corpus"
	"github.com/verte-zerg/lbview/internal/export"
	"github.com/verte-zerg/lbview/internal/fake"
	"github.com/verte-zerg/lbview/internal/model"
	"github.com/verte-zerg/lbview/internal/tui"
	"github.com/verte-zerg/lbview/internal/view"
)

const demoEndpoint = "http://demo.lbview.invalid/leaderboard"

var (
	sourceEndpoint string
	sourcePageSize int
	sourcePages    int
	sourceDemo     bool

	selectQuery   string
	selectSubject string
	selectSort    string
	selectDir     string

	listPage int
	listAll  bool

	exportOut string
	exportYes bool
)

// settings is the resolved configuration of one command run.
type settings struct {
	endpoint     string
	pageSize     int
	pages        int
	concurrency  int
	timeout      time.Duration
	demo         bool
	selection    model.Selection
	viewer       model.Viewer
	desktopWidth int
	exportDir    string
}

func main() {
	rootCmd := newRootCmd()
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:           "lbview",
		Short:         "Terminal leaderboard viewer",
		SilenceUsage:  true,
		SilenceErrors: false,
		RunE:          runViewerCmd,
	}

	flags := rootCmd.PersistentFlags()
	flags.StringVar(&sourceEndpoint, "endpoint", api.DefaultEndpoint, "leaderboard API endpoint")
	flags.IntVar(&sourcePageSize, "page-size", corpus.DefaultLimit, "entries per page")
	flags.IntVar(&sourcePages, "pages", corpus.DefaultPages, "number of pages in the leaderboard")
	flags.BoolVar(&sourceDemo, "demo", false, "serve a generated leaderboard instead of the API")
	flags.StringVar(&selectQuery, "query", "", "participant name search")
	flags.StringVar(&selectSubject, "subject", string(model.SubjectAll), "subject filter (all, phy, chem, maths)")
	flags.StringVar(&selectSort, "sort", string(model.SortByRank), "sort key (rank, overall, accuracy)")
	flags.StringVar(&selectDir, "dir", string(model.Asc), "sort direction (asc, desc)")

	rootCmd.AddCommand(newListCmd())
	rootCmd.AddCommand(newExportCmd())
	rootCmd.AddCommand(newConfigCmd())

	return rootCmd
}

func runViewerCmd(cmd *cobra.Command, _ []string) error {
	s, err := loadSettings(cmd)
	if err != nil {
		return err
	}
	agg := newAggregator(s)
	composer := view.New(
		view.WithViewer(s.viewer),
		view.WithTotalPages(s.pages),
		view.WithDesktopWidth(s.desktopWidth),
		view.WithSelection(s.selection),
	)
	return tui.Run(tui.Options{
		Aggregator: agg,
		Exporter:   export.New(agg),
		Composer:   composer,
		ExportDir:  s.exportDir,
	})
}

// loadSettings merges config file, .env and flags. Flags win when set explicitly.
func loadSettings(cmd *cobra.Command) (settings, error) {
	fileCfg, err := config.LoadConfig(config.DefaultConfigPath())
	if err != nil {
		return settings{}, fmt.Errorf("failed to load config: %w", err)
	}
	if err := config.LoadEnv(config.DefaultEnvPath(), &fileCfg); err != nil {
		return settings{}, fmt.Errorf("failed to load environment: %w", err)
	}
	applyStringConfig(cmd, "endpoint", &sourceEndpoint, fileCfg.Source.Endpoint)
	applyIntConfig(cmd, "page-size", &sourcePageSize, fileCfg.Source.PageSize)
	applyIntConfig(cmd, "pages", &sourcePages, fileCfg.Source.Pages)

	s := settings{
		endpoint:     strings.TrimSpace(sourceEndpoint),
		pageSize:     sourcePageSize,
		pages:        sourcePages,
		concurrency:  corpus.DefaultConcurrency,
		demo:         sourceDemo,
		viewer:       fileCfg.Viewer.Apply(model.DefaultViewer()),
		desktopWidth: view.DefaultDesktopWidth,
		exportDir:    config.DefaultExportDir(),
	}
	if fileCfg.Source.Concurrency != nil {
		s.concurrency = *fileCfg.Source.Concurrency
	}
	if s.timeout, err = fileCfg.Source.TimeoutDuration(); err != nil {
		return settings{}, err
	}
	if fileCfg.View.DesktopWidth != nil {
		s.desktopWidth = *fileCfg.View.DesktopWidth
	}
	if fileCfg.Export.Dir != nil && strings.TrimSpace(*fileCfg.Export.Dir) != "" {
		s.exportDir = *fileCfg.Export.Dir
	}

	sel, err := parseSelection(selectQuery, selectSubject, selectSort, selectDir)
	if err != nil {
		return settings{}, err
	}
	s.selection = sel
	if err := validateSettings(s); err != nil {
		return settings{}, err
	}
	return s, nil
}

func parseSelection(query, subject, sortKey, dir string) (model.Selection, error) {
	sub, err := model.ParseSubject(subject)
	if err != nil {
		return model.Selection{}, fmt.Errorf("invalid --subject: %w", err)
	}
	key, err := model.ParseSortKey(sortKey)
	if err != nil {
		return model.Selection{}, fmt.Errorf("invalid --sort: %w", err)
	}
	d, err := model.ParseDirection(dir)
	if err != nil {
		return model.Selection{}, fmt.Errorf("invalid --dir: %w", err)
	}
	return model.Selection{Text: query, Subject: sub, Key: key, Dir: d}, nil
}

func validateSettings(s settings) error {
	if s.endpoint == "" && !s.demo {
		return fmt.Errorf("--endpoint must not be empty")
	}
	if s.pageSize <= 0 {
		return fmt.Errorf("--page-size must be > 0")
	}
	if s.pages <= 0 {
		return fmt.Errorf("--pages must be > 0")
	}
	if s.concurrency <= 0 {
		return fmt.Errorf("source.concurrency must be > 0")
	}
	if s.desktopWidth <= 0 {
		return fmt.Errorf("view.desktop-width must be > 0")
	}
	return nil
}

func newAggregator(s settings) *corpus.Aggregator {
	var opts []api.Option
	endpoint := s.endpoint
	if s.demo {
		endpoint = demoEndpoint
		opts = append(opts, api.WithTransport(fake.NewTransport(fake.Config{})))
	}
	if s.timeout > 0 {
		opts = append(opts, api.WithTimeout(s.timeout))
	}
	client := api.New(endpoint, opts...)
	return corpus.New(client,
		corpus.WithPages(s.pages),
		corpus.WithLimit(s.pageSize),
		corpus.WithConcurrency(s.concurrency),
		corpus.WithCache(corpus.NewPageCache()),
	)
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
	path := config.DefaultConfigPath()
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
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func applyIntConfig(cmd *cobra.Command, name string, target, value *int) {
	if value == nil {
		return
	}
	if cmd.Flags().Changed(name) {
		return
	}
	*target = *value
}

func defaultConfigTemplate() string {
	viewer := model.DefaultViewer()
	return fmt.Sprintf(`# lbview configuration
# Uncomment a value to enable it. CLI flags override config values.
# %s in the environment or a .env file overrides source.endpoint.

[source]
# endpoint = %q
# page-size = %d          # Entries per page
# pages = %d              # Pages in the leaderboard
# concurrency = %d        # Parallel page fetches for search and export
# timeout = "30s"         # Request timeout

[viewer]
# name = %q
# rank = %d
# overall = %g
# max = %g
# phy = %g
# chem = %g
# maths = %g
# accuracy = %g

[view]
# desktop-width = %d      # Terminal width at which top performer cards appear

[export]
# dir = "."               # Directory CSV exports are written to
`,
		config.EnvEndpoint,
		api.DefaultEndpoint,
		corpus.DefaultLimit,
		corpus.DefaultPages,
		corpus.DefaultConcurrency,
		viewer.Name,
		viewer.Rank,
		viewer.Overall,
		viewer.MaxScore,
		viewer.Phy,
		viewer.Chem,
		viewer.Maths,
		viewer.Accuracy,
		view.DefaultDesktopWidth,
	)
}

func logErrf(format string, args ...any) {
	if _, err := fmt.Fprintf(os.Stderr, format, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}

func logErrln(args ...any) {
	if _, err := fmt.Fprintln(os.Stderr, args...); err != nil {
		// Best-effort logging to stderr.
		_ = err
	}
}
