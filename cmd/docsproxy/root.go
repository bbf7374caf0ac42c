package main

import (
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/reactor/docsproxy/client"
	"github.com/reactor/docsproxy/internal/config"
	"github.com/reactor/docsproxy/internal/core"
	"github.com/reactor/docsproxy/internal/metrics"

	_ "github.com/reactor/docsproxy/all"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"
	// Commit is the git commit hash (set via -ldflags).
	Commit = "unknown"
)

// rootOptions holds the persistent flags.
type rootOptions struct {
	configFile  string
	modulesFile string
}

func newRootCmd() *cobra.Command {
	opts := &rootOptions{}

	cmd := &cobra.Command{
		Use:   "docsproxy",
		Short: "Serve Reactor documentation from the artifact repositories",
		Long: `docsproxy resolves documentation requests such as
/docs/core/release/api/index.html to the matching javadoc, kdoc or
reference guide archive entry and streams it from the upstream
repositories.

Module versions are loaded from a modules file, refreshed from remote
feeds and extended through the admission webhook.`,
		Version:       getVersionString(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (yaml, json or toml)")
	cmd.PersistentFlags().StringVar(&opts.modulesFile, "modules", "", "modules file (default is the built-in modules)")

	cmd.AddCommand(newServeCmd(opts))
	cmd.AddCommand(newResolveCmd(opts))
	cmd.AddCommand(newVersionsCmd(opts))
	return cmd
}

func getVersionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return fmt.Sprintf("%s (commit: %s)", Version, Commit)
}

// app is the state shared by every command.
type app struct {
	cfg      *config.Config
	logger   *log.Logger
	registry *core.Registry
	urls     *client.DocURLs
}

// loadApp reads the configuration and the modules, logging to stderr.
func loadApp(opts *rootOptions, stderr io.Writer) (*app, error) {
	cfg, err := config.Load(opts.configFile)
	if err != nil {
		return nil, err
	}

	level, err := log.ParseLevel(cfg.Log.Level)
	if err != nil {
		return nil, fmt.Errorf("log.level: %w", err)
	}
	logger := log.NewWithOptions(stderr, log.Options{
		Prefix:          "docsproxy",
		ReportTimestamp: true,
		Level:           level,
	})

	modulesFile := opts.modulesFile
	if modulesFile == "" {
		modulesFile = cfg.ModulesFile
	}
	entries, err := config.LoadModules(modulesFile)
	if err != nil {
		return nil, err
	}
	reg, err := core.Load(entries, core.WithLogger(logger))
	if err != nil {
		return nil, err
	}
	for _, m := range reg.Modules() {
		metrics.SetModuleVersions(m.Name, len(m.Versions()))
	}

	return &app{
		cfg:      cfg,
		logger:   logger,
		registry: reg,
		urls:     client.NewDocURLs(cfg.ClientHosts()),
	}, nil
}

// feedClient returns the HTTP client used by version feeds.
func (a *app) feedClient() *core.Client {
	return core.NewClient(core.WithMaxRetries(a.cfg.Fetch.MaxRetries)).WithUserAgent(a.cfg.Fetch.UserAgent)
}
