// cmd/docsynth/main.go
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/julianshen/docsynth/internal/config"
	"github.com/julianshen/docsynth/internal/generator"
	"github.com/julianshen/docsynth/internal/integrations"
	"github.com/julianshen/docsynth/internal/jobs"
	"github.com/julianshen/docsynth/internal/provider"
	"github.com/julianshen/docsynth/internal/store"
	"github.com/julianshen/docsynth/internal/wiki"

	// Register providers via init() side effects.
	_ "github.com/julianshen/docsynth/internal/provider/anthropic"
	_ "github.com/julianshen/docsynth/internal/provider/openai"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"

	configPath   string
	modelFlag    string
	providerFlag string
)

func versionString() string {
	return fmt.Sprintf("docsynth %s (commit: %s, built: %s)", version, commit, date)
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "docsynth",
		Short: "Generate feature documentation for a source tree",
		Long: `docsynth parses a repository, groups its files into features and asks an
LLM to write a documentation page per feature, producing a docs tree with
front matter and sidebar navigation.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "path to config file")
	root.PersistentFlags().StringVar(&modelFlag, "model", "", "override model name")
	root.PersistentFlags().StringVar(&providerFlag, "provider", "", "override provider name")

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print the version",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintln(cmd.OutOrStdout(), versionString())
		},
	}

	root.AddCommand(versionCmd)
	root.AddCommand(generateCmd())
	root.AddCommand(serveCmd())
	root.AddCommand(statusCmd())
	return root
}

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func loadConfig() (*config.Config, error) {
	cfgPath := configPath
	if cfgPath == "" {
		cfgPath = config.DefaultPath()
	}

	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	if modelFlag != "" {
		cfg.Provider.Model = modelFlag
	}
	if providerFlag != "" {
		cfg.Provider.Default = providerFlag
	}

	return cfg, nil
}

// generationConfig maps the [generation] table onto the orchestrator settings.
func generationConfig(cfg *config.Config) generator.Config {
	g := generator.DefaultConfig()
	g.MaxAttempts = cfg.Generation.MaxAttempts
	g.BaseDelay = cfg.Generation.BaseDelay.Duration
	g.MaxDelay = cfg.Generation.MaxDelay.Duration
	g.TruncateBudget = cfg.Generation.TruncateBudget
	g.FallbackBudget = cfg.Generation.FallbackBudget
	g.MinGroupLength = cfg.Generation.MinGroupLength
	g.MinFileLength = cfg.Generation.MinFileLength
	return g
}

func scanOptions(cfg *config.Config) wiki.ScanOptions {
	opts := wiki.DefaultScanOptions()
	if len(cfg.Scan.SkipDirs) > 0 {
		opts.SkipDirs = cfg.Scan.SkipDirs
	}
	if cfg.Scan.MaxFileBytes > 0 {
		opts.MaxFileBytes = cfg.Scan.MaxFileBytes
	}
	return opts
}

// stores returns the job store and document cache for a run. With a
// database path both are persisted; otherwise jobs live in memory and the
// orchestrator keeps its own memory cache.
func stores(dbPath string) (jobs.Store, generator.Cache, func() error, error) {
	if dbPath == "" {
		return jobs.NewTracker(), nil, func() error { return nil }, nil
	}
	st, err := store.NewStore(dbPath)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("opening %s: %w", dbPath, err)
	}
	return st, st.Cache(), st.Close, nil
}

// newRunner wires the provider, gate and stores into a wiki.Runner.
func newRunner(cfg *config.Config, js jobs.Store, cache generator.Cache, concurrency int) (*wiki.Runner, error) {
	p, err := provider.NewProvider(cfg)
	if err != nil {
		return nil, fmt.Errorf("creating provider: %w", err)
	}
	llm := integrations.NewLLMCompleter(p, cfg.Provider.Model,
		integrations.WithMaxTokens(cfg.Provider.MaxTokens),
		integrations.WithRequestTimeout(cfg.Generation.RequestTimeout.Duration),
	)

	gate := generator.SharedGate()
	gate.SetCooldown(cfg.Generation.Cooldown.Duration)

	return wiki.NewRunner(llm, js, wiki.RunnerOptions{
		Generation:  generationConfig(cfg),
		Cache:       cache,
		Gate:        gate,
		Concurrency: concurrency,
	}), nil
}
