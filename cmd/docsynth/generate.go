// cmd/docsynth/generate.go
package main

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/julianshen/docsynth/internal/generator"
	"github.com/julianshen/docsynth/internal/wiki"
)

func generateCmd() *cobra.Command {
	var (
		outputFlag      string
		modeFlag        string
		dbFlag          string
		concurrencyFlag int
	)

	cmd := &cobra.Command{
		Use:   "generate [path]",
		Short: "Generate documentation for a source tree",
		Long: `Scan a repository, classify its files into features and write one
documentation page per feature (or per file with --mode file), plus an
overview page and sidebar navigation.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			cfg, err := loadConfig()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("mode") {
				cfg.Generation.Mode = modeFlag
			}
			mode, err := generator.ParseMode(cfg.Generation.Mode)
			if err != nil {
				return err
			}

			out := outputFlag
			if out == "" {
				out = cfg.Output.Dir
			}
			if !filepath.IsAbs(out) && !cmd.Flags().Changed("output") {
				out = filepath.Join(dir, out)
			}
			db := dbFlag
			if db == "" {
				db = cfg.Output.DB
			}

			js, cache, closeStores, err := stores(db)
			if err != nil {
				return err
			}
			defer closeStores()

			runner, err := newRunner(cfg, js, cache, concurrencyFlag)
			if err != nil {
				return err
			}

			id, err := runner.Run(cmd.Context(), wiki.Config{
				Dir:       dir,
				OutputDir: out,
				Mode:      mode,
				Scan:      scanOptions(cfg),
			})
			if err != nil {
				return fmt.Errorf("job %s: %w", id, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Documentation written to %s (job %s)\n", out, id)
			return nil
		},
	}

	cmd.Flags().StringVar(&outputFlag, "output", "", "output directory (default: <path>/<output.dir>)")
	cmd.Flags().StringVar(&modeFlag, "mode", "group", "generation mode: group, file")
	cmd.Flags().StringVar(&dbFlag, "db", "", "sqlite file for the durable cache and job snapshots")
	cmd.Flags().IntVar(&concurrencyFlag, "concurrency", 5, "max parallel file parses")

	return cmd
}
