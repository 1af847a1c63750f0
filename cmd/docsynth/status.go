// cmd/docsynth/status.go
package main

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/julianshen/docsynth/internal/output"
	"github.com/julianshen/docsynth/internal/store"
)

func statusCmd() *cobra.Command {
	var (
		dbFlag     string
		formatFlag string
	)

	cmd := &cobra.Command{
		Use:   "status [job-id]",
		Short: "Show the status of recorded jobs",
		Long: `Read job snapshots from the sqlite database written by generate or serve
with --db. With a job id the full log is shown; without one, every job is
listed.`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			db := dbFlag
			if db == "" {
				cfg, err := loadConfig()
				if err != nil {
					return err
				}
				db = cfg.Output.DB
			}
			if db == "" {
				return errors.New("no job database: pass --db or set output.db in the config file")
			}
			if _, err := os.Stat(db); err != nil {
				return fmt.Errorf("opening job database: %w", err)
			}

			f, err := output.NewFormatter(formatFlag)
			if err != nil {
				return err
			}

			st, err := store.NewStore(db)
			if err != nil {
				return err
			}
			defer st.Close()

			var data []byte
			if len(args) == 1 {
				j, err := st.Get(args[0])
				if err != nil {
					return err
				}
				data, err = f.Format(j)
				if err != nil {
					return err
				}
			} else {
				list, err := st.ListJobs()
				if err != nil {
					return err
				}
				data, err = f.FormatList(list)
				if err != nil {
					return err
				}
			}

			return writeStatus(cmd.OutOrStdout(), formatFlag, data)
		},
	}

	cmd.Flags().StringVar(&dbFlag, "db", "", "sqlite file written by generate or serve")
	cmd.Flags().StringVar(&formatFlag, "format", "markdown", "output format: json, markdown")

	return cmd
}

func writeStatus(w io.Writer, format string, data []byte) error {
	if format == "json" {
		_, err := w.Write(data)
		return err
	}
	return output.WriteMarkdown(w, data)
}
