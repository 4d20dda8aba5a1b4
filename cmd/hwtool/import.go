package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"hardware-management-api/internal/config"
	"hardware-management-api/internal/handlers"
	"hardware-management-api/internal/store"
	"hardware-management-api/pkg/importer"

	"github.com/spf13/cobra"
)

func newImportCmd() *cobra.Command {
	var opts importer.ImportOptions
	cmd := &cobra.Command{
		Use:   "import <workbook.xlsx>",
		Short: "Import assets from an Excel workbook",
		Long: `Upserts assets by serial number from every sheet of the workbook.
A dry run without a database checks the workbook against an empty catalogue.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Load()

			var st store.Store = store.NewMemory()
			if dsnFlag(cmd, cfg) != "" || !opts.DryRun {
				pg, err := openPostgres(cmd.Context(), cmd, cfg)
				if err != nil {
					return err
				}
				defer pg.Close()
				st = pg
			}

			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("open workbook: %w", err)
			}
			defer f.Close()

			summary, err := importer.ImportExcel(cmd.Context(), handlers.StoreSink{Store: st}, f, opts)
			if err != nil {
				return fmt.Errorf("import failed: %w", err)
			}
			printSummary(cmd.OutOrStdout(), args[0], summary)
			return nil
		},
	}
	cmd.Flags().BoolVar(&opts.DryRun, "dry-run", false, "validate rows without writing")
	cmd.Flags().StringVar(&opts.MappingPath, "mapping", "", "YAML column mapping (default: embedded)")
	cmd.Flags().IntVar(&opts.MaxErrors, "max-errors", 50, "stop after this many row errors")
	return cmd
}

func printSummary(out io.Writer, path string, s importer.ImportSummary) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintf(out, "Imported %s (dry_run=%v)\n%s\n", path, s.DryRun, rule)
	fmt.Fprintf(out, "Inserted: %d\nUpdated:  %d\nSkipped:  %d\nErrors:   %d\n", s.Inserted, s.Updated, s.Skipped, s.Errors)

	for _, sheet := range s.Sheets {
		fmt.Fprintf(out, "\n%s: inserted=%d updated=%d skipped=%d errors=%d\n",
			sheet.Name, sheet.Inserted, sheet.Updated, sheet.Skipped, sheet.Errors)
		for _, sample := range sheet.Samples {
			fmt.Fprintf(out, "  row %d: %s\n", sample.Row, sample.Message)
		}
	}
}
