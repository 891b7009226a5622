package commands

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/kasbuku/statement-recon/internal/extractor"
	"github.com/kasbuku/statement-recon/internal/statement"
	"github.com/kasbuku/statement-recon/internal/writer"
)

func newParseCommand(configPath *string) *cobra.Command {
	var output string
	var media string
	var noHeader bool

	cmd := &cobra.Command{
		Use:   "parse <statement-file>",
		Short: "Parse a statement document and write the transactions as CSV",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}

			sum, err := parseFile(args[0], media, cfg.Statement.Currency)
			if err != nil {
				return err
			}

			w := &writer.CSVWriter{IncludeHeader: !noHeader}
			if output == "" || output == "-" {
				return w.Write(cmd.OutOrStdout(), sum)
			}
			if err := w.WriteToFile(output, sum); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d transactions to %s\n", len(sum.Transactions), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output CSV path (default stdout)")
	cmd.Flags().StringVar(&media, "media", "", "document media type: pdf or spreadsheet (default from extension)")
	cmd.Flags().BoolVar(&noHeader, "no-header", false, "omit the statement metadata header rows")

	return cmd
}

func parseFile(path, media, currency string) (*statement.Summary, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading statement file: %w", err)
	}

	mt := extractor.MediaType(media)
	if mt == "" {
		switch strings.ToLower(filepath.Ext(path)) {
		case ".pdf":
			mt = extractor.MediaPDF
		case ".csv", ".tsv", ".txt", ".xls", ".xlsx":
			mt = extractor.MediaSpreadsheet
		default:
			mt = extractor.MediaType(strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), "."))
		}
	}

	return statement.Parse(statement.RawDocument{Data: data, MediaType: mt}, currency)
}
