package cmd

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/davecgh/go-spew/spew"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"csvcaster/options"
	"csvcaster/record"
	"csvcaster/writer"
)

type writeFlags struct {
	out       string
	delimiter string
	culture   string
	flags     []string
	noHeader  bool
	quoteAll  bool
	separator bool
}

var writeOpts writeFlags

var writeCmd = &cobra.Command{
	Use:   "write [file|-]",
	Short: "Write a YAML or JSON record list as CSV",
	Long: `Write reads a sequence of records from a YAML or JSON file, or from
standard input when the file is "-" or missing, and writes them as CSV.
Member order of the first record decides the column order.

Example:
  csvcaster write orders.yaml --delimiter ';' --culture de-DE -o orders.csv`,
	Args: cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		logger, err := newLogger(cmd.ErrOrStderr(), logLevel)
		if err != nil {
			return err
		}

		cfg, err := loadConfig(configPath)
		if err != nil {
			return err
		}

		if err := writeOpts.apply(cmd, cfg); err != nil {
			return err
		}

		in := cmd.InOrStdin()
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return fmt.Errorf("failed to open input: %w", err)
			}
			defer f.Close()

			in = f
		}

		out := cmd.OutOrStdout()
		if writeOpts.out != "" && writeOpts.out != "-" {
			f, err := os.Create(writeOpts.out)
			if err != nil {
				return fmt.Errorf("failed to create output: %w", err)
			}
			defer f.Close()

			out = f
		}

		err = runWrite(in, out, cfg, logger)

		var werr *writer.WriteError
		if debug && errors.As(err, &werr) {
			spew.Fdump(cmd.ErrOrStderr(), werr.Fields)
		}

		return err
	},
}

func init() {
	rootCmd.AddCommand(writeCmd)

	f := writeCmd.Flags()
	f.StringVarP(&writeOpts.out, "out", "o", "", "output file, standard output when empty")
	f.StringVarP(&writeOpts.delimiter, "delimiter", "d", "", "field delimiter")
	f.StringVar(&writeOpts.culture, "culture", "", "BCP 47 culture for number formatting, e.g. de-DE")
	f.StringSliceVar(&writeOpts.flags, "flags", nil, "replace the configured flags, e.g. header,trim")
	f.BoolVar(&writeOpts.noHeader, "no-header", false, "do not write a header row")
	f.BoolVar(&writeOpts.quoteAll, "quote-all", false, "quote every field")
	f.BoolVar(&writeOpts.separator, "excel-separator", false, "write a sep= row first")
}

// apply overrides cfg with the flags set on the command line.
func (o *writeFlags) apply(cmd *cobra.Command, cfg *options.Config) error {
	flags := cmd.Flags()

	if flags.Changed("delimiter") {
		cfg.Delimiter = o.delimiter
	}

	if flags.Changed("culture") {
		cfg.Culture = o.culture
	}

	if flags.Changed("flags") {
		parsed, err := options.ParseFlags(o.flags...)
		if err != nil {
			return err
		}

		cfg.Flags = parsed
	}

	if o.noHeader {
		cfg.Disable(options.FlagHeader)
	}

	if o.quoteAll {
		cfg.Enable(options.FlagQuoteAll).Disable(options.FlagQuoteNone)
	}

	if o.separator {
		cfg.Enable(options.FlagExcelSeparator)
	}

	return cfg.Validate()
}

// readRecords decodes a YAML (or JSON) sequence of mappings.
func readRecords(in io.Reader) ([]*record.Bag, error) {
	var records []*record.Bag

	if err := yaml.NewDecoder(in).Decode(&records); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to decode records: %w", err)
	}

	return records, nil
}

func runWrite(in io.Reader, out io.Writer, cfg *options.Config, logger *slog.Logger) error {
	records, err := readRecords(in)
	if err != nil {
		return err
	}

	w, err := writer.NewText(out, cfg, writer.WithLogger(logger))
	if err != nil {
		return err
	}

	if err := w.WriteRecords(records); err != nil {
		return err
	}

	logger.Info("records written", slog.Int("records", len(records)), slog.Int("rows", w.Row()-1))

	return w.Close()
}
