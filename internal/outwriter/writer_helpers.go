package outwriter

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/huangsam/trendline/internal/contract"
	"github.com/huangsam/trendline/schema"
)

// writeWithFile handles the common pattern of opening a file, writing to it, and cleaning up.
// It accepts a writer function that takes an io.Writer and returns an error.
func writeWithFile(outputFile string, writer func(io.Writer) error, successMsg string) error {
	file, err := contract.SelectOutputFile(outputFile)
	if err != nil {
		return err
	}
	// Only close if it's not stdout
	if file != os.Stdout {
		defer func() { _ = file.Close() }()
	}

	if err := writer(file); err != nil {
		return err
	}

	if file != os.Stdout {
		fmt.Fprintf(os.Stderr, "💾 %s to %s\n", successMsg, outputFile)
	}
	return nil
}

// writeJSON is a generic JSON encoder that handles indentation consistently.
func writeJSON(w io.Writer, data any) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(data); err != nil {
		return fmt.Errorf("failed to encode JSON: %w", err)
	}
	return nil
}

// writeCSV writes a header and the rows through one CSV writer.
func writeCSV(w io.Writer, header []string, rows [][]string) error {
	csvWriter := csv.NewWriter(w)
	if err := csvWriter.Write(header); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}
	if err := csvWriter.WriteAll(rows); err != nil {
		return fmt.Errorf("failed to write CSV rows: %w", err)
	}
	return nil
}

// view is one result ready for any output format.
type view struct {
	name   string // used in messages
	data   any    // JSON document
	header []string
	rows   func() [][]string
	table  func(io.Writer) error
}

// render dispatches a view based on the output format configured.
func render(v view, cfg *contract.Config) error {
	var err error
	switch cfg.Output {
	case schema.JSONOut:
		err = writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeJSON(w, v.data)
		}, "Wrote JSON "+v.name)
	case schema.CSVOut:
		err = writeWithFile(cfg.OutputFile, func(w io.Writer) error {
			return writeCSV(w, v.header, v.rows())
		}, "Wrote CSV "+v.name)
	default:
		err = writeWithFile(cfg.OutputFile, v.table, "Wrote "+v.name+" table")
	}
	if err != nil {
		return fmt.Errorf("error writing %s output: %w", v.name, err)
	}
	return nil
}

// createFormatters creates the common formatter closure used across output types.
func createFormatters(precision int) func(float64) string {
	return func(v float64) string {
		return fmt.Sprintf("%.*f", precision, v)
	}
}

// formatTime renders t in the configured date time format, or empty when unset.
func formatTime(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(contract.DateTimeFormat)
}
