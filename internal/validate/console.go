package validate

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"
)

// OutputFormat selects how a report is written.
type OutputFormat string

const (
	OutputTable OutputFormat = "table"
	OutputJSON  OutputFormat = "json"
)

// ParseOutputFormat validates a format flag value. Empty selects the table.
func ParseOutputFormat(text string) (OutputFormat, error) {
	switch OutputFormat(text) {
	case "", OutputTable:
		return OutputTable, nil
	case OutputJSON:
		return OutputJSON, nil
	}
	return "", fmt.Errorf("unknown output format %q (expected table or json)", text)
}

// WriteReport renders the report in the requested format.
func WriteReport(w io.Writer, r *Report, format OutputFormat) error {
	switch format {
	case "", OutputTable:
		return writeTable(w, r)
	case OutputJSON:
		raw, err := json.MarshalIndent(r, "", "  ")
		if err != nil {
			return err
		}
		_, err = w.Write(append(raw, '\n'))
		return err
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}

// writeTable lists every warning and failure; passing checks are counted in
// the summary line only.
func writeTable(w io.Writer, r *Report) error {
	var b bytes.Buffer

	fmt.Fprintf(&b, "Manifests: %d  Checks: %d  Verdict: %s\n",
		r.Summary.Candidates, r.Summary.Checks, strings.ToUpper(string(r.Verdict)))

	var defects []Entry
	for _, e := range r.Entries {
		if e.Status != StatusPass {
			defects = append(defects, e)
		}
	}

	if len(defects) > 0 {
		fmt.Fprintln(&b)
		tw := tabwriter.NewWriter(&b, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "STATUS\tKIND\tTARGET\tDETAIL")
		for _, e := range defects {
			target := e.Target
			if e.File != "" {
				target += " (" + e.File + ")"
			}
			fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
				strings.ToUpper(string(e.Status)), e.Kind, target, e.Message)
		}
		tw.Flush()
	}

	fmt.Fprintf(&b, "\n%d passed, %d warnings, %d failures\n",
		r.Summary.Passed, r.Summary.Warnings, r.Summary.Failures)

	_, err := w.Write(b.Bytes())
	return err
}
