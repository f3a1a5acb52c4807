package main

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gocleanse/adapters/tableio"
	"gocleanse/domain/dataset"
)

// previewRows is how many rows are printed when no output file is given
const previewRows = 20

// tableFlags are shared by every command that reads a table and may write one back
type tableFlags struct {
	format string
	query  string
	output string
}

func (f *tableFlags) bind(cmd *cobra.Command, withOutput bool) {
	cmd.Flags().StringVar(&f.format, "format", "", "Input format (csv|json|xlsx|sql); detected from the path when empty")
	cmd.Flags().StringVar(&f.query, "query", "", "SQL query for sqlite files and postgres URLs")
	if withOutput {
		cmd.Flags().StringVarP(&f.output, "output", "o", "", "Write the resulting table to this file (csv|json|xlsx)")
	}
}

func (f *tableFlags) load(cmd *cobra.Command, state *cliState, path string) (*dataset.Table, error) {
	return state.service.Load(cmd.Context(), tableio.Source{
		Path:   path,
		Format: tableio.Format(f.format),
		Query:  f.query,
	})
}

// emit exports the table when an output path is set, otherwise prints a preview
func (f *tableFlags) emit(cmd *cobra.Command, state *cliState, t *dataset.Table) error {
	if f.output == "" {
		return printTable(cmd.OutOrStdout(), t, previewRows)
	}
	if err := state.service.Export(cmd.Context(), t, f.output); err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "wrote %d rows x %d columns to %s\n", t.RowCount(), t.ColumnCount(), f.output)
	return nil
}

func printTable(w io.Writer, t *dataset.Table, limit int) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	head := t.Head(limit)
	for i, name := range head.ColumnNames() {
		if i > 0 {
			fmt.Fprint(tw, "\t")
		}
		fmt.Fprint(tw, name)
	}
	fmt.Fprintln(tw)
	for r := 0; r < head.RowCount(); r++ {
		for i, v := range head.Row(r) {
			if i > 0 {
				fmt.Fprint(tw, "\t")
			}
			if v.IsMissing() {
				fmt.Fprint(tw, "<missing>")
				continue
			}
			fmt.Fprint(tw, v.String())
		}
		fmt.Fprintln(tw)
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	if t.RowCount() > head.RowCount() {
		fmt.Fprintf(w, "... %d more rows\n", t.RowCount()-head.RowCount())
	}
	return nil
}

func printJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
