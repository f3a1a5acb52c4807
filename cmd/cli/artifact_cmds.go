package main

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"gocleanse/adapters/stats/lookup"
	"gocleanse/adapters/stats/sampling"
	domaincleaning "gocleanse/domain/cleaning"
)

func newOutliersCmd(state *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "outliers",
		Short: "Detect outliers and remediate them from the persisted registry",
		Long: `Outliers are numeric cells whose population z-score exceeds 3.

"detect" writes the registry to the artifact store (OUTLIER_REGISTRY_NAME);
"handle" reads it back and replaces or removes the flagged cells. Row indices in
the registry refer to the table as it was detected, so handle must be run
against the same rows.`,
	}
	cmd.AddCommand(newOutliersDetectCmd(state), newOutliersHandleCmd(state))
	return cmd
}

func newOutliersDetectCmd(state *cliState) *cobra.Command {
	var flags tableFlags

	cmd := &cobra.Command{
		Use:   "detect [input]",
		Short: "Flag outliers and persist the registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := flags.load(cmd, state, args[0])
			if err != nil {
				return err
			}
			registry, err := state.service.DetectOutliers(cmd.Context(), table)
			if err != nil {
				return err
			}
			rows, err := registry.Rows()
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "ROW\tCOLUMN\tVALUE")
			for _, row := range rows {
				for _, flag := range registry.Flags(row) {
					fmt.Fprintf(tw, "%d\t%s\t%s\n", row, flag.Column, strconv.FormatFloat(flag.Value, 'f', -1, 64))
				}
			}
			if err := tw.Flush(); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "%d outliers saved to %s\n", registry.Len(), state.service.Names().Registry)
			return nil
		},
	}

	flags.bind(cmd, false)
	return cmd
}

func newOutliersHandleCmd(state *cliState) *cobra.Command {
	var flags tableFlags
	var method string

	cmd := &cobra.Command{
		Use:   "handle [input]",
		Short: "Replace or remove the outliers recorded in the registry",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := domaincleaning.ParseOutlierMethod(method)
			if err != nil {
				return err
			}
			table, err := flags.load(cmd, state, args[0])
			if err != nil {
				return err
			}
			actions, err := state.service.HandleOutliers(cmd.Context(), table, m)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "applied %d outlier actions (%s)\n", len(actions), m)
			return flags.emit(cmd, state, table)
		},
	}

	flags.bind(cmd, true)
	cmd.Flags().StringVar(&method, "method", "median", "Remediation: median|mean|mode|remove")
	return cmd
}

func newEncodeCmd(state *cliState) *cobra.Command {
	var flags tableFlags
	var reuse bool

	cmd := &cobra.Command{
		Use:   "encode [input]",
		Short: "Label encode text columns and one-hot encode boolean columns",
		Long: `Encode categorical columns and persist the mapping (CATEGORICAL_MAPPING_NAME).

With --reuse the persisted mapping supplies the codes of the columns it already
covers, so a second table is encoded consistently with the first.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := flags.load(cmd, state, args[0])
			if err != nil {
				return err
			}
			mapping, err := state.service.Encode(cmd.Context(), table, reuse)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "mapping for %d columns saved to %s\n", len(mapping), state.service.Names().Mapping)
			return flags.emit(cmd, state, table)
		},
	}

	flags.bind(cmd, true)
	cmd.Flags().BoolVar(&reuse, "reuse", false, "Reuse the persisted mapping")
	return cmd
}

func newDecodeCmd(state *cliState) *cobra.Command {
	var flags tableFlags

	cmd := &cobra.Command{
		Use:   "decode [input]",
		Short: "Restore encoded columns from the persisted mapping",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := flags.load(cmd, state, args[0])
			if err != nil {
				return err
			}
			if err := state.service.Decode(cmd.Context(), table); err != nil {
				return err
			}
			return flags.emit(cmd, state, table)
		},
	}

	flags.bind(cmd, true)
	return cmd
}

func newCorrelationCmd(state *cliState) *cobra.Command {
	var flags tableFlags

	cmd := &cobra.Command{
		Use:   "correlation [input]",
		Short: "Print the Pearson correlation matrix of the numeric columns",
		Long: `Print the Pearson correlation matrix. When CORRELATION_EXPORT_PATH is set the
matrix is also written there as CSV.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := flags.load(cmd, state, args[0])
			if err != nil {
				return err
			}
			m, err := state.service.Correlation(table)
			if err != nil {
				return err
			}
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "\t"+strings.Join(m.Columns, "\t"))
			for i, name := range m.Columns {
				cells := make([]string, len(m.Values[i]))
				for j, r := range m.Values[i] {
					if math.IsNaN(r) {
						cells[j] = "-"
						continue
					}
					cells[j] = strconv.FormatFloat(r, 'f', 4, 64)
				}
				fmt.Fprintln(tw, name+"\t"+strings.Join(cells, "\t"))
			}
			return tw.Flush()
		},
	}

	flags.bind(cmd, false)
	return cmd
}

func newSampleSizeCmd(state *cliState) *cobra.Command {
	var flags tableFlags
	var population float64
	var confidence, margin float64

	cmd := &cobra.Command{
		Use:   "sample-size [input]",
		Short: "Compute the required sample size, optionally checking a table against it",
		Long: `Compute the finite-population sample size for a confidence level and margin
of error, using p = 0.5. When an input table is given, report whether its row
count exceeds the required size.

Example: gocleanse sample-size --population 1000 --confidence 0.95 --margin 0.05`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if len(args) == 0 {
				result, err := state.service.SampleSize(sampling.Request{
					Population: population, Confidence: confidence, MarginError: margin,
				})
				if err != nil {
					return err
				}
				fmt.Fprintf(out, "required sample size: %d (z=%.4f at %s)\n", result.Required, result.CriticalValue, result.AdjustedKey)
				return nil
			}

			table, err := flags.load(cmd, state, args[0])
			if err != nil {
				return err
			}
			adequate, required, err := state.service.IsAdequate(table, population, confidence, margin)
			if err != nil {
				return err
			}
			fmt.Fprintf(out, "required sample size: %d, rows: %d, adequate: %t\n", required, table.RowCount(), adequate)
			return nil
		},
	}

	flags.bind(cmd, false)
	cmd.Flags().Float64Var(&population, "population", 0, "Population size or proportion, must be positive")
	cmd.Flags().Float64Var(&confidence, "confidence", 0.95, "Confidence level in (0, 1)")
	cmd.Flags().Float64Var(&margin, "margin", 0.05, "Margin of error in (0, 1)")
	_ = cmd.MarkFlagRequired("population")
	return cmd
}

func newLookupCmd(state *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "lookup",
		Short: "Manage the critical value table",
	}
	cmd.AddCommand(newLookupGenerateCmd(state))
	return cmd
}

func newLookupGenerateCmd(state *cliState) *cobra.Command {
	var output string
	var levels []float64

	cmd := &cobra.Command{
		Use:   "generate",
		Short: "Generate a critical value table from the standard normal quantile",
		Long: `Generate the two-tailed critical value table. Keys are the adjusted levels
1-(1-c)/2 and values the standard normal quantile rounded to 4 decimals.
Point LOOKUP_TABLE_PATH at the written file to use it instead of the built-in table.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(levels) == 0 {
				levels = lookup.DefaultConfidenceLevels()
			}
			table, err := lookup.Generate(levels)
			if err != nil {
				return err
			}
			if output == "" {
				return printJSON(cmd.OutOrStdout(), table)
			}
			if err := table.WriteFile(output); err != nil {
				return err
			}
			state.logger.Info("lookup table written", "path", output, "entries", table.Len())
			fmt.Fprintf(cmd.OutOrStdout(), "wrote %d critical values to %s\n", table.Len(), output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "File to write; prints to stdout when empty")
	cmd.Flags().Float64SliceVar(&levels, "levels", nil, "Confidence levels (default 0.50..0.99, 0.995, 0.999)")
	return cmd
}
