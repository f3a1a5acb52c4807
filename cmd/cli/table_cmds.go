package main

import (
	"fmt"
	"math/rand"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"gocleanse/app"
	domaincleaning "gocleanse/domain/cleaning"
)

func newProfileCmd(state *cliState) *cobra.Command {
	var flags tableFlags
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "profile [input]",
		Short: "Report column kinds, missing values and duplicates",
		Long: `Profile a table: inferred column kinds, storage types, summary statistics,
missing value counts and duplicate rows.

Example: gocleanse profile sales.csv --json`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := flags.load(cmd, state, args[0])
			if err != nil {
				return err
			}
			result, err := state.service.Profile(table)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if asJSON {
				return printJSON(out, result)
			}

			fmt.Fprintf(out, "rows: %d  columns: %d  missing cells: %d  duplicate rows: %d\n\n",
				result.RowCount, result.ColumnCount, result.TotalMissing, result.DuplicateCount)
			tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "COLUMN\tSTORAGE\tKIND\tMISSING\tMISSING %")
			for _, p := range result.Profiles {
				fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%.1f\n", p.Column, p.StorageType, p.Kind,
					p.MissingStats.MissingCount, p.MissingStats.MissingRate*100)
			}
			return tw.Flush()
		},
	}

	flags.bind(cmd, false)
	cmd.Flags().BoolVar(&asJSON, "json", false, "Print the full profile as JSON")
	return cmd
}

func newHeadCmd(state *cliState) *cobra.Command {
	var flags tableFlags
	var n int

	cmd := &cobra.Command{
		Use:   "head [input]",
		Short: "Print the first rows of a table",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := flags.load(cmd, state, args[0])
			if err != nil {
				return err
			}
			return printTable(cmd.OutOrStdout(), table.Head(n), n)
		},
	}

	flags.bind(cmd, false)
	cmd.Flags().IntVarP(&n, "rows", "n", 5, "Number of rows")
	return cmd
}

func newSampleCmd(state *cliState) *cobra.Command {
	var flags tableFlags
	var n int
	var seed int64

	cmd := &cobra.Command{
		Use:   "sample [input]",
		Short: "Draw random rows without replacement",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := flags.load(cmd, state, args[0])
			if err != nil {
				return err
			}
			if seed == 0 {
				seed = time.Now().UnixNano()
			}
			return flags.emit(cmd, state, table.Sample(rand.New(rand.NewSource(seed)), n))
		},
	}

	flags.bind(cmd, true)
	cmd.Flags().IntVarP(&n, "rows", "n", 5, "Number of rows")
	cmd.Flags().Int64Var(&seed, "seed", 0, "Random seed; 0 picks one from the clock")
	return cmd
}

func newNormalizeCmd(state *cliState) *cobra.Command {
	var flags tableFlags

	cmd := &cobra.Command{
		Use:   "normalize [input]",
		Short: "Convert datetime, formatted numeric and text columns to canonical form",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := flags.load(cmd, state, args[0])
			if err != nil {
				return err
			}
			changes, normErr := state.service.Normalize(table)
			for _, c := range changes {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %s (%s)\n", c.Column, c.Action, c.Kind)
			}
			if err := flags.emit(cmd, state, table); err != nil {
				return err
			}
			return normErr
		},
	}

	flags.bind(cmd, true)
	return cmd
}

func newMissingCmd(state *cliState) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "missing",
		Short: "Report, fill or drop missing values",
	}
	cmd.AddCommand(newMissingReportCmd(state), newMissingFillCmd(state), newMissingDropCmd(state))
	return cmd
}

func newMissingReportCmd(state *cliState) *cobra.Command {
	var flags tableFlags

	cmd := &cobra.Command{
		Use:   "report [input]",
		Short: "Count missing cells per column",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := flags.load(cmd, state, args[0])
			if err != nil {
				return err
			}
			report := state.service.MissingCounts(table)
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			for _, e := range report {
				fmt.Fprintf(tw, "%s\t%d\n", e.Column, e.Count)
			}
			fmt.Fprintf(tw, "total\t%d\n", report.Total())
			return tw.Flush()
		},
	}

	flags.bind(cmd, false)
	return cmd
}

func newMissingFillCmd(state *cliState) *cobra.Command {
	var flags tableFlags
	var column, method, constant string

	cmd := &cobra.Command{
		Use:   "fill [input]",
		Short: "Impute the missing cells of one column",
		Long: `Impute missing cells with the column mean, median, zero or a constant.

Example: gocleanse missing fill sales.csv --column price --method median -o clean.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			m, err := domaincleaning.ParseFillMethod(method)
			if err != nil {
				return err
			}
			table, err := flags.load(cmd, state, args[0])
			if err != nil {
				return err
			}
			filled, err := state.service.Fill(table, column, domaincleaning.FillStrategy{Method: m, Constant: constant})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "filled %d cells in %s\n", filled, column)
			return flags.emit(cmd, state, table)
		},
	}

	flags.bind(cmd, true)
	cmd.Flags().StringVar(&column, "column", "", "Column to fill")
	cmd.Flags().StringVar(&method, "method", "mean", "Fill method: mean|median|zero|constant")
	cmd.Flags().StringVar(&constant, "constant", "", "Value written by the constant method (default NA)")
	_ = cmd.MarkFlagRequired("column")
	return cmd
}

func newMissingDropCmd(state *cliState) *cobra.Command {
	var flags tableFlags
	var column string

	cmd := &cobra.Command{
		Use:   "drop [input]",
		Short: "Drop rows holding missing cells",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := flags.load(cmd, state, args[0])
			if err != nil {
				return err
			}
			removed, err := state.service.DropMissing(table, column)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "dropped %d rows\n", removed)
			return flags.emit(cmd, state, table)
		},
	}

	flags.bind(cmd, true)
	cmd.Flags().StringVar(&column, "column", domaincleaning.AllColumns, `Column to check, "*" for any column`)
	return cmd
}

func newDedupeCmd(state *cliState) *cobra.Command {
	var flags tableFlags

	cmd := &cobra.Command{
		Use:   "dedupe [input]",
		Short: "Remove repeated rows, keeping the first occurrence",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			table, err := flags.load(cmd, state, args[0])
			if err != nil {
				return err
			}
			removed := state.service.RemoveDuplicates(table)
			fmt.Fprintf(cmd.ErrOrStderr(), "removed %d duplicate rows\n", removed)
			return flags.emit(cmd, state, table)
		},
	}

	flags.bind(cmd, true)
	return cmd
}

func newExportCmd(state *cliState) *cobra.Command {
	var flags tableFlags

	cmd := &cobra.Command{
		Use:   "export [input]",
		Short: "Convert a table to csv, json or xlsx",
		Long: `Load a table and write it back in the format implied by --output.

Example: gocleanse export "postgres://localhost/shop" --query "SELECT * FROM orders" -o orders.xlsx`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if flags.output == "" {
				return fmt.Errorf("--output is required")
			}
			table, err := flags.load(cmd, state, args[0])
			if err != nil {
				return err
			}
			return flags.emit(cmd, state, table)
		},
	}

	flags.bind(cmd, true)
	return cmd
}

func newCleanCmd(state *cliState) *cobra.Command {
	var flags tableFlags
	var steps []string

	cmd := &cobra.Command{
		Use:   "clean [input]",
		Short: "Run several cleaning steps in order",
		Long: `Run a cleaning pipeline. Steps run in the order given:

  normalize
  fill:<column>:<method>[:<constant>]
  dropna[:<column>]
  dedupe
  outliers:detect
  outliers:handle:<median|mean|mode|remove>
  encode[:reuse]
  decode
  correlation

Example: gocleanse clean raw.csv --step normalize --step dedupe --step fill:age:median -o clean.csv`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			parsed, err := app.ParseSteps(steps)
			if err != nil {
				return err
			}
			table, err := flags.load(cmd, state, args[0])
			if err != nil {
				return err
			}
			report, runErr := app.NewPipeline(state.service, parsed).Run(cmd.Context(), table)
			for _, s := range report.Steps {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %d\n", s.Step, s.Affected)
			}
			if runErr != nil {
				return runErr
			}
			return flags.emit(cmd, state, table)
		},
	}

	flags.bind(cmd, true)
	cmd.Flags().StringSliceVar(&steps, "step", nil, "Cleaning step; repeat or comma separate")
	_ = cmd.MarkFlagRequired("step")
	return cmd
}
