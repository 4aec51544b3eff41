// cmd_builders.go - Command-Builder Funktionen
// Hauptfunktionen: newDescribeCmd, newEquivCmd, newOpsCmd
package cmd

import (
	"github.com/spf13/cobra"
)

// newDescribeCmd - Erstellt den describe Command
func newDescribeCmd() *cobra.Command {
	describeCmd := &cobra.Command{
		Use:   "describe [TERM...]",
		Short: "Add terms to a graph and print the metadata of every class",
		Example: `  tensat describe '(conv2d 1 1 0 2 (input x@1_4_32_32) (weight w@3_3_4_8))'
  tensat describe -f model.sexp --format yaml`,
		RunE: DescribeHandler,
	}

	describeCmd.Flags().StringSliceP("file", "f", nil, "Read terms from file (repeatable)")
	describeCmd.Flags().String("format", "table", "Output format: table, json or yaml")

	return describeCmd
}

// newEquivCmd - Erstellt den equiv Command
func newEquivCmd() *cobra.Command {
	equivCmd := &cobra.Command{
		Use:   "equiv TERM TERM",
		Short: "Merge the classes of two terms and report whether their metadata agree",
		Args:  cobra.ExactArgs(2),
		RunE:  EquivHandler,
	}

	equivCmd.Flags().String("format", "table", "Output format: table, json or yaml")

	return equivCmd
}

// newOpsCmd - Erstellt den ops Command
func newOpsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ops",
		Short: "List the operators of the term language",
		Args:  cobra.NoArgs,
		RunE:  OpsHandler,
	}
}
