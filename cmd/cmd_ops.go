// cmd_ops.go - ops Command
// Hauptfunktionen: OpsHandler
package cmd

import (
	"strconv"

	"github.com/olekukonko/tablewriter"
	"github.com/spf13/cobra"

	"github.com/jakobhartmann/tensat/analysis"
	"github.com/jakobhartmann/tensat/model"
)

// OpsHandler - Listet alle Operatoren mit Signatur
func OpsHandler(cmd *cobra.Command, _ []string) error {
	var data [][]string
	for _, op := range model.Ops() {
		if op.IsLeaf() {
			continue
		}

		sig := op.Signature()
		data = append(data, []string{
			op.String(),
			strconv.Itoa(op.Arity()),
			sig.String(),
			strconv.FormatBool(analysis.Implemented(op)),
		})
	}

	table := tablewriter.NewWriter(cmd.OutOrStdout())
	table.SetHeader([]string{"OP", "ARITY", "SIGNATURE", "IMPLEMENTED"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()

	return nil
}
