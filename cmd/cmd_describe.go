// cmd_describe.go - describe und equiv Commands
// Hauptfunktionen: DescribeHandler, EquivHandler, describe, equiv
package cmd

import (
	"io"

	"github.com/spf13/cobra"

	"github.com/jakobhartmann/tensat/analysis"
	"github.com/jakobhartmann/tensat/egraph"
	"github.com/jakobhartmann/tensat/model"
)

// DescribeHandler - Fuegt Terme ein und zeigt die Metadaten aller Klassen
func DescribeHandler(cmd *cobra.Command, args []string) error {
	files, err := cmd.Flags().GetStringSlice("file")
	if err != nil {
		return err
	}
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}

	exprs, err := readTerms(args, files)
	if err != nil {
		return err
	}

	return describe(cmd.OutOrStdout(), exprs, format)
}

func describe(w io.Writer, exprs []model.Expr, format string) error {
	a, eg, err := openGraph()
	if err != nil {
		return err
	}
	defer a.Close()

	var roots []egraph.ID
	if err := catch(func() {
		for _, e := range exprs {
			roots = append(roots, eg.AddExpr(e))
		}
		eg.Rebuild()
	}); err != nil {
		return err
	}

	return render(w, format, newReport(a, eg, roots))
}

// EquivHandler - Vereinigt die Klassen zweier Terme
func EquivHandler(cmd *cobra.Command, args []string) error {
	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return err
	}

	exprs := make([]model.Expr, len(args))
	for i, arg := range args {
		if exprs[i], err = model.Parse(arg); err != nil {
			return err
		}
	}

	return equiv(cmd.OutOrStdout(), exprs[0], exprs[1], format)
}

func equiv(w io.Writer, lhs, rhs model.Expr, format string) error {
	a, eg, err := openGraph()
	if err != nil {
		return err
	}
	defer a.Close()

	var roots []egraph.ID
	var interchangeable bool
	if err := catch(func() {
		l, r := eg.AddExpr(lhs), eg.AddExpr(rhs)
		roots = []egraph.ID{l, r}
		interchangeable = analysis.Interchangeable(eg.Data(l), eg.Data(r))
		eg.Union(l, r)
		eg.Rebuild()
	}); err != nil {
		return err
	}

	rep := newReport(a, eg, roots)
	rep.Interchangeable = &interchangeable
	return render(w, format, rep)
}
