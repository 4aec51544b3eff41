// cmd_display.go - Ausgabe von Klassen-Berichten
// Hauptfunktionen: newReport, render
package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/olekukonko/tablewriter"
	"gopkg.in/yaml.v3"

	"github.com/jakobhartmann/tensat/analysis"
	"github.com/jakobhartmann/tensat/egraph"
	"github.com/jakobhartmann/tensat/model"
)

type classReport struct {
	ID     uint32   `json:"id" yaml:"id"`
	Root   bool     `json:"root,omitempty" yaml:"root,omitempty"`
	Kind   string   `json:"kind" yaml:"kind"`
	Value  string   `json:"value" yaml:"value"`
	Shapes [][]int  `json:"shapes,omitempty" yaml:"shapes,omitempty,flow"`
	Op     string   `json:"op,omitempty" yaml:"op,omitempty"`
	Cost   float64  `json:"cost,omitempty" yaml:"cost,omitempty"`
	Nodes  []string `json:"nodes" yaml:"nodes,flow"`
}

type report struct {
	Classes         []classReport `json:"classes" yaml:"classes"`
	Nodes           int           `json:"nodes" yaml:"nodes"`
	BackendOps      int           `json:"backend_ops" yaml:"backend_ops"`
	TotalCost       float64       `json:"total_cost" yaml:"total_cost"`
	Interchangeable *bool         `json:"interchangeable,omitempty" yaml:"interchangeable,omitempty"`
}

func newReport(a *analysis.TensorAnalysis, eg *graph, roots []egraph.ID) report {
	isRoot := make(map[egraph.ID]bool, len(roots))
	for _, r := range roots {
		isRoot[eg.Find(r)] = true
	}

	rep := report{
		Nodes:      eg.NumNodes(),
		BackendOps: a.Session().NumOps(),
		TotalCost:  a.Session().TotalCost(),
	}

	for _, c := range eg.Classes() {
		cr := classReport{
			ID:   uint32(c.ID),
			Root: isRoot[c.ID],
			Kind: c.Data.Kind().String(),
		}

		var handles []analysis.Handle
		switch c.Data.Kind() {
		case model.KindTensor:
			handles = append(handles, c.Data.Tensor())
		case model.KindTensorPair:
			first, second := c.Data.Pair()
			handles = append(handles, first, second)
		default:
			cr.Value = c.Data.String()
		}

		for _, h := range handles {
			cr.Shapes = append(cr.Shapes, h.Shape())
		}
		if len(handles) > 0 {
			cr.Value = formatShapes(cr.Shapes)
			op, _ := handles[0].Op()
			cr.Op = fmt.Sprintf("%s#%d", op.Type(), op.ID())
			cr.Cost = op.Cost()
		}

		for _, n := range c.Nodes {
			cr.Nodes = append(cr.Nodes, n.String())
		}
		rep.Classes = append(rep.Classes, cr)
	}

	return rep
}

func formatShapes(shapes [][]int) string {
	parts := make([]string, len(shapes))
	for i, s := range shapes {
		dims := make([]string, len(s))
		for j, d := range s {
			dims[j] = strconv.Itoa(d)
		}
		parts[i] = "(" + strings.Join(dims, ", ") + ")"
	}
	return strings.Join(parts, " ")
}

func render(w io.Writer, format string, rep report) error {
	switch format {
	case "json":
		bts, err := json.MarshalIndent(rep, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(bts))
		return err
	case "yaml":
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rep); err != nil {
			return err
		}
		return enc.Close()
	case "table", "":
		return renderTable(w, rep)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func renderTable(w io.Writer, rep report) error {
	var data [][]string
	for _, c := range rep.Classes {
		id := egraph.ID(c.ID).String()
		if c.Root {
			id += "*"
		}

		var cost string
		if c.Op != "" {
			cost = fmt.Sprintf("%.4fms", c.Cost)
		}
		data = append(data, []string{id, c.Kind, c.Value, c.Op, cost, strings.Join(c.Nodes, " ")})
	}

	table := tablewriter.NewWriter(w)
	table.SetHeader([]string{"CLASS", "KIND", "VALUE", "OP", "COST", "NODES"})
	table.SetHeaderAlignment(tablewriter.ALIGN_LEFT)
	table.SetAlignment(tablewriter.ALIGN_LEFT)
	table.SetAutoWrapText(false)
	table.SetHeaderLine(false)
	table.SetBorder(false)
	table.SetNoWhiteSpace(true)
	table.SetTablePadding("    ")
	table.AppendBulk(data)
	table.Render()

	_, err := fmt.Fprintf(w, "\n%d classes, %d nodes, %d backend ops, total cost %.4fms\n",
		len(rep.Classes), rep.Nodes, rep.BackendOps, rep.TotalCost)
	if err == nil && rep.Interchangeable != nil {
		_, err = fmt.Fprintf(w, "interchangeable: %t\n", *rep.Interchangeable)
	}
	return err
}
