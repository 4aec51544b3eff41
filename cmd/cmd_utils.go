// cmd_utils.go - Hilfsfunktionen fuer Terme und Analyse
// Hauptfunktionen: readTerms, openGraph, catch
package cmd

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"runtime"

	"github.com/gomlx/exceptions"
	"golang.org/x/sync/errgroup"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"

	"github.com/jakobhartmann/tensat/analysis"
	"github.com/jakobhartmann/tensat/egraph"
	"github.com/jakobhartmann/tensat/model"
)

type graph = egraph.EGraph[model.Node, analysis.Metadata]

// readTerms parst Terme aus Argumenten und Dateien. Dateien werden
// parallel gelesen; die Reihenfolge der Terme bleibt erhalten.
func readTerms(args, files []string) ([]model.Expr, error) {
	var exprs []model.Expr
	for _, arg := range args {
		e, err := model.ParseAll(arg)
		if err != nil {
			return nil, fmt.Errorf("argument %q: %w", arg, err)
		}
		exprs = append(exprs, e...)
	}

	perFile := make([][]model.Expr, len(files))
	var g errgroup.Group
	g.SetLimit(max(runtime.GOMAXPROCS(0)-1, 1))
	for i, f := range files {
		g.Go(func() error {
			src, err := readTermFile(f)
			if err != nil {
				return err
			}

			e, err := model.ParseAll(src)
			if err != nil {
				return fmt.Errorf("%s: %w", f, err)
			}

			perFile[i] = e
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	for _, e := range perFile {
		exprs = append(exprs, e...)
	}

	if len(exprs) == 0 {
		return nil, fmt.Errorf("no terms given")
	}
	return exprs, nil
}

// readTermFile liest eine Termdatei als UTF-8; ein BOM wird entfernt,
// UTF-16 mit BOM wird umkodiert
func readTermFile(name string) (string, error) {
	f, err := os.Open(name)
	if err != nil {
		return "", err
	}
	defer f.Close()

	tr := unicode.BOMOverride(unicode.UTF8.NewDecoder())
	bts, err := io.ReadAll(transform.NewReader(f, tr))
	if err != nil {
		return "", err
	}
	return string(bts), nil
}

// openGraph erstellt eine Analyse aus der Umgebung und einen leeren Graphen
func openGraph(modify ...func(*analysis.Config)) (*analysis.TensorAnalysis, *graph, error) {
	cfg, err := analysis.DefaultConfig()
	if err != nil {
		return nil, nil, err
	}
	cfg.Logger = slog.Default()
	for _, fn := range modify {
		fn(&cfg)
	}

	a, err := analysis.New(cfg)
	if err != nil {
		return nil, nil, err
	}
	return a, egraph.New[model.Node, analysis.Metadata](a), nil
}

// catch wandelt fatale Analysefehler in Fehlerwerte um
func catch(fn func()) error {
	return exceptions.TryCatch[error](fn)
}
