// logutil.go - slog-Hilfsfunktionen
// Enthält: LevelTrace, NewLogger (Text-Handler mit kurzen Quellpfaden)
package logutil

import (
	"io"
	"log/slog"
	"path/filepath"
)

// LevelTrace liegt unter Debug und wird fuer jede Backend-Op verwendet
const LevelTrace slog.Level = -8

// NewLogger erstellt einen Text-Logger mit TRACE-Level und kurzen Quellpfaden
func NewLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:     level,
		AddSource: true,
		ReplaceAttr: func(_ []string, attr slog.Attr) slog.Attr {
			switch attr.Key {
			case slog.LevelKey:
				if attr.Value.Any().(slog.Level) == LevelTrace {
					attr.Value = slog.StringValue("TRACE")
				}
			case slog.SourceKey:
				source := attr.Value.Any().(*slog.Source)
				source.File = filepath.Base(source.File)
			}
			return attr
		},
	}))
}
