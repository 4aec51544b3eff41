// errors.go - Fehlerkategorien der Klassen-Analyse
//
// Alle Fehler hier sind fatal: sie werden als Panic mit einem per
// errors.Wrapf umhuellten Sentinel ausgeloest, damit errors.Is auf dem
// wiederhergestellten Wert funktioniert. Aufrufer, die einen Fehlerwert
// brauchen, fangen mit exceptions.TryCatch[error] ab.
package analysis

import "github.com/pkg/errors"

var (
	// ErrGrammar: ein Operand hat die falsche Art oder ein Enum-Wert ist ungueltig
	ErrGrammar = errors.New("grammar violation")

	// ErrMalformedName: ein Input-/Weight-Name folgt nicht <id>@<d1>_..._<dn>
	ErrMalformedName = errors.New("malformed tensor name")

	// ErrBackendRejected: das Backend konnte eine Op nicht erzeugen
	ErrBackendRejected = errors.New("backend rejected operation")

	// ErrUnimplemented: die Knotenart hat keine Metadaten-Uebersetzung
	ErrUnimplemented = errors.New("unimplemented node kind")

	// ErrMergeConflict: zwei vereinigte Klassen tragen unvertraegliche Metadaten
	ErrMergeConflict = errors.New("merged classes are not interchangeable")

	// ErrSessionClosed: ein Handle oder die Session wurde nach Close benutzt
	ErrSessionClosed = errors.New("backend session closed")

	// ErrForeignHandle: ein Handle wurde an eine andere Session uebergeben
	ErrForeignHandle = errors.New("handle belongs to another session")
)

func fatalf(err error, format string, args ...any) {
	panic(errors.Wrapf(err, format, args...))
}
