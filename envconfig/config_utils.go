// config_utils.go - Utility-Funktionen und Export fuer Konfiguration
//
// Dieses Modul enthaelt:
// - BoolWithDefault: Boolean-Getter mit Default-Wert
// - String: String-Getter
// - Uint64: Integer-Getter mit Default-Wert
// - Seed, WeightDType, StrictMerge, PeakFLOPS, Bandwidth: Analyse-Einstellungen
// - EnvVar: Struktur fuer Environment-Variablen-Info
// - AsMap: Gibt alle Konfigurationen als Map zurueck
// - Values: Gibt alle Konfigurationswerte als String-Map zurueck
package envconfig

import (
	"fmt"
	"log/slog"
	"strconv"
)

// =============================================================================
// Boolean-Getter
// =============================================================================

// BoolWithDefault gibt eine Funktion zurueck, die einen Bool mit Default-Wert liest
func BoolWithDefault(k string) func(defaultValue bool) bool {
	return func(defaultValue bool) bool {
		if s := Var(k); s != "" {
			b, err := strconv.ParseBool(s)
			if err != nil {
				return true
			}
			return b
		}
		return defaultValue
	}
}

// =============================================================================
// String-Getter
// =============================================================================

// String gibt eine Funktion zurueck, die einen String liest
func String(s string) func() string {
	return func() string {
		return Var(s)
	}
}

// =============================================================================
// Integer-Getter
// =============================================================================

// Uint64 gibt eine Funktion zurueck, die einen uint64 mit Default-Wert liest
func Uint64(key string, defaultValue uint64) func() uint64 {
	return func() uint64 {
		if s := Var(key); s != "" {
			if n, err := strconv.ParseUint(s, 10, 64); err != nil {
				slog.Warn("invalid environment variable, using default", "key", key, "value", s, "default", defaultValue)
			} else {
				return n
			}
		}
		return defaultValue
	}
}

// =============================================================================
// Analyse-Einstellungen
// =============================================================================

var (
	// Seed ist der Startwert fuer zufaellige Gewichte (0 = zeitbasiert)
	Seed = Uint64("TENSAT_SEED", 0)

	// WeightDType ist der Speichertyp fuer Gewichte (f32 oder f16)
	WeightDType = String("TENSAT_WEIGHT_DTYPE")

	// StrictMerge prueft beim Vereinigen zweier Klassen, ob ihre Metadaten
	// austauschbar sind
	StrictMerge = BoolWithDefault("TENSAT_STRICT_MERGE")

	// PeakFLOPS und Bandwidth parametrisieren die Kostenschaetzung
	// (0 = Backend-Default)
	PeakFLOPS = Uint64("TENSAT_PEAK_FLOPS", 0)
	Bandwidth = Uint64("TENSAT_BANDWIDTH", 0)
)

// =============================================================================
// Export-Strukturen und -Funktionen
// =============================================================================

// EnvVar repraesentiert eine Environment-Variable mit Metadaten
type EnvVar struct {
	Name        string
	Value       any
	Description string
}

// AsMap gibt alle Konfigurationen als Map zurueck
// Enthaelt Namen, aktuelle Werte und Beschreibungen
func AsMap() map[string]EnvVar {
	return map[string]EnvVar{
		"TENSAT_DEBUG":        {"TENSAT_DEBUG", LogLevel(), "Show additional debug information (e.g. TENSAT_DEBUG=1, 2 for trace)"},
		"TENSAT_BACKEND":      {"TENSAT_BACKEND", Backend(), "Tensor backend used to build graphs (default: ref)"},
		"TENSAT_SEED":         {"TENSAT_SEED", Seed(), "Seed for random weight values (default: time based)"},
		"TENSAT_WEIGHT_DTYPE": {"TENSAT_WEIGHT_DTYPE", WeightDType(), "Storage type for weights, f32 or f16 (default: f32)"},
		"TENSAT_COST_CACHE":   {"TENSAT_COST_CACHE", CostCache(), "Directory of the persistent op cost cache"},
		"TENSAT_STRICT_MERGE": {"TENSAT_STRICT_MERGE", StrictMerge(true), "Check that merged classes carry interchangeable metadata (default: true)"},
		"TENSAT_PEAK_FLOPS":   {"TENSAT_PEAK_FLOPS", PeakFLOPS(), "Peak FLOP/s used by the cost estimate"},
		"TENSAT_BANDWIDTH":    {"TENSAT_BANDWIDTH", Bandwidth(), "Memory bandwidth in bytes/s used by the cost estimate"},
	}
}

// Values gibt alle Konfigurationswerte als String-Map zurueck
func Values() map[string]string {
	vals := make(map[string]string)
	for k, v := range AsMap() {
		vals[k] = fmt.Sprintf("%v", v.Value)
	}
	return vals
}
