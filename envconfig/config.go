// config.go - Haupt-Konfigurationsfunktionen fuer tensat
//
// Dieses Modul enthaelt:
// - LogLevel: Gibt Log-Level zurueck (TENSAT_DEBUG)
// - Backend: Gibt den Backend-Namen zurueck (TENSAT_BACKEND)
// - CostCache: Gibt das Verzeichnis des Kosten-Caches zurueck (TENSAT_COST_CACHE)
// - Var: Liest eine Environment-Variable
//
// Weitere Konfigurationen sind ausgelagert:
// - config_utils.go: Utility-Funktionen, Analyse-Flags und AsMap/Values
package envconfig

import (
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"strings"
)

// Backend gibt den Namen des Tensor-Backends zurueck
// Konfigurierbar via TENSAT_BACKEND
// Default: ref
func Backend() string {
	if s := Var("TENSAT_BACKEND"); s != "" {
		return s
	}
	return "ref"
}

// CostCache gibt das Verzeichnis des persistenten Kosten-Caches zurueck
// Konfigurierbar via TENSAT_COST_CACHE
// Leer = kein persistenter Cache, "~/" wird zum Home-Verzeichnis expandiert
func CostCache() string {
	s := Var("TENSAT_COST_CACHE")
	if rest, ok := strings.CutPrefix(s, "~/"); ok {
		home, err := os.UserHomeDir()
		if err != nil {
			slog.Warn("cannot expand cost cache path", "path", s, "error", err)
			return s
		}
		return filepath.Join(home, rest)
	}
	return s
}

// LogLevel gibt das Log-Level zurueck
// Konfigurierbar via TENSAT_DEBUG
// Werte: 0/false = INFO (Default), 1/true = DEBUG, 2 = TRACE
func LogLevel() slog.Level {
	level := slog.LevelInfo
	if s := Var("TENSAT_DEBUG"); s != "" {
		if b, _ := strconv.ParseBool(s); b {
			level = slog.LevelDebug
		} else if i, _ := strconv.ParseInt(s, 10, 64); i != 0 {
			level = slog.Level(i * -4)
		}
	}

	return level
}

// Var gibt eine Environment-Variable zurueck
// Entfernt fuehrende/trailing Quotes und Leerzeichen
func Var(key string) string {
	return strings.Trim(strings.TrimSpace(os.Getenv(key)), "\"'")
}
