// cmd.go - Haupt-CLI Setup und Root Command
// Hauptfunktionen: NewCLI, appendEnvDocs
package cmd

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/jakobhartmann/tensat/envconfig"
	"github.com/jakobhartmann/tensat/logutil"
)

// appendEnvDocs - Fuegt Umgebungsvariablen-Dokumentation zum Command hinzu
func appendEnvDocs(cmd *cobra.Command, envs []envconfig.EnvVar) {
	if len(envs) == 0 {
		return
	}

	envUsage := `
Environment Variables:
`
	for _, e := range envs {
		envUsage += fmt.Sprintf("      %-24s   %s\n", e.Name, e.Description)
	}

	cmd.SetUsageTemplate(cmd.UsageTemplate() + envUsage)
}

// NewCLI - Erstellt das Haupt-CLI mit allen Commands
func NewCLI() *cobra.Command {
	cobra.EnableCommandSorting = false

	rootCmd := &cobra.Command{
		Use:           "tensat",
		Short:         "Inspect tensor terms and their class metadata",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			slog.SetDefault(logutil.NewLogger(os.Stderr, envconfig.LogLevel()))
		},
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Print(cmd.UsageString())
		},
	}

	describeCmd := newDescribeCmd()
	equivCmd := newEquivCmd()
	opsCmd := newOpsCmd()

	// Environment-Dokumentation hinzufuegen
	envVars := envconfig.AsMap()
	analysisEnvs := []envconfig.EnvVar{
		envVars["TENSAT_DEBUG"],
		envVars["TENSAT_BACKEND"],
		envVars["TENSAT_SEED"],
		envVars["TENSAT_WEIGHT_DTYPE"],
		envVars["TENSAT_COST_CACHE"],
		envVars["TENSAT_PEAK_FLOPS"],
		envVars["TENSAT_BANDWIDTH"],
	}

	for _, cmd := range []*cobra.Command{describeCmd, equivCmd} {
		switch cmd {
		case equivCmd:
			appendEnvDocs(cmd, append(analysisEnvs, envVars["TENSAT_STRICT_MERGE"]))
		default:
			appendEnvDocs(cmd, analysisEnvs)
		}
	}

	rootCmd.AddCommand(
		describeCmd,
		equivCmd,
		opsCmd,
	)

	return rootCmd
}
