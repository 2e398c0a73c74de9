package cmd

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// resetCommandState restores the package-level command state that cobra and
// viper keep between invocations, and isolates HOME and the data directory.
func resetCommandState(t *testing.T) {
	t.Helper()

	reset := func() {
		*cliConfig = *newCLIConfig()
		cfgFile = ""
		verbose = false
		resultsDir = ""
		viper.Reset()
		for _, c := range []*cobra.Command{rootCmd, tlsCmd, httpCmd, allCmd, versionCmd} {
			c.Flags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
			c.PersistentFlags().VisitAll(func(f *pflag.Flag) { f.Changed = false })
		}
		rootCmd.SetArgs(nil)
		rootCmd.SetOut(nil)
	}

	reset()
	t.Setenv("HOME", t.TempDir())
	t.Setenv(dataDirEnvVar, t.TempDir())
	t.Cleanup(reset)
}

// executeCommand runs the root command with args and returns its stdout.
func executeCommand(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetArgs(args)
	err := rootCmd.Execute()
	return out.String(), err
}
