// Package commands defines the wxctl command tree.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/lvyanru/weather-apiserver/internal/cli/ui"
)

const version = "0.1.0"

// rootCmd is the root command
var rootCmd = &cobra.Command{
	Use:     "wxctl",
	Short:   "Weather assistant CLI",
	Version: version,
	Long: `A command-line tool for talking to the weather assistant API server.
Provides an interactive streaming chat and inspection of conversation
sessions and their history.`,
	Example: `  # Start interactive chat (resumes your last session)
  $ wxctl chat

  # Start a fresh conversation
  $ wxctl chat --new

  # Inspect the current session
  $ wxctl session show

  # Print the conversation history
  $ wxctl session history

  # Delete the current session
  $ wxctl session delete

  # Check that the server is alive
  $ wxctl ping`,
}

// Execute executes the root command
func Execute() error {
	rootCmd.SetVersionTemplate(formatVersion())
	return rootCmd.Execute()
}

func init() {
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(sessionCmd)
	rootCmd.AddCommand(pingCmd)

	rootCmd.SetUsageTemplate(usageTemplate())
	rootCmd.SetHelpTemplate(usageTemplate())
}

func usageTemplate() string {
	return `{{if .Long}}{{.Long}}

{{end}}` + ui.Styles.Bold.Render("USAGE") + `
  {{.UseLine}}{{if .HasAvailableSubCommands}}
  {{.CommandPath}} [command]{{end}}

{{if .HasExample}}` + ui.Styles.Bold.Render("EXAMPLES") + `
{{.Example}}

{{end}}{{if .HasAvailableSubCommands}}` + ui.Styles.Bold.Render("COMMANDS") + `{{range .Commands}}{{if (or .IsAvailableCommand (eq .Name "help"))}}
  {{rpad .Name .NamePadding }} {{.Short}}{{end}}{{end}}

{{end}}{{if .HasAvailableLocalFlags}}` + ui.Styles.Bold.Render("OPTIONS") + `
{{.LocalFlags.FlagUsages | trimTrailingWhitespaces}}

{{end}}{{if .HasAvailableSubCommands}}Use "{{.CommandPath}} [command] --help" for more information about a command.{{end}}
`
}

func formatVersion() string {
	return fmt.Sprintf("wxctl version %s\n", version)
}
