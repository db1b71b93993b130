package commands

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/lvyanru/weather-apiserver/internal/cli/client"
	"github.com/lvyanru/weather-apiserver/internal/cli/config"
	"github.com/lvyanru/weather-apiserver/internal/cli/tui"
	"github.com/lvyanru/weather-apiserver/internal/cli/ui"
)

var (
	chatServer     string
	chatNewSession bool
)

// chatCmd is the chat command
var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "start interactive chat with the weather assistant",
	Long: `Start an interactive chat session with the weather assistant.

The answer streams in as it is produced, and the conversation keeps its
location and unit context across turns. The session id is stored in
~/.wxctl/config.json and reused on the next run until it expires.`,
	Example: `  # Start or resume a chat
  $ wxctl chat

  # Start a fresh conversation
  $ wxctl chat --new

  # Talk to a different server
  $ wxctl chat -s http://weather.example.com:8080

  # Keyboard controls:
  • Enter sends the message
  • Esc quits the session`,
	RunE: runChat,
}

func init() {
	chatCmd.Flags().StringVarP(&chatServer, "server", "s", "", "API server address (default from config)")
	chatCmd.Flags().BoolVar(&chatNewSession, "new", false, "Start a new session instead of resuming")
	chatCmd.SilenceUsage = true
}

func runChat(cmd *cobra.Command, args []string) error {
	if len(args) > 0 {
		ui.PrintError("unexpected argument: %s", args[0])
		fmt.Println("\nRun 'wxctl chat' to start interactive session.")
		return fmt.Errorf("invalid arguments")
	}

	cfg, err := config.Load()
	if err != nil {
		ui.PrintError("failed to load config: %v", err)
		return fmt.Errorf("config load failed")
	}
	if chatServer != "" {
		cfg.Server = chatServer
	}

	if chatNewSession || cfg.SessionID == "" {
		cfg.SessionID = uuid.NewString()
	}
	if err := cfg.Save(); err != nil {
		ui.PrintWarning("failed to save config: %v", err)
	}

	apiClient, err := client.NewAPIClient(cfg.Server)
	if err != nil {
		ui.PrintError("failed to create client: %v", err)
		return fmt.Errorf("client creation failed")
	}

	ui.PrintChatWelcomeBanner()

	program := tui.NewChatProgram(apiClient, cfg.SessionID, cfg.UserID)
	if err := program.Run(); err != nil {
		return fmt.Errorf("failed to run chat TUI: %w", err)
	}

	return nil
}
