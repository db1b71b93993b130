package commands

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AlecAivazis/survey/v2"
	"github.com/spf13/cobra"

	"github.com/lvyanru/weather-apiserver/internal/cli/client"
	"github.com/lvyanru/weather-apiserver/internal/cli/config"
	"github.com/lvyanru/weather-apiserver/internal/cli/ui"
)

var (
	sessionServer string
	sessionID     string
	deleteForce   bool
)

// sessionCmd groups the session subcommands
var sessionCmd = &cobra.Command{
	Use:   "session",
	Short: "inspect and manage conversation sessions",
	Long: `Inspect and manage conversation sessions on the API server.

Without --id, the session stored by the last 'wxctl chat' run is used.`,
}

var sessionShowCmd = &cobra.Command{
	Use:   "show",
	Short: "show the session's context",
	Example: `  # Show the current session
  $ wxctl session show

  # Show a specific session
  $ wxctl session show --id 5f3a...`,
	RunE: runSessionShow,
}

var sessionHistoryCmd = &cobra.Command{
	Use:   "history",
	Short: "print the conversation history",
	Example: `  # Print the current session's history
  $ wxctl session history`,
	RunE: runSessionHistory,
}

var sessionDeleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "delete the session",
	Example: `  # Delete the current session (with confirmation)
  $ wxctl session delete

  # Delete without confirmation
  $ wxctl session delete --force`,
	RunE: runSessionDelete,
}

func init() {
	sessionCmd.PersistentFlags().StringVarP(&sessionServer, "server", "s", "", "API server address (default from config)")
	sessionCmd.PersistentFlags().StringVar(&sessionID, "id", "", "session id (default: last chat session)")
	sessionDeleteCmd.Flags().BoolVarP(&deleteForce, "force", "f", false, "Skip confirmation prompt")

	sessionCmd.AddCommand(sessionShowCmd)
	sessionCmd.AddCommand(sessionHistoryCmd)
	sessionCmd.AddCommand(sessionDeleteCmd)

	sessionCmd.SilenceUsage = true
	sessionShowCmd.SilenceUsage = true
	sessionHistoryCmd.SilenceUsage = true
	sessionDeleteCmd.SilenceUsage = true
}

// resolveSession loads the config and decides which session id to act on.
func resolveSession() (*config.Config, *client.APIClient, string, error) {
	cfg, err := config.Load()
	if err != nil {
		ui.PrintError("failed to load config: %v", err)
		return nil, nil, "", fmt.Errorf("config load failed")
	}
	if sessionServer != "" {
		cfg.Server = sessionServer
	}

	id := sessionID
	if id == "" {
		id = cfg.SessionID
	}
	if id == "" {
		ui.PrintError("no session to act on")
		fmt.Println("\nRun 'wxctl chat' first, or pass --id.")
		return nil, nil, "", fmt.Errorf("no session id")
	}

	apiClient, err := client.NewAPIClient(cfg.Server)
	if err != nil {
		ui.PrintError("failed to create client: %v", err)
		return nil, nil, "", fmt.Errorf("client creation failed")
	}

	return cfg, apiClient, id, nil
}

func runSessionShow(cmd *cobra.Command, args []string) error {
	_, apiClient, id, err := resolveSession()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	sess, err := apiClient.GetSession(ctx, id)
	if err != nil {
		ui.PrintError("%v", err)
		return fmt.Errorf("session lookup failed")
	}

	ui.PrintBold("Session %s", sess.SessionID)
	if sess.UserID != "" {
		fmt.Printf("  user:              %s\n", sess.UserID)
	}
	fmt.Printf("  created:           %s\n", time.UnixMilli(sess.CreatedAt).Local().Format(time.RFC3339))
	fmt.Printf("  last activity:     %s\n", time.UnixMilli(sess.LastActivity).Local().Format(time.RFC3339))
	if sess.CurrentLocation != "" {
		fmt.Printf("  current location:  %s\n", sess.CurrentLocation)
	}
	if len(sess.RecentLocations) > 0 {
		fmt.Printf("  recent locations:  %s\n", strings.Join(sess.RecentLocations, ", "))
	}
	if len(sess.Preferences) > 0 {
		fmt.Printf("  units:             %s, %s, %s (%s)\n",
			sess.Preferences["temperature_unit"],
			sess.Preferences["wind_speed_unit"],
			sess.Preferences["precipitation_unit"],
			sess.Preferences["timezone"],
		)
	}

	return nil
}

func runSessionHistory(cmd *cobra.Command, args []string) error {
	_, apiClient, id, err := resolveSession()
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	history, err := apiClient.GetHistory(ctx, id)
	if err != nil {
		ui.PrintError("%v", err)
		return fmt.Errorf("history lookup failed")
	}

	if len(history.Messages) == 0 {
		ui.PrintInfo("no messages yet in session %s", id)
		return nil
	}

	ui.PrintBold("History of session %s", history.SessionID)
	for _, msg := range history.Messages {
		ts := time.UnixMilli(msg.Timestamp).Local().Format("15:04:05")
		fmt.Printf("\n[%s] %s\n%s\n", ts, msg.Type, msg.Content)
	}

	return nil
}

func runSessionDelete(cmd *cobra.Command, args []string) error {
	cfg, apiClient, id, err := resolveSession()
	if err != nil {
		return err
	}

	if !deleteForce {
		confirm := false
		prompt := &survey.Confirm{
			Message: fmt.Sprintf("Delete session %s and its history?", id),
			Default: false,
		}
		if err := survey.AskOne(prompt, &confirm); err != nil {
			return fmt.Errorf("confirmation aborted: %w", err)
		}
		if !confirm {
			ui.PrintInfo("delete cancelled")
			return nil
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := apiClient.DeleteSession(ctx, id); err != nil {
		ui.PrintErrorBox("Delete failed", err.Error())
		return fmt.Errorf("delete failed")
	}

	// Forget the stored session so the next chat starts fresh.
	if cfg.SessionID == id {
		cfg.SessionID = ""
		if err := cfg.Save(); err != nil {
			ui.PrintWarning("failed to update config: %v", err)
		}
	}

	ui.PrintSuccessBox("Session deleted", fmt.Sprintf("Session %s and its history are gone.\nThe next 'wxctl chat' starts a fresh conversation.", id))
	return nil
}
