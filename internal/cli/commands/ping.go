package commands

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/lvyanru/weather-apiserver/internal/cli/client"
	"github.com/lvyanru/weather-apiserver/internal/cli/config"
	"github.com/lvyanru/weather-apiserver/internal/cli/types"
	"github.com/lvyanru/weather-apiserver/internal/cli/ui"
)

var pingServer string

// pingCmd reads the server's heartbeat stream to check liveness.
var pingCmd = &cobra.Command{
	Use:   "ping",
	Short: "check that the API server is alive",
	Long: `Check that the API server is alive by reading its heartbeat stream.

The server emits a fixed number of pings and then closes the stream; each
ping is printed as it arrives.`,
	Example: `  # Ping the configured server
  $ wxctl ping

  # Ping a different server
  $ wxctl ping -s http://weather.example.com:8080`,
	RunE: runPing,
}

func init() {
	pingCmd.Flags().StringVarP(&pingServer, "server", "s", "", "API server address (default from config)")
	pingCmd.SilenceUsage = true
}

func runPing(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		ui.PrintError("failed to load config: %v", err)
		return fmt.Errorf("config load failed")
	}
	if pingServer != "" {
		cfg.Server = pingServer
	}

	apiClient, err := client.NewAPIClient(cfg.Server)
	if err != nil {
		ui.PrintError("failed to create client: %v", err)
		return fmt.Errorf("client creation failed")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	eventCh, errCh, err := apiClient.Heartbeat(ctx)
	if err != nil {
		ui.PrintError("%v", err)
		return fmt.Errorf("heartbeat failed")
	}

	started := time.Now()
	var pings int
	for ev := range eventCh {
		if ev.Type != types.EventPing {
			continue
		}
		pings++
		fmt.Printf("  %s (+%dms)\n", ev.Payload, time.Since(started).Milliseconds())
	}
	if err := <-errCh; err != nil {
		ui.PrintError("%v", err)
		return fmt.Errorf("heartbeat failed")
	}
	if pings == 0 {
		ui.PrintError("no pings received from %s", cfg.Server)
		return fmt.Errorf("heartbeat failed")
	}

	ui.PrintSuccess("%s is alive (%d pings)", cfg.Server, pings)
	return nil
}
