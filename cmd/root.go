package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/wifisurvey/internal/config"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "wifisurvey",
	Short: "Passive Wi-Fi survey analysis",
	Long: `Analyzes passive Wi-Fi scan batches: estimates access point distance and
position, classifies security and risk, groups access points by SSID and
reports band usage, density and the least congested 2.4GHz channel.

  analyze   run batch files (JSON, YAML, WiGLE CSV, XLSX) and print the result
  serve     poll a batch directory and serve snapshots over HTTP and MQTT
  classify  classify a capability string
  distance  estimate distance from RSSI and frequency
  channel   map a frequency to its band and channel`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
