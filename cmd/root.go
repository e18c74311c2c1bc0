package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"eva/internal/logger"
)

var (
	configPath string
	logLevel   string
	portFlag   int
)

var rootCmd = &cobra.Command{
	Use:   "eva",
	Short: "EVA personal assistant backend",
	Long: `EVA is a French-speaking personal assistant backend. It serves a
WebSocket chat endpoint and dispatches structured commands to the
calendar, email, tasks, contacts, directions, search, and code
capabilities.`,
	CompletionOptions: cobra.CompletionOptions{
		DisableDefaultCmd: true,
	},
	RunE: runServe,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		level, err := logger.ParseLevel(logLevel)
		if err != nil {
			return err
		}
		logger.SetLevel(level)
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "",
		"Path to the YAML configuration file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log", "info",
		"Log level: trace, debug, info, warn, error")
	rootCmd.Flags().IntVar(&portFlag, "port", 0,
		"Listen port (overrides the configuration)")
}

// Execute runs the CLI.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
