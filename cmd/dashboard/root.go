package main

import (
	"os"

	"github.com/jrsteele09/acservice-dashboard/internal/config"
	"github.com/jrsteele09/acservice-dashboard/internal/logger"
	"github.com/spf13/cobra"
)

var (
	envFile   string
	port      string
	apiURL    string
	ephemeral bool
)

var rootCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "AC service operations console",
	Long: `dashboard serves the AC service operations console and manages the
operator session it shares with the command line.

Environment Variables:
  API_BASE_URL   Backend base URL (default: http://localhost:8081/api/v1)
  TOKEN_STORE    file, redis or memory (default: file)
  PORT           Console port (default: 8080)`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := config.LoadDotEnv(envFile); err != nil {
			return err
		}
		// Flags win over the environment and .env
		if port != "" {
			os.Setenv("PORT", port)
		}
		if apiURL != "" {
			os.Setenv("API_BASE_URL", apiURL)
		}
		if ephemeral {
			os.Setenv("TOKEN_STORE", config.TokenStoreMemory)
		}
		c := config.New()
		logger.Setup(c.GetEnv(), c.GetLogLevel())
		return nil
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&envFile, "env-file", ".env", "Dotenv file to load if present")
	rootCmd.PersistentFlags().StringVar(&port, "port", "", "Listen port (overrides PORT)")
	rootCmd.PersistentFlags().StringVar(&apiURL, "api-url", "", "Backend base URL (overrides API_BASE_URL)")
	rootCmd.PersistentFlags().BoolVar(&ephemeral, "ephemeral", false, "Keep the session in memory only")
}
