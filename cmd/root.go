package cmd

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/EliabLM/pos-system-api/cmd/users"
	"github.com/EliabLM/pos-system-api/internal/config"
)

var cfg *config.Config

var configFile string

var rootCmd = &cobra.Command{
	Use:   "posapi",
	Short: "POS API server with session-gated access control",
	Long: `posapi is the backend for a store/inventory management application.
Every request passes through a session gateway that verifies the auth-token
cookie and enforces route access per user role and onboarding state.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Optional .env for local development, loaded before viper reads
		// the environment
		_ = godotenv.Load()

		if configFile != "" {
			viper.SetConfigFile(configFile)
			if err := viper.ReadInConfig(); err != nil {
				return fmt.Errorf("failed to read config file: %w", err)
			}
		}

		var err error
		cfg, err = config.Load()
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}
		return nil
	},
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", "Path to a config file (optional, env wins)")
	rootCmd.PersistentFlags().String("db-url", "", "Database connection URL (env: POSAPI_DATABASE_URL)")
	rootCmd.PersistentFlags().String("server-addr", "", "Server bind address (env: POSAPI_SERVER_ADDR)")
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging (env: POSAPI_DEBUG)")

	_ = viper.BindPFlag("database_url", rootCmd.PersistentFlags().Lookup("db-url"))
	_ = viper.BindPFlag("server_addr", rootCmd.PersistentFlags().Lookup("server-addr"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))

	// Add subcommands
	rootCmd.AddCommand(users.UsersCmd)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
