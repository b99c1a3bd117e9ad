package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/turtacn/appauth/internal/config"
	"github.com/turtacn/appauth/pkg/logger"
)

func newConfigCommand() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Work with service configuration",
	}

	checkCmd := &cobra.Command{
		Use:   "check",
		Short: "Load and validate a configuration the way the server does",
		RunE: func(cmd *cobra.Command, args []string) error {
			path, _ := cmd.Flags().GetString("file")

			loader := config.NewLoader(logger.NewNoopLogger())
			if path != "" {
				loader.SetConfigFile(path)
			}
			cfg, err := loader.Load()
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintln(out, "Configuration is valid")
			fmt.Fprintf(out, "  app id:          %s\n", cfg.App.AppID)
			fmt.Fprintf(out, "  listen:          %s\n", cfg.Server.Address())
			fmt.Fprintf(out, "  token cache:     %s (max %d, ttl %s)\n", cfg.TokenCache.Backend, cfg.TokenCache.MaxSize, cfg.TokenCache.TTL)
			fmt.Fprintf(out, "  audit:           %s\n", cfg.Audit.Backend)
			fmt.Fprintf(out, "  signs assertion: %t\n", cfg.Auth.SignsAssertions())
			fmt.Fprintf(out, "  local users:     %d\n", len(cfg.Users))
			return nil
		},
	}
	checkCmd.Flags().StringP("file", "f", "", "Configuration file (defaults to the server's search path)")

	configCmd.AddCommand(checkCmd)
	return configCmd
}
