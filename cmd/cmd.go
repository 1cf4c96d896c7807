package cmd

import (
	"context"
	stdErrors "errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/frahmantamala/office-ticketing/internal"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var configDir string

var rootCmd = &cobra.Command{
	Use:           "ticketing",
	Short:         "Office Ticketing",
	Long:          `For raising, tracking and resolving office support tickets.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// reportedError marks a failure whose message was already shown to the user.
type reportedError struct {
	error
}

func (e reportedError) Unwrap() error { return e.error }

func Execute() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := rootCmd.ExecuteContext(ctx)
	stop()
	if err != nil {
		var reported reportedError
		if !stdErrors.As(err, &reported) {
			fmt.Fprintln(os.Stderr, "Error:", err)
		}
		os.Exit(exitCode(err))
	}
}

func exitCode(err error) int {
	if appErr, ok := internal.IsAppError(err); ok {
		return appErr.ExitCode()
	}
	return 1
}

func loadConfig(path string) (*internal.Config, error) {
	// Deployed environments are configured purely through TICKETING_* variables
	if os.Getenv("TICKETING_APP_ENV") == "production" {
		cfg := internal.LoadConfigFromEnv()
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("error validating config from environment: %w", err)
		}
		return cfg, nil
	}

	v := viper.New()
	for key, value := range internal.Defaults() {
		v.SetDefault(key, value)
	}
	v.AddConfigPath(path)
	v.SetConfigName("config")
	v.SetConfigType("yml")
	v.SetEnvPrefix("TICKETING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !stdErrors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config: %w", err)
		}
	}

	var cfg internal.Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", ".", "directory holding config.yml")

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(seedCmd)
	rootCmd.AddCommand(loginCmd, logoutCmd, registerCmd, whoamiCmd, passwdCmd)
	rootCmd.AddCommand(ticketsCmd)
	rootCmd.AddCommand(categoriesCmd)
	rootCmd.AddCommand(usersCmd)
}
