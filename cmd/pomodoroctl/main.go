package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"pomodoro/desktop/internal/client"
	apperrors "pomodoro/desktop/internal/errors"
)

const (
	defaultServer  = "http://127.0.0.1:8765"
	requestTimeout = 10 * time.Second
)

var (
	serverURL string
	token     string
	tokenFile string
)

var rootCmd = &cobra.Command{
	Use:   "pomodoroctl",
	Short: "Control a running pomodorod",
	Long: `Control a running pomodorod over its local HTTP API.

The server address defaults to $POMODORO_URL or ` + defaultServer + `.
When the daemon has a control password, run 'pomodoroctl login' first.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", envOr("POMODORO_URL", defaultServer), "pomodorod base URL")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("POMODORO_TOKEN"), "bearer token (overrides the saved token)")
	rootCmd.PersistentFlags().StringVar(&tokenFile, "token-file", defaultTokenFile(), "where login saves the token")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		red := color.New(color.FgRed).SprintFunc()
		fmt.Fprintf(os.Stderr, "%s %s\n", red("Error:"), describeError(err))
		os.Exit(1)
	}
}

func newClient() *client.Client {
	bearer := token
	if bearer == "" && tokenFile != "" {
		if data, err := os.ReadFile(tokenFile); err == nil {
			bearer = strings.TrimSpace(string(data))
		}
	}
	return client.New(serverURL, bearer)
}

func requestContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	parent := cmd.Context()
	if parent == nil {
		parent = context.Background()
	}
	return context.WithTimeout(parent, requestTimeout)
}

func describeError(err error) string {
	var apiErr *apperrors.APIError
	if errors.As(err, &apiErr) {
		msg := fmt.Sprintf("%s (%s)", apiErr.Message, apiErr.Code)
		if apiErr.Code == "unauthorized" {
			msg += "\nHint: run 'pomodoroctl login'"
		}
		return msg
	}
	return err.Error()
}

func defaultTokenFile() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "pomodoro", "token")
}

func envOr(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}
