package main

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fatih/color"
	"github.com/spf13/cobra"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Exchange the control password for a token and save it",
	Long: `Exchange the control password for a bearer token and save it to the
token file. The password is read from --password, $POMODORO_PASSWORD or the
first line of stdin.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		password, _ := cmd.Flags().GetString("password")
		if password == "" {
			password = os.Getenv("POMODORO_PASSWORD")
		}
		if password == "" {
			fmt.Fprint(cmd.ErrOrStderr(), "Password: ")
			line, err := bufio.NewReader(cmd.InOrStdin()).ReadString('\n')
			if err != nil && line == "" {
				return fmt.Errorf("read password: %w", err)
			}
			password = strings.TrimSpace(line)
		}

		ctx, cancel := requestContext(cmd)
		defer cancel()

		result, err := newClient().Token(ctx, password)
		if err != nil {
			return err
		}

		if tokenFile == "" {
			return errors.New("no token file location; pass --token-file")
		}
		if err := os.MkdirAll(filepath.Dir(tokenFile), 0o700); err != nil {
			return fmt.Errorf("create token dir: %w", err)
		}
		if err := os.WriteFile(tokenFile, []byte(result.Token+"\n"), 0o600); err != nil {
			return fmt.Errorf("save token: %w", err)
		}

		green := color.New(color.FgGreen).SprintFunc()
		fmt.Fprintf(cmd.OutOrStdout(), "%s logged in, token valid until %s\n",
			green("✓"), result.ExpiresAt.Local().Format("2006-01-02 15:04"))
		return nil
	},
}

func init() {
	loginCmd.Flags().String("password", "", "control password")
	rootCmd.AddCommand(loginCmd)
}
