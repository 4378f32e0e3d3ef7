package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/tvheim/bongtv/internal/bong"
	"github.com/tvheim/bongtv/internal/config"
	"github.com/tvheim/bongtv/internal/ratelimit"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Log in to your account and store the credentials",
	Long: `Prompt for the account credentials, verify them against the provider,
and store them in the configuration file.`,
	RunE: loginRun,
}

func loginRun(cmd *cobra.Command, args []string) error {
	reader := bufio.NewReader(os.Stdin)

	fmt.Print("Username: ")
	username, err := reader.ReadString('\n')
	if err != nil {
		return fmt.Errorf("reading username: %w", err)
	}
	username = strings.TrimSpace(username)

	fmt.Print("Password: ")
	passwordBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return fmt.Errorf("reading password: %w", err)
	}
	password := string(passwordBytes)

	creds := bong.Credentials{Username: username, Password: password}
	session, err := bong.NewSession(creds, bong.SessionConfig{
		BaseURL:   cfg.Provider.Host,
		CookieDir: cfg.Provider.CookieDir,
		Timeout:   cfg.Provider.Timeout,
		Gate:      ratelimit.NewGate(cfg.Provider.CallDelay),
		Logger:    logger,
	})
	if err != nil {
		return err
	}

	if _, err := session.Login(cmd.Context()); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	if err := config.SaveCredentials(username, password); err != nil {
		return fmt.Errorf("saving credentials: %w", err)
	}

	fmt.Println("Logged in, credentials saved.")
	return nil
}
