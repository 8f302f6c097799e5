package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/reunionrs/reunion-site-backend/admin"
	"github.com/reunionrs/reunion-site-backend/auth"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in with the backend password",
	RunE:  runLogin,
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the saved session",
	RunE:  runLogout,
}

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show whether the saved session is still valid",
	RunE:  runStatus,
}

func init() {
	loginCmd.Flags().Bool("password-stdin", false, "Read the password from stdin")
}

func runLogin(cmd *cobra.Command, args []string) error {
	saved, err := admin.LoadCredentials(credentialsPath)
	if err != nil {
		return fmt.Errorf("failed to read saved session: %w", err)
	}
	server := resolveServer(saved)

	password, err := readPassword(cmd)
	if err != nil {
		return err
	}
	if password == "" {
		return fmt.Errorf("password required")
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 30*time.Second)
	defer cancel()

	client := admin.NewClient(server, "")
	issued, err := client.Login(ctx, password)
	if err != nil {
		log.Warn().Err(err).Str("server", server).Msg("Login failed")
		return fmt.Errorf("login failed: %s", admin.Message(err))
	}

	creds := admin.Credentials{ServerURL: server, Token: issued.Token, ExpiresAt: issued.ExpiresAt}
	if err := admin.SaveCredentials(credentialsPath, creds); err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}

	fmt.Printf("Signed in to %s until %s\n", server, issued.ExpiresAt.Local().Format(time.RFC1123))
	return nil
}

func readPassword(cmd *cobra.Command) (string, error) {
	fromStdin, _ := cmd.Flags().GetBool("password-stdin")
	if fromStdin || !term.IsTerminal(int(os.Stdin.Fd())) {
		line, err := bufio.NewReader(os.Stdin).ReadString('\n')
		if err != nil && line == "" {
			return "", fmt.Errorf("failed to read password: %w", err)
		}
		return strings.TrimSpace(line), nil
	}

	fmt.Print("Password: ")
	passwordBytes, err := term.ReadPassword(int(os.Stdin.Fd()))
	fmt.Println()
	if err != nil {
		return "", fmt.Errorf("failed to read password: %w", err)
	}
	return strings.TrimSpace(string(passwordBytes)), nil
}

func runLogout(cmd *cobra.Command, args []string) error {
	if err := admin.ClearCredentials(credentialsPath); err != nil {
		return fmt.Errorf("failed to remove saved session: %w", err)
	}
	fmt.Println("Signed out.")
	return nil
}

func runStatus(cmd *cobra.Command, args []string) error {
	saved, err := admin.LoadCredentials(credentialsPath)
	if err != nil {
		return fmt.Errorf("failed to read saved session: %w", err)
	}
	if !saved.Valid(time.Now()) {
		fmt.Println("Not signed in.")
		return nil
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), 15*time.Second)
	defer cancel()

	session, err := admin.NewClient(resolveServer(saved), saved.Token).Session(ctx)
	if err != nil {
		return fmt.Errorf("failed to check session: %s", admin.Message(err))
	}
	if session.State != auth.StateAuthenticated {
		fmt.Println("Session expired. Run 'reunion-admin login' again.")
		return nil
	}
	fmt.Printf("Signed in to %s as %s\n", resolveServer(saved), session.User.ID)
	return nil
}
