package main

import (
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/reunionrs/reunion-site-backend/admin"
	"github.com/reunionrs/reunion-site-backend/admin/tui"
	"github.com/reunionrs/reunion-site-backend/auth"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var panelCmd = &cobra.Command{
	Use:   "panel",
	Short: "Open the interactive project panel",
	RunE:  runPanel,
}

func runPanel(cmd *cobra.Command, args []string) error {
	saved, err := admin.LoadCredentials(credentialsPath)
	if err != nil {
		return fmt.Errorf("failed to read saved session: %w", err)
	}

	// An expired token still opens the panel; the guard shows the sign-in hint
	token := saved.Token
	if !saved.Valid(time.Now()) {
		token = ""
	}
	client := admin.NewClient(resolveServer(saved), token)

	m := tui.NewModel(auth.NewSessions(), client, client)
	defer m.Close()

	log.Info().Str("server", resolveServer(saved)).Msg("Launching panel")
	p := tea.NewProgram(m, tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Error().Err(err).Msg("Panel error")
		return fmt.Errorf("failed to run panel: %w", err)
	}
	return nil
}
