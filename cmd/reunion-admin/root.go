package main

import (
	"io"
	"strings"

	"github.com/reunionrs/reunion-site-backend/admin"
	"github.com/reunionrs/reunion-site-backend/config"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

var (
	serverURL       string
	credentialsPath string
	logLevel        string
	logFile         string

	logCloser io.Closer
)

const defaultServerURL = "http://localhost:8080"

var rootCmd = &cobra.Command{
	Use:   "reunion-admin",
	Short: "Reunion Production admin panel",
	Long: `reunion-admin manages the portfolio of a running Reunion Production site.

Sign in once with 'reunion-admin login', then run 'reunion-admin' without
arguments to open the interactive panel.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// Keep the terminal clean for the panel unless a log file is given
		logCloser = config.SetupLogger(config.LogConfig{
			Level:      logLevel,
			FilePath:   logFile,
			MaxSizeMB:  10,
			MaxBackups: 5,
			MaxAgeDays: 7,
			Console:    logFile == "" && strings.EqualFold(logLevel, "debug"),
		})

		if credentialsPath == "" {
			path, err := admin.DefaultCredentialsPath()
			if err != nil {
				return err
			}
			credentialsPath = path
		}

		log.Debug().Str("command", cmd.Name()).Msg("reunion-admin started")
		return nil
	},
	RunE: runPanel,
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logCloser != nil {
			_ = logCloser.Close()
		}
	},
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Backend URL (default: saved session or "+defaultServerURL+")")
	rootCmd.PersistentFlags().StringVar(&credentialsPath, "credentials", "", "Path to the saved session (default ~/.reunion-admin/session.json)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "Log level (debug, info, warn, error)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Path to log file")

	rootCmd.AddCommand(loginCmd)
	rootCmd.AddCommand(logoutCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(panelCmd)
}

// resolveServer picks the flag, then the saved session, then the default.
func resolveServer(saved admin.Credentials) string {
	switch {
	case serverURL != "":
		return serverURL
	case saved.ServerURL != "":
		return saved.ServerURL
	default:
		return defaultServerURL
	}
}
