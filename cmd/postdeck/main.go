package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/csheth/postdeck/internal/backend"
	"github.com/csheth/postdeck/internal/config"
	"github.com/csheth/postdeck/internal/logging"
	"github.com/csheth/postdeck/internal/poll"
	"github.com/csheth/postdeck/internal/session"
	"github.com/csheth/postdeck/internal/theme"
	"github.com/csheth/postdeck/internal/tui"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(ctx)
	if err != nil {
		fmt.Println("config error:", err)
		os.Exit(1)
	}

	baseURL := flag.String("base-url", cfg.Backend.BaseURL, "posting backend base URL")
	cookie := flag.String("session-cookie", cfg.Backend.SessionCookie, "session cookie sent with every request (name=value)")
	logFile := flag.String("log-file", cfg.Log.File, "structured log destination (default: user cache dir)")
	logLevel := flag.String("log-level", cfg.Log.Level, "log level: debug, info, warn, error")
	themeFile := flag.String("theme-file", cfg.UI.ThemeFile, "theme preference file (default: user config dir)")
	noAltScreen := flag.Bool("no-alt-screen", false, "disable the alternate screen buffer")
	flag.Parse()

	cfg.Backend.BaseURL = *baseURL
	cfg.Backend.SessionCookie = *cookie
	cfg.Log.File = *logFile
	cfg.Log.Level = *logLevel
	cfg.UI.ThemeFile = *themeFile

	logger, err := logging.New(cfg.Log.Level, cfg.Log.File)
	if err != nil {
		fmt.Println("failed to open log file:", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()

	client, err := backend.New(backend.Config{
		BaseURL:       cfg.Backend.BaseURL,
		SubmitPath:    cfg.Backend.SubmitPath,
		SessionCookie: cfg.Backend.SessionCookie,
		HTTPClient:    &http.Client{Timeout: cfg.Backend.HTTPTimeout},
	})
	if err != nil {
		fmt.Println("backend error:", err)
		os.Exit(1)
	}

	loc, err := cfg.Location()
	if err != nil {
		fmt.Println("config error:", err)
		os.Exit(1)
	}

	themePath := cfg.UI.ThemeFile
	if themePath == "" {
		if themePath, err = theme.DefaultPath(); err != nil {
			logger.Warn("theme will not persist", zap.Error(err))
		}
	}
	var store *theme.Store
	if themePath != "" {
		store = theme.NewStore(themePath)
	}

	logger.Info("starting postdeck", zap.Stringer("backend", client), zap.String("tz", loc.String()))

	opts := []tea.ProgramOption{}
	if !*noAltScreen {
		opts = append(opts, tea.WithAltScreen())
	}
	program := tea.NewProgram(
		tui.New(tui.Config{
			Context:    ctx,
			Backend:    client,
			Logger:     logger,
			Location:   loc,
			Settings:   session.Settings{Platforms: cfg.Targets()},
			Signatures: cfg.Signatures(),
			Theme:      store,
			SystemDark: lipgloss.HasDarkBackground(),
			Poll:       poll.Options{Attempts: cfg.Poll.Attempts, Interval: cfg.Poll.Interval},
		}),
		opts...,
	)

	if _, err := program.Run(); err != nil {
		logger.Error("program error", zap.Error(err))
		fmt.Println("program error:", err)
		os.Exit(1)
	}
}
