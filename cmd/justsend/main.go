package main

import (
	"flag"
	"log"
	"os"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pshrestha/justsend/internal/accounts"
	"github.com/pshrestha/justsend/internal/app"
	"github.com/pshrestha/justsend/internal/attachments"
	"github.com/pshrestha/justsend/internal/composer"
	"github.com/pshrestha/justsend/internal/credential"
	"github.com/pshrestha/justsend/internal/history"
	"github.com/pshrestha/justsend/internal/model"
	"github.com/pshrestha/justsend/internal/store"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default ~/.config/justsend/config.yaml)")
	flag.Parse()

	path := *configPath
	if path == "" {
		path = model.DefaultConfigPath()
	}

	cfg, err := model.LoadConfig(path)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	if err := os.MkdirAll(cfg.DataDir, 0o755); err != nil {
		log.Fatalf("failed to create data directory: %v", err)
	}

	s, err := store.NewSQLiteStore(cfg.DatabasePath())
	if err != nil {
		log.Fatalf("failed to open database: %v", err)
	}
	defer s.Close()

	storage, err := attachments.NewStorage(cfg.AttachmentsDir)
	if err != nil {
		log.Fatalf("failed to initialize attachment storage: %v", err)
	}

	creds := credential.NewKeyring(cfg.DataDir)

	mgr := accounts.NewManager(s, creds)
	c := composer.New(s, storage, creds, cfg.Resend.BaseURL)
	h := history.NewService(s, storage)

	p := tea.NewProgram(app.New(mgr, c, h), tea.WithAltScreen())
	if _, err := p.Run(); err != nil {
		log.Fatalf("failed to run program: %v", err)
	}
}
