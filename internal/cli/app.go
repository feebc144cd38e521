package cli

import (
	"fmt"

	"github.com/wadesk/wadesk/internal/agent"
	"github.com/wadesk/wadesk/internal/api"
	"github.com/wadesk/wadesk/internal/config"
	"github.com/wadesk/wadesk/internal/knowledge"
	"github.com/wadesk/wadesk/internal/provider"
	"github.com/wadesk/wadesk/internal/settings"
	"github.com/wadesk/wadesk/internal/store"
	"github.com/wadesk/wadesk/internal/whatsapp"

	"github.com/prometheus/client_golang/prometheus"
)

// app bundles the wired service graph behind the CLI commands.
type app struct {
	cfg      *config.Config
	store    *store.Store
	settings *settings.Service
	provider *provider.OpenAIProvider
	ingestor *knowledge.Ingestor
	searcher *knowledge.Searcher
	sender   *whatsapp.Sender
	server   *api.Server
}

func newApp() (*app, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading config: %w", err)
	}

	st, err := store.Open(cfg.Storage.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening store: %w", err)
	}

	settingsSvc := settings.NewService(st, cfg.WhatsApp.DefaultAINumber)
	prov := provider.NewOpenAIProvider(cfg.OpenAI.APIKey, cfg.OpenAI.APIBase, cfg.OpenAI.Model, cfg.OpenAI.EmbeddingModel)
	searcher := knowledge.NewSearcher(st, prov)
	ingestor := knowledge.NewIngestor(st, prov)
	sender := whatsapp.NewSender(cfg.WhatsApp.GraphAPIBase, cfg.WhatsApp.PhoneNumberID, cfg.WhatsApp.AccessToken)
	ag := agent.New(prov, settingsSvc, searcher, st)

	server := api.NewServer(api.Options{
		Store:         st,
		Settings:      settingsSvc,
		Agent:         ag,
		Sender:        sender,
		Ingestor:      ingestor,
		Searcher:      searcher,
		VerifyToken:   cfg.WhatsApp.VerifyToken,
		AuthToken:     cfg.Dashboard.AuthToken,
		SessionPrefix: cfg.WhatsApp.SessionPrefix,
		Registry:      prometheus.DefaultRegisterer,
	})

	return &app{
		cfg:      cfg,
		store:    st,
		settings: settingsSvc,
		provider: prov,
		ingestor: ingestor,
		searcher: searcher,
		sender:   sender,
		server:   server,
	}, nil
}

func (a *app) Close() error {
	return a.store.Close()
}
