package cmd

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"fair-invitations/internal/config"
	"fair-invitations/internal/handler"
	"fair-invitations/internal/history"
	"fair-invitations/internal/portal"
	"fair-invitations/internal/source"
	"fair-invitations/internal/storage"
	"fair-invitations/internal/whatsapp"
)

// app holds the wired components shared by the commands
type app struct {
	cfg         *config.Config
	log         zerolog.Logger
	storage     *storage.Storage
	history     *history.Store
	portal      *portal.Client
	invitations *handler.InvitationHandler
	opener      *source.Router
	s3          *source.S3Source
	whatsapp    *whatsapp.Service
}

type appOptions struct {
	// needPortal requires a valid portal configuration
	needPortal bool
	// notify connects WhatsApp for organizer notifications when enabled in config
	notify bool
}

func newApp(ctx context.Context, cfg *config.Config, log zerolog.Logger, opts appOptions) (*app, error) {
	if opts.needPortal {
		if err := cfg.Validate(); err != nil {
			return nil, fmt.Errorf("invalid configuration: %w", err)
		}
	}

	if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	a := &app{cfg: cfg, log: log}

	st, err := storage.NewStorage(filepath.Join(cfg.DataDir, "guests.json"))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	a.storage = st

	hist, err := history.Open(filepath.Join(cfg.DataDir, "history.db"))
	if err != nil {
		return nil, err
	}
	a.history = hist

	a.opener = &source.Router{Local: source.NewLocalSource(".")}
	if cfg.S3.Enabled() {
		s3src, err := source.NewS3Source(ctx, source.S3Config{
			Region:          cfg.S3.Region,
			Endpoint:        cfg.S3.Endpoint,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
		})
		if err != nil {
			a.Close()
			return nil, err
		}
		a.s3 = s3src
		a.opener.S3 = s3src
	}

	baseURL := cfg.Portal.BaseURL
	if baseURL == "" {
		// commands that never reach the portal still build a client
		baseURL = "http://localhost"
	}
	client, err := portal.NewClient(portal.Config{
		BaseURL: baseURL,
		Token:   cfg.Portal.Token,
		Role:    portal.Role(cfg.Portal.Role),
		Timeout: cfg.Portal.Timeout,
	}, log)
	if err != nil {
		a.Close()
		return nil, fmt.Errorf("failed to create portal client: %w", err)
	}
	a.portal = client

	var notifier handler.Notifier
	if opts.notify && cfg.WhatsApp.Enabled {
		wa, err := whatsapp.NewService(&whatsapp.Config{
			DataDir:        filepath.Join(cfg.DataDir, "whatsapp"),
			OrganizerPhone: cfg.WhatsApp.OrganizerPhone,
			CountryCode:    cfg.WhatsApp.CountryCode,
		}, log)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to initialize WhatsApp service: %w", err)
		}
		fmt.Println("Connecting to WhatsApp...")
		if err := wa.Connect(); err != nil {
			a.Close()
			return nil, fmt.Errorf("failed to connect to WhatsApp: %w", err)
		}
		a.whatsapp = wa
		notifier = wa
	}

	caps := handler.Capabilities{
		Sender:     client,
		Templates:  client,
		Benefits:   client,
		Recipients: client,
	}
	a.invitations = handler.NewInvitationHandler(caps, st, hist, notifier, &handler.Config{
		HeaderImageURL: cfg.Branding.HeaderImageURL,
		MaxRecipients:  cfg.MaxRecipients,
	}, log)

	if a.whatsapp != nil {
		bot := handler.NewOrganizerBot(a.invitations, a.whatsapp)
		a.whatsapp.SetMessageHandler(bot.HandleMessage)
	}

	return a, nil
}

// exhibition returns the --exhibition flag or the loaded session's exhibition
func (a *app) exhibition() string {
	if exhibitionID != "" {
		return exhibitionID
	}
	return a.storage.Session().ExhibitionID
}

func (a *app) Close() {
	if a.whatsapp != nil {
		a.whatsapp.Disconnect()
	}
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			a.log.Warn().Err(err).Msg("Failed to close history database")
		}
	}
}
