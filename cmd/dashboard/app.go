package main

import (
	"context"
	"fmt"
	"io"

	"github.com/jrsteele09/acservice-dashboard/apiclient"
	"github.com/jrsteele09/acservice-dashboard/internal/config"
	"github.com/jrsteele09/acservice-dashboard/resources"
	"github.com/jrsteele09/acservice-dashboard/session"
	"github.com/jrsteele09/acservice-dashboard/tokenstore"
	"github.com/rs/zerolog/log"
)

// app is the session stack shared by every command
type app struct {
	config   config.Config
	store    tokenstore.Store
	client   *apiclient.Client
	sessions *session.Manager
	api      *resources.API
}

// newApp opens the configured token store and restores any stored session
func newApp(ctx context.Context, c config.Config) (*app, error) {
	store, err := tokenstore.Open(ctx, c)
	if err != nil {
		return nil, fmt.Errorf("open token store: %w", err)
	}

	client := apiclient.New(c.GetAPIBaseURL(), store, apiclient.WithTimeout(c.GetAPITimeout()))
	a := &app{
		config:   c,
		store:    store,
		client:   client,
		sessions: session.NewManager(client, store, session.WithLogoutTimeout(c.GetLogoutTimeout())),
		api:      resources.New(client),
	}
	a.sessions.InitializeAuth(ctx)
	return a, nil
}

func (a *app) Close() {
	if closer, ok := a.store.(io.Closer); ok {
		if err := closer.Close(); err != nil {
			log.Err(err).Msg("failed to close token store")
		}
	}
}
