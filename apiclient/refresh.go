package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	dasherrors "github.com/jrsteele09/acservice-dashboard/internal/errors"
	"github.com/jrsteele09/acservice-dashboard/token"
	"github.com/jrsteele09/acservice-dashboard/tokenstore"
	"github.com/rs/zerolog/log"
)

type refreshRequest struct {
	RefreshToken string `json:"refresh_token"`
}

type refreshResponse struct {
	Data struct {
		Tokens token.Pair `json:"tokens"`
	} `json:"data"`
}

// recoverSession returns an access token to retry with after a request sent
// with sentWith was rejected. Concurrent callers share one refresh call.
func (c *Client) recoverSession(ctx context.Context, sentWith string) (string, error) {
	if refreshToken, _ := c.store.Get(tokenstore.KeyRefreshToken); refreshToken == "" {
		c.invalidate(dasherrors.ErrNoSession)
		return "", dasherrors.ErrNoSession
	}

	// The flight is shared, so it runs detached from this caller's cancellation.
	flightCtx := context.WithoutCancel(ctx)
	v, err, shared := c.refreshes.Do(refreshFlight, func() (any, error) {
		gen := c.generation.Load()

		// A previous flight may have rotated the pair after this request was sent.
		if current, _ := c.store.Get(tokenstore.KeyAccessToken); current != "" && current != sentWith {
			return current, nil
		}

		refreshToken, _ := c.store.Get(tokenstore.KeyRefreshToken)
		if refreshToken == "" {
			c.invalidate(dasherrors.ErrNoSession)
			return "", dasherrors.ErrNoSession
		}

		pair, err := c.refresh(flightCtx, refreshToken)

		superseded := false
		c.sessionMu.Lock()
		switch {
		case c.generation.Load() != gen:
			superseded = true
		case err == nil:
			err = tokenstore.SaveTokens(c.store, pair)
		}
		if err != nil && !superseded {
			c.clearLocked()
		}
		c.sessionMu.Unlock()

		if superseded {
			log.Debug().Msg("session replaced during token refresh, discarding refreshed pair")
			return "", dasherrors.ErrNoSession
		}
		if err != nil {
			log.Warn().Err(err).Msg("token refresh failed, ending session")
			sessionErr := fmt.Errorf("%w: %w", dasherrors.ErrSessionInvalid, err)
			c.notifyInvalid(sessionErr)
			return "", sessionErr
		}

		log.Debug().Msg("token pair refreshed")
		return pair.AccessToken, nil
	})
	if err != nil {
		return "", err
	}
	if shared {
		log.Debug().Msg("joined in-flight token refresh")
	}
	return v.(string), nil
}

// refresh exchanges the refresh token for a new pair. It goes straight to the
// transport: no bearer header and no 401 handling of its own.
func (c *Client) refresh(ctx context.Context, refreshToken string) (token.Pair, error) {
	body, err := json.Marshal(refreshRequest{RefreshToken: refreshToken})
	if err != nil {
		return token.Pair{}, fmt.Errorf("encode refresh request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+RefreshPath, bytes.NewReader(body))
	if err != nil {
		return token.Pair{}, fmt.Errorf("create refresh request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")

	resp, err := c.roundTrip(ctx, httpReq)
	if err != nil {
		return token.Pair{}, err
	}
	if _, err := resultOf(resp); err != nil {
		return token.Pair{}, err
	}

	var out refreshResponse
	if err := resp.Decode(&out); err != nil {
		return token.Pair{}, err
	}
	if !out.Data.Tokens.Complete() {
		return token.Pair{}, fmt.Errorf("refresh response is missing tokens")
	}
	return out.Data.Tokens, nil
}

// invalidate wipes the stored session and notifies the registered handler
func (c *Client) invalidate(cause error) {
	c.sessionMu.Lock()
	c.clearLocked()
	c.sessionMu.Unlock()
	c.notifyInvalid(cause)
}

// clearLocked removes the auth keys and ends the generation; sessionMu must be held
func (c *Client) clearLocked() {
	c.generation.Add(1)
	if err := tokenstore.ClearAuth(c.store); err != nil {
		log.Err(err).Msg("failed to clear token store")
	}
}

func (c *Client) notifyInvalid(cause error) {
	c.mu.RLock()
	fn := c.onSessionInvalid
	c.mu.RUnlock()
	if fn != nil {
		fn(cause)
	}
}
