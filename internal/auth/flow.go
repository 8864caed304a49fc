// Package auth implements the per-platform OAuth credential lifecycle:
// nonce issuance, callback verification, code exchange and token storage.
package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"sellmaster/internal/apperrors"
	"sellmaster/internal/credentials"
	"sellmaster/internal/logger"
)

const (
	// nonceTTL bounds replay risk on abandoned logins.
	nonceTTL = 10 * time.Minute

	nonceBytes = 48
)

// Exchanger is the platform-specific half of the flow: building the consent
// URL and exchanging an authorization code for an access token. The state
// machine shape around it is shared by every platform.
type Exchanger interface {
	Platform() credentials.Platform

	// AuthURL returns the consent URL carrying state as the opaque nonce.
	// Fails with a config error when client credentials are absent.
	AuthURL(storeName, state string) (string, error)

	// Exchange trades the single-use authorization code for an access
	// token. Never retried: a replayed code would be rejected anyway.
	Exchange(ctx context.Context, storeName, code string) (string, error)
}

// Flow drives one platform's OAuth handshake against the credential store.
type Flow struct {
	exchanger Exchanger
	store     credentials.Store
	logger    *logger.Logger
}

func NewFlow(exchanger Exchanger, store credentials.Store, logger *logger.Logger) *Flow {
	return &Flow{
		exchanger: exchanger,
		store:     store,
		logger:    logger,
	}
}

// Platform names the marketplace this flow authenticates against.
func (f *Flow) Platform() credentials.Platform {
	return f.exchanger.Platform()
}

// CallbackQuery carries the authorization artifacts returned by the platform.
type CallbackQuery struct {
	State string
	Code  string
}

// Initiate generates a nonce, persists it and returns the consent URL to
// redirect the merchant to.
func (f *Flow) Initiate(ctx context.Context, storeName string) (string, error) {
	nonce, err := generateNonce()
	if err != nil {
		return "", fmt.Errorf("generating nonce: %w", err)
	}

	authURL, err := f.exchanger.AuthURL(storeName, nonce)
	if err != nil {
		return "", err
	}

	if err := f.store.Put(ctx, f.exchanger.Platform(), storeName, credentials.KindNonce, nonce, nonceTTL); err != nil {
		return "", apperrors.Transport(err, "persisting nonce")
	}

	f.logger.Debug("issued %s nonce for store %s", f.exchanger.Platform(), storeName)
	return authURL, nil
}

// HandleCallback verifies the returned state against the stored nonce,
// exchanges the code and persists the resulting token. The nonce is consumed
// on first read whether or not verification succeeds.
func (f *Flow) HandleCallback(ctx context.Context, storeName string, query CallbackQuery) error {
	platform := f.exchanger.Platform()

	nonce, ok, err := f.store.Get(ctx, platform, storeName, credentials.KindNonce)
	if err != nil {
		return apperrors.Transport(err, "loading nonce")
	}
	if ok {
		// Single-use: gone after the first callback touches it.
		if err := f.store.Delete(ctx, platform, storeName, credentials.KindNonce); err != nil {
			return apperrors.Transport(err, "consuming nonce")
		}
	}
	if !ok || query.State != nonce {
		return apperrors.ErrNonceMismatch
	}

	if query.Code == "" {
		return apperrors.Auth("no authorization code")
	}

	token, err := f.exchanger.Exchange(ctx, storeName, query.Code)
	if err != nil {
		f.logger.Error("%s token exchange failed for store %s: %v", platform, storeName, err)
		return err
	}

	if err := f.store.Put(ctx, platform, storeName, credentials.KindToken, token, 0); err != nil {
		return apperrors.Transport(err, "persisting token")
	}

	f.logger.Info("%s store %s authenticated", platform, storeName)
	return nil
}

func generateNonce() (string, error) {
	buf := make([]byte, nonceBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
