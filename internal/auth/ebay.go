package auth

import (
	"context"
	"errors"

	"golang.org/x/oauth2"

	"sellmaster/internal/apperrors"
	"sellmaster/internal/config"
	"sellmaster/internal/credentials"
)

const (
	// Sandbox URLs
	SandboxAuthURL  = "https://auth.sandbox.ebay.com/oauth2/authorize"
	SandboxTokenURL = "https://api.sandbox.ebay.com/identity/v1/oauth2/token"

	// Production URLs
	ProductionAuthURL  = "https://auth.ebay.com/oauth2/authorize"
	ProductionTokenURL = "https://api.ebay.com/identity/v1/oauth2/token"
)

// EbayExchanger exchanges authorization codes at eBay's token endpoint using
// Basic-auth client credentials. The redirect value eBay expects is the
// application RuName rather than a literal URL.
type EbayExchanger struct {
	oauthConfig *oauth2.Config
	configured  bool
}

func NewEbayExchanger(cfg *config.Config) *EbayExchanger {
	authURL := ProductionAuthURL
	tokenURL := ProductionTokenURL
	if cfg.EbaySandbox {
		authURL = SandboxAuthURL
		tokenURL = SandboxTokenURL
	}
	if cfg.EbayAuthURL != "" {
		authURL = cfg.EbayAuthURL
	}
	if cfg.EbayTokenURL != "" {
		tokenURL = cfg.EbayTokenURL
	}

	return &EbayExchanger{
		oauthConfig: &oauth2.Config{
			ClientID:     cfg.EbayClientID,
			ClientSecret: cfg.EbayClientSecret,
			RedirectURL:  cfg.EbayRuName,
			Endpoint: oauth2.Endpoint{
				AuthURL:   authURL,
				TokenURL:  tokenURL,
				AuthStyle: oauth2.AuthStyleInHeader,
			},
		},
		configured: cfg.EbayClientID != "" && cfg.EbayClientSecret != "",
	}
}

func (e *EbayExchanger) Platform() credentials.Platform {
	return credentials.PlatformEbay
}

func (e *EbayExchanger) AuthURL(storeName, state string) (string, error) {
	if !e.configured {
		return "", apperrors.Config("ebay client credentials not configured")
	}
	return e.oauthConfig.AuthCodeURL(state), nil
}

func (e *EbayExchanger) Exchange(ctx context.Context, storeName, code string) (string, error) {
	if !e.configured {
		return "", apperrors.Config("ebay client credentials not configured")
	}

	token, err := e.oauthConfig.Exchange(ctx, code)
	if err != nil {
		var retrieveErr *oauth2.RetrieveError
		if errors.As(err, &retrieveErr) {
			return "", &apperrors.Error{
				Kind:    apperrors.KindAuth,
				Message: "ebay rejected authorization code",
				Status:  retrieveErr.Response.StatusCode,
				Body:    string(retrieveErr.Body),
				Err:     err,
			}
		}
		return "", apperrors.Transport(err, "ebay token exchange")
	}

	return token.AccessToken, nil
}
