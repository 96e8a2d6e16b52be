// Package identity pushes public metadata changes back to the hosted identity provider.
package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"golang.org/x/oauth2/clientcredentials"

	"github.com/SimoSabev/LynkSkill-sub003/internal/models"
)

// PublicMetadata is the subset of provider metadata owned by this service.
type PublicMetadata struct {
	Role               models.UserRole `json:"role,omitempty"`
	OnboardingComplete bool            `json:"onboarding_complete"`
}

//go:generate mockgen -source=syncer.go -destination=mock/syncer_mock.go -package=mock

// MetadataSyncer updates a user's public metadata at the identity provider.
type MetadataSyncer interface {
	SyncPublicMetadata(ctx context.Context, externalID string, metadata PublicMetadata) error
}

// Config configures the admin API client.
type Config struct {
	BaseURL      string
	TokenURL     string
	ClientID     string
	ClientSecret string
	Scopes       []string
	Timeout      time.Duration
}

// Enabled reports whether enough configuration is present to talk to the admin API.
func (c Config) Enabled() bool {
	return strings.TrimSpace(c.BaseURL) != "" && strings.TrimSpace(c.TokenURL) != ""
}

// HTTPSyncer calls the provider's admin API with an OAuth2 client-credentials token.
type HTTPSyncer struct {
	baseURL string
	client  *http.Client
}

// NewHTTPSyncer builds a syncer. ctx scopes the token source's HTTP client.
func NewHTTPSyncer(ctx context.Context, cfg Config) (*HTTPSyncer, error) {
	if !cfg.Enabled() {
		return nil, errors.New("identity: base url and token url are required")
	}
	if cfg.ClientID == "" || cfg.ClientSecret == "" {
		return nil, errors.New("identity: client credentials are required")
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}

	cc := clientcredentials.Config{
		ClientID:     cfg.ClientID,
		ClientSecret: cfg.ClientSecret,
		TokenURL:     cfg.TokenURL,
		Scopes:       cfg.Scopes,
	}
	client := cc.Client(ctx)
	client.Timeout = cfg.Timeout

	return &HTTPSyncer{
		baseURL: strings.TrimRight(cfg.BaseURL, "/"),
		client:  client,
	}, nil
}

// SyncPublicMetadata issues PATCH {base}/users/{externalID}/metadata.
func (s *HTTPSyncer) SyncPublicMetadata(ctx context.Context, externalID string, metadata PublicMetadata) error {
	if externalID == "" {
		return errors.New("identity: external id is required")
	}

	body, err := json.Marshal(map[string]any{"public_metadata": metadata})
	if err != nil {
		return fmt.Errorf("identity: encode metadata: %w", err)
	}

	endpoint := fmt.Sprintf("%s/users/%s/metadata", s.baseURL, url.PathEscape(externalID))
	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, endpoint, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("identity: build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("identity: sync metadata: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("identity: sync metadata: unexpected status %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	return nil
}

// NopSyncer is used when no admin API is configured.
type NopSyncer struct{}

// SyncPublicMetadata does nothing.
func (NopSyncer) SyncPublicMetadata(context.Context, string, PublicMetadata) error { return nil }
