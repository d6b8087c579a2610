// Package auth owns the OAuth2 lifecycle against Xero: the authorization-code
// flow, tenant discovery, expiry detection, and token refresh. It is the only
// component that mutates the stored credential.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"golang.org/x/oauth2"

	"github.com/max-sakeco/xero-sync/internal/common"
	"github.com/max-sakeco/xero-sync/internal/config"
	"github.com/max-sakeco/xero-sync/internal/logging"
	"github.com/max-sakeco/xero-sync/internal/models"
	"github.com/max-sakeco/xero-sync/internal/repositories/tokens"
)

// ExpirySkew is subtracted from the stored expiry instant before comparison,
// so a token about to expire is refreshed instead of racing expiry
// mid-request.
const ExpirySkew = 60 * time.Second

// Scopes requested from Xero. offline_access is what yields a refresh token.
var Scopes = []string{"accounting.transactions", "accounting.contacts", "offline_access"}

// Session manages the OAuth credential for a single Xero tenant.
// Refreshes are serialized under a mutex so overlapping runs cannot
// trigger competing refresh calls.
type Session struct {
	oauth          *oauth2.Config
	connectionsURL string
	tokens         tokens.Repository
	httpClient     *http.Client
	logger         logging.Logger

	mu sync.Mutex
}

// NewSession constructs a Session from configuration and a credential store.
func NewSession(cfg *config.Config, repo tokens.Repository, logger logging.Logger) *Session {
	return &Session{
		oauth: &oauth2.Config{
			ClientID:     cfg.XeroClientID,
			ClientSecret: cfg.XeroClientSecret,
			RedirectURL:  cfg.XeroRedirectURI,
			Scopes:       Scopes,
			Endpoint: oauth2.Endpoint{
				AuthURL:  cfg.XeroAuthURL,
				TokenURL: cfg.XeroTokenURL,
			},
		},
		connectionsURL: cfg.XeroConnectionsURL,
		tokens:         repo,
		httpClient:     &http.Client{Timeout: cfg.HTTPClientTimeout},
		logger:         logger,
	}
}

// AuthorizationURL builds the provider consent-screen URL. No side effects
// on stored state.
func (s *Session) AuthorizationURL(state string) string {
	return s.oauth.AuthCodeURL(state)
}

// CompleteAuthorization exchanges the callback code for a token pair,
// discovers the tenant, and persists the resulting credential.
func (s *Session) CompleteAuthorization(ctx context.Context, code string) (*models.Credential, error) {
	token, err := s.oauth.Exchange(s.withHTTPClient(ctx), code)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrAuthExchange, err)
	}

	tenantID, err := s.firstTenant(ctx, token.AccessToken)
	if err != nil {
		return nil, err
	}

	cred := credentialFromToken(token, tenantID)
	if err := s.tokens.Save(ctx, cred); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "authorization complete", "tenant_id", tenantID)
	return cred, nil
}

// EnsureValid returns a non-expired credential, refreshing it first when the
// stored expiry (minus skew) has passed. It is the only success path for
// obtaining an access token.
func (s *Session) EnsureValid(ctx context.Context) (*models.Credential, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cred, err := s.tokens.Load(ctx)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotAuthenticated
		}
		return nil, err
	}

	if time.Now().Before(cred.ExpiresAt.Add(-ExpirySkew)) {
		return cred, nil
	}

	s.logger.Info(ctx, "access token expired, refreshing", "tenant_id", cred.TenantID)

	src := s.oauth.TokenSource(s.withHTTPClient(ctx), &oauth2.Token{RefreshToken: cred.RefreshToken})
	token, err := src.Token()
	if err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrRefresh, err)
	}

	refreshed := credentialFromToken(token, cred.TenantID)
	if refreshed.RefreshToken == "" {
		// Providers may omit the refresh token on rotation; keep the old one.
		refreshed.RefreshToken = cred.RefreshToken
	}
	if err := s.tokens.Save(ctx, refreshed); err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "token refreshed", "tenant_id", refreshed.TenantID, "expires_at", refreshed.ExpiresAt)
	return refreshed, nil
}

// firstTenant calls the connections endpoint and selects the first connected
// organisation. The remote account is assumed single-tenant.
func (s *Session) firstTenant(ctx context.Context, accessToken string) (string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.connectionsURL, nil)
	if err != nil {
		return "", fmt.Errorf("%w: building connections request: %v", common.ErrAuthExchange, err)
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: connections request: %v", common.ErrAuthExchange, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return "", fmt.Errorf("%w: connections status %d: %s", common.ErrAuthExchange, resp.StatusCode, string(body))
	}

	var connections []struct {
		TenantID string `json:"tenantId"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&connections); err != nil {
		return "", fmt.Errorf("%w: decoding connections: %v", common.ErrAuthExchange, err)
	}
	if len(connections) == 0 {
		return "", common.ErrNoTenant
	}
	return connections[0].TenantID, nil
}

func (s *Session) withHTTPClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, s.httpClient)
}

func credentialFromToken(token *oauth2.Token, tenantID string) *models.Credential {
	tokenType := token.TokenType
	if tokenType == "" {
		tokenType = "Bearer"
	}
	return &models.Credential{
		TenantID:     tenantID,
		AccessToken:  token.AccessToken,
		RefreshToken: token.RefreshToken,
		TokenType:    tokenType,
		ExpiresAt:    token.Expiry,
	}
}
