package oauth

import (
	"context"
	"net/http"
	"strings"
	"sync"

	"flight-event-mock-service/internal/domain/entity"
	"flight-event-mock-service/pkg/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// ClientCredentialsOAuth hands out HTTP clients authenticated with the client
// credentials grant. Token sources are cached per credential set so tokens are
// reused until they expire.
type ClientCredentialsOAuth struct {
	logger  logger.Logger
	mu      sync.Mutex
	sources map[string]oauth2.TokenSource
}

// NewClientCredentialsOAuth creates a new client credentials handler
func NewClientCredentialsOAuth(logger logger.Logger) *ClientCredentialsOAuth {
	return &ClientCredentialsOAuth{
		logger:  logger,
		sources: make(map[string]oauth2.TokenSource),
	}
}

// GetTokenSource returns the cached token source for creds. base performs the
// token requests.
func (o *ClientCredentialsOAuth) GetTokenSource(creds *entity.ClientCredentials, base *http.Client) oauth2.TokenSource {
	key := strings.Join([]string{creds.TokenURL, creds.ClientID, creds.ClientSecret, strings.Join(creds.Scopes, " ")}, "|")

	o.mu.Lock()
	defer o.mu.Unlock()

	if ts, ok := o.sources[key]; ok {
		return ts
	}

	config := &clientcredentials.Config{
		ClientID:     creds.ClientID,
		ClientSecret: creds.ClientSecret,
		TokenURL:     creds.TokenURL,
		Scopes:       creds.Scopes,
	}
	ctx := context.WithValue(context.Background(), oauth2.HTTPClient, base)
	ts := config.TokenSource(ctx)
	o.sources[key] = ts

	o.logger.Debug("Created client credentials token source", "tokenUrl", creds.TokenURL, "clientId", creds.ClientID)
	return ts
}

// Client wraps base so every request carries a bearer token for creds
func (o *ClientCredentialsOAuth) Client(creds *entity.ClientCredentials, base *http.Client) *http.Client {
	return &http.Client{
		Transport: &oauth2.Transport{
			Source: o.GetTokenSource(creds, base),
			Base:   base.Transport,
		},
		Timeout: base.Timeout,
	}
}
