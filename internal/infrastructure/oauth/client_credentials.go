package oauth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"wanderlust-service/pkg/logger"

	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// RenewBefore is how long before expiry a cached token is replaced
const RenewBefore = 60 * time.Second

// ClientCredentials handles the OAuth client-credentials exchange for
// providers such as Amadeus
type ClientCredentials struct {
	config  *clientcredentials.Config
	timeout time.Duration
	logger  logger.Logger
}

// NewClientCredentials creates a new client-credentials handler
func NewClientCredentials(clientID, clientSecret, tokenURL string, timeout time.Duration, logger logger.Logger) *ClientCredentials {
	config := &clientcredentials.Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     tokenURL,
		AuthStyle:    oauth2.AuthStyleInParams,
	}

	return &ClientCredentials{
		config:  config,
		timeout: timeout,
		logger:  logger,
	}
}

// GetTokenSource returns a caching token source that renews RenewBefore
// ahead of expiry
func (o *ClientCredentials) GetTokenSource(ctx context.Context) oauth2.TokenSource {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: o.timeout})
	return oauth2.ReuseTokenSourceWithExpiry(nil, o.config.TokenSource(ctx), RenewBefore)
}

// HTTPClient returns a client that authorizes every request with a
// current bearer token
func (o *ClientCredentials) HTTPClient(ctx context.Context) *http.Client {
	client := oauth2.NewClient(ctx, o.GetTokenSource(ctx))
	client.Timeout = o.timeout
	return client
}

// FetchToken performs one exchange, bypassing the cache
func (o *ClientCredentials) FetchToken(ctx context.Context) (*oauth2.Token, error) {
	ctx = context.WithValue(ctx, oauth2.HTTPClient, &http.Client{Timeout: o.timeout})
	token, err := o.config.Token(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch client credentials token: %w", err)
	}

	o.logger.Info("Access token obtained", "expiry", token.Expiry)

	return token, nil
}

// TokenToJSON converts a token to JSON
func (o *ClientCredentials) TokenToJSON(token *oauth2.Token) (string, error) {
	data, err := json.MarshalIndent(token, "", "  ")
	if err != nil {
		return "", err
	}
	return string(data), nil
}
