package net

import (
	"context"
	"net/http"
	"time"

	"golang.org/x/oauth2"
)

const (
	maxIdleConns       = 10
	idleTimeoutSeconds = 60
	clientAgent        = "transparency/1.0 (+https://github.com/hedamo/transparency)"

	bearerTokenType = "Bearer"
)

var (
	reqTransport = &http.Transport{
		MaxIdleConns:          maxIdleConns,
		IdleConnTimeout:       idleTimeoutSeconds * time.Second,
		DisableCompression:    true,
		DisableKeepAlives:     false,
		ResponseHeaderTimeout: idleTimeoutSeconds * time.Second,
	}
)

// GetHTTPClient returns a plain client bounded by timeout.
func GetHTTPClient(timeout time.Duration) *http.Client {
	return &http.Client{
		Timeout:   timeout,
		Transport: reqTransport,
	}
}

// GetBearerClient returns a client that sends token as a bearer
// Authorization header on every request. An empty token yields a plain client.
func GetBearerClient(ctx context.Context, token string, timeout time.Duration) *http.Client {
	base := GetHTTPClient(timeout)
	if token == "" {
		return base
	}

	ts := oauth2.StaticTokenSource(
		&oauth2.Token{
			TokenType:   bearerTokenType,
			AccessToken: token,
		},
	)
	tc := oauth2.NewClient(context.WithValue(ctx, oauth2.HTTPClient, base), ts)
	tc.Timeout = timeout

	return tc
}
