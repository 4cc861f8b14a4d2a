package auth

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"github.com/sirupsen/logrus"
	spotifyauth "github.com/zmb3/spotify/v2/auth"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/clientcredentials"
)

// ErrMissingCredentials is returned when SPOTIFY_ID or SPOTIFY_SECRET is not set.
var ErrMissingCredentials = errors.New("missing SPOTIFY_ID or SPOTIFY_SECRET environment variable")

// Config holds the application credentials.
type Config struct {
	ClientID     string
	ClientSecret string
	// TokenURL defaults to the accounts service token endpoint.
	TokenURL string
}

// LoadConfig reads credentials from SPOTIFY_ID and SPOTIFY_SECRET.
// Returns ErrMissingCredentials if either variable is not set.
func LoadConfig() (*Config, error) {
	clientID := os.Getenv("SPOTIFY_ID")
	clientSecret := os.Getenv("SPOTIFY_SECRET")

	if clientID == "" || clientSecret == "" {
		return nil, ErrMissingCredentials
	}

	return &Config{
		ClientID:     clientID,
		ClientSecret: clientSecret,
		TokenURL:     spotifyauth.TokenURL,
	}, nil
}

func (c *Config) oauth() *clientcredentials.Config {
	tokenURL := c.TokenURL
	if tokenURL == "" {
		tokenURL = spotifyauth.TokenURL
	}
	return &clientcredentials.Config{
		ClientID:     c.ClientID,
		ClientSecret: c.ClientSecret,
		TokenURL:     tokenURL,
		AuthStyle:    oauth2.AuthStyleInHeader,
	}
}

// ClientCredentials returns an HTTP client that obtains and renews app access
// tokens with the client credentials grant. Tokens are kept in memory only.
func ClientCredentials(ctx context.Context, cfg *Config) *http.Client {
	return cfg.oauth().Client(ctx)
}

// Authenticator obtains app access tokens and persists them between runs.
type Authenticator struct {
	cfg   *clientcredentials.Config
	cache *TokenCache
	log   logrus.FieldLogger
}

// Option configures an Authenticator.
type Option func(*Authenticator)

// WithTokenCache persists tokens to cache. A nil cache disables persistence.
func WithTokenCache(cache *TokenCache) Option {
	return func(a *Authenticator) { a.cache = cache }
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(a *Authenticator) { a.log = l }
}

// New creates an Authenticator. Without WithTokenCache tokens are not persisted.
func New(cfg *Config, opts ...Option) *Authenticator {
	a := &Authenticator{
		cfg: cfg.oauth(),
		log: logrus.StandardLogger(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Authenticate returns an HTTP client that attaches a bearer token to every
// request. A still-valid cached token is reused; otherwise a new token is
// requested immediately so bad credentials fail here rather than on the first
// API call. Renewed tokens are written back to the cache.
func (a *Authenticator) Authenticate(ctx context.Context) (*http.Client, error) {
	logger := a.log.WithField("module", "auth")

	var seed *oauth2.Token
	if a.cache != nil {
		token, err := a.cache.Load()
		if err != nil {
			return nil, fmt.Errorf("loading cached token: %w", err)
		}
		if token.Valid() {
			logger.WithField("expiry", token.Expiry).Debug("using cached token")
			seed = token
		}
	}

	src := oauth2.ReuseTokenSource(seed, &cachingTokenSource{
		src:   a.cfg.TokenSource(ctx),
		cache: a.cache,
		log:   logger,
	})

	if seed == nil {
		logger.Debug("requesting new token")
		if _, err := src.Token(); err != nil {
			return nil, fmt.Errorf("requesting token: %w", err)
		}
	}

	return oauth2.NewClient(ctx, src), nil
}

// Logout removes the cached token.
func (a *Authenticator) Logout() error {
	if a.cache == nil {
		return nil
	}
	return a.cache.Delete()
}

// cachingTokenSource saves every token it fetches. Wrapped in a
// ReuseTokenSource it is only consulted when the current token expires.
type cachingTokenSource struct {
	src   oauth2.TokenSource
	cache *TokenCache
	log   logrus.FieldLogger
}

func (s *cachingTokenSource) Token() (*oauth2.Token, error) {
	token, err := s.src.Token()
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.Save(token); err != nil {
			// Auth succeeded, persistence is best effort.
			s.log.WithError(err).Warn("failed to cache token")
		}
	}
	return token, nil
}
