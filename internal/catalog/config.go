package catalog

import (
	"errors"
	"fmt"
	"os"
	"strconv"

	"golang.org/x/time/rate"
)

const (
	// DefaultBaseURL is the public Web API root.
	DefaultBaseURL = "https://api.spotify.com/v1/"

	// DefaultRateLimit is the request rate used when SPOTIFY_RATE_LIMIT is unset.
	DefaultRateLimit = 10
)

// ErrInvalidRateLimit is returned when SPOTIFY_RATE_LIMIT is not a positive number.
var ErrInvalidRateLimit = errors.New("invalid SPOTIFY_RATE_LIMIT environment variable")

// Config holds catalog API configuration.
type Config struct {
	BaseURL string
	// RateLimit is the sustained number of requests per second.
	RateLimit rate.Limit
}

// LoadConfig reads catalog configuration from environment variables. Both
// SPOTIFY_API_URL and SPOTIFY_RATE_LIMIT are optional.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		BaseURL:   DefaultBaseURL,
		RateLimit: DefaultRateLimit,
	}

	if u := os.Getenv("SPOTIFY_API_URL"); u != "" {
		cfg.BaseURL = u
	}

	if s := os.Getenv("SPOTIFY_RATE_LIMIT"); s != "" {
		n, err := strconv.ParseFloat(s, 64)
		if err != nil || n <= 0 {
			return nil, fmt.Errorf("%w: %q", ErrInvalidRateLimit, s)
		}
		cfg.RateLimit = rate.Limit(n)
	}

	return cfg, nil
}
