package jobsearch

import (
	"context"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	defaultAPIURL    = "http://localhost:8000"
	defaultUserAgent = "spigell/pathfinder"
	// Search analyses every posting on the backend side, so it is slow.
	defaultTimeout = 120 * time.Second
)

type Client struct {
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
}

func New(logger *zap.Logger, apiURL string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	apiURL = strings.TrimRight(strings.TrimSpace(apiURL), "/")
	if apiURL == "" {
		apiURL = defaultAPIURL
	}

	return &Client{
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger:    logger,
		UserAgent: defaultUserAgent,
	}
}

// Ping checks that the backend answers on its root endpoint.
func (c *Client) Ping(ctx context.Context) error {
	return c.getJSON(ctx, c.APIURL+"/", nil)
}
