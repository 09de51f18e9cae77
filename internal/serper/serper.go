package serper

import (
	"context"
	"net/http"
	"time"

	"go.uber.org/zap"
)

const (
	apiURL    = "https://google.serper.dev"
	userAgent = "sponsor-scout (+https://github.com/ucformula/sponsor-scout)"
)

type Client struct {
	apiKey     string
	logger     *zap.Logger
	HTTPClient *http.Client
	UserAgent  string
	APIURL     string
	// Defaults are merged into every query.
	Defaults SearchParams
}

func New(logger *zap.Logger, apiKey string) *Client {
	if logger == nil {
		logger = zap.NewNop()
	}

	return &Client{
		apiKey: apiKey,
		APIURL: apiURL,
		HTTPClient: &http.Client{
			Timeout: 30 * time.Second,
		},
		logger:    logger,
		UserAgent: userAgent,
	}
}

// Search runs one query. Any failure is logged and reported as a nil result so
// callers can treat it as "no candidates from this query".
func (c *Client) Search(ctx context.Context, query string) *SearchResult {
	params := c.Defaults
	params.Q = query

	result, err := c.search(ctx, &params)
	if err != nil {
		c.logger.Warn("search failed", zap.String("query", query), zap.Error(err))
		return nil
	}

	return result
}
