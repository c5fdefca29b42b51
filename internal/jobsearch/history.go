package jobsearch

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"
)

const (
	HistoryPath = "/search-history"
	ResultsPath = "/search-results"
)

type HistoryRecord struct {
	ID       int    `json:"id"`
	Query    string `json:"query"`
	JobCount int    `json:"job_count" mapstructure:"job_count"`
	Location string `json:"location"`
	// CreatedAt is kept as the raw backend timestamp.
	CreatedAt string `json:"created_at" mapstructure:"created_at"`
}

type historyResponse struct {
	History []any `json:"history"`
}

// ListHistory returns the recent searches known to the backend.
func (c *Client) ListHistory(ctx context.Context) ([]HistoryRecord, error) {
	var response historyResponse
	if err := c.getJSON(ctx, c.APIURL+HistoryPath, &response); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHistoryUnavailable, err)
	}

	var records []HistoryRecord
	cfg := &mapstructure.DecoderConfig{
		Result:           &records,
		TagName:          "json",
		WeaklyTypedInput: true,
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(response.History); err != nil {
		return nil, fmt.Errorf("%w: decode history: %w", ErrHistoryUnavailable, err)
	}

	return records, nil
}

// FetchHistoryItem returns the jobs stored for a past search.
func (c *Client) FetchHistoryItem(ctx context.Context, id int) ([]JobMatch, error) {
	var response jobsResponse
	if err := c.getJSON(ctx, fmt.Sprintf("%s%s/%d", c.APIURL, ResultsPath, id), &response); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHistoryUnavailable, err)
	}

	jobs, err := decodeJobs(response.Jobs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrHistoryUnavailable, err)
	}

	return jobs, nil
}
