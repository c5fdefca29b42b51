package jobsearch

import (
	"context"
	"fmt"

	"github.com/mitchellh/mapstructure"
	"go.uber.org/zap"
)

const (
	SearchPath = "/search-jobs"
	// TopMatchScore is the lowest score displayed as a top match.
	TopMatchScore = 85
)

type JobMatch struct {
	Title     string `json:"role"`
	Employer  string `json:"company"`
	ApplyURL  string `json:"link"`
	Score     int    `json:"score"`
	Rationale string `json:"justification"`
}

// IsTopMatch reports whether the match deserves the top match marker.
func (j JobMatch) IsTopMatch() bool {
	return j.Score >= TopMatchScore
}

type SearchParams struct {
	Roles      string `json:"roles"`
	Country    string `json:"country"`
	ResumeText string `json:"resume_text"`
}

type jobsResponse struct {
	Jobs []any `json:"jobs"`
}

// SearchJobs asks the backend to find and rank postings for the resume.
func (c *Client) SearchJobs(ctx context.Context, params *SearchParams) ([]JobMatch, error) {
	var response jobsResponse
	if err := c.postJSON(ctx, c.APIURL+SearchPath, params, &response); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSearchUnavailable, err)
	}

	jobs, err := decodeJobs(response.Jobs)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrSearchUnavailable, err)
	}

	c.logger.Debug("got jobs from backend", zap.String("roles", params.Roles), zap.Int("count", len(jobs)))

	return jobs, nil
}

func decodeJobs(items []any) ([]JobMatch, error) {
	jobs := make([]JobMatch, 0, len(items))
	if len(items) == 0 {
		return jobs, nil
	}

	cfg := &mapstructure.DecoderConfig{
		Metadata: nil,
		Result:   &jobs,
		TagName:  "json",
	}
	decoder, err := mapstructure.NewDecoder(cfg)
	if err != nil {
		return nil, err
	}

	if err := decoder.Decode(items); err != nil {
		return nil, fmt.Errorf("decode jobs: %w", err)
	}

	return jobs, nil
}
