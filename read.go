package edgarindex

import (
	"context"
	"fmt"
	"time"
)

// IndexMode selects which EDGAR index a read retrieves
type IndexMode string

const (
	// IndexModeFull retrieves the single full master index archive
	IndexModeFull IndexMode = "full"
	// IndexModeDaily aggregates per-day indices over a date range
	IndexModeDaily IndexMode = "daily"
)

// IndexOptions bounds a daily index read. A zero Start defaults to
// 2015-01-01 and a zero End to 2015-01-03; a Start before 1994-07-01 is
// clamped to it, the archive's earliest date.
type IndexOptions struct {
	Start time.Time
	End   time.Time
}

// Index retrieves the EDGAR filing index for the given mode. An
// unrecognized mode is an error, never a silently empty result.
func (c *Client) Index(ctx context.Context, mode IndexMode, opts *IndexOptions) ([]*IndexRecord, error) {
	switch mode {
	case IndexModeFull:
		return c.FullIndex(ctx)
	case IndexModeDaily:
		return c.DailyIndex(ctx, opts)
	}
	return nil, fmt.Errorf("unsupported index mode %q", mode)
}

// FullIndex retrieves and parses the full master index archive
func (c *Client) FullIndex(ctx context.Context) ([]*IndexRecord, error) {
	data, err := c.FileContents(ctx, FullIndexURL)
	if err != nil {
		return nil, fmt.Errorf("fetching full index: %w", err)
	}
	text, err := decodeIndexFile(FullIndexURL, data)
	if err != nil {
		return nil, err
	}
	records, err := parseIndex(text)
	if err != nil {
		return nil, fmt.Errorf("parsing full index: %w", err)
	}
	c.logger.Info().Int("records", len(records)).Msg("full index retrieved")
	return records, nil
}
