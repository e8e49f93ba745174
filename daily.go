package edgarindex

import (
	"context"
	"fmt"
	"path"

	"golang.org/x/sync/errgroup"
)

// DailyIndex walks the daily index tree for the resolved date range and
// concatenates every matching per-day master index into one table. Table
// order is the walker's traversal order of the matched files, each file's
// internal order preserved; records are never re-sorted. A range outside
// the archived years yields an empty table, not an error.
func (c *Client) DailyIndex(ctx context.Context, opts *IndexOptions) ([]*IndexRecord, error) {
	start, end := resolveDateRange(opts)
	c.logger.Debug().Time("start", start).Time("end", end).Msg("resolved date range")

	sess, err := c.dialSession(ctx)
	if err != nil {
		return nil, fmt.Errorf("dialing archive session: %w", err)
	}
	entries, err := c.walkDirectory(sess, dailyIndexRoot, start, end, 0)
	closeErr := sess.Close()
	if err != nil {
		return nil, err
	}
	if closeErr != nil {
		return nil, fmt.Errorf("closing archive session: %w", closeErr)
	}

	matched := make([]*directoryEntry, 0, len(entries))
	for _, entry := range entries {
		if matchesMasterIndex(entry, start, end) {
			matched = append(matched, entry)
		}
	}
	c.logger.Debug().Int("entries", len(entries)).Int("matched", len(matched)).Msg("walked daily index tree")
	if len(matched) == 0 {
		return []*IndexRecord{}, nil
	}

	tables, err := c.fetchMatched(ctx, matched)
	if err != nil {
		return nil, err
	}

	records := make([]*IndexRecord, 0)
	for _, table := range tables {
		records = append(records, table...)
	}
	c.logger.Info().Int("files", len(matched)).Int("records", len(records)).Msg("daily index aggregated")
	return records, nil
}

// fetchMatched retrieves, decodes and parses the matched index files on a
// bounded worker pool. Each worker borrows a dedicated session; one archive
// session cannot serve two transfers at once. Results are slotted by match
// position, so the returned tables keep traversal order regardless of fetch
// completion order.
func (c *Client) fetchMatched(ctx context.Context, matched []*directoryEntry) ([][]*IndexRecord, error) {
	workers := c.concurrency
	if workers > len(matched) {
		workers = len(matched)
	}
	if workers < 1 {
		workers = 1
	}

	sessions := make(chan Session, workers)
	for i := 0; i < workers; i++ {
		sess, err := c.dialSession(ctx)
		if err != nil {
			close(sessions)
			for s := range sessions {
				s.Close()
			}
			return nil, fmt.Errorf("dialing fetch session: %w", err)
		}
		sessions <- sess
	}
	defer func() {
		close(sessions)
		for s := range sessions {
			s.Close()
		}
	}()

	tables := make([][]*IndexRecord, len(matched))
	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(workers)
	for i, entry := range matched {
		i, entry := i, entry
		group.Go(func() error {
			var sess Session
			select {
			case sess = <-sessions:
			case <-ctx.Done():
				return ctx.Err()
			}
			defer func() { sessions <- sess }()

			file := path.Join(entry.path, entry.name)
			data, err := sess.Retr(file)
			if err != nil {
				return fmt.Errorf("fetching %s: %w", file, err)
			}
			text, err := decodeIndexFile(entry.name, data)
			if err != nil {
				return err
			}
			records, err := parseIndex(text)
			if err != nil {
				return fmt.Errorf("parsing %s: %w", file, err)
			}
			c.logger.Debug().Str("file", file).Int("records", len(records)).Msg("fetched daily index")
			tables[i] = records
			return nil
		})
	}
	if err := group.Wait(); err != nil {
		return nil, err
	}
	return tables, nil
}
