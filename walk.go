package edgarindex

import (
	"fmt"
	"path"
	"regexp"
	"strconv"
	"time"
)

// Session issues directory listings and file retrievals against the archive
// host. List returns the raw machine-readable listing lines for one
// directory; parsing and validation happen in the walker. A session serves
// one walk or one fetch worker at a time, never two concurrently.
type Session interface {
	List(path string) ([]string, error)
	Retr(path string) ([]byte, error)
	Close() error
}

// Directory listings arrive as MLSD fact lines, one entry per line:
// modify=<timestamp>;type=<file|dir|cdir|pdir>; <name>
var listingLineRE = regexp.MustCompile(`^modify=(?P<modify>[^;]+);type=(?P<type>[^;]+); (?P<name>.+)$`)

var masterIndexRE = regexp.MustCompile(`^master\.\d*?\.idx`)

type entryType string

const (
	entryTypeFile entryType = "file"
	entryTypeDir  entryType = "dir"
)

// directoryEntry is one parsed line from a remote directory listing
type directoryEntry struct {
	path     string // directory the entry was listed under
	name     string
	kind     entryType
	modified string    // raw modify fact
	date     time.Time // zero when the name embeds no usable date
}

// parseListingLine parses one raw listing line. A line that does not match
// the listing grammar is an error; the walk must not silently skip it.
func parseListingLine(dir, line string) (*directoryEntry, error) {
	m := listingLineRE.FindStringSubmatch(line)
	if m == nil {
		return nil, fmt.Errorf("malformed listing line %q in %s", line, dir)
	}
	entry := &directoryEntry{
		path:     dir,
		name:     m[3],
		kind:     entryType(m[2]),
		modified: m[1],
	}
	if date, ok := parseFilenameDate(entry.name); ok {
		entry.date = date
	}
	return entry, nil
}

// walkDirectory lists dir and its relevant subdirectories depth-first,
// returning entries in pre-order: the current level first, then each
// subdirectory's subtree in listing order. At the top level only
// subdirectories named as a year inside the query range are descended into;
// deeper levels are descended unconditionally. The caller owns the session
// lifecycle around the whole walk.
func (c *Client) walkDirectory(sess Session, dir string, start, end time.Time, depth int) ([]*directoryEntry, error) {
	lines, err := sess.List(dir)
	if err != nil {
		return nil, fmt.Errorf("listing %s: %w", dir, err)
	}
	c.logger.Debug().Str("dir", dir).Int("lines", len(lines)).Msg("listed directory")

	entries := make([]*directoryEntry, 0, len(lines))
	for _, line := range lines {
		entry, err := parseListingLine(dir, line)
		if err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}

	result := entries
	for _, entry := range entries {
		if entry.kind != entryTypeDir {
			continue
		}
		if depth == 0 && !yearInRange(entry.name, start, end) {
			continue
		}
		sub, err := c.walkDirectory(sess, path.Join(dir, entry.name), start, end, depth+1)
		if err != nil {
			return nil, err
		}
		result = append(result, sub...)
	}
	return result, nil
}

// yearInRange reports whether name is an integer year within the range.
// Non-numeric names never qualify.
func yearInRange(name string, start, end time.Time) bool {
	year, err := strconv.Atoi(name)
	if err != nil {
		return false
	}
	return year >= start.Year() && year <= end.Year()
}

// matchesMasterIndex reports whether an entry is a master index file whose
// embedded date falls inside the range. Anything else rejects: directory
// entries, names not starting with the master.<digits>.idx grammar and
// names without a usable date.
func matchesMasterIndex(entry *directoryEntry, start, end time.Time) bool {
	if entry.kind != entryTypeFile {
		return false
	}
	if !masterIndexRE.MatchString(entry.name) {
		return false
	}
	if entry.date.IsZero() {
		return false
	}
	return !entry.date.Before(start) && !entry.date.After(end)
}
