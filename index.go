package edgarindex

import (
	"bufio"
	"bytes"
	"fmt"
	"regexp"
	"strings"
	"time"
)

// edgarPrefix is the canonical prefix of every filename column value
const edgarPrefix = "edgar/"

// dividerRE marks the line separating the index header block from data rows
var dividerRE = regexp.MustCompile(`-{14}`)

// IndexRecord is one row of the EDGAR master index
type IndexRecord struct {
	CIK         string    `json:"cik"`
	CompanyName string    `json:"companyName"`
	FormType    string    `json:"formType"`
	DateFiled   time.Time `json:"dateFiled"`
	Filename    string    `json:"filename"`
}

// parseIndex parses decoded index text into records. Every line up to and
// including the header divider is discarded; the remaining lines are
// pipe-delimited rows of cik, company name, form type, date filed and
// filename. The format has no quoting or escaping. Text without a divider
// yields no records.
func parseIndex(text []byte) ([]*IndexRecord, error) {
	records := make([]*IndexRecord, 0)

	header := true
	scanner := bufio.NewScanner(bytes.NewReader(text))
	for scanner.Scan() {
		line := scanner.Text()
		if header {
			if dividerRE.MatchString(line) {
				header = false
			}
			continue
		}
		if line == "" {
			continue
		}

		fields := strings.Split(line, "|")
		if len(fields) != 5 {
			return nil, fmt.Errorf("malformed index line %q: expected 5 fields, got %d", line, len(fields))
		}

		dateFiled, err := time.Parse("2006-01-02", fields[3])
		if err != nil {
			return nil, fmt.Errorf("parsing date filed: %w", err)
		}

		records = append(records, &IndexRecord{
			CIK:         fields[0],
			CompanyName: fields[1],
			FormType:    fields[2],
			DateFiled:   dateFiled,
			Filename:    fixFilePath(fields[4]),
		})
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scanning index text: %w", err)
	}
	return records, nil
}

// fixFilePath normalizes legacy file paths that predate the edgar/ prefix.
// Already-prefixed paths pass through unchanged.
func fixFilePath(p string) string {
	if strings.HasPrefix(p, edgarPrefix) {
		return p
	}
	return edgarPrefix + p
}
