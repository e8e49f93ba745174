package edgarindex

import (
	"archive/zip"
	"bytes"
	"compress/gzip"
	"fmt"
	"io"
	"strings"
)

// decodeIndexFile decodes a retrieved index resource to plain text based on
// the resource name: zip archives yield their first member, gzip files are
// decompressed, anything else passes through untouched. Decode failures are
// fatal for the read; there is no partial-content fallback.
func decodeIndexFile(name string, data []byte) ([]byte, error) {
	switch {
	case strings.HasSuffix(name, ".zip"):
		archive, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return nil, fmt.Errorf("opening zip %s: %w", name, err)
		}
		if len(archive.File) == 0 {
			return nil, fmt.Errorf("zip %s has no members", name)
		}
		member, err := archive.File[0].Open()
		if err != nil {
			return nil, fmt.Errorf("opening zip member %s: %w", archive.File[0].Name, err)
		}
		defer member.Close()

		text, err := io.ReadAll(member)
		if err != nil {
			return nil, fmt.Errorf("reading zip member %s: %w", archive.File[0].Name, err)
		}
		return text, nil
	case strings.HasSuffix(name, ".gz"):
		gz, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("opening gzip %s: %w", name, err)
		}
		defer gz.Close()

		text, err := io.ReadAll(gz)
		if err != nil {
			return nil, fmt.Errorf("decompressing %s: %w", name, err)
		}
		return text, nil
	}
	return data, nil
}
