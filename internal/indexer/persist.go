package indexer

import (
	"bufio"
	"compress/gzip"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/dshills/scipdex/pkg/scip"
)

// SaveIndex writes the index as a single JSON blob at path, gzip-compressed
// when compress is true or the path ends in ".gz".
func SaveIndex(index *scip.Index, path string, compress bool) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create index file: %w", err)
	}
	defer func() { _ = f.Close() }()

	var w io.Writer = f
	var gz *gzip.Writer
	if compress || strings.HasSuffix(path, ".gz") {
		gz = gzip.NewWriter(f)
		w = gz
	}

	enc := json.NewEncoder(w)
	if err := enc.Encode(index); err != nil {
		return fmt.Errorf("failed to encode index: %w", err)
	}
	if gz != nil {
		if err := gz.Close(); err != nil {
			return fmt.Errorf("failed to flush compressed index: %w", err)
		}
	}
	return f.Close()
}

// LoadIndex reads an index written by SaveIndex. Compression is detected from
// the gzip magic bytes, not the file name.
func LoadIndex(path string) (*scip.Index, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open index file: %w", err)
	}
	defer func() { _ = f.Close() }()

	br := bufio.NewReader(f)
	var r io.Reader = br
	if magic, err := br.Peek(2); err == nil && magic[0] == 0x1f && magic[1] == 0x8b {
		gz, err := gzip.NewReader(br)
		if err != nil {
			return nil, fmt.Errorf("failed to open compressed index: %w", err)
		}
		defer func() { _ = gz.Close() }()
		r = gz
	}

	index := &scip.Index{}
	if err := json.NewDecoder(r).Decode(index); err != nil {
		return nil, fmt.Errorf("failed to decode index: %w", err)
	}
	return index, nil
}
