// Package compression encodes session snapshots for out-of-process stores.
package compression

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

// DefaultThreshold is the encoded size above which snapshots are gzipped.
// A 100 point dataset with its partition stays below it.
const DefaultThreshold = 8 * 1024

// Codec marshals values to JSON and gzips the result when it is large.
type Codec struct {
	// Threshold in bytes above which compression is applied
	Threshold int
}

// Encode marshals v and compresses it when it exceeds the threshold.
func (c Codec) Encode(v interface{}) (data []byte, compressed bool, err error) {
	data, err = json.Marshal(v)
	if err != nil {
		return nil, false, fmt.Errorf("failed to marshal snapshot: %w", err)
	}
	if len(data) <= c.Threshold {
		return data, false, nil
	}

	var buf bytes.Buffer
	writer := gzip.NewWriter(&buf)
	if _, err := writer.Write(data); err != nil {
		return nil, false, fmt.Errorf("failed to write compressed data: %w", err)
	}
	if err := writer.Close(); err != nil {
		return nil, false, fmt.Errorf("failed to close gzip writer: %w", err)
	}

	return buf.Bytes(), true, nil
}

// Decode reverses Encode. Gzipped input is recognised by its magic number,
// so plain JSON written by an older threshold still decodes.
func (c Codec) Decode(data []byte, v interface{}) error {
	if len(data) >= 2 && data[0] == 0x1f && data[1] == 0x8b {
		reader, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return fmt.Errorf("failed to create gzip reader: %w", err)
		}
		defer reader.Close()

		data, err = io.ReadAll(reader)
		if err != nil {
			return fmt.Errorf("failed to read decompressed data: %w", err)
		}
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("failed to unmarshal snapshot: %w", err)
	}
	return nil
}
