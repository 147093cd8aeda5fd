package storage

import (
	"encoding/json"
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// Shared codecs; EncodeAll and DecodeAll may be called concurrently.
var (
	blobEncoder, _ = zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedDefault))
	blobDecoder, _ = zstd.NewReader(nil)
)

// EncodeBlob marshals v as JSON and compresses it with zstd.
func EncodeBlob(v interface{}) ([]byte, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("marshal blob: %w", err)
	}
	return blobEncoder.EncodeAll(raw, make([]byte, 0, len(raw)/2)), nil
}

// DecodeBlob reverses EncodeBlob into v.
func DecodeBlob(data []byte, v interface{}) error {
	raw, err := blobDecoder.DecodeAll(data, nil)
	if err != nil {
		return fmt.Errorf("decompress blob: %w", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return fmt.Errorf("unmarshal blob: %w", err)
	}
	return nil
}
