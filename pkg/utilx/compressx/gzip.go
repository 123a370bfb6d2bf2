package compressx

import (
	"bytes"
	"compress/gzip"
	"context"
	"io"

	"github.com/marcodd23/go-serving-stmt/pkg/logx"
	"github.com/pkg/errors"
)

// gzipMagic is the two-byte header of every gzip member.
var gzipMagic = []byte{0x1f, 0x8b}

// GzipDecompressIfNeeded decompresses the data if it's gzipped, otherwise returns it unchanged.
func GzipDecompressIfNeeded(ctx context.Context, data []byte) ([]byte, error) {
	if !IsGzipped(data) {
		return data, nil
	}

	reader, err := gzip.NewReader(bytes.NewReader(data))
	if err != nil {
		return nil, errors.WithMessage(err, "failed to create gzip reader")
	}

	defer func(reader *gzip.Reader) {
		if err := reader.Close(); err != nil {
			logx.GetLogger().LogError(ctx, "Error closing Gzip Reader", err)
		}
	}(reader)

	decompressedData, err := io.ReadAll(reader)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to read gzipped data")
	}

	return decompressedData, nil
}

// IsGzipped checks if the data is compressed with Gzip
func IsGzipped(data []byte) bool {
	return bytes.HasPrefix(data, gzipMagic)
}

// GzipCompressJSON compresses a JSON-encoded byte slice using gzip.
func GzipCompressJSON(ctx context.Context, jsonData []byte) ([]byte, error) {
	var compressedBuffer bytes.Buffer
	gzipWriter := gzip.NewWriter(&compressedBuffer)

	_, err := gzipWriter.Write(jsonData)
	if err != nil {
		return nil, errors.WithMessage(err, "failed to write JSON data to gzip writer")
	}

	err = gzipWriter.Close()
	if err != nil {
		return nil, errors.WithMessage(err, "failed to close gzip writer")
	}

	return compressedBuffer.Bytes(), nil
}
