// Copyright 2026 The WTTP Bridge Authors
// SPDX-License-Identifier: Apache-2.0

package content

import (
	"bytes"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
	"github.com/klauspost/compress/zstd"
)

// zstdDecoder is reused across calls to avoid repeated initialization
// overhead. zstd.Decoder is safe for concurrent use via DecodeAll.
var zstdDecoder *zstd.Decoder

func init() {
	var err error
	zstdDecoder, err = zstd.NewReader(nil)
	if err != nil {
		panic("content: zstd decoder initialization failed: " + err.Error())
	}
}

// DecodeBody undoes the declared content encoding of a reconstructed
// resource body. "" and "identity" return data unchanged. gzip and
// zstd are decoded. Any other encoding (deflate, br) is an error: the
// caller asked for bytes it cannot interpret, and silently returning
// the still-compressed payload would corrupt downstream rendering.
func DecodeBody(data []byte, encoding string) ([]byte, error) {
	switch encoding {
	case "", "identity":
		return data, nil

	case "gzip":
		reader, err := gzip.NewReader(bytes.NewReader(data))
		if err != nil {
			return nil, fmt.Errorf("gzip decode: %w", err)
		}
		defer reader.Close()
		decoded, err := io.ReadAll(reader)
		if err != nil {
			return nil, fmt.Errorf("gzip decode: %w", err)
		}
		return decoded, nil

	case "zstd":
		decoded, err := zstdDecoder.DecodeAll(data, nil)
		if err != nil {
			return nil, fmt.Errorf("zstd decode: %w", err)
		}
		return decoded, nil

	default:
		return nil, fmt.Errorf("unsupported content encoding %q", encoding)
	}
}
