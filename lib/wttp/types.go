// Copyright 2026 The WTTP Bridge Authors
// SPDX-License-Identifier: Apache-2.0

package wttp

import (
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/common"

	"github.com/nickjuntilla/wttp-bridge/lib/content"
)

// DefaultMaxRedirects bounds redirect following when RequestOptions
// leaves MaxRedirects at zero.
const DefaultMaxRedirects = 5

// Range selects a span of chunks by index. End is exclusive; End <= 0
// means through the final chunk. The zero value selects the entire
// resource, Range{Start: 0, End: 1} the first chunk only.
type Range struct {
	Start int64
	End   int64
}

// IsFull reports whether the range covers the whole resource.
func (r Range) IsFull() bool {
	return r.Start == 0 && r.End <= 0
}

// Conditions carries the conditional-request fields sent with HEAD and
// LOCATE. Zero values mean unconditional.
type Conditions struct {
	// IfModifiedSince is a unix timestamp in seconds; the site answers
	// 304 when the resource has not changed since.
	IfModifiedSince int64

	// IfNoneMatch is a content hash; the site answers 304 when the
	// resource's etag still matches.
	IfNoneMatch common.Hash
}

// RequestOptions adjust a single Fetch or Head call. The zero value
// requests the entire resource unconditionally with default redirect
// bounding.
type RequestOptions struct {
	// IfModifiedSince and IfNoneMatch make the request conditional.
	IfModifiedSince int64
	IfNoneMatch     common.Hash

	// Range restricts retrieval to a span of chunks. Zero value =
	// whole resource.
	Range Range

	// HeadOnly stops after the metadata phase: no LOCATE, no content.
	HeadOnly bool

	// ChunkIdentifiersOnly locates the resource but skips downloading
	// its bytes; the result carries identifiers only.
	ChunkIdentifiersOnly bool

	// MaxRedirects bounds redirect following. Zero means
	// DefaultMaxRedirects; negative disables redirect following.
	MaxRedirects int
}

func (o RequestOptions) conditions() Conditions {
	return Conditions{IfModifiedSince: o.IfModifiedSince, IfNoneMatch: o.IfNoneMatch}
}

func (o RequestOptions) redirectBudget() int {
	switch {
	case o.MaxRedirects == 0:
		return DefaultMaxRedirects
	case o.MaxRedirects < 0:
		return 0
	default:
		return o.MaxRedirects
	}
}

// CachePolicy is the cache-control header info a site attaches to a
// resource.
type CachePolicy struct {
	MaxAge    int64
	NoStore   bool
	Immutable bool
}

// ResponseHead is the metadata a site returns for a resource: the
// status, header info, and the resource's stored attributes.
type ResponseHead struct {
	Status uint16

	// RedirectLocation is the target path or reference when Status is
	// a redirect code.
	RedirectLocation string

	Cache CachePolicy
	CORS  string

	MimeType content.Code
	Charset  content.Code
	Encoding content.Code
	Language content.Code

	// Size is the resource's total byte length as declared by the
	// site.
	Size int64

	// Version increments on each resource update.
	Version uint64

	// LastModified is a unix timestamp in seconds.
	LastModified int64

	// ETag is the resource's content hash.
	ETag common.Hash
}

// ResourceLocation is a ResponseHead plus the ordered data-point
// identifiers that reconstruct the resource. When Status is 200/206,
// len(ChunkIdentifiers) <= TotalChunks; equality holds unless the
// caller requested a sub-range.
type ResourceLocation struct {
	Head             ResponseHead
	ChunkIdentifiers []common.Hash
	TotalChunks      int
}

// FetchResult is a located resource plus its reconstructed bytes.
// Content is nil when the status carries no content, or when HeadOnly
// or ChunkIdentifiersOnly suppressed the download.
type FetchResult struct {
	Location ResourceLocation
	Content  []byte
}

// InvalidPathError reports a request path the protocol cannot express.
type InvalidPathError struct {
	Path   string
	Reason string
}

func (e *InvalidPathError) Error() string {
	return fmt.Sprintf("invalid path %q: %s", e.Path, e.Reason)
}

// IsInvalidPath reports whether err is an InvalidPathError.
func IsInvalidPath(err error) bool {
	var invalidPath *InvalidPathError
	return errors.As(err, &invalidPath)
}
