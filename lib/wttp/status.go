// Copyright 2026 The WTTP Bridge Authors
// SPDX-License-Identifier: Apache-2.0

package wttp

import "fmt"

// Status codes returned by site contracts, following HTTP numeric
// conventions.
const (
	StatusOK                = 200
	StatusPartialContent    = 206
	StatusMovedPermanently  = 301
	StatusFound             = 302
	StatusNotModified       = 304
	StatusTemporaryRedirect = 307
	StatusPermanentRedirect = 308
	StatusNotFound          = 404
)

// IsSuccess reports whether the status carries retrievable content.
func IsSuccess(status uint16) bool {
	return status == StatusOK || status == StatusPartialContent
}

// IsRedirect reports whether the status directs the client elsewhere.
func IsRedirect(status uint16) bool {
	switch status {
	case StatusMovedPermanently, StatusFound, StatusTemporaryRedirect, StatusPermanentRedirect:
		return true
	default:
		return false
	}
}

// StatusText returns a short label for known status codes and a
// numeric placeholder for the rest.
func StatusText(status uint16) string {
	switch status {
	case StatusOK:
		return "OK"
	case StatusPartialContent:
		return "Partial Content"
	case StatusMovedPermanently:
		return "Moved Permanently"
	case StatusFound:
		return "Found"
	case StatusNotModified:
		return "Not Modified"
	case StatusTemporaryRedirect:
		return "Temporary Redirect"
	case StatusPermanentRedirect:
		return "Permanent Redirect"
	case StatusNotFound:
		return "Not Found"
	default:
		return fmt.Sprintf("Status %d", status)
	}
}
