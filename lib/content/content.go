// Copyright 2026 The WTTP Bridge Authors
// SPDX-License-Identifier: Apache-2.0

// Package content maps the two-byte metadata codes used by site
// contracts (mime type, charset, content encoding, language) to their
// canonical string forms, and provides the body-decoding helpers that
// collaborators use to turn reconstructed bytes into displayable
// content.
//
// Site contracts store resource metadata as fixed two-byte codes to
// keep on-chain storage flat. Codes are mnemonic ASCII pairs ("th" for
// text/html, "gz" for gzip). A zero code means the field is unset.
// Unknown codes never fail a fetch: mime falls back to
// application/octet-stream, the other fields to the empty string.
package content

import "strings"

// Code is a two-byte metadata code as stored by site contracts.
type Code [2]byte

// IsZero reports whether the code is unset.
func (c Code) IsZero() bool {
	return c == Code{}
}

// String returns the raw two-character form of the code, or "" for the
// zero code. Non-mnemonic codes (bytes outside printable ASCII) render
// as a hex pair.
func (c Code) String() string {
	if c.IsZero() {
		return ""
	}
	if printable(c[0]) && printable(c[1]) {
		return string(c[:])
	}
	const hexdigits = "0123456789abcdef"
	return "0x" + string([]byte{
		hexdigits[c[0]>>4], hexdigits[c[0]&0xf],
		hexdigits[c[1]>>4], hexdigits[c[1]&0xf],
	})
}

func printable(b byte) bool {
	return b >= 0x20 && b < 0x7f
}

func code(s string) Code {
	return Code{s[0], s[1]}
}

// mimeByCode is the forward mime table. Codes are protocol constants
// shared with the site contracts; changing them breaks deployed sites.
var mimeByCode = map[Code]string{
	code("th"): "text/html",
	code("tt"): "text/plain",
	code("tc"): "text/css",
	code("tj"): "text/javascript",
	code("tm"): "text/markdown",
	code("tv"): "text/csv",
	code("aj"): "application/json",
	code("ax"): "application/xml",
	code("ab"): "application/octet-stream",
	code("aw"): "application/wasm",
	code("ap"): "application/pdf",
	code("ip"): "image/png",
	code("ij"): "image/jpeg",
	code("ig"): "image/gif",
	code("is"): "image/svg+xml",
	code("iw"): "image/webp",
	code("ic"): "image/x-icon",
	code("fw"): "font/woff",
	code("f2"): "font/woff2",
	code("ft"): "font/ttf",
	code("vm"): "video/mp4",
	code("am"): "audio/mpeg",
}

var charsetByCode = map[Code]string{
	code("u8"): "utf-8",
	code("ul"): "utf-16le",
	code("ub"): "utf-16be",
	code("l1"): "iso-8859-1",
	code("ac"): "us-ascii",
}

var encodingByCode = map[Code]string{
	code("id"): "identity",
	code("gz"): "gzip",
	code("df"): "deflate",
	code("br"): "br",
	code("zs"): "zstd",
}

// Reverse tables, built from the forward tables at init.
var (
	codeByMime     = make(map[string]Code, len(mimeByCode))
	codeByCharset  = make(map[string]Code, len(charsetByCode))
	codeByEncoding = make(map[string]Code, len(encodingByCode))
)

func init() {
	for c, name := range mimeByCode {
		codeByMime[name] = c
	}
	for c, name := range charsetByCode {
		codeByCharset[name] = c
	}
	for c, name := range encodingByCode {
		codeByEncoding[name] = c
	}
}

// MimeType returns the mime type for a code. The zero code returns "",
// an unknown code returns "application/octet-stream".
func MimeType(c Code) string {
	if c.IsZero() {
		return ""
	}
	if mime, ok := mimeByCode[c]; ok {
		return mime
	}
	return "application/octet-stream"
}

// MimeCode returns the code for a mime type.
func MimeCode(mime string) (Code, bool) {
	c, ok := codeByMime[strings.ToLower(strings.TrimSpace(mime))]
	return c, ok
}

// Charset returns the charset name for a code, or "" if the code is
// zero or unknown.
func Charset(c Code) string {
	return charsetByCode[c]
}

// CharsetCode returns the code for a charset name.
func CharsetCode(charset string) (Code, bool) {
	c, ok := codeByCharset[strings.ToLower(strings.TrimSpace(charset))]
	return c, ok
}

// Encoding returns the content-encoding name for a code, or "" if the
// code is zero or unknown. "" and "identity" both mean no transform.
func Encoding(c Code) string {
	return encodingByCode[c]
}

// EncodingCode returns the code for a content-encoding name.
func EncodingCode(encoding string) (Code, bool) {
	c, ok := codeByEncoding[strings.ToLower(strings.TrimSpace(encoding))]
	return c, ok
}

// Language returns the ISO 639-1 language tag for a code. Language
// codes are the two ASCII letters themselves ("en", "de"), so any code
// of two lowercase letters passes through; everything else returns "".
func Language(c Code) string {
	if c[0] >= 'a' && c[0] <= 'z' && c[1] >= 'a' && c[1] <= 'z' {
		return string(c[:])
	}
	return ""
}

// LanguageCode returns the code for an ISO 639-1 language tag.
func LanguageCode(lang string) (Code, bool) {
	lang = strings.ToLower(strings.TrimSpace(lang))
	if len(lang) != 2 || lang[0] < 'a' || lang[0] > 'z' || lang[1] < 'a' || lang[1] > 'z' {
		return Code{}, false
	}
	return code(lang), true
}

// IsText reports whether content of the given mime type is
// meaningfully viewable as text. Collaborators use this to decide
// between a string view and raw bytes.
func IsText(mime string) bool {
	mime = strings.ToLower(strings.TrimSpace(mime))
	if semicolon := strings.IndexByte(mime, ';'); semicolon >= 0 {
		mime = strings.TrimSpace(mime[:semicolon])
	}
	if strings.HasPrefix(mime, "text/") {
		return true
	}
	switch mime {
	case "application/json", "application/xml", "application/javascript",
		"application/x-ndjson", "image/svg+xml":
		return true
	}
	return strings.HasSuffix(mime, "+json") || strings.HasSuffix(mime, "+xml")
}
