// Copyright 2026 The WTTP Bridge Authors
// SPDX-License-Identifier: Apache-2.0

package main

import (
	"context"
	"encoding/hex"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"github.com/spf13/pflag"

	"github.com/nickjuntilla/wttp-bridge/cmd/wttp/cli"
	"github.com/nickjuntilla/wttp-bridge/lib/content"
	"github.com/nickjuntilla/wttp-bridge/lib/wttp"
)

// requestFlags are the flag values behind fetch and head. Head binds
// only the conditional subset and forces headOnly.
type requestFlags struct {
	client          clientOptions
	ifModifiedSince string
	ifNoneMatch     string
	maxRedirects    int
	rangeSpec       string
	output          string
	headOnly        bool
	chunkIDs        bool
	raw             bool
}

func (f *requestFlags) bindConditional(flags *pflag.FlagSet) {
	flags.StringVar(&f.ifModifiedSince, "if-modified-since", "", "ask for content only if modified after this time (unix seconds or RFC 3339)")
	flags.StringVar(&f.ifNoneMatch, "if-none-match", "", "ask for content only if the etag changed (32-byte hex hash)")
	flags.IntVar(&f.maxRedirects, "max-redirects", 0, "redirect hops to follow (0 = default, negative = none)")
}

// requestOptions parses the string-valued flags into request options.
func (f *requestFlags) requestOptions() (wttp.RequestOptions, error) {
	opts := wttp.RequestOptions{
		HeadOnly:             f.headOnly,
		ChunkIdentifiersOnly: f.chunkIDs,
		MaxRedirects:         f.maxRedirects,
	}
	var err error
	if opts.IfModifiedSince, err = parseTimestamp(f.ifModifiedSince); err != nil {
		return wttp.RequestOptions{}, err
	}
	if opts.IfNoneMatch, err = parseETag(f.ifNoneMatch); err != nil {
		return wttp.RequestOptions{}, err
	}
	if opts.Range, err = parseChunkRange(f.rangeSpec); err != nil {
		return wttp.RequestOptions{}, err
	}
	return opts, nil
}

func fetchCommand() *cli.Command {
	var opts requestFlags

	return &cli.Command{
		Name:    "fetch",
		Summary: "Fetch a resource from an on-chain site",
		Description: `Fetch a resource and write its bytes to stdout.

The site is a contract address (0x...) or a registered name
(example.eth). The path is normalized the way a browser normalizes
URLs, and redirects and directory index fallbacks are followed
automatically. A response summary goes to stderr, content bytes to
stdout or the --output file.

Stored content encodings (gzip, zstd) are undone before writing, the
way a browser hands decoded bytes to the renderer. --raw writes the
stored bytes unchanged.

The exit code is 0 when the site answered, including redirects and
conditional 304s. Not found exits 2, errors exit 1.`,
		Usage: "wttp fetch [flags] <site> [path]",
		Flags: func() *pflag.FlagSet {
			flags := pflag.NewFlagSet("fetch", pflag.ContinueOnError)
			opts.client.bind(flags)
			opts.bindConditional(flags)
			flags.StringVarP(&opts.output, "output", "o", "", "write content to a file instead of stdout")
			flags.StringVar(&opts.rangeSpec, "range", "", "chunk range to fetch: N, start:end, start:, or :end")
			flags.BoolVar(&opts.headOnly, "head", false, "print the response summary and skip content")
			flags.BoolVar(&opts.chunkIDs, "chunk-ids", false, "print data point identifiers instead of content")
			flags.BoolVar(&opts.raw, "raw", false, "write stored bytes without undoing the content encoding")
			return flags
		},
		Run: func(args []string) error {
			return runRequest(&opts, args)
		},
		Examples: []cli.Example{
			{
				Description: "Fetch a page from a named site",
				Command:     "wttp fetch example.eth /index.html",
			},
			{
				Description: "Save an image from a contract address",
				Command:     "wttp fetch 0x36A0b7...c5B0 /logo.png --output logo.png",
			},
			{
				Description: "Fetch the first four chunks of a large file",
				Command:     "wttp fetch example.eth /video.mp4 --range 0:4 --output sample.mp4",
			},
			{
				Description: "Re-fetch only if the content changed",
				Command:     "wttp fetch example.eth /feed.json --if-none-match 0x1c8aff95...",
			},
			{
				Description: "List the data points backing a resource",
				Command:     "wttp fetch example.eth /big.bin --chunk-ids",
			},
		},
	}
}

// runRequest drives one fetch or head invocation end to end.
func runRequest(f *requestFlags, args []string) error {
	site, path, err := siteAndPath(args)
	if err != nil {
		return err
	}
	request, err := f.requestOptions()
	if err != nil {
		return err
	}

	logger := f.client.logger()
	client, err := f.client.newClient(logger)
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	result, err := client.Fetch(ctx, site, path, request)
	if err != nil {
		return err
	}

	writeLocation(os.Stderr, result.Location)

	if f.chunkIDs {
		for _, id := range result.Location.ChunkIdentifiers {
			fmt.Println(id.Hex())
		}
		return statusExit(result.Location.Head.Status)
	}

	if result.Content != nil {
		body := result.Content
		if !f.raw {
			body = decodedBody(body, result.Location.Head, logger)
		}
		if err := writeBody(f.output, body); err != nil {
			return err
		}
	}
	return statusExit(result.Location.Head.Status)
}

func siteAndPath(args []string) (site, path string, err error) {
	switch len(args) {
	case 1:
		return args[0], "/", nil
	case 2:
		return args[0], args[1], nil
	default:
		return "", "", fmt.Errorf("want <site> [path], got %d arguments", len(args))
	}
}

// statusExit maps the terminal response status to the process exit
// code: 0 for anything the site answered (success, redirects, 304), 2
// for not found. The summary is already printed, so not-found returns
// a bare ExitError.
func statusExit(status uint16) error {
	switch {
	case wttp.IsSuccess(status) || wttp.IsRedirect(status) || status == wttp.StatusNotModified:
		return nil
	case status == wttp.StatusNotFound:
		return &cli.ExitError{Code: 2}
	default:
		return &cli.ExitError{Code: 1}
	}
}

// writeLocation prints the HTTP-shaped response summary: the status
// line followed by one line per populated header field.
func writeLocation(w io.Writer, location wttp.ResourceLocation) {
	head := location.Head
	fmt.Fprintf(w, "%d %s\n", head.Status, wttp.StatusText(head.Status))
	if head.RedirectLocation != "" {
		fmt.Fprintf(w, "location: %s\n", head.RedirectLocation)
	}
	if mime := content.MimeType(head.MimeType); mime != "" {
		if charset := content.Charset(head.Charset); charset != "" {
			fmt.Fprintf(w, "content-type: %s; charset=%s\n", mime, charset)
		} else {
			fmt.Fprintf(w, "content-type: %s\n", mime)
		}
	}
	if language := content.Language(head.Language); language != "" {
		fmt.Fprintf(w, "content-language: %s\n", language)
	}
	if encoding := content.Encoding(head.Encoding); encoding != "" && encoding != "identity" {
		fmt.Fprintf(w, "content-encoding: %s\n", encoding)
	}
	if head.Size > 0 {
		fmt.Fprintf(w, "content-length: %d\n", head.Size)
	}
	if head.ETag != (common.Hash{}) {
		fmt.Fprintf(w, "etag: %s\n", head.ETag.Hex())
	}
	if head.LastModified > 0 {
		fmt.Fprintf(w, "last-modified: %s\n", time.Unix(head.LastModified, 0).UTC().Format(time.RFC3339))
	}
	if head.Version > 0 {
		fmt.Fprintf(w, "version: %d\n", head.Version)
	}
	if cache := cachePolicyString(head.Cache); cache != "" {
		fmt.Fprintf(w, "cache-control: %s\n", cache)
	}
	if head.CORS != "" {
		fmt.Fprintf(w, "access-control-allow-origin: %s\n", head.CORS)
	}
	if len(location.ChunkIdentifiers) > 0 || location.TotalChunks > 0 {
		fmt.Fprintf(w, "chunks: %d of %d\n", len(location.ChunkIdentifiers), location.TotalChunks)
	}
}

func cachePolicyString(policy wttp.CachePolicy) string {
	var parts []string
	if policy.NoStore {
		parts = append(parts, "no-store")
	}
	if policy.MaxAge > 0 {
		parts = append(parts, fmt.Sprintf("max-age=%d", policy.MaxAge))
	}
	if policy.Immutable {
		parts = append(parts, "immutable")
	}
	return strings.Join(parts, ", ")
}

// decodedBody undoes the resource's declared content encoding so the
// written bytes match what a browser hands to the renderer. Decode
// failures fall back to the stored bytes with a warning.
func decodedBody(body []byte, head wttp.ResponseHead, logger *slog.Logger) []byte {
	encoding := content.Encoding(head.Encoding)
	decoded, err := content.DecodeBody(body, encoding)
	if err != nil {
		logger.Warn("content decoding failed, writing stored bytes",
			"encoding", encoding, "error", err)
		return body
	}
	return decoded
}

func writeBody(path string, body []byte) error {
	if path == "" || path == "-" {
		_, err := os.Stdout.Write(body)
		return err
	}
	if err := os.WriteFile(path, body, 0644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	return nil
}

// parseChunkRange parses a --range selector: "N" for a single chunk,
// "A:B" for chunks A through B-1, "A:" for A through the final chunk,
// ":B" for the first B chunks.
func parseChunkRange(spec string) (wttp.Range, error) {
	if spec == "" {
		return wttp.Range{}, nil
	}
	colon := strings.IndexByte(spec, ':')
	if colon < 0 {
		index, err := strconv.ParseInt(spec, 10, 64)
		if err != nil || index < 0 {
			return wttp.Range{}, fmt.Errorf("invalid chunk range %q: want a chunk index or start:end", spec)
		}
		return wttp.Range{Start: index, End: index + 1}, nil
	}
	var rng wttp.Range
	if start := spec[:colon]; start != "" {
		value, err := strconv.ParseInt(start, 10, 64)
		if err != nil || value < 0 {
			return wttp.Range{}, fmt.Errorf("invalid chunk range %q: bad start index", spec)
		}
		rng.Start = value
	}
	if end := spec[colon+1:]; end != "" {
		value, err := strconv.ParseInt(end, 10, 64)
		if err != nil || value <= 0 {
			return wttp.Range{}, fmt.Errorf("invalid chunk range %q: bad end index", spec)
		}
		rng.End = value
	}
	if rng.End > 0 && rng.End <= rng.Start {
		return wttp.Range{}, fmt.Errorf("invalid chunk range %q: end must be greater than start", spec)
	}
	return rng, nil
}

// parseTimestamp accepts a unix second count or an RFC 3339 time.
func parseTimestamp(s string) (int64, error) {
	if s == "" {
		return 0, nil
	}
	if seconds, err := strconv.ParseInt(s, 10, 64); err == nil {
		return seconds, nil
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: want unix seconds or RFC 3339", s)
	}
	return parsed.Unix(), nil
}

// parseETag accepts a 32-byte hex hash with or without the 0x prefix.
func parseETag(s string) (common.Hash, error) {
	if s == "" {
		return common.Hash{}, nil
	}
	raw, err := hex.DecodeString(strings.TrimPrefix(s, "0x"))
	if err != nil || len(raw) != common.HashLength {
		return common.Hash{}, fmt.Errorf("invalid etag %q: want a 32-byte hex hash", s)
	}
	return common.BytesToHash(raw), nil
}
