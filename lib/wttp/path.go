// Copyright 2026 The WTTP Bridge Authors
// SPDX-License-Identifier: Apache-2.0

package wttp

import "strings"

// NormalizePath canonicalizes a request path. Empty paths become "/".
// A leading "/" is preserved as-is. Leading "./" and "../" segments
// resolve against the root (the root's parent is the root), and any
// other relative path gains a "/" prefix. Idempotent.
func NormalizePath(path string) string {
	if strings.HasPrefix(path, "/") {
		return path
	}
	for {
		switch {
		case path == "." || path == "..":
			path = ""
		case strings.HasPrefix(path, "./"):
			path = path[2:]
		case strings.HasPrefix(path, "../"):
			path = path[3:]
		default:
			return "/" + path
		}
	}
}

// ResolveRedirect resolves a redirect target against the path the
// redirect was served from. Absolute targets override the current
// path. A foreign-site reference (scheme-qualified) contributes only
// its trailing path segment. Anything else resolves relative to the
// current path's directory, with "." and ".." segments folded and ".."
// never escaping above the root.
func ResolveRedirect(currentPath, location string) string {
	if strings.HasPrefix(location, "/") {
		return NormalizePath(location)
	}
	if strings.Contains(location, "://") {
		segment := location[strings.LastIndex(location, "/")+1:]
		return NormalizePath(segment)
	}
	dir := currentPath[:strings.LastIndex(currentPath, "/")+1]
	return resolveSegments(dir + location)
}

// resolveSegments folds a slash-separated path onto a segment stack:
// empty and "." segments drop, ".." pops (a no-op at the root), and
// the remainder rejoins under a single leading "/".
func resolveSegments(path string) string {
	var stack []string
	for _, segment := range strings.Split(path, "/") {
		switch segment {
		case "", ".":
		case "..":
			if len(stack) > 0 {
				stack = stack[:len(stack)-1]
			}
		default:
			stack = append(stack, segment)
		}
	}
	return "/" + strings.Join(stack, "/")
}

// validatePath rejects paths the wire protocol cannot carry.
func validatePath(path string) error {
	if strings.ContainsRune(path, 0) {
		return &InvalidPathError{Path: path, Reason: "contains a NUL byte"}
	}
	if strings.Contains(path, "://") {
		return &InvalidPathError{Path: path, Reason: "expected a site-relative path, not a URL"}
	}
	return nil
}

// directoryLike reports whether a 404 path is worth probing for index
// documents: it ends with "/" or its last segment has no extension.
func directoryLike(path string) bool {
	if strings.HasSuffix(path, "/") {
		return true
	}
	last := path[strings.LastIndex(path, "/")+1:]
	return !strings.Contains(last, ".")
}

// indexCandidateNames are probed in order when a directory-like path
// has no resource of its own.
var indexCandidateNames = [...]string{"index.html", "index.htm", "index.md", "index.txt"}

func indexCandidates(path string) []string {
	base := strings.TrimSuffix(path, "/")
	candidates := make([]string, len(indexCandidateNames))
	for i, name := range indexCandidateNames {
		candidates[i] = NormalizePath(base + "/" + name)
	}
	return candidates
}
