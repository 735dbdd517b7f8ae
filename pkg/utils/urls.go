// Copyright (c) 2025-2026 DModel Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"path"
	"path/filepath"
	"strings"
)

// Document and workspace identities are URLs (file:///... on disk,
// mem://localhost/... in tests). These helpers do slash-path math on the
// path portion of a URL without touching its scheme and host.

// SplitURL separates a URL into its base (scheme://host) and its
// slash-cleaned absolute path. A plain path is returned with an empty base.
func SplitURL(u string) (base, p string) {
	i := strings.Index(u, "://")
	if i < 0 {
		return "", path.Clean("/" + strings.TrimPrefix(u, "/"))
	}
	rest := u[i+3:]
	j := strings.Index(rest, "/")
	if j < 0 {
		return u, "/"
	}
	return u[:i+3+j], path.Clean(rest[j:])
}

// JoinURL joins path elements onto a URL, cleaning "." and ".." segments.
func JoinURL(u string, elems ...string) string {
	base, p := SplitURL(u)
	return base + path.Join(append([]string{p}, elems...)...)
}

// ParentURL returns the URL of the containing directory.
func ParentURL(u string) string {
	base, p := SplitURL(u)
	return base + path.Dir(p)
}

// BaseName returns the last path segment of a URL.
func BaseName(u string) string {
	_, p := SplitURL(u)
	return path.Base(p)
}

// Ext returns the file extension of a URL's last segment, including the dot.
func Ext(u string) string {
	return path.Ext(BaseName(u))
}

// Segments returns the path segments of a URL, without the leading slash.
func Segments(u string) []string {
	_, p := SplitURL(u)
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}
	return strings.Split(p, "/")
}

// IsRootURL reports whether the URL's path is the filesystem root.
func IsRootURL(u string) bool {
	_, p := SplitURL(u)
	return p == "/"
}

// WithinURL reports whether u sits at or below the directory URL root,
// comparing base and path segments exactly.
func WithinURL(root, u string) bool {
	rb, rp := SplitURL(root)
	ub, up := SplitURL(u)
	if rb != ub {
		return false
	}
	if rp == "/" {
		return true
	}
	return up == rp || strings.HasPrefix(up, rp+"/")
}

// URLPath returns the path portion of a URL, suitable for OS-level
// operations on file:// URLs.
func URLPath(u string) string {
	_, p := SplitURL(u)
	return p
}

// AbsoluteURL canonicalizes a CLI argument into a URL identity: inputs
// that already carry a scheme are cleaned, plain paths are made absolute
// against the working directory and slash-normalized.
func AbsoluteURL(arg string) (string, error) {
	if URLScheme(arg) != "" {
		base, p := SplitURL(arg)
		return base + p, nil
	}
	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(abs), nil
}

// URLScheme returns the scheme of a URL, or the empty string for plain paths.
func URLScheme(u string) string {
	i := strings.Index(u, "://")
	if i < 0 {
		return ""
	}
	return u[:i]
}
