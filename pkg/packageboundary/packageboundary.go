// Copyright (c) 2025-2026 DModel Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package packageboundary classifies files as belonging to an
// externally-cached package instance or to the local workspace. The
// boundary of an external file is its owner/repo/commit cache directory;
// local files never share a boundary with anything, including each other.
package packageboundary

import (
	"context"
	"strings"
	"sync"

	"dmodel.dev/x/workspace/pkg/engineconfig"
	"dmodel.dev/x/workspace/pkg/utils"
	"github.com/viant/afs"
)

// IsExternalPackage reports whether the URL points inside the external
// package cache: a cache-dir segment immediately followed by the packages
// segment.
func IsExternalPackage(u string) bool {
	_, ok := packagesIndex(u)
	return ok
}

// CommitDirectory extracts the cache directory of the package instance the
// URL belongs to: the prefix up to and including owner/repo/commit. Pure
// string work, no filesystem access.
func CommitDirectory(u string) (string, bool) {
	segs, ok := packagesIndex(u)
	if !ok {
		return "", false
	}
	base, _ := utils.SplitURL(u)
	all := utils.Segments(u)
	// owner/repo/commit must all be present below the packages segment
	if len(all) < segs+3 {
		return "", false
	}
	return base + "/" + strings.Join(all[:segs+3], "/"), true
}

// packagesIndex finds the index of the first segment after the
// cache-root/packages pair.
func packagesIndex(u string) (int, bool) {
	segs := utils.Segments(u)
	for i := 0; i+1 < len(segs); i++ {
		if segs[i] == engineconfig.CacheDirName && segs[i+1] == engineconfig.PackagesDirName {
			return i + 2, true
		}
	}
	return 0, false
}

// SamePackage is the fast synchronous check: two files are in the same
// package iff both are external and their commit directories are
// identical.
func SamePackage(a, b string) bool {
	da, ok := CommitDirectory(a)
	if !ok {
		return false
	}
	db, ok := CommitDirectory(b)
	if !ok {
		return false
	}
	return da == db
}

// Detector adds the authoritative, filesystem-backed package-root lookup
// on top of the string-based checks, memoizing URI -> package root.
type Detector struct {
	fs afs.Service

	mu    sync.RWMutex
	roots map[string]string
}

func New(fs afs.Service) *Detector {
	return &Detector{fs: fs, roots: map[string]string{}}
}

// PackageRoot walks upward from an external file to the nearest manifest
// within its commit directory, giving the authoritative package root when
// the synchronous heuristic is insufficient.
func (d *Detector) PackageRoot(ctx context.Context, u string) (string, bool, error) {
	commitDir, ok := CommitDirectory(u)
	if !ok {
		return "", false, nil
	}

	d.mu.RLock()
	if root, ok := d.roots[u]; ok {
		d.mu.RUnlock()
		return root, root != "", nil
	}
	d.mu.RUnlock()

	root, err := d.walkToManifest(ctx, utils.ParentURL(u), commitDir)
	if err != nil {
		return "", false, err
	}

	d.mu.Lock()
	d.roots[u] = root
	d.mu.Unlock()

	return root, root != "", nil
}

func (d *Detector) walkToManifest(ctx context.Context, dir, commitDir string) (string, error) {
	for utils.WithinURL(commitDir, dir) {
		ok, err := utils.FileExists(ctx, d.fs, utils.JoinURL(dir, engineconfig.ManifestFilename))
		if err != nil {
			return "", err
		}
		if ok {
			return dir, nil
		}
		if dir == commitDir {
			break
		}
		dir = utils.ParentURL(dir)
	}
	// no manifest anywhere in the instance: the commit dir is the root
	return commitDir, nil
}

// SamePackageAuthoritative compares the manifest-derived package roots of
// two external files.
func (d *Detector) SamePackageAuthoritative(ctx context.Context, a, b string) (bool, error) {
	ra, ok, err := d.PackageRoot(ctx, a)
	if err != nil || !ok {
		return false, err
	}
	rb, ok, err := d.PackageRoot(ctx, b)
	if err != nil || !ok {
		return false, err
	}
	return ra == rb, nil
}

// Reset clears the memoized roots; must be called when packages are
// installed or removed.
func (d *Detector) Reset() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.roots = map[string]string{}
}
