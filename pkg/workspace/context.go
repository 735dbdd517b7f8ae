// Copyright (c) 2025-2026 DModel Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package workspace

import (
	"context"
	"log/slog"
	"path/filepath"
	"sync"

	"dmodel.dev/x/workspace/pkg/engineconfig"
	"dmodel.dev/x/workspace/pkg/lockfile"
	"dmodel.dev/x/workspace/pkg/manifest"
	"dmodel.dev/x/workspace/pkg/utils"
	"github.com/minio/highwayhash"
	"github.com/viant/afs"
	"golang.org/x/sync/singleflight"
)

// hash key for content-based cache invalidation; only equality matters
var hashKey = []byte("dml-workspace-content-hash-key!!")

// Context holds the cached manifest and lock file of one workspace root.
// Concurrent callers await the same disk read instead of re-reading, and
// a reader never observes a half-updated value.
type Context struct {
	fs      afs.Service
	RootURL string

	group singleflight.Group

	mu           sync.RWMutex
	manifestLoad manifest.Load
	manifestHash uint64
	// haveManifest marks the cached value current; the hash and load are
	// kept across invalidation for content-hash comparison on re-read
	haveManifest bool
	lock         *lockfile.LockFile
	lockHash     uint64
	haveLock     bool
}

func newContext(fs afs.Service, rootURL string) *Context {
	return &Context{fs: fs, RootURL: rootURL}
}

func (c *Context) ManifestURL() string {
	return utils.JoinURL(c.RootURL, engineconfig.ManifestFilename)
}

func (c *Context) LockFileURL() string {
	return utils.JoinURL(c.RootURL, engineconfig.LockFilename)
}

// Manifest returns the root's manifest as a tagged load result. Parse and
// validation failures are logged and reported as Broken, never returned
// as errors; the error return is for filesystem failures only.
func (c *Context) Manifest(ctx context.Context) (manifest.Load, error) {
	c.mu.RLock()
	if c.haveManifest {
		load := c.manifestLoad
		c.mu.RUnlock()
		return load, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.group.Do("manifest", func() (interface{}, error) {
		return c.loadManifest(ctx)
	})
	if err != nil {
		return manifest.Load{}, err
	}
	return v.(manifest.Load), nil
}

func (c *Context) loadManifest(ctx context.Context) (manifest.Load, error) {
	c.mu.RLock()
	if c.haveManifest {
		load := c.manifestLoad
		c.mu.RUnlock()
		return load, nil
	}
	prev, prevHash := c.manifestLoad, c.manifestHash
	c.mu.RUnlock()

	exists, err := utils.FileExists(ctx, c.fs, c.ManifestURL())
	if err != nil {
		return manifest.Load{}, err
	}
	if !exists {
		return c.storeManifest(manifest.Missing(), 0), nil
	}

	contents, err := c.fs.DownloadWithURL(ctx, c.ManifestURL())
	if err != nil {
		return manifest.Load{}, err
	}

	h := highwayhash.Sum64(contents, hashKey)
	// identical content never re-validates
	if prev.State != manifest.StateMissing && h == prevHash {
		return c.storeManifest(prev, h), nil
	}

	m, err := manifest.ReadContents(contents, c.RootURL)
	if err != nil {
		slog.Warn("manifest failed validation, treating as absent",
			"url", c.ManifestURL(), "err", err.Error())
		return c.storeManifest(manifest.Broken(err), h), nil
	}
	return c.storeManifest(manifest.Loaded(m), h), nil
}

func (c *Context) storeManifest(load manifest.Load, hash uint64) manifest.Load {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.manifestLoad = load
	c.manifestHash = hash
	c.haveManifest = true
	return load
}

// LockFile returns the root's lock file, or ok=false when none exists or
// it is structurally unreadable. Malformed entries inside an otherwise
// valid file are dropped by the lockfile package, not fatal.
func (c *Context) LockFile(ctx context.Context) (*lockfile.LockFile, bool, error) {
	c.mu.RLock()
	if c.haveLock {
		l := c.lock
		c.mu.RUnlock()
		return l, l != nil, nil
	}
	c.mu.RUnlock()

	v, err, _ := c.group.Do("lock", func() (interface{}, error) {
		return c.loadLockFile(ctx)
	})
	if err != nil {
		return nil, false, err
	}
	l := v.(*lockfile.LockFile)
	return l, l != nil, nil
}

func (c *Context) loadLockFile(ctx context.Context) (*lockfile.LockFile, error) {
	c.mu.RLock()
	if c.haveLock {
		l := c.lock
		c.mu.RUnlock()
		return l, nil
	}
	prevHash := c.lockHash
	prev := c.lock
	c.mu.RUnlock()

	var contents []byte
	read := func() error {
		exists, err := utils.FileExists(ctx, c.fs, c.LockFileURL())
		if err != nil || !exists {
			return err
		}
		contents, err = c.fs.DownloadWithURL(ctx, c.LockFileURL())
		return err
	}

	// on disk, honor the installer's advisory lock so we never read a
	// half-written lock file
	if s := utils.URLScheme(c.RootURL); s == "" || s == "file" {
		lockPath := filepath.Join(utils.URLPath(c.RootURL),
			engineconfig.CacheDirName, engineconfig.InstallLockFilename)
		if err := utils.WithInstallLock(ctx, lockPath, read); err != nil {
			return nil, err
		}
	} else {
		if err := read(); err != nil {
			return nil, err
		}
	}

	if contents == nil {
		return c.storeLock(nil, 0), nil
	}

	h := highwayhash.Sum64(contents, hashKey)
	if prev != nil && h == prevHash {
		return c.storeLock(prev, h), nil
	}

	l, err := lockfile.ReadContents(contents)
	if err != nil {
		slog.Warn("lock file unreadable, treating as absent",
			"url", c.LockFileURL(), "err", err.Error())
		return c.storeLock(nil, h), nil
	}
	return c.storeLock(l, h), nil
}

func (c *Context) storeLock(l *lockfile.LockFile, hash uint64) *lockfile.LockFile {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.lock = l
	c.lockHash = hash
	c.haveLock = true
	return l
}

func (c *Context) InvalidateManifest() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.haveManifest = false
}

func (c *Context) InvalidateLock() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.haveLock = false
}

func (c *Context) InvalidateAll() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.haveManifest = false
	c.haveLock = false
}
