// Copyright (c) 2025-2026 DModel Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package workspace

import (
	"context"
	"sync"

	"dmodel.dev/x/workspace/pkg/engineconfig"
	"dmodel.dev/x/workspace/pkg/utils"
	"dmodel.dev/x/workspace/pkg/utils/stringset"
	"github.com/viant/afs"
)

// Manager discovers workspace roots and owns one Context per root.
// Multiple contexts coexist for multi-root workspaces; the active context
// is whichever root the most recent resolution request resolved to.
type Manager struct {
	fs afs.Service

	mu       sync.RWMutex
	contexts map[string]*Context
	// directories known to contain a manifest, to avoid repeated walks
	manifestDirs stringset.StringSet
	// exact start URL -> root URL ("" records a completed miss)
	rootByStart map[string]string
	active      string
}

func NewManager(fs afs.Service) *Manager {
	return &Manager{
		fs:           fs,
		contexts:     map[string]*Context{},
		manifestDirs: stringset.New(),
		rootByStart:  map[string]string{},
	}
}

// FindRoot walks upward from the given directory URL until a directory
// containing a manifest file is found, or the filesystem root is reached.
func (m *Manager) FindRoot(ctx context.Context, startURL string) (string, bool, error) {
	m.mu.RLock()
	if root, ok := m.rootByStart[startURL]; ok {
		m.mu.RUnlock()
		return root, root != "", nil
	}
	m.mu.RUnlock()

	root, err := m.walkToRoot(ctx, startURL)
	if err != nil {
		return "", false, err
	}

	m.mu.Lock()
	m.rootByStart[startURL] = root
	if root != "" {
		m.manifestDirs.Add(root)
	}
	m.mu.Unlock()

	return root, root != "", nil
}

func (m *Manager) walkToRoot(ctx context.Context, startURL string) (string, error) {
	dir := startURL
	for {
		m.mu.RLock()
		known := m.manifestDirs.Contains(dir)
		m.mu.RUnlock()
		if known {
			return dir, nil
		}

		ok, err := utils.FileExists(ctx, m.fs, utils.JoinURL(dir, engineconfig.ManifestFilename))
		if err != nil {
			return "", err
		}
		if ok {
			return dir, nil
		}

		if utils.IsRootURL(dir) {
			return "", nil
		}
		dir = utils.ParentURL(dir)
	}
}

// ContextFor finds the workspace context governing the given document and
// marks it active.
func (m *Manager) ContextFor(ctx context.Context, docURL string) (*Context, bool, error) {
	root, ok, err := m.FindRoot(ctx, utils.ParentURL(docURL))
	if err != nil || !ok {
		return nil, false, err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	c, ok := m.contexts[root]
	if !ok {
		c = newContext(m.fs, root)
		m.contexts[root] = c
	}
	m.active = root
	return c, true, nil
}

// Active returns the context of the most recent resolution, if any.
func (m *Manager) Active() (*Context, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	c, ok := m.contexts[m.active]
	return c, ok
}

// InvalidateManifestCache drops the active context's cached manifest. The
// file watcher calls this when the manifest changes on disk.
func (m *Manager) InvalidateManifestCache() {
	if c, ok := m.Active(); ok {
		c.InvalidateManifest()
	}
}

// InvalidateLockCache drops the active context's cached lock file.
func (m *Manager) InvalidateLockCache() {
	if c, ok := m.Active(); ok {
		c.InvalidateLock()
	}
}

// InvalidateAll drops every cached manifest and lock file along with the
// memoized root lookups, so newly created or deleted manifests are picked
// up on the next walk.
func (m *Manager) InvalidateAll() {
	m.mu.Lock()
	contexts := make([]*Context, 0, len(m.contexts))
	for _, c := range m.contexts {
		contexts = append(contexts, c)
	}
	m.manifestDirs = stringset.New()
	m.rootByStart = map[string]string{}
	m.mu.Unlock()

	for _, c := range contexts {
		c.InvalidateAll()
	}
}
