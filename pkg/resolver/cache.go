// Copyright (c) 2025-2026 DModel Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package resolver

import "sync"

// resolutionCache memoizes completed resolutions, scoped per requesting
// document: (document URI, specifier) -> resolved target URI. Entries for
// a document are dropped when that document changes; entries staled by a
// different file moving or disappearing are dropped via the dependency
// graph's targeted invalidation, which knows the reverse-dependency set.
type resolutionCache struct {
	mu      sync.RWMutex
	entries map[string]map[string]string
}

func newResolutionCache() *resolutionCache {
	return &resolutionCache{entries: map[string]map[string]string{}}
}

func (c *resolutionCache) get(docURI, specifier string) (string, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	target, ok := c.entries[docURI][specifier]
	return target, ok
}

func (c *resolutionCache) put(docURI, specifier, target string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	m, ok := c.entries[docURI]
	if !ok {
		m = map[string]string{}
		c.entries[docURI] = m
	}
	m[specifier] = target
}

func (c *resolutionCache) invalidateDocument(docURI string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, docURI)
}

func (c *resolutionCache) invalidateDocuments(docURIs []string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	for _, uri := range docURIs {
		delete(c.entries, uri)
	}
}

func (c *resolutionCache) clear() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string]map[string]string{}
}
