// Copyright (c) 2025-2026 DModel Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"sync"
)

// Store owns every live document, keyed by canonical URI. Documents are
// created on first access, removed explicitly when their file is deleted,
// and superseded by a fresh instance when their content changes.
type Store struct {
	mu   sync.RWMutex
	docs map[string]*Document
}

func NewStore() *Store {
	return &Store{docs: map[string]*Document{}}
}

func (s *Store) Get(uri string) (*Document, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	d, ok := s.docs[uri]
	return d, ok
}

// GetOrCreate returns the document for the URI, creating it in Unparsed
// state on first access.
func (s *Store) GetOrCreate(uri string) (*Document, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d, ok := s.docs[uri]; ok {
		return d, false
	}
	d := New(uri)
	s.docs[uri] = d
	return d, true
}

// Supersede discards the document's accumulated state and replaces it with
// a fresh Unparsed instance, keeping the identity. Called on content
// change.
func (s *Store) Supersede(uri string) *Document {
	s.mu.Lock()
	defer s.mu.Unlock()
	d := New(uri)
	s.docs[uri] = d
	return d
}

func (s *Store) Remove(uri string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, ok := s.docs[uri]
	delete(s.docs, uri)
	return ok
}

func (s *Store) URIs() []string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	uris := make([]string, 0, len(s.docs))
	for uri := range s.docs {
		uris = append(uris, uri)
	}
	return uris
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.docs)
}
