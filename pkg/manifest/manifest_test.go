// Copyright (c) 2025-2026 DModel Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadContents(t *testing.T) {
	contents := []byte(`
entry: main.dml
paths:
  "@shared": ./shared
  "@shared/types": ./shared/types
dependencies:
  acme/ddd: v1.0.0
  pinned:
    source: acme/pinned
    ref: 0123456789012345678901234567890123456789
  lib:
    path: ./lib
`)
	m, err := ReadContents(contents, "mem://localhost/ws")
	require.NoError(t, err)

	assert.Equal(t, "main.dml", m.EntryFilename())
	assert.Equal(t, "./shared", m.Paths["@shared"])

	require.Contains(t, m.Dependencies, "acme/ddd")
	assert.Equal(t, "acme/ddd", m.Dependencies["acme/ddd"].Source)
	assert.Equal(t, "v1.0.0", m.Dependencies["acme/ddd"].Ref)

	assert.Equal(t, "acme/pinned", m.Dependencies["pinned"].Source)
	assert.True(t, m.Dependencies["lib"].IsLocal())
}

func TestReadContentsInvalid(t *testing.T) {
	tests := []struct {
		name     string
		contents string
	}{
		{
			name:     "malformed yaml",
			contents: "paths: [",
		},
		{
			name:     "alias missing sigil",
			contents: "paths:\n  shared: ./shared\n",
		},
		{
			name:     "dependency with both source and path",
			contents: "dependencies:\n  x:\n    source: a/b\n    ref: v1\n    path: ./x\n",
		},
		{
			name:     "dependency with neither source nor path",
			contents: "dependencies:\n  x: {}\n",
		},
		{
			name:     "source without ref",
			contents: "dependencies:\n  x:\n    source: a/b\n",
		},
		{
			name:     "local path escapes root",
			contents: "dependencies:\n  x:\n    path: ../outside\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ReadContents([]byte(tt.contents), "mem://localhost/ws")
			assert.ErrorIs(t, err, ErrInvalidManifest)
		})
	}
}

func TestMatchAlias(t *testing.T) {
	m := &Manifest{Paths: map[string]string{
		"@shared":       "./a",
		"@shared/types": "./b",
	}}

	alias, target, remainder, ok := m.MatchAlias("@shared/types/x")
	require.True(t, ok)
	assert.Equal(t, "@shared/types", alias)
	assert.Equal(t, "./b", target)
	assert.Equal(t, "x", remainder)

	alias, target, remainder, ok = m.MatchAlias("@shared/other")
	require.True(t, ok)
	assert.Equal(t, "@shared", alias)
	assert.Equal(t, "./a", target)
	assert.Equal(t, "other", remainder)

	alias, _, remainder, ok = m.MatchAlias("@shared")
	require.True(t, ok)
	assert.Equal(t, "@shared", alias)
	assert.Empty(t, remainder)

	_, _, _, ok = m.MatchAlias("@sharedextra")
	assert.False(t, ok)
}

func TestMatchDependency(t *testing.T) {
	m := &Manifest{Dependencies: map[string]*Dependency{
		"acme/ddd":       {Source: "acme/ddd", Ref: "v1"},
		"acme/ddd/extra": {Source: "acme/ddd-extra", Ref: "v1"},
	}}

	key, _, remainder, ok := m.MatchDependency("acme/ddd/extra/m")
	require.True(t, ok)
	assert.Equal(t, "acme/ddd/extra", key)
	assert.Equal(t, "m", remainder)

	key, dep, remainder, ok := m.MatchDependency("acme/ddd/models/core")
	require.True(t, ok)
	assert.Equal(t, "acme/ddd", key)
	assert.Equal(t, "acme/ddd", dep.Source)
	assert.Equal(t, "models/core", remainder)

	_, _, _, ok = m.MatchDependency("acme/other")
	assert.False(t, ok)
}

func TestEntryFilenameDefault(t *testing.T) {
	m, err := ReadContents([]byte("paths: {}\n"), "mem://localhost/ws")
	require.NoError(t, err)
	assert.Equal(t, "index.dml", m.EntryFilename())
}
