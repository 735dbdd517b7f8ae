// Copyright (c) 2025-2026 DModel Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStateMonotonic(t *testing.T) {
	d := New("mem://localhost/ws/a.dml")
	require.Equal(t, Unparsed, d.State())

	require.NoError(t, d.SetParsed(nil, nil))
	require.NoError(t, d.Advance(Linked))
	require.NoError(t, d.Advance(Linked)) // re-entering is a no-op
	require.NoError(t, d.Advance(Validated))

	assert.Error(t, d.Advance(Parsed))
	assert.Equal(t, Validated, d.State())
}

func TestDeclarationsOf(t *testing.T) {
	d := New("mem://localhost/ws/a.dml")
	require.NoError(t, d.SetParsed(nil, []Declaration{
		{Name: "Widget", Kind: "entity"},
		{Name: "Color", Kind: "enum"},
		{Name: "Gadget", Kind: "entity"},
	}))

	entities := d.DeclarationsOf("entity")
	require.Len(t, entities, 2)
	assert.Equal(t, "Widget", entities[0].Name)

	assert.Len(t, d.DeclarationsOf(KindAny), 3)
	assert.Empty(t, d.DeclarationsOf("service"))
}

func TestStoreLifecycle(t *testing.T) {
	s := NewStore()
	uri := "mem://localhost/ws/a.dml"

	d, created := s.GetOrCreate(uri)
	require.True(t, created)
	_, created = s.GetOrCreate(uri)
	assert.False(t, created)

	require.NoError(t, d.SetParsed([]Import{{Specifier: "./b"}}, nil))

	// superseding discards accumulated state but keeps identity
	fresh := s.Supersede(uri)
	assert.Equal(t, uri, fresh.URI)
	assert.Equal(t, Unparsed, fresh.State())
	got, ok := s.Get(uri)
	require.True(t, ok)
	assert.Same(t, fresh, got)

	assert.True(t, s.Remove(uri))
	assert.False(t, s.Remove(uri))
	assert.Zero(t, s.Len())
}
