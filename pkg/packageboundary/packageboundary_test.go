// Copyright (c) 2025-2026 DModel Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package packageboundary

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
)

const cacheBase = "mem://localhost/ws/.dml/packages"

func TestIsExternalPackage(t *testing.T) {
	assert.True(t, IsExternalPackage(cacheBase+"/acme/ddd/abc123/index.dml"))
	assert.False(t, IsExternalPackage("mem://localhost/ws/models/a.dml"))
	assert.False(t, IsExternalPackage("mem://localhost/ws/.dml/other/a.dml"))
	assert.False(t, IsExternalPackage("mem://localhost/ws/packages/a.dml"))
}

func TestCommitDirectory(t *testing.T) {
	dir, ok := CommitDirectory(cacheBase + "/acme/ddd/abc123/models/core.dml")
	require.True(t, ok)
	assert.Equal(t, cacheBase+"/acme/ddd/abc123", dir)

	// path ends before the commit segment
	_, ok = CommitDirectory(cacheBase + "/acme/ddd")
	assert.False(t, ok)

	_, ok = CommitDirectory("mem://localhost/ws/models/a.dml")
	assert.False(t, ok)
}

func TestSamePackage(t *testing.T) {
	a := cacheBase + "/acme/ddd/abc123/index.dml"
	b := cacheBase + "/acme/ddd/abc123/models/core.dml"
	c := cacheBase + "/acme/ddd/def456/index.dml"
	local1 := "mem://localhost/ws/a.dml"
	local2 := "mem://localhost/ws/b.dml"

	assert.True(t, SamePackage(a, b))
	assert.False(t, SamePackage(a, c))
	assert.False(t, SamePackage(a, local1))

	// local files are each their own isolated boundary
	assert.False(t, SamePackage(local1, local2))
	assert.False(t, SamePackage(local1, local1))
}

func TestPackageRoot(t *testing.T) {
	ctx := context.Background()
	fs := afs.New()
	commitDir := cacheBase + "/acme/ddd/abc123"
	err := fs.Upload(ctx, commitDir+"/dml.yaml", 0644, strings.NewReader("entry: index.dml\n"))
	require.NoError(t, err)
	err = fs.Upload(ctx, commitDir+"/models/core.dml", 0644, strings.NewReader(""))
	require.NoError(t, err)

	d := New(fs)
	root, ok, err := d.PackageRoot(ctx, commitDir+"/models/core.dml")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, commitDir, root)

	// local files have no package root
	_, ok, err = d.PackageRoot(ctx, "mem://localhost/ws/a.dml")
	require.NoError(t, err)
	assert.False(t, ok)

	same, err := d.SamePackageAuthoritative(ctx, commitDir+"/models/core.dml", commitDir+"/dml.yaml")
	require.NoError(t, err)
	assert.True(t, same)
}
