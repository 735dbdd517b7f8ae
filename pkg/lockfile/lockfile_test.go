// Copyright (c) 2025-2026 DModel Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package lockfile

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadContents(t *testing.T) {
	contents := []byte(`{
  "version": "1",
  "dependencies": {
    "acme/ddd": {
      "ref": "v1.0.0",
      "refType": "tag",
      "resolved": "https://github.com/acme/ddd",
      "commit": "0123456789012345678901234567890123456789",
      "integrity": "sha256-abc"
    },
    "acme/legacy": {
      "ref": "main",
      "resolved": "https://github.com/acme/legacy",
      "commit": "abcdefabcdefabcdefabcdefabcdefabcdefabcd"
    },
    "acme/broken": {
      "ref": "v2.0.0"
    }
  }
}`)

	l, err := ReadContents(contents)
	require.NoError(t, err)

	e, ok := l.Entry("acme/ddd")
	require.True(t, ok)
	assert.Equal(t, RefTag, e.Kind())
	assert.True(t, e.Trusted())

	e, ok = l.Entry("acme/legacy")
	require.True(t, ok)
	assert.Equal(t, RefBranch, e.Kind())
	assert.False(t, e.Trusted())

	// malformed entries are dropped, not fatal
	_, ok = l.Entry("acme/broken")
	assert.False(t, ok)
}

func TestReadContentsInvalid(t *testing.T) {
	_, err := ReadContents([]byte("not json"))
	assert.ErrorIs(t, err, ErrInvalidLockFile)

	_, err = ReadContents([]byte(`{"version": "42"}`))
	assert.ErrorIs(t, err, ErrInvalidLockFile)
}

func TestInferRefKind(t *testing.T) {
	tests := []struct {
		ref  string
		want RefKind
	}{
		{"0123456789012345678901234567890123456789", RefCommit},
		{"v1.2.3", RefTag},
		{"1.2.3", RefTag},
		{"main", RefBranch},
		{"feature/resolver", RefBranch},
	}

	for _, tt := range tests {
		t.Run(tt.ref, func(t *testing.T) {
			assert.Equal(t, tt.want, InferRefKind(tt.ref))
		})
	}
}
