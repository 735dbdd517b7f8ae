// Copyright (c) 2025-2026 DModel Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package scope

import (
	"context"
	"strings"
	"testing"

	"dmodel.dev/x/workspace/pkg/depgraph"
	"dmodel.dev/x/workspace/pkg/document"
	"dmodel.dev/x/workspace/pkg/resolver"
	"dmodel.dev/x/workspace/pkg/workspace"
	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/viant/afs"
)

type stubParser struct {
	imports      map[string][]document.Import
	declarations map[string][]document.Declaration
}

func (p *stubParser) Parse(_ context.Context, uri string, _ []byte) ([]document.Import, []document.Declaration, error) {
	return p.imports[uri], p.declarations[uri], nil
}

type fixture struct {
	store    *document.Store
	computer *Computer
	index    *depgraph.Index
}

func newFixture(t *testing.T, root string, p *stubParser) *fixture {
	t.Helper()
	ctx := context.Background()
	fs := afs.New()

	err := fs.Upload(ctx, root+"/dml.yaml", 0644, strings.NewReader("paths: {}\n"))
	require.NoError(t, err)
	for uri := range p.imports {
		err := fs.Upload(ctx, uri, 0644, strings.NewReader(""))
		require.NoError(t, err)
	}

	store := document.NewStore()
	res := resolver.New(fs, workspace.NewManager(fs))
	return &fixture{
		store:    store,
		computer: New(store, res),
		index:    depgraph.New(fs, store, p, res, nil),
	}
}

func names(entries []Entry) []string {
	return lo.Map(entries, func(e Entry, _ int) string { return e.Name })
}

func TestScopeNonLeakage(t *testing.T) {
	ctx := context.Background()
	root := "mem://localhost/leak/ws"
	p := &stubParser{
		imports: map[string][]document.Import{
			root + "/a.dml": nil,
			root + "/b.dml": nil,
		},
		declarations: map[string][]document.Declaration{
			root + "/a.dml": {{Name: "Widget", Kind: "entity"}},
			// same declared name elsewhere in the workspace
			root + "/b.dml": {{Name: "Widget", Kind: "entity"}},
		},
	}
	f := newFixture(t, root, p)
	require.NoError(t, f.index.Build(ctx, root+"/a.dml"))
	require.NoError(t, f.index.Build(ctx, root+"/b.dml"))

	entries, err := f.computer.ScopeFor(ctx, root+"/a.dml", "entity")
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, root+"/a.dml", entries[0].Source)
}

func TestAliasPrefixing(t *testing.T) {
	ctx := context.Background()
	root := "mem://localhost/prefix/ws"
	p := &stubParser{
		imports: map[string][]document.Import{
			root + "/a.dml": {{Specifier: "./b", Alias: "core"}},
			root + "/b.dml": nil,
		},
		declarations: map[string][]document.Declaration{
			root + "/b.dml": {{Name: "Widget", Kind: "entity"}},
		},
	}
	f := newFixture(t, root, p)
	require.NoError(t, f.index.Build(ctx, root+"/a.dml"))

	entries, err := f.computer.ScopeFor(ctx, root+"/a.dml", "entity")
	require.NoError(t, err)

	assert.Contains(t, names(entries), "core.Widget")
	assert.NotContains(t, names(entries), "Widget")
}

func TestPackageBoundaryTransitivity(t *testing.T) {
	ctx := context.Background()
	root := "mem://localhost/transitive/ws"
	pkg := root + "/.dml/packages/acme/ddd/abc123"
	p := &stubParser{
		imports: map[string][]document.Import{
			// A imports the package entry P (aliased ext); P imports its
			// sibling Q from the same package instance
			root + "/a.dml":       {{Specifier: "./" + relToRoot(pkg) + "/index", Alias: "ext"}},
			pkg + "/index.dml":    {{Specifier: "./models/q", Alias: "q"}},
			pkg + "/models/q.dml": nil,
		},
		declarations: map[string][]document.Declaration{
			pkg + "/index.dml":    {{Name: "Aggregate", Kind: "entity"}},
			pkg + "/models/q.dml": {{Name: "Sibling", Kind: "entity"}},
		},
	}
	f := newFixture(t, root, p)
	require.NoError(t, f.index.Build(ctx, root+"/a.dml"))

	entries, err := f.computer.ScopeFor(ctx, root+"/a.dml", "entity")
	require.NoError(t, err)

	// the outer alias applies to the package-internal sibling, not q's
	// internal alias
	assert.Contains(t, names(entries), "ext.Aggregate")
	assert.Contains(t, names(entries), "ext.Sibling")
	assert.NotContains(t, names(entries), "q.Sibling")
}

func TestLocalImportsAreNotTransitive(t *testing.T) {
	ctx := context.Background()
	root := "mem://localhost/localonly/ws"
	p := &stubParser{
		imports: map[string][]document.Import{
			root + "/a.dml": {{Specifier: "./l"}},
			root + "/l.dml": {{Specifier: "./m"}},
			root + "/m.dml": nil,
		},
		declarations: map[string][]document.Declaration{
			root + "/l.dml": {{Name: "Direct", Kind: "entity"}},
			root + "/m.dml": {{Name: "Indirect", Kind: "entity"}},
		},
	}
	f := newFixture(t, root, p)
	require.NoError(t, f.index.Build(ctx, root+"/a.dml"))

	entries, err := f.computer.ScopeFor(ctx, root+"/a.dml", "entity")
	require.NoError(t, err)

	assert.Contains(t, names(entries), "Direct")
	assert.NotContains(t, names(entries), "Indirect")
}

// relToRoot turns an absolute package URL into a path relative to the
// workspace root for use in a relative specifier.
func relToRoot(pkgURL string) string {
	i := strings.Index(pkgURL, "/.dml/")
	return pkgURL[i+1:]
}
