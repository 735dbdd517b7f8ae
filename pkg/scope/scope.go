// Copyright (c) 2025-2026 DModel Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package scope computes the exact set of declarations visible to a
// document: its own, those of its direct imports (alias-prefixed when the
// import carries one), and the curated transitive set that crosses only
// package-internal boundaries. Scopes are computed fresh on every request;
// only the underlying specifier resolutions are cached.
package scope

import (
	"context"

	"dmodel.dev/x/workspace/pkg/document"
	"dmodel.dev/x/workspace/pkg/packageboundary"
	"dmodel.dev/x/workspace/pkg/resolver"
	"dmodel.dev/x/workspace/pkg/utils/stringset"
)

// Entry is one visible declaration, under the name the requesting
// document sees it by.
type Entry struct {
	// Name is the visible name, alias-prefixed (alias.Original) for
	// aliased imports
	Name        string
	Declaration document.Declaration
	// Source is the URI of the document declaring the entity
	Source string
}

type Computer struct {
	store    *document.Store
	resolver *resolver.Resolver
	filters  []filter
}

// request accumulates one scope computation as it flows through the
// filter pipeline.
type request struct {
	doc  *document.Document
	kind document.Kind
	// seen deduplicates by resolved URI so a document reached by two
	// import paths is processed once
	seen stringset.StringSet
	// direct records each resolved direct import for the transitive step
	direct  []directImport
	entries []Entry
}

type directImport struct {
	targetURI string
	alias     string
}

type filter func(ctx context.Context, req *request) error

func New(store *document.Store, res *resolver.Resolver) *Computer {
	c := &Computer{store: store, resolver: res}
	c.filters = []filter{
		c.ownDeclarations,
		c.directImports,
		c.packageTransitive,
	}
	return c
}

// ScopeFor produces the flat scope of one entity kind for one document.
func (c *Computer) ScopeFor(ctx context.Context, docURI string, kind document.Kind) ([]Entry, error) {
	doc, ok := c.store.Get(docURI)
	if !ok {
		return nil, nil
	}

	req := &request{
		doc:  doc,
		kind: kind,
		seen: stringset.New(docURI),
	}
	for _, f := range c.filters {
		if err := f(ctx, req); err != nil {
			return nil, err
		}
	}
	return req.entries, nil
}

// ownDeclarations includes the document's own declarations of the kind.
func (c *Computer) ownDeclarations(_ context.Context, req *request) error {
	for _, decl := range req.doc.DeclarationsOf(req.kind) {
		req.entries = append(req.entries, Entry{
			Name:        decl.Name,
			Declaration: decl,
			Source:      req.doc.URI,
		})
	}
	return nil
}

// directImports includes the declarations of every direct import,
// rewriting names to alias.Original when the import carries an alias.
func (c *Computer) directImports(ctx context.Context, req *request) error {
	for _, imp := range req.doc.Imports() {
		targetURI, err := c.resolver.ResolveForDocument(ctx, req.doc.URI, imp.Specifier)
		if err != nil {
			// unresolvable imports contribute nothing to the scope
			continue
		}

		req.direct = append(req.direct, directImport{targetURI: targetURI, alias: imp.Alias})

		if req.seen.Contains(targetURI) {
			continue
		}
		req.seen.Add(targetURI)

		target, ok := c.store.Get(targetURI)
		if !ok {
			continue
		}
		c.include(req, target, imp.Alias)
	}
	return nil
}

// packageTransitive extends visibility across package-internal imports:
// when a direct import is an external package file, the same-package files
// it imports become visible under the outer import's alias. Local imports
// never receive this treatment.
func (c *Computer) packageTransitive(ctx context.Context, req *request) error {
	for _, direct := range req.direct {
		if !packageboundary.IsExternalPackage(direct.targetURI) {
			continue
		}

		target, ok := c.store.Get(direct.targetURI)
		if !ok {
			continue
		}

		for _, inner := range target.Imports() {
			innerURI, err := c.resolver.ResolveForDocument(ctx, direct.targetURI, inner.Specifier)
			if err != nil {
				continue
			}
			if !packageboundary.SamePackage(direct.targetURI, innerURI) {
				continue
			}
			if req.seen.Contains(innerURI) {
				continue
			}
			req.seen.Add(innerURI)

			innerDoc, ok := c.store.Get(innerURI)
			if !ok {
				continue
			}
			// the outer alias applies, not the package's internal one
			c.include(req, innerDoc, direct.alias)
		}
	}
	return nil
}

func (c *Computer) include(req *request, doc *document.Document, alias string) {
	for _, decl := range doc.DeclarationsOf(req.kind) {
		name := decl.Name
		if alias != "" {
			name = alias + "." + decl.Name
		}
		req.entries = append(req.entries, Entry{
			Name:        name,
			Declaration: decl,
			Source:      doc.URI,
		})
	}
}
