// Copyright (c) 2025-2026 DModel Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package depgraph maintains the import graph of the workspace. Direct
// imports are loaded eagerly while a document is built, so the rest of
// the pipeline always sees a populated reference graph before linking,
// and the reverse edge (imported -> importers) drives targeted cache
// invalidation when a file changes.
package depgraph

import (
	"context"
	"log/slog"
	"sync"

	"dmodel.dev/x/workspace/pkg/document"
	"dmodel.dev/x/workspace/pkg/resolver"
	"dmodel.dev/x/workspace/pkg/utils/stringset"
	"github.com/viant/afs"
)

// CrossReferencer is the host linker's hook for typed cross-references;
// the graph only understands string-literal import paths.
type CrossReferencer interface {
	CrossReferences(docURI string, changedURIs []string) bool
}

// Index owns the forward and reverse import edges as an explicit graph
// keyed by document URI, with clear add/remove/query operations.
type Index struct {
	fs       afs.Service
	store    *document.Store
	parser   document.Parser
	resolver *resolver.Resolver
	linker   CrossReferencer

	mu sync.RWMutex
	// importer -> resolved target URIs
	forward map[string]stringset.StringSet
	// target -> importer URIs
	reverse map[string]stringset.StringSet
	// URIs whose transitive closure has been processed, guarding
	// against import cycles and redundant re-processing
	processed stringset.StringSet
}

// New returns a fully wired index. The linker hook may be nil.
func New(fs afs.Service, store *document.Store, parser document.Parser, res *resolver.Resolver, linker CrossReferencer) *Index {
	return &Index{
		fs:        fs,
		store:     store,
		parser:    parser,
		resolver:  res,
		linker:    linker,
		forward:   map[string]stringset.StringSet{},
		reverse:   map[string]stringset.StringSet{},
		processed: stringset.New(),
	}
}

// Build parses a document if needed, resolves its direct imports, records
// the graph edges, and recursively builds every resolved import that is
// not yet indexed. By the time a document reaches Linked state its entire
// transitive import closure is at least parsed.
func (i *Index) Build(ctx context.Context, uri string) error {
	i.mu.Lock()
	if i.processed.Contains(uri) {
		i.mu.Unlock()
		return nil
	}
	i.processed.Add(uri)
	i.mu.Unlock()

	if err := i.build(ctx, uri); err != nil {
		// a failed build stays retryable; the processed mark belongs to
		// completed builds only
		i.mu.Lock()
		i.processed.Delete(uri)
		i.mu.Unlock()
		return err
	}
	return nil
}

func (i *Index) build(ctx context.Context, uri string) error {
	doc, _ := i.store.GetOrCreate(uri)

	if doc.State() < document.Parsed {
		content, err := i.fs.DownloadWithURL(ctx, uri)
		if err != nil {
			return err
		}
		imports, declarations, err := i.parser.Parse(ctx, uri, content)
		if err != nil {
			return err
		}
		if err := doc.SetParsed(imports, declarations); err != nil {
			return err
		}
	}

	targets := stringset.New()
	for _, imp := range doc.Imports() {
		target, err := i.resolver.ResolveForDocument(ctx, uri, imp.Specifier)
		if err != nil {
			// resolution failures surface as diagnostics elsewhere;
			// the graph just has no edge for them
			slog.Debug("import did not resolve", "doc", uri, "specifier", imp.Specifier, "err", err.Error())
			continue
		}
		targets.Add(target)
	}

	i.setEdges(uri, targets)

	for _, target := range targets.Values() {
		i.mu.RLock()
		done := i.processed.Contains(target)
		i.mu.RUnlock()
		if !done {
			if err := i.Build(ctx, target); err != nil {
				return err
			}
		}
	}

	return doc.Advance(document.Linked)
}

// setEdges replaces the forward edge set of one importer, keeping the
// reverse graph consistent.
func (i *Index) setEdges(uri string, targets stringset.StringSet) {
	i.mu.Lock()
	defer i.mu.Unlock()

	for old := range i.forward[uri] {
		if set, ok := i.reverse[old]; ok {
			set.Delete(uri)
			if len(set) == 0 {
				delete(i.reverse, old)
			}
		}
	}

	i.forward[uri] = targets
	for target := range targets {
		set, ok := i.reverse[target]
		if !ok {
			set = stringset.New()
			i.reverse[target] = set
		}
		set.Add(uri)
	}
}

// Importers returns the documents that directly import the given URI.
func (i *Index) Importers(uri string) []string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.reverse[uri].Values()
}

// ImportsOf returns the resolved direct imports of the given URI.
func (i *Index) ImportsOf(uri string) []string {
	i.mu.RLock()
	defer i.mu.RUnlock()
	return i.forward[uri].Values()
}

// IsAffected reports whether a document must be rebuilt after the given
// URIs changed: either the host linker sees a typed cross-reference, or
// the document imports one of them per the graph.
func (i *Index) IsAffected(uri string, changedURIs []string) bool {
	if i.linker != nil && i.linker.CrossReferences(uri, changedURIs) {
		return true
	}

	i.mu.RLock()
	defer i.mu.RUnlock()
	imports := i.forward[uri]
	for _, changed := range changedURIs {
		if imports.Contains(changed) {
			return true
		}
	}
	return false
}

// DocumentChanged supersedes the document, drops its own cached
// resolutions and, via the reverse graph, those of every direct importer,
// then rebuilds the document eagerly.
func (i *Index) DocumentChanged(ctx context.Context, uri string) error {
	i.store.Supersede(uri)
	i.resolver.InvalidateDocument(uri)

	importers := i.Importers(uri)
	i.resolver.InvalidateForDocuments(importers)

	i.mu.Lock()
	i.processed.Delete(uri)
	for _, importer := range importers {
		i.processed.Delete(importer)
	}
	i.mu.Unlock()

	return i.Build(ctx, uri)
}

// Remove deletes a document from the graph: its forward entry goes away,
// it is scrubbed from every reverse edge, and its processed flag is
// cleared so it can be reprocessed if recreated. Importers recorded in
// the reverse edge lose their cached resolutions and processed marks
// before the edge is scrubbed; afterwards nobody else knows who was
// importing the dead URI.
func (i *Index) Remove(uri string) {
	importers := i.Importers(uri)
	i.resolver.InvalidateForDocuments(importers)

	i.mu.Lock()
	for _, importer := range importers {
		i.processed.Delete(importer)
	}
	for old := range i.forward[uri] {
		if set, ok := i.reverse[old]; ok {
			set.Delete(uri)
			if len(set) == 0 {
				delete(i.reverse, old)
			}
		}
	}
	delete(i.forward, uri)
	delete(i.reverse, uri)
	i.processed.Delete(uri)
	i.mu.Unlock()

	i.store.Remove(uri)
	i.resolver.InvalidateDocument(uri)
}

// ReindexAll rebuilds every previously loaded document, honoring the
// caller's cancellation. An aborted reindex leaves no corrupt cache:
// resolutions are only stored after they complete.
func (i *Index) ReindexAll(ctx context.Context) error {
	i.mu.Lock()
	i.processed = stringset.New()
	i.mu.Unlock()

	for _, uri := range i.store.URIs() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := i.Build(ctx, uri); err != nil {
			return err
		}
	}
	return nil
}
