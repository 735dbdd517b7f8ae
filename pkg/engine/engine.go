// Copyright (c) 2025-2026 DModel Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package engine wires the resolution pipeline into one fully
// constructed service: document store, workspace manager, specifier
// resolver, dependency graph, boundary detector, and scope computer.
// There is no partially initialized state; New returns a service that is
// ready for every operation.
package engine

import (
	"context"
	"fmt"

	"dmodel.dev/x/workspace/pkg/depgraph"
	"dmodel.dev/x/workspace/pkg/document"
	"dmodel.dev/x/workspace/pkg/packageboundary"
	"dmodel.dev/x/workspace/pkg/resolver"
	"dmodel.dev/x/workspace/pkg/scope"
	"dmodel.dev/x/workspace/pkg/workspace"
	"github.com/viant/afs"
)

type Options struct {
	// FS defaults to the OS-backed service
	FS afs.Service
	// Parser is the external grammar collaborator; required
	Parser document.Parser
	// Linker is the host's typed cross-reference hook; optional
	Linker depgraph.CrossReferencer
}

type Engine struct {
	fs afs.Service

	Store      *document.Store
	Workspaces *workspace.Manager
	Resolver   *resolver.Resolver
	Graph      *depgraph.Index
	Boundary   *packageboundary.Detector
	Scopes     *scope.Computer
}

func New(opts Options) (*Engine, error) {
	if opts.Parser == nil {
		return nil, fmt.Errorf("engine: a parser is required")
	}
	fs := opts.FS
	if fs == nil {
		fs = afs.New()
	}

	store := document.NewStore()
	workspaces := workspace.NewManager(fs)
	res := resolver.New(fs, workspaces)

	return &Engine{
		fs:         fs,
		Store:      store,
		Workspaces: workspaces,
		Resolver:   res,
		Graph:      depgraph.New(fs, store, opts.Parser, res, opts.Linker),
		Boundary:   packageboundary.New(fs),
		Scopes:     scope.New(store, res),
	}, nil
}

// Load builds a document and its transitive import closure.
func (e *Engine) Load(ctx context.Context, uri string) error {
	return e.Graph.Build(ctx, uri)
}

// Resolve resolves one specifier for a requesting document.
func (e *Engine) Resolve(ctx context.Context, docURI, specifier string) (string, error) {
	return e.Resolver.ResolveForDocument(ctx, docURI, specifier)
}

// ScopeFor computes the visible declarations of a kind for a document.
func (e *Engine) ScopeFor(ctx context.Context, docURI string, kind document.Kind) ([]scope.Entry, error) {
	return e.Scopes.ScopeFor(ctx, docURI, kind)
}

// DocumentChanged is the watcher's entry point for a source file edit.
func (e *Engine) DocumentChanged(ctx context.Context, uri string) error {
	return e.Graph.DocumentChanged(ctx, uri)
}

// DocumentRemoved is the watcher's entry point for a source file delete.
func (e *Engine) DocumentRemoved(uri string) {
	e.Graph.Remove(uri)
}

// InvalidateManifestCache drops the active workspace's cached manifest;
// called by the watcher when the manifest file changes on disk.
func (e *Engine) InvalidateManifestCache() {
	e.Workspaces.InvalidateManifestCache()
}

// InvalidateLockCache drops the active workspace's cached lock file.
func (e *Engine) InvalidateLockCache() {
	e.Workspaces.InvalidateLockCache()
	e.Boundary.Reset()
}

// ClearCache resets the whole resolver cache.
func (e *Engine) ClearCache() {
	e.Resolver.Clear()
}

// InvalidateForDocuments drops cached resolutions for the given documents.
func (e *Engine) InvalidateForDocuments(uris []string) {
	e.Resolver.InvalidateForDocuments(uris)
}

// ReindexWorkspace rebuilds every loaded document after a manifest or
// lock file change. Cancellation aborts the in-flight rebuild without
// corrupting caches.
func (e *Engine) ReindexWorkspace(ctx context.Context) error {
	e.Workspaces.InvalidateAll()
	e.Boundary.Reset()
	e.Resolver.Clear()
	return e.Graph.ReindexAll(ctx)
}
