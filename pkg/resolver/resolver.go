// Copyright (c) 2025-2026 DModel Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package resolver turns one import specifier plus a requesting document
// into a concrete target file, across three addressing schemes: relative
// paths, manifest aliases, and versioned external dependencies. It never
// performs network I/O; an uncached external dependency is a terminal
// failure.
package resolver

import (
	"context"
	"errors"
	"strings"

	"dmodel.dev/x/workspace/pkg/engineconfig"
	"dmodel.dev/x/workspace/pkg/resolutionerrors"
	"dmodel.dev/x/workspace/pkg/utils"
	"dmodel.dev/x/workspace/pkg/workspace"
	"github.com/viant/afs"
)

type Resolver struct {
	fs         afs.Service
	workspaces *workspace.Manager
	cache      *resolutionCache
}

func New(fs afs.Service, workspaces *workspace.Manager) *Resolver {
	return &Resolver{
		fs:         fs,
		workspaces: workspaces,
		cache:      newResolutionCache(),
	}
}

// ResolveForDocument resolves a specifier for a requesting document,
// consulting the per-document cache first. The cache is only mutated
// after a resolution completes.
func (r *Resolver) ResolveForDocument(ctx context.Context, docURI, specifier string) (string, error) {
	if target, ok := r.cache.get(docURI, specifier); ok {
		return target, nil
	}

	target, err := r.resolve(ctx, docURI, specifier)
	if err != nil {
		return "", err
	}

	r.cache.put(docURI, specifier, target)
	return target, nil
}

func (r *Resolver) resolve(ctx context.Context, docURI, specifier string) (string, error) {
	switch {
	case strings.HasPrefix(specifier, "./") || strings.HasPrefix(specifier, "../"):
		return r.resolveRelative(ctx, docURI, specifier)
	case strings.HasPrefix(specifier, engineconfig.AliasSigil):
		return r.resolveAlias(ctx, docURI, specifier)
	default:
		return r.resolveExternal(ctx, docURI, specifier)
	}
}

func (r *Resolver) resolveRelative(ctx context.Context, docURI, specifier string) (string, error) {
	target := utils.JoinURL(utils.ParentURL(docURI), specifier)
	return r.directoryFirst(ctx, specifier, target)
}

func (r *Resolver) resolveAlias(ctx context.Context, docURI, specifier string) (string, error) {
	wctx, ok, err := r.workspaces.ContextFor(ctx, docURI)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", resolutionerrors.NewMissingManifestError(specifier)
	}

	load, err := wctx.Manifest(ctx)
	if err != nil {
		return "", err
	}

	if load.Ok() && load.Manifest.HasAliases() {
		_, target, remainder, ok := load.Manifest.MatchAlias(specifier)
		if !ok {
			return "", resolutionerrors.NewUnknownAliasError(specifier, aliasHead(specifier))
		}
		targetURL := utils.JoinURL(wctx.RootURL, target, remainder)
		return r.directoryFirst(ctx, specifier, targetURL)
	}

	// with no declared aliases, a bare @/... resolves against the
	// workspace root
	if rest, ok := strings.CutPrefix(specifier, engineconfig.AliasSigil+"/"); ok {
		return r.directoryFirst(ctx, specifier, utils.JoinURL(wctx.RootURL, rest))
	}
	return "", resolutionerrors.NewUnknownAliasError(specifier, aliasHead(specifier))
}

func (r *Resolver) resolveExternal(ctx context.Context, docURI, specifier string) (string, error) {
	wctx, ok, err := r.workspaces.ContextFor(ctx, docURI)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", resolutionerrors.NewMissingManifestError(specifier)
	}

	target, err := wctx.ResolveDependency(ctx, specifier)
	switch {
	case errors.Is(err, workspace.ErrNoManifest):
		return "", resolutionerrors.NewMissingManifestError(specifier)
	case errors.Is(err, workspace.ErrNoLockFile), errors.Is(err, workspace.ErrDependencyNotLocked):
		return "", resolutionerrors.NewNotInstalledError(specifier)
	case errors.Is(err, workspace.ErrDependencyNotDeclared):
		return "", resolutionerrors.NewDependencyNotFoundError(specifier, dependencyKey(specifier))
	case err != nil:
		return "", err
	}

	if target.Suffix != "" {
		return r.directoryFirst(ctx, specifier, utils.JoinURL(target.BaseURL, target.Suffix))
	}

	// bare dependency import: the package's own manifest names its entry
	entryURL, err := workspace.EntryFileURL(ctx, r.fs, target.BaseURL)
	if err != nil {
		return "", err
	}
	ok, err = utils.FileExists(ctx, r.fs, entryURL)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", resolutionerrors.NewMissingEntryError(specifier, entryURL)
	}
	return entryURL, nil
}

// directoryFirst applies the language's resolution priority to a candidate
// URL: a directory's designated entry file wins over a same-named file,
// then the bare path with the language extension appended.
func (r *Resolver) directoryFirst(ctx context.Context, specifier, targetURL string) (string, error) {
	if ext := utils.Ext(targetURL); ext != "" && ext != engineconfig.FileExtension {
		return "", resolutionerrors.NewUnresolvableError(specifier)
	}

	isDir, err := utils.DirExists(ctx, r.fs, targetURL)
	if err != nil {
		return "", err
	}
	if isDir {
		entryURL, err := workspace.EntryFileURL(ctx, r.fs, targetURL)
		if err != nil {
			return "", err
		}
		ok, err := utils.FileExists(ctx, r.fs, entryURL)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", resolutionerrors.NewMissingEntryError(specifier, entryURL)
		}
		return entryURL, nil
	}

	if utils.Ext(targetURL) == engineconfig.FileExtension {
		ok, err := utils.FileExists(ctx, r.fs, targetURL)
		if err != nil {
			return "", err
		}
		if !ok {
			return "", resolutionerrors.NewFileNotFoundError(specifier, targetURL)
		}
		return targetURL, nil
	}

	withExt := targetURL + engineconfig.FileExtension
	ok, err := utils.FileExists(ctx, r.fs, withExt)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", resolutionerrors.NewFileNotFoundError(specifier, targetURL, withExt)
	}
	return withExt, nil
}

// aliasHead gives the alias portion of a specifier, for diagnostics.
func aliasHead(specifier string) string {
	if i := strings.Index(specifier, "/"); i > 0 {
		return specifier[:i]
	}
	return specifier
}

// dependencyKey guesses the owner/repo key of an external specifier, for
// diagnostics.
func dependencyKey(specifier string) string {
	parts := strings.SplitN(specifier, "/", 3)
	if len(parts) >= 2 {
		return parts[0] + "/" + parts[1]
	}
	return specifier
}

// InvalidateDocument drops cached resolutions of one document, called when
// that document's content changes.
func (r *Resolver) InvalidateDocument(docURI string) {
	r.cache.invalidateDocument(docURI)
}

// InvalidateForDocuments drops cached resolutions of the given documents;
// the dependency graph calls this with the reverse-dependency set of a
// changed file.
func (r *Resolver) InvalidateForDocuments(docURIs []string) {
	r.cache.invalidateDocuments(docURIs)
}

// Clear resets the whole resolution cache.
func (r *Resolver) Clear() {
	r.cache.clear()
}
