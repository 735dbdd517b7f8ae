// Copyright (c) 2025-2026 DModel Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package workspace

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"dmodel.dev/x/workspace/pkg/engineconfig"
	"dmodel.dev/x/workspace/pkg/lockfile"
	"dmodel.dev/x/workspace/pkg/manifest"
	"dmodel.dev/x/workspace/pkg/utils"
	"github.com/viant/afs"
)

var (
	ErrNoManifest            = errors.New("workspace has no usable manifest")
	ErrNoLockFile            = errors.New("workspace has no lock file")
	ErrDependencyNotDeclared = errors.New("dependency not declared in manifest")
	ErrDependencyNotLocked   = errors.New("dependency has no lock entry")
)

// DependencyTarget is the on-disk location a dependency specifier maps to,
// before any file probing.
type DependencyTarget struct {
	// Key is the matched manifest dependency key
	Key string
	// Suffix is the sub-path remainder of the specifier after the key
	Suffix string
	// BaseURL is the cached package instance directory, or the local
	// dependency directory for path dependencies
	BaseURL string
	Local   bool
	// Entry is the lock entry backing the target; nil for local paths
	Entry *lockfile.Entry
}

// ResolveDependency maps a dependency specifier to its target location
// using the manifest's dependency table and the lock file. It never
// triggers installation; an uncached dependency is a terminal failure.
func (c *Context) ResolveDependency(ctx context.Context, specifier string) (*DependencyTarget, error) {
	load, err := c.Manifest(ctx)
	if err != nil {
		return nil, err
	}
	if !load.Ok() {
		return nil, ErrNoManifest
	}

	key, dep, suffix, ok := load.Manifest.MatchDependency(specifier)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrDependencyNotDeclared, specifier)
	}

	if dep.IsLocal() {
		return &DependencyTarget{
			Key:     key,
			Suffix:  suffix,
			BaseURL: utils.JoinURL(c.RootURL, dep.Path),
			Local:   true,
		}, nil
	}

	lock, ok, err := c.LockFile(ctx)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, ErrNoLockFile
	}

	entry, ok := lock.Entry(dep.Source)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrDependencyNotLocked, dep.Source)
	}

	return &DependencyTarget{
		Key:     key,
		Suffix:  suffix,
		BaseURL: CacheDirURL(c.RootURL, dep.Source, entry.Commit),
		Entry:   entry,
	}, nil
}

// CacheDirURL computes the cache directory of one package instance:
// <root>/.dml/packages/<owner>/<repo>/<commit>.
func CacheDirURL(rootURL, source, commit string) string {
	owner, repo, _ := strings.Cut(source, "/")
	return utils.JoinURL(rootURL,
		engineconfig.CacheDirName, engineconfig.PackagesDirName, owner, repo, commit)
}

// EntryFileURL determines the designated entry file of a package or
// directory by reading its own manifest, falling back to the default
// entry filename when the manifest is absent or broken.
func EntryFileURL(ctx context.Context, fs afs.Service, dirURL string) (string, error) {
	m, err := readDirectoryManifest(ctx, fs, dirURL)
	if err != nil {
		return "", err
	}
	return utils.JoinURL(dirURL, m.EntryFilename()), nil
}

func readDirectoryManifest(ctx context.Context, fs afs.Service, dirURL string) (*manifest.Manifest, error) {
	manifestURL := utils.JoinURL(dirURL, engineconfig.ManifestFilename)
	exists, err := utils.FileExists(ctx, fs, manifestURL)
	if err != nil || !exists {
		return nil, err
	}
	m, err := manifest.Read(ctx, fs, manifestURL, dirURL)
	if err != nil {
		// a broken nested manifest degrades to defaults, same as a
		// broken workspace manifest
		return nil, nil
	}
	return m, nil
}
