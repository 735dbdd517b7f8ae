// Copyright (c) 2025-2026 DModel Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package manifest

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"dmodel.dev/x/workspace/pkg/engineconfig"
	"github.com/goccy/go-yaml"
	"github.com/samber/lo"
	"github.com/viant/afs"
)

var ErrInvalidManifest = fmt.Errorf("invalid " + engineconfig.ManifestFilename)

// Manifest is the parsed and validated project configuration of one
// workspace root (or of one cached package instance).
type Manifest struct {
	// Entry overrides the designated entry file of the manifest's directory
	Entry string `yaml:"entry,omitempty"`

	// Paths maps an alias (always starting with the @ sigil) to a
	// root-relative target path
	Paths map[string]string `yaml:"paths,omitempty"`

	Dependencies map[string]*Dependency `yaml:"dependencies,omitempty"`

	RootURL string `yaml:"-"`
}

// Dependency is one entry of the manifest's dependency table. Exactly one
// of Source and Path is set; Source requires Ref. The short YAML form
// "owner/repo": "ref" uses the key as the source.
type Dependency struct {
	Source string `yaml:"source,omitempty"`
	Ref    string `yaml:"ref,omitempty"`
	Path   string `yaml:"path,omitempty"`
}

func (d *Dependency) UnmarshalYAML(unmarshal func(interface{}) error) error {
	var ref string
	if err := unmarshal(&ref); err == nil {
		d.Ref = ref
		return nil
	}

	type plain Dependency
	var p plain
	if err := unmarshal(&p); err != nil {
		return err
	}
	*d = Dependency(p)
	return nil
}

func (d *Dependency) IsLocal() bool {
	return d.Path != ""
}

func Read(ctx context.Context, fs afs.Service, manifestURL, rootURL string) (*Manifest, error) {
	contents, err := fs.DownloadWithURL(ctx, manifestURL)
	if err != nil {
		return nil, err
	}
	return ReadContents(contents, rootURL)
}

func ReadContents(contents []byte, rootURL string) (*Manifest, error) {
	var m Manifest
	if err := yaml.Unmarshal(contents, &m); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidManifest, err.Error())
	}
	m.RootURL = rootURL

	// short-form dependencies carry their source in the key
	for key, dep := range m.Dependencies {
		if dep == nil {
			m.Dependencies[key] = &Dependency{}
			continue
		}
		if dep.Source == "" && dep.Path == "" && dep.Ref != "" {
			dep.Source = key
		}
	}

	if err := m.validate(); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidManifest, err.Error())
	}
	return &m, nil
}

func (m *Manifest) validate() error {
	var errs []error

	for alias := range m.Paths {
		if !strings.HasPrefix(alias, engineconfig.AliasSigil) {
			errs = append(errs, fmt.Errorf("path alias %q must start with %q", alias, engineconfig.AliasSigil))
		}
	}

	for key, dep := range m.Dependencies {
		switch {
		case dep.Source != "" && dep.Path != "":
			errs = append(errs, fmt.Errorf("dependency %q declares both 'source' and 'path'", key))
		case dep.Source == "" && dep.Path == "":
			errs = append(errs, fmt.Errorf("dependency %q must declare either 'source' or 'path'", key))
		case dep.Source != "" && dep.Ref == "":
			errs = append(errs, fmt.Errorf("dependency %q declares 'source' without 'ref'", key))
		case dep.Path != "" && escapesRoot(dep.Path):
			errs = append(errs, fmt.Errorf("dependency %q path %q escapes the workspace root", key, dep.Path))
		}
	}

	return errors.Join(errs...)
}

// escapesRoot reports whether a root-relative path climbs above the root.
func escapesRoot(p string) bool {
	cleaned := path.Clean(strings.TrimPrefix(p, "./"))
	return cleaned == ".." || strings.HasPrefix(cleaned, "../")
}

// EntryFilename gives the designated entry file of the manifest's directory.
func (m *Manifest) EntryFilename() string {
	if m == nil || m.Entry == "" {
		return engineconfig.DefaultEntryFilename
	}
	return m.Entry
}

// MatchAlias finds the longest declared alias that is an exact match or a
// slash-delimited prefix of the specifier, so more specific aliases shadow
// shorter ones. The returned remainder never has a leading slash.
func (m *Manifest) MatchAlias(specifier string) (alias, target, remainder string, ok bool) {
	for a, t := range m.Paths {
		if specifier != a && !strings.HasPrefix(specifier, a+"/") {
			continue
		}
		if ok && len(a) <= len(alias) {
			continue
		}
		alias, target, ok = a, t, true
	}
	if !ok {
		return "", "", "", false
	}
	return alias, target, strings.TrimPrefix(strings.TrimPrefix(specifier, alias), "/"), true
}

// MatchDependency finds the longest dependency key that is an exact match
// or a slash-delimited prefix of the specifier.
func (m *Manifest) MatchDependency(specifier string) (key string, dep *Dependency, remainder string, ok bool) {
	keys := lo.Filter(lo.Keys(m.Dependencies), func(k string, _ int) bool {
		return specifier == k || strings.HasPrefix(specifier, k+"/")
	})
	if len(keys) == 0 {
		return "", nil, "", false
	}
	key = lo.MaxBy(keys, func(a, b string) bool { return len(a) > len(b) })
	return key, m.Dependencies[key], strings.TrimPrefix(strings.TrimPrefix(specifier, key), "/"), true
}

// HasAliases reports whether the manifest declares any path aliases.
func (m *Manifest) HasAliases() bool {
	return m != nil && len(m.Paths) > 0
}
