// Copyright (c) 2025-2026 DModel Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package lockfile

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"regexp"

	"dmodel.dev/x/workspace/pkg/engineconfig"
	"github.com/Masterminds/semver/v3"
	"github.com/viant/afs"
)

const Version = "1"

var ErrInvalidLockFile = fmt.Errorf("invalid " + engineconfig.LockFilename)

type RefKind string

const (
	RefTag    RefKind = "tag"
	RefBranch RefKind = "branch"
	RefCommit RefKind = "commit"
)

// Entry records the resolved state of one dependency as written by the
// installer. Consumed read-only.
type Entry struct {
	Ref      string  `json:"ref"`
	RefType  RefKind `json:"refType,omitempty"`
	Resolved string  `json:"resolved"`
	Commit   string  `json:"commit"`

	// Integrity is absent in legacy lock files
	Integrity string `json:"integrity,omitempty"`
}

// Kind gives the entry's ref kind, inferring it from the ref shape when
// the installer didn't record one.
func (e *Entry) Kind() RefKind {
	if e.RefType != "" {
		return e.RefType
	}
	return InferRefKind(e.Ref)
}

// Trusted reports whether the entry carries an integrity digest. Entries
// without one are accepted but should be treated as lower-trust upstream.
func (e *Entry) Trusted() bool {
	return e.Integrity != ""
}

type LockFile struct {
	Version      string            `json:"version"`
	Dependencies map[string]*Entry `json:"dependencies"`
}

func (l *LockFile) Entry(source string) (*Entry, bool) {
	e, ok := l.Dependencies[source]
	return e, ok
}

func Read(ctx context.Context, fs afs.Service, URL string) (*LockFile, error) {
	contents, err := fs.DownloadWithURL(ctx, URL)
	if err != nil {
		return nil, err
	}
	return ReadContents(contents)
}

// ReadContents parses a lock file, dropping malformed entries rather than
// failing the whole file. Only a structurally unreadable document or an
// unsupported version is an error.
func ReadContents(contents []byte) (*LockFile, error) {
	var l LockFile
	if err := json.Unmarshal(contents, &l); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidLockFile, err.Error())
	}
	if l.Version != "" && l.Version != Version {
		return nil, fmt.Errorf("%w: unsupported version %q", ErrInvalidLockFile, l.Version)
	}

	for source, e := range l.Dependencies {
		if e == nil || e.Ref == "" || e.Resolved == "" || e.Commit == "" {
			slog.Debug("dropping malformed lock entry", "source", source)
			delete(l.Dependencies, source)
		}
	}
	return &l, nil
}

var commitShaRegexp = regexp.MustCompile(`^[0-9a-f]{40}$`)

// InferRefKind classifies a requested ref by shape: a 40-hex-char string
// is a commit, a semver-like string is a tag, anything else is a branch.
func InferRefKind(ref string) RefKind {
	if commitShaRegexp.MatchString(ref) {
		return RefCommit
	}
	if _, err := semver.NewVersion(ref); err == nil {
		return RefTag
	}
	return RefBranch
}
