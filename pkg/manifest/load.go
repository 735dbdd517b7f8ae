// Copyright (c) 2025-2026 DModel Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package manifest

// LoadState distinguishes a manifest that is genuinely absent from one
// that exists but failed parsing or validation. A broken manifest degrades
// the workspace to "no aliases, no dependencies" instead of crashing
// resolution, but callers can still surface a warning for it.
type LoadState int

const (
	StateMissing LoadState = iota
	StateLoaded
	StateBroken
)

func (s LoadState) String() string {
	switch s {
	case StateLoaded:
		return "loaded"
	case StateMissing:
		return "missing"
	case StateBroken:
		return "broken"
	}
	return "unknown"
}

// Load is the tagged result of reading a workspace root's manifest.
type Load struct {
	State    LoadState
	Manifest *Manifest
	// Err holds the parse or validation failure for StateBroken
	Err error
}

func Loaded(m *Manifest) Load {
	return Load{State: StateLoaded, Manifest: m}
}

func Missing() Load {
	return Load{State: StateMissing}
}

func Broken(err error) Load {
	return Load{State: StateBroken, Err: err}
}

func (l Load) Ok() bool {
	return l.State == StateLoaded
}

// Aliases gives the alias table, empty unless the manifest loaded cleanly.
func (l Load) Aliases() map[string]string {
	if !l.Ok() {
		return nil
	}
	return l.Manifest.Paths
}
