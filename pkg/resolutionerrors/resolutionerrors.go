// Copyright (c) 2025-2026 DModel Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package resolutionerrors

import (
	"errors"
	"fmt"
	"strings"
)

const (
	FileNotFound       = "FILE_NOT_FOUND"
	UnknownAlias       = "UNKNOWN_ALIAS"
	MissingManifest    = "MISSING_MANIFEST"
	NotInstalled       = "NOT_INSTALLED"
	DependencyNotFound = "DEPENDENCY_NOT_FOUND"
	MissingEntry       = "MISSING_ENTRY"
	Unresolvable       = "UNRESOLVABLE"
	UnknownError       = "UNKNOWN_ERROR"
)

// ResolutionError is the machine-readable failure of one specifier
// resolution. Callers render diagnostics from the fields without parsing
// the message text.
type ResolutionError struct {
	Code      string
	Specifier string
	// Probed lists every path actually tried, for diagnostic display
	Probed []string
	// Hint is an actionable human-readable suggestion
	Hint  string
	Cause error
}

func (r *ResolutionError) Error() string {
	var b strings.Builder
	b.WriteString(r.Code)
	if r.Specifier != "" {
		fmt.Fprintf(&b, ": %q", r.Specifier)
	}
	if len(r.Probed) > 0 {
		fmt.Fprintf(&b, " (tried %s)", strings.Join(r.Probed, ", "))
	}
	if r.Cause != nil {
		b.WriteString(": " + r.Cause.Error())
	}
	return b.String()
}

func (r *ResolutionError) Unwrap() error {
	return r.Cause
}

func (r *ResolutionError) MarshalYAML() (interface{}, error) {
	out := map[string]interface{}{
		"code":      r.Code,
		"specifier": r.Specifier,
	}
	if len(r.Probed) > 0 {
		out["probed"] = r.Probed
	}
	if r.Hint != "" {
		out["hint"] = r.Hint
	}
	if r.Cause != nil {
		out["cause"] = r.Cause.Error()
	}
	return out, nil
}

var _ error = (*ResolutionError)(nil)

func NewFileNotFoundError(specifier string, probed ...string) *ResolutionError {
	return &ResolutionError{
		Code:      FileNotFound,
		Specifier: specifier,
		Probed:    probed,
		Hint:      "check the import path against the files on disk",
	}
}

func NewUnknownAliasError(specifier, alias string) *ResolutionError {
	return &ResolutionError{
		Code:      UnknownAlias,
		Specifier: specifier,
		Hint:      fmt.Sprintf("declare the alias in dml.yaml:\n\npaths:\n  %q: ./path/to/target", alias),
	}
}

func NewMissingManifestError(specifier string) *ResolutionError {
	return &ResolutionError{
		Code:      MissingManifest,
		Specifier: specifier,
		Hint:      "create a dml.yaml at the workspace root to declare dependencies",
	}
}

func NewNotInstalledError(specifier string, probed ...string) *ResolutionError {
	return &ResolutionError{
		Code:      NotInstalled,
		Specifier: specifier,
		Probed:    probed,
		Hint:      "run the installer to fetch dependencies and write dml-lock.json",
	}
}

func NewDependencyNotFoundError(specifier, key string) *ResolutionError {
	return &ResolutionError{
		Code:      DependencyNotFound,
		Specifier: specifier,
		Hint:      fmt.Sprintf("declare the dependency in dml.yaml and install it:\n\ndependencies:\n  %q: \"v1.0.0\"", key),
	}
}

func NewMissingEntryError(specifier, expected string) *ResolutionError {
	return &ResolutionError{
		Code:      MissingEntry,
		Specifier: specifier,
		Probed:    []string{expected},
		Hint:      fmt.Sprintf("the directory resolves but its entry file %s does not exist", expected),
	}
}

func NewUnresolvableError(specifier string) *ResolutionError {
	return &ResolutionError{
		Code:      Unresolvable,
		Specifier: specifier,
		Hint:      "only .dml files can be imported",
	}
}

func NewUnknownResolutionError(specifier string, cause error) *ResolutionError {
	return &ResolutionError{
		Code:      UnknownError,
		Specifier: specifier,
		Cause:     cause,
	}
}

// Standardize coerces any error into a ResolutionError, preserving ones
// that already are.
func Standardize(specifier string, err error) *ResolutionError {
	if err == nil {
		return nil
	}

	var resErr *ResolutionError
	if errors.As(err, &resErr) {
		return resErr
	}

	return NewUnknownResolutionError(specifier, err)
}

// Code extracts the machine code of a resolution failure, or UnknownError
// for foreign errors.
func Code(err error) string {
	var resErr *ResolutionError
	if errors.As(err, &resErr) {
		return resErr.Code
	}
	return UnknownError
}
