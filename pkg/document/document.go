// Copyright (c) 2025-2026 DModel Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package document

import (
	"context"
	"fmt"

	"github.com/samber/lo"
)

// State is the monotonic lifecycle of a document. A content change never
// rewinds a document; the store supersedes it with a fresh one instead.
type State int

const (
	Unparsed State = iota
	Parsed
	Linked
	Validated
)

func (s State) String() string {
	switch s {
	case Unparsed:
		return "unparsed"
	case Parsed:
		return "parsed"
	case Linked:
		return "linked"
	case Validated:
		return "validated"
	}
	return "unknown"
}

// Kind identifies a referenceable entity kind. Opaque to the engine; the
// language grammar defines the actual kinds.
type Kind string

// KindAny matches declarations of every kind in scope queries.
const KindAny Kind = ""

// Import is one import statement: a specifier plus an optional alias
// identifier.
type Import struct {
	Specifier string
	Alias     string
}

// Declaration is one named entity a document exports.
type Declaration struct {
	Name string
	Kind Kind
}

// Document is the engine's view of one source file, identified by its
// canonical URI. Per-document mutation is single-flow (the host build
// scheduler never mutates one document concurrently); distinct documents
// may be built in parallel.
type Document struct {
	URI string

	state        State
	imports      []Import
	declarations []Declaration
}

func New(uri string) *Document {
	return &Document{URI: uri}
}

func (d *Document) State() State {
	return d.state
}

// Advance moves the document forward in its lifecycle. Moving backward is
// an error; re-entering the current state is a no-op.
func (d *Document) Advance(s State) error {
	if s < d.state {
		return fmt.Errorf("document %s: cannot move from %s back to %s", d.URI, d.state, s)
	}
	d.state = s
	return nil
}

// SetParsed records the parser's output and advances to Parsed.
func (d *Document) SetParsed(imports []Import, declarations []Declaration) error {
	if err := d.Advance(Parsed); err != nil {
		return err
	}
	d.imports = imports
	d.declarations = declarations
	return nil
}

func (d *Document) Imports() []Import {
	return d.imports
}

func (d *Document) Declarations() []Declaration {
	return d.declarations
}

// DeclarationsOf filters the document's declarations by kind.
func (d *Document) DeclarationsOf(kind Kind) []Declaration {
	if kind == KindAny {
		return d.declarations
	}
	return lo.Filter(d.declarations, func(decl Declaration, _ int) bool {
		return decl.Kind == kind
	})
}

// Parser is the external grammar collaborator. The engine only consumes
// the import statements and exported declarations it produces.
type Parser interface {
	Parse(ctx context.Context, uri string, content []byte) ([]Import, []Declaration, error)
}
