// Copyright (c) 2025-2026 DModel Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

// Package importscan is a line-oriented scanner used by the CLI to
// extract import statements and top-level declarations from DML source
// without a full grammar. Editor hosts plug a real parser into the
// engine instead; this scanner only understands the statement shapes it
// needs for dependency and scope inspection.
package importscan

import (
	"bufio"
	"context"
	"regexp"
	"strings"

	"dmodel.dev/x/workspace/pkg/document"
)

var (
	importRe  = regexp.MustCompile(`^import\s+"([^"]+)"(?:\s+as\s+([A-Za-z_][A-Za-z0-9_]*))?\s*$`)
	declareRe = regexp.MustCompile(`^(record|enum|union|type|service)\s+([A-Za-z_][A-Za-z0-9_]*)\b`)
)

type Scanner struct{}

func New() *Scanner {
	return &Scanner{}
}

// Parse implements document.Parser. Unrecognized lines are skipped, so
// the scanner tolerates source it does not understand.
func (s *Scanner) Parse(_ context.Context, _ string, content []byte) ([]document.Import, []document.Declaration, error) {
	var imports []document.Import
	var decls []document.Declaration

	lines := bufio.NewScanner(strings.NewReader(string(content)))
	for lines.Scan() {
		line := strings.TrimSpace(lines.Text())
		if line == "" || strings.HasPrefix(line, "//") {
			continue
		}
		if m := importRe.FindStringSubmatch(line); m != nil {
			imports = append(imports, document.Import{Specifier: m[1], Alias: m[2]})
			continue
		}
		if m := declareRe.FindStringSubmatch(line); m != nil {
			decls = append(decls, document.Declaration{Name: m[2], Kind: document.Kind(m[1])})
		}
	}
	if err := lines.Err(); err != nil {
		return nil, nil, err
	}
	return imports, decls, nil
}
