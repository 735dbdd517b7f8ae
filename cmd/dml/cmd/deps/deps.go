// Copyright (c) 2025-2026 DModel Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package deps

import (
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"dmodel.dev/x/workspace/pkg/engine"
	"dmodel.dev/x/workspace/pkg/utils"
)

type report struct {
	Document  string   `yaml:"document"`
	Imports   []string `yaml:"imports,omitempty"`
	Importers []string `yaml:"importers,omitempty"`
}

func Cmd(eng *engine.Engine) *cobra.Command {
	return &cobra.Command{
		Use:   "deps <file>",
		Short: "index a document's import closure and print its dependency edges",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			docURI, err := utils.AbsoluteURL(args[0])
			if err != nil {
				return err
			}

			if err := eng.Load(cmd.Context(), docURI); err != nil {
				return err
			}

			bytes, err := yaml.Marshal(report{
				Document:  docURI,
				Imports:   eng.Graph.ImportsOf(docURI),
				Importers: eng.Graph.Importers(docURI),
			})
			if err != nil {
				return err
			}
			cmd.Println(string(bytes))
			return nil
		},
	}
}
