// Copyright (c) 2025-2026 DModel Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package resolve

import (
	"errors"

	"github.com/fatih/color"
	"github.com/goccy/go-yaml"
	"github.com/spf13/cobra"

	"dmodel.dev/x/workspace/pkg/engine"
	"dmodel.dev/x/workspace/pkg/resolutionerrors"
	"dmodel.dev/x/workspace/pkg/utils"
)

func Cmd(eng *engine.Engine) *cobra.Command {
	return &cobra.Command{
		Use:   "resolve <file> <specifier>",
		Short: "resolve an import specifier as seen from a document",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			docURI, err := utils.AbsoluteURL(args[0])
			if err != nil {
				return err
			}

			target, err := eng.Resolve(cmd.Context(), docURI, args[1])
			if err != nil {
				var resErr *resolutionerrors.ResolutionError
				if errors.As(err, &resErr) {
					bytes, merr := yaml.Marshal(resErr)
					if merr != nil {
						return merr
					}
					cmd.PrintErrln(color.RedString(string(bytes)))
				}
				return err
			}

			cmd.Println(target)
			return nil
		},
	}
}
