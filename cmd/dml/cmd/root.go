// Copyright (c) 2025-2026 DModel Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"github.com/spf13/cobra"

	"dmodel.dev/x/workspace/cmd/dml/cmd/deps"
	"dmodel.dev/x/workspace/cmd/dml/cmd/resolve"
	"dmodel.dev/x/workspace/pkg/engine"
	"dmodel.dev/x/workspace/pkg/importscan"
	"dmodel.dev/x/workspace/pkg/logging"
)

const DmlName = "dml"

func RootCmd() (*cobra.Command, error) {
	cmd := &cobra.Command{
		Use:           DmlName,
		Short:         "inspect DML workspaces: imports, dependencies, and visible scope",
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	if err := logging.InitLogging(); err != nil {
		return nil, err
	}

	eng, err := engine.New(engine.Options{Parser: importscan.New()})
	if err != nil {
		return nil, err
	}

	cmd.AddCommand(
		resolve.Cmd(eng),
		deps.Cmd(eng),
	)

	return cmd, nil
}
