// Copyright (c) 2025-2026 DModel Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package utils

import (
	"context"

	"github.com/viant/afs"
)

func FileExists(ctx context.Context, fs afs.Service, URL string) (bool, error) {
	ok, err := fs.Exists(ctx, URL)
	if err != nil || !ok {
		return false, err
	}
	obj, err := fs.Object(ctx, URL)
	if err != nil {
		return false, err
	}
	return !obj.IsDir(), nil
}

func DirExists(ctx context.Context, fs afs.Service, URL string) (bool, error) {
	ok, err := fs.Exists(ctx, URL)
	if err != nil || !ok {
		return false, err
	}
	obj, err := fs.Object(ctx, URL)
	if err != nil {
		return false, err
	}
	return obj.IsDir(), nil
}
