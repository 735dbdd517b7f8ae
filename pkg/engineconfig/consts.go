// Copyright (c) 2025-2026 DModel Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package engineconfig

const (
	ManifestFilename = "dml.yaml"
	LockFilename     = "dml-lock.json"

	// advisory lock taken by the installer while it rewrites the lock
	// file and the package cache; readers honor it for file:// roots
	InstallLockFilename = "install.lock"

	CacheDirName    = ".dml"
	PackagesDirName = "packages"

	FileExtension        = ".dml"
	DefaultEntryFilename = "index" + FileExtension

	AliasSigil = "@"
)
