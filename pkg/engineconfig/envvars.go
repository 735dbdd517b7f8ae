// Copyright (c) 2025-2026 DModel Authors. All rights reserved.
// SPDX-License-Identifier: Apache-2.0

package engineconfig

const envVarPrefix = "DML_"

const (
	// LogLevelEnvVar
	// DML_LOG_LEVEL sets the log level for the engine.
	// 	Default: info
	//  Possible values: info error warn debug
	LogLevelEnvVar = envVarPrefix + "LOG_LEVEL"
)
