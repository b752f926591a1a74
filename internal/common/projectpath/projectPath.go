// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package projectpath

import (
	"path/filepath"
	"runtime"
)

// The default prefix file and query directory are relative to the repository root
// Root lets tests find them regardless of the package they run from
var (
	_, b, _, _ = runtime.Caller(0)

	// Root folder of this project
	Root = filepath.Join(filepath.Dir(b), "../../..")
)
