// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package projectpath

import (
	"os"
	"path/filepath"
	"testing"
)

func TestProjectPath(t *testing.T) {
	goMod := filepath.Join(Root, "go.mod")
	if _, err := os.Stat(goMod); os.IsNotExist(err) {
		t.Fatalf("go.mod does not exist at %s; the project path does not seem to point to the root of the repo", goMod)
	}
}
