// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLocalStorage(t *testing.T) {
	store := NewLocalStorage(t.TempDir())

	exists, err := store.Exists("queries/paris.rq.html")
	require.NoError(t, err)
	require.False(t, exists)

	require.NoError(t, store.Store("queries/paris.rq.html", strings.NewReader("<html></html>")))

	exists, err = store.Exists("queries/paris.rq.html")
	require.NoError(t, err)
	require.True(t, exists)

	data, err := os.ReadFile(filepath.Join(store.baseDir, "queries", "paris.rq.html"))
	require.NoError(t, err)
	require.Equal(t, "<html></html>", string(data))

	files, err := store.ListDir("queries")
	require.NoError(t, err)
	require.True(t, files.Contains("paris.rq.html"))
	require.Len(t, files, 1)

	require.Error(t, store.Store("", strings.NewReader("")))
}

func TestEmptyBaseDirIsWorkingDirectory(t *testing.T) {
	require.Equal(t, "page.html", NewLocalStorage("").path("page.html"))
}

func TestAbsoluteNamesIgnoreBaseDir(t *testing.T) {
	dir := t.TempDir()
	store := NewLocalStorage("relative/base")
	name := filepath.Join(dir, "query.rq.html")
	require.NoError(t, store.Store(name, strings.NewReader("page")))
	require.FileExists(t, name)
	require.NoDirExists(t, "relative")
}

func TestDiscardStorage(t *testing.T) {
	store := DiscardStorage{}
	require.NoError(t, store.Store("a.html", strings.NewReader("ignored")))
	exists, err := store.Exists("a.html")
	require.NoError(t, err)
	require.False(t, exists)
	listed, err := store.ListDir("")
	require.NoError(t, err)
	require.Empty(t, listed)
}

func TestSet(t *testing.T) {
	set := make(Set)
	require.False(t, set.Contains("a.html"))
	set.Add("a.html")
	set.Add("a.html")
	require.True(t, set.Contains("a.html"))
	require.Len(t, set, 1)
}
