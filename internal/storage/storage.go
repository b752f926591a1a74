// Copyright 2025 Lincoln Institute of Land Policy
// SPDX-License-Identifier: Apache-2.0

package storage

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	log "github.com/sirupsen/logrus"
)

// a path delimited by /
type ObjectPath = string

// a unique set of object paths with quick lookup
type Set map[ObjectPath]struct{}

func (s Set) Contains(key ObjectPath) bool {
	_, ok := s[key]
	return ok
}

func (s Set) Add(key ObjectPath) {
	s[key] = struct{}{}
}

// A destination for rendered query results
type ResultStorage interface {
	// Store saves the contents from the reader into a named destination
	Store(ObjectPath, io.Reader) error
	// Exists returns true if the file exists
	Exists(ObjectPath) (bool, error)
	// ListDir returns the objects directly inside a directory
	ListDir(ObjectPath) (Set, error)
}

// Storage for rendered results on the local disk,
// relative to a base directory
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage stores results relative to baseDir; an empty
// baseDir means the working directory
func NewLocalStorage(baseDir string) *LocalStorage {
	if baseDir == "" {
		baseDir = "."
	}
	return &LocalStorage{baseDir: baseDir}
}

// absolute names are used as is
func (l *LocalStorage) path(name string) string {
	if filepath.IsAbs(name) {
		return name
	}
	return filepath.Join(l.baseDir, name)
}

// Store saves the contents from the reader into a file named after `name`
func (l *LocalStorage) Store(name string, reader io.Reader) error {
	if name == "" {
		return fmt.Errorf("cannot store an object without a name")
	}

	destPath := l.path(name)

	log.Tracef("saving data to %s", destPath)

	// Make sure directory exists
	if err := os.MkdirAll(filepath.Dir(destPath), 0755); err != nil {
		return err
	}

	destFile, err := os.Create(destPath)
	if err != nil {
		return err
	}
	defer func() { _ = destFile.Close() }()

	_, err = io.Copy(destFile, reader)
	return err
}

// Exists checks if the file Exists
func (l *LocalStorage) Exists(object string) (bool, error) {
	_, err := os.Stat(l.path(object))
	if err == nil {
		return true, nil
	}
	if os.IsNotExist(err) {
		return false, nil
	}
	return false, err
}

func (l *LocalStorage) ListDir(prefix string) (Set, error) {
	files, err := os.ReadDir(l.path(prefix))
	if err != nil {
		return nil, err
	}

	set := make(Set)
	for _, file := range files {
		set.Add(file.Name())
	}
	return set, nil
}

// DiscardStorage stores nothing; used by dry runs that only check the queries
type DiscardStorage struct{}

func (DiscardStorage) Store(_ string, reader io.Reader) error {
	_, err := io.Copy(io.Discard, reader)
	return err
}

func (DiscardStorage) Exists(string) (bool, error) {
	return false, nil
}

func (DiscardStorage) ListDir(string) (Set, error) {
	return make(Set), nil
}

var _ ResultStorage = DiscardStorage{}
var _ ResultStorage = &LocalStorage{}
