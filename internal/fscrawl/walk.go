// Package fscrawl walks directory roots for candidate files. Walks are not
// restartable mid-run; fresh runs re-walk and the deduplication ledger makes
// re-walking cheap.
package fscrawl

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"
)

// Candidate describes one file found under a root
type Candidate struct {
	Path      string
	Extension string
	ModTime   int64 // unix seconds
	Size      int64
}

// WalkError wraps a failure to traverse a root
type WalkError struct {
	Root    string
	Message string
	Cause   error
}

func (e *WalkError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("walk failed (%s): %s: %v", e.Root, e.Message, e.Cause)
	}
	return fmt.Sprintf("walk failed (%s): %s", e.Root, e.Message)
}

func (e *WalkError) Unwrap() error {
	return e.Cause
}

// inodeKey identifies a file or directory across symlinks
type inodeKey struct {
	dev uint64
	ino uint64
}

// Walk yields candidates under root matching the extension allow-list,
// calling fn for each. Symlinked directories are followed, with cycles
// detected via a visited device/inode set. Unreadable entries are skipped,
// not fatal; only a failure to read the root itself aborts.
func Walk(root string, allowExts []string, fn func(Candidate) error) error {
	allow := make(map[string]bool, len(allowExts))
	for _, e := range allowExts {
		allow[strings.ToLower(e)] = true
	}

	info, err := os.Stat(root)
	if err != nil {
		return &WalkError{Root: root, Message: "cannot stat root", Cause: err}
	}
	if !info.IsDir() {
		return &WalkError{Root: root, Message: "root is not a directory"}
	}

	visited := make(map[inodeKey]bool)
	return walkDir(root, allow, visited, fn)
}

// walkDir recurses into one directory, marking it visited first
func walkDir(dir string, allow map[string]bool, visited map[inodeKey]bool, fn func(Candidate) error) error {
	if key, ok := inodeOf(dir); ok {
		if visited[key] {
			return nil // symlink cycle
		}
		visited[key] = true
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		// Unreadable subdirectory: skip, do not abort the walk
		return nil
	}

	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())

		// Resolve symlinks so linked files and directories are considered
		fi, err := os.Stat(path)
		if err != nil {
			continue
		}

		if fi.IsDir() {
			if err := walkDir(path, allow, visited, fn); err != nil {
				return err
			}
			continue
		}

		ext := strings.ToLower(filepath.Ext(entry.Name()))
		if !allow[ext] {
			continue
		}

		candidate := Candidate{
			Path:      path,
			Extension: ext,
			ModTime:   fi.ModTime().Unix(),
			Size:      fi.Size(),
		}
		if err := fn(candidate); err != nil {
			return err
		}
	}

	return nil
}

// inodeOf returns the device/inode pair for cycle detection
func inodeOf(path string) (inodeKey, bool) {
	fi, err := os.Stat(path)
	if err != nil {
		return inodeKey{}, false
	}
	stat, ok := fi.Sys().(*syscall.Stat_t)
	if !ok {
		return inodeKey{}, false
	}
	return inodeKey{dev: uint64(stat.Dev), ino: uint64(stat.Ino)}, true
}
