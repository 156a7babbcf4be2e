// Package entry resolves the source entry points of a project.
//
// A project has up to four entry roles: a Node program, a publishable library,
// a dedicated browser build and a CLI binary. Node and library are mutually
// exclusive; when both resolve the Node entry wins.
package entry

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Role names an entry point role
type Role string

const (
	RoleNode    Role = "node"
	RoleLibrary Role = "library"
	RoleBrowser Role = "browser"
	RoleBinary  Role = "binary"
)

// SourceDir is the conventional source directory probed for default entries
const SourceDir = "src"

// SourceExtensions lists the probed extensions in priority order
var SourceExtensions = []string{".js", ".ts", ".jsx", ".tsx"}

// TypedExtensions are source extensions that carry type information
var TypedExtensions = []string{".ts", ".tsx"}

// conventionalNames maps roles with implicit defaults to the probed basenames
var conventionalNames = map[Role][]string{
	RoleNode:    {"node", "server"},
	RoleLibrary: {"index"},
}

// Set holds the resolved entry per role. Empty means not resolved.
type Set struct {
	Node    string
	Library string
	Browser string
	Binary  string
}

// Get returns the entry for role
func (s Set) Get(role Role) string {
	switch role {
	case RoleNode:
		return s.Node
	case RoleLibrary:
		return s.Library
	case RoleBrowser:
		return s.Browser
	case RoleBinary:
		return s.Binary
	}
	return ""
}

// Empty reports whether no role resolved
func (s Set) Empty() bool {
	return s.Node == "" && s.Library == "" && s.Browser == "" && s.Binary == ""
}

// Overrides carries explicit entry paths given on the command line
type Overrides struct {
	Node    string
	Library string
	Browser string
	Binary  string
}

// Probe answers whether a project-relative path exists
type Probe interface {
	Exists(path string) bool
}

// DirProbe is a Probe backed by the filesystem below Root
type DirProbe struct {
	Root string
}

// Exists reports whether path names a regular file
func (p DirProbe) Exists(path string) bool {
	if !filepath.IsAbs(path) {
		path = filepath.Join(p.Root, path)
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

// MissingFileError is returned when an entry path does not exist
type MissingFileError struct {
	Role Role
	Path string
}

func (e *MissingFileError) Error() string {
	return fmt.Sprintf("%s entry %s does not exist", e.Role, e.Path)
}

// Resolve maps overrides and conventional source locations to an entry set.
// Browser and binary entries are only populated through overrides.
func Resolve(overrides Overrides, probe Probe) (Set, error) {
	var set Set
	var err error

	if set.Node, err = resolveRole(RoleNode, overrides.Node, probe); err != nil {
		return Set{}, err
	}
	if set.Library, err = resolveRole(RoleLibrary, overrides.Library, probe); err != nil {
		return Set{}, err
	}
	if set.Browser, err = resolveRole(RoleBrowser, overrides.Browser, probe); err != nil {
		return Set{}, err
	}
	if set.Binary, err = resolveRole(RoleBinary, overrides.Binary, probe); err != nil {
		return Set{}, err
	}

	if set.Node != "" {
		set.Library = ""
	}

	return set, nil
}

func resolveRole(role Role, override string, probe Probe) (string, error) {
	if override != "" {
		if !probe.Exists(override) {
			return "", &MissingFileError{Role: role, Path: override}
		}
		return override, nil
	}

	for _, name := range conventionalNames[role] {
		for _, ext := range SourceExtensions {
			candidate := SourceDir + "/" + name + ext
			if probe.Exists(candidate) {
				return candidate, nil
			}
		}
	}
	return "", nil
}

// IsTyped reports whether path has a typed source extension
func IsTyped(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, typed := range TypedExtensions {
		if ext == typed {
			return true
		}
	}
	return false
}
