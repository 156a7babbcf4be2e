// Package external decides which module references stay unresolved in a bundle.
//
// Local sources are always bundled. Everything that looks like a package name
// is left as an import for the consumer of the artifact to supply, so that
// third-party dependencies become peers of the bundle instead of copies.
package external

import (
	"path/filepath"
	"strings"
)

// Classifier classifies module references encountered while walking the
// dependency graph from a single entry.
type Classifier struct {
	// Input is the job's original entry path, the root of the graph
	Input string
}

// New returns a classifier for the graph rooted at input
func New(input string) Classifier {
	return Classifier{Input: input}
}

// IsExternal reports whether ref must be left unresolved. The checks run in
// order: the graph root, then relative and absolute paths, are bundled.
func (c Classifier) IsExternal(ref string) bool {
	if ref == c.Input {
		return false
	}
	if IsRelative(ref) || IsAbsolute(ref) {
		return false
	}
	return true
}

// IsRelative reports whether ref is a ./ or ../ style reference
func IsRelative(ref string) bool {
	return ref == "." || ref == ".." ||
		strings.HasPrefix(ref, "./") || strings.HasPrefix(ref, "../")
}

// IsAbsolute reports whether ref is an absolute filesystem path
func IsAbsolute(ref string) bool {
	return strings.HasPrefix(ref, "/") || filepath.IsAbs(ref)
}

// nodeBuiltins are the core modules node resolves without a package
var nodeBuiltins = map[string]struct{}{
	"assert": {}, "async_hooks": {}, "buffer": {}, "child_process": {}, "cluster": {},
	"console": {}, "constants": {}, "crypto": {}, "dgram": {}, "diagnostics_channel": {},
	"dns": {}, "domain": {}, "events": {}, "fs": {}, "http": {}, "http2": {}, "https": {},
	"inspector": {}, "module": {}, "net": {}, "os": {}, "path": {}, "perf_hooks": {},
	"process": {}, "punycode": {}, "querystring": {}, "readline": {}, "repl": {},
	"stream": {}, "string_decoder": {}, "sys": {}, "timers": {}, "tls": {},
	"trace_events": {}, "tty": {}, "url": {}, "util": {}, "v8": {}, "vm": {},
	"wasi": {}, "worker_threads": {}, "zlib": {},
}

// IsBuiltin reports whether ref names a node core module, with or without
// the node: prefix. Subpaths such as fs/promises count as their module.
func IsBuiltin(ref string) bool {
	if strings.HasPrefix(ref, "node:") {
		return true
	}
	name, _, _ := strings.Cut(ref, "/")
	_, ok := nodeBuiltins[name]
	return ok
}
