// Package matrix derives artifact destinations from the manifest's output fields.
package matrix

import (
	"fmt"
	"path"

	"github.com/fluxbase-eu/preppy/internal/entry"
	"github.com/fluxbase-eu/preppy/internal/manifest"
)

// Kind names an artifact role
type Kind string

const (
	KindMain    Kind = "main"
	KindModule  Kind = "module"
	KindUMD     Kind = "umd"
	KindTypes   Kind = "types"
	KindBrowser Kind = "browser"
	KindBinary  Kind = "binary"
)

// Kinds lists all artifact kinds in display order
var Kinds = []Kind{KindMain, KindModule, KindUMD, KindTypes, KindBrowser, KindBinary}

// Conventional file names synthesized below an output folder override
const (
	NodeCommonJSFile    = "node.commonjs.js"
	NodeESModuleFile    = "node.esmodule.js"
	LibraryCommonJSFile = "index.cjs.js"
	LibraryESModuleFile = "index.esm.js"
	LibraryUMDFile      = "index.umd.js"
	LibraryTypesFile    = "index.d.ts"
	BrowserESModuleFile = "browser.esm.js"
	BrowserUMDFile      = "browser.umd.js"
	BinaryFile          = "cli.js"
)

// Matrix maps each artifact kind to its destination. Empty means absent.
type Matrix struct {
	Main    string
	Module  string
	UMD     string
	Types   string
	Browser string
	Binary  string
}

// Get returns the destination for kind and whether it is present
func (m Matrix) Get(kind Kind) (string, bool) {
	var p string
	switch kind {
	case KindMain:
		p = m.Main
	case KindModule:
		p = m.Module
	case KindUMD:
		p = m.UMD
	case KindTypes:
		p = m.Types
	case KindBrowser:
		p = m.Browser
	case KindBinary:
		p = m.Binary
	}
	return p, p != ""
}

// Options carries command line overrides for destinations
type Options struct {
	// OutputFolder synthesizes conventional file names regardless of the manifest
	OutputFolder string

	// Binary overrides the destination of the binary artifact
	Binary string
}

// MissingOutputError reports a manifest/entry mismatch. It is a warning:
// the run still bundles whatever is resolvable.
type MissingOutputError struct {
	Kind   Kind
	Reason string
}

func (e *MissingOutputError) Error() string {
	return fmt.Sprintf("%s output: %s", e.Kind, e.Reason)
}

// Build evaluates the rules for every artifact kind independently. The
// returned errors are all *MissingOutputError warnings.
func Build(entries entry.Set, m *manifest.Manifest, opts Options) (Matrix, []error) {
	declared := declaredOutputs(entries, m, opts.OutputFolder)

	var out Matrix
	var warnings []error
	warn := func(kind Kind, format string, args ...any) {
		warnings = append(warnings, &MissingOutputError{Kind: kind, Reason: fmt.Sprintf(format, args...)})
	}

	hasProgram := entries.Node != "" || entries.Library != ""

	if declared.Main != "" {
		if hasProgram {
			out.Main = declared.Main
		} else {
			warn(KindMain, "%q is declared but no node or library entry resolved", declared.Main)
		}
	} else if hasProgram {
		warn(KindMain, "missing `main` entry in %s", manifest.FileName)
	}

	if declared.Module != "" {
		if hasProgram {
			out.Module = declared.Module
		} else {
			warn(KindModule, "%q is declared but no node or library entry resolved", declared.Module)
		}
	}

	if declared.UMD != "" {
		if entries.Library != "" || entries.Browser != "" {
			out.UMD = declared.UMD
		} else {
			warn(KindUMD, "%q is declared but no library or browser entry resolved", declared.UMD)
		}
	}

	switch {
	case declared.Types != "" && entries.Library != "" && entry.IsTyped(entries.Library):
		out.Types = declared.Types
	case declared.Types != "":
		warn(KindTypes, "%q is declared but no typed library entry resolved", declared.Types)
	case entries.Library != "" && entry.IsTyped(entries.Library):
		warn(KindTypes, "missing `types` entry in %s", manifest.FileName)
	}

	if declared.Browser != "" {
		if entries.Browser != "" {
			out.Browser = declared.Browser
		} else {
			warn(KindBrowser, "%q is declared but no browser entry resolved", declared.Browser)
		}
	}

	if entries.Binary != "" {
		switch {
		case opts.Binary != "":
			out.Binary = opts.Binary
		case declared.Binary != "":
			out.Binary = declared.Binary
		default:
			warn(KindBinary, "binary entry %s has no destination; declare `bin` in %s", entries.Binary, manifest.FileName)
		}
	}

	return out, warnings
}

// declaredOutputs returns the destinations as declared, either by the
// manifest or synthesized below the output folder for the resolved roles.
func declaredOutputs(entries entry.Set, m *manifest.Manifest, folder string) Matrix {
	if folder == "" {
		return Matrix{
			Main:    m.Main,
			Module:  m.Module,
			UMD:     m.UMD,
			Types:   m.Types,
			Browser: m.Browser,
			Binary:  m.Bin,
		}
	}

	var d Matrix
	switch {
	case entries.Node != "":
		d.Main = path.Join(folder, NodeCommonJSFile)
		d.Module = path.Join(folder, NodeESModuleFile)
	case entries.Library != "":
		d.Main = path.Join(folder, LibraryCommonJSFile)
		d.Module = path.Join(folder, LibraryESModuleFile)
		d.UMD = path.Join(folder, LibraryUMDFile)
		if entry.IsTyped(entries.Library) {
			d.Types = path.Join(folder, LibraryTypesFile)
		}
	}
	if entries.Browser != "" {
		d.Browser = path.Join(folder, BrowserESModuleFile)
		d.UMD = path.Join(folder, BrowserUMDFile)
	}
	if entries.Binary != "" {
		d.Binary = path.Join(folder, BinaryFile)
	}
	return d
}
