package matrix

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fluxbase-eu/preppy/internal/entry"
	"github.com/fluxbase-eu/preppy/internal/manifest"
)

func kindsOf(warnings []error) []Kind {
	var kinds []Kind
	for _, w := range warnings {
		var missing *MissingOutputError
		if errors.As(w, &missing) {
			kinds = append(kinds, missing.Kind)
		}
	}
	return kinds
}

func presentKinds(m Matrix) []Kind {
	var kinds []Kind
	for _, k := range Kinds {
		if _, ok := m.Get(k); ok {
			kinds = append(kinds, k)
		}
	}
	return kinds
}

func TestBuild_OnlyMain(t *testing.T) {
	m := &manifest.Manifest{Name: "foo", Version: "1.0.0", Main: "lib/index.js"}

	for _, entries := range []entry.Set{{Library: "src/index.js"}, {Node: "src/node.js"}} {
		out, warnings := Build(entries, m, Options{})
		assert.Equal(t, []Kind{KindMain}, presentKinds(out))
		assert.Equal(t, "lib/index.js", out.Main)
		assert.Empty(t, warnings)
	}
}

func TestBuild_LibraryFields(t *testing.T) {
	m := &manifest.Manifest{
		Name:    "foo",
		Version: "1.0.0",
		Main:    "lib/index.cjs.js",
		Module:  "lib/index.esm.js",
		UMD:     "dist/foo.umd.js",
		Types:   "lib/index.d.ts",
	}

	out, warnings := Build(entry.Set{Library: "src/index.ts"}, m, Options{})
	assert.Equal(t, Matrix{
		Main:   "lib/index.cjs.js",
		Module: "lib/index.esm.js",
		UMD:    "dist/foo.umd.js",
		Types:  "lib/index.d.ts",
	}, out)
	assert.Empty(t, warnings)
}

func TestBuild_TypesRequireTypedSource(t *testing.T) {
	m := &manifest.Manifest{Name: "foo", Version: "1.0.0", Main: "lib/index.js", Types: "lib/index.d.ts"}

	out, warnings := Build(entry.Set{Library: "src/index.js"}, m, Options{})
	assert.Empty(t, out.Types)
	assert.Equal(t, []Kind{KindTypes}, kindsOf(warnings))
}

func TestBuild_TypedLibraryWithoutTypesField(t *testing.T) {
	m := &manifest.Manifest{Name: "foo", Version: "1.0.0", Main: "lib/index.js"}

	out, warnings := Build(entry.Set{Library: "src/index.ts"}, m, Options{})
	assert.Empty(t, out.Types)
	assert.Equal(t, []Kind{KindTypes}, kindsOf(warnings))
}

func TestBuild_BrowserFieldWithoutBrowserEntry(t *testing.T) {
	m := &manifest.Manifest{Name: "foo", Version: "1.0.0", Main: "lib/index.js", Browser: "dist/foo.umd.js"}

	out, warnings := Build(entry.Set{Library: "src/index.js"}, m, Options{})
	assert.Empty(t, out.Browser)
	assert.Empty(t, out.UMD)
	assert.Equal(t, []Kind{KindBrowser}, kindsOf(warnings))
}

func TestBuild_BrowserEntry(t *testing.T) {
	m := &manifest.Manifest{Name: "foo", Version: "1.0.0", Browser: "dist/foo.browser.js", UMD: "dist/foo.umd.js"}

	out, warnings := Build(entry.Set{Browser: "src/browser.js"}, m, Options{})
	assert.Equal(t, "dist/foo.browser.js", out.Browser)
	assert.Equal(t, "dist/foo.umd.js", out.UMD)
	assert.Empty(t, warnings)
}

func TestBuild_DeclaredWithoutEntries(t *testing.T) {
	m := &manifest.Manifest{Name: "foo", Version: "1.0.0", Main: "lib/index.js", Module: "lib/index.esm.js", UMD: "dist/foo.umd.js"}

	out, warnings := Build(entry.Set{}, m, Options{})
	assert.Equal(t, Matrix{}, out)
	assert.Equal(t, []Kind{KindMain, KindModule, KindUMD}, kindsOf(warnings))
}

func TestBuild_MissingMainWarning(t *testing.T) {
	m := &manifest.Manifest{Name: "foo", Version: "1.0.0", Module: "lib/index.esm.js"}

	out, warnings := Build(entry.Set{Library: "src/index.js"}, m, Options{})
	assert.Equal(t, "lib/index.esm.js", out.Module)
	assert.Equal(t, []Kind{KindMain}, kindsOf(warnings))
}

func TestBuild_Binary(t *testing.T) {
	m := &manifest.Manifest{Name: "foo", Version: "1.0.0", Bin: "bin/foo"}

	out, warnings := Build(entry.Set{Binary: "src/cli.js"}, m, Options{})
	assert.Equal(t, "bin/foo", out.Binary)
	assert.Empty(t, warnings)

	out, _ = Build(entry.Set{Binary: "src/cli.js"}, m, Options{Binary: "dist/foo-cli"})
	assert.Equal(t, "dist/foo-cli", out.Binary)

	out, warnings = Build(entry.Set{Binary: "src/cli.js"}, &manifest.Manifest{Name: "foo", Version: "1.0.0"}, Options{})
	assert.Empty(t, out.Binary)
	assert.Equal(t, []Kind{KindBinary}, kindsOf(warnings))

	out, _ = Build(entry.Set{}, m, Options{})
	assert.Empty(t, out.Binary)
}

func TestBuild_OutputFolder(t *testing.T) {
	m := &manifest.Manifest{Name: "foo", Version: "1.0.0", Main: "ignored/main.js"}

	tests := []struct {
		name    string
		entries entry.Set
		want    Matrix
	}{
		{
			name:    "node entry",
			entries: entry.Set{Node: "src/index.js"},
			want: Matrix{
				Main:   "test/lib/node.commonjs.js",
				Module: "test/lib/node.esmodule.js",
			},
		},
		{
			name:    "typed library entry",
			entries: entry.Set{Library: "index.tsx"},
			want: Matrix{
				Main:   "test/lib/index.cjs.js",
				Module: "test/lib/index.esm.js",
				UMD:    "test/lib/index.umd.js",
				Types:  "test/lib/index.d.ts",
			},
		},
		{
			name:    "library with browser and binary",
			entries: entry.Set{Library: "src/index.js", Browser: "src/browser.js", Binary: "src/cli.js"},
			want: Matrix{
				Main:    "test/lib/index.cjs.js",
				Module:  "test/lib/index.esm.js",
				UMD:     "test/lib/browser.umd.js",
				Browser: "test/lib/browser.esm.js",
				Binary:  "test/lib/cli.js",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, warnings := Build(tt.entries, m, Options{OutputFolder: "./test/lib"})
			assert.Equal(t, tt.want, out)
			assert.Empty(t, warnings)
		})
	}
}

func TestMissingOutputError(t *testing.T) {
	err := &MissingOutputError{Kind: KindUMD, Reason: "no entry"}
	require.EqualError(t, err, "umd output: no entry")
}
