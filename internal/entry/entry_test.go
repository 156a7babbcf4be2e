package entry

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProbe map[string]bool

func (p fakeProbe) Exists(path string) bool { return p[path] }

func TestResolve(t *testing.T) {
	tests := []struct {
		name      string
		overrides Overrides
		files     fakeProbe
		want      Set
	}{
		{
			name:  "nothing to resolve",
			files: fakeProbe{},
			want:  Set{},
		},
		{
			name:  "conventional library entry",
			files: fakeProbe{"src/index.js": true},
			want:  Set{Library: "src/index.js"},
		},
		{
			name:  "js wins over ts",
			files: fakeProbe{"src/index.ts": true, "src/index.js": true},
			want:  Set{Library: "src/index.js"},
		},
		{
			name:  "typescript library entry",
			files: fakeProbe{"src/index.tsx": true},
			want:  Set{Library: "src/index.tsx"},
		},
		{
			name:  "node takes precedence over library",
			files: fakeProbe{"src/node.js": true, "src/index.js": true},
			want:  Set{Node: "src/node.js"},
		},
		{
			name:  "server fallback for node",
			files: fakeProbe{"src/server.ts": true},
			want:  Set{Node: "src/server.ts"},
		},
		{
			name:      "overrides used verbatim",
			overrides: Overrides{Library: "./lib/main.ts", Browser: "src/browser.js", Binary: "src/cli.js"},
			files:     fakeProbe{"./lib/main.ts": true, "src/browser.js": true, "src/cli.js": true, "src/index.js": true},
			want:      Set{Library: "./lib/main.ts", Browser: "src/browser.js", Binary: "src/cli.js"},
		},
		{
			name:      "node override clears conventional library",
			overrides: Overrides{Node: "app.js"},
			files:     fakeProbe{"app.js": true, "src/index.js": true},
			want:      Set{Node: "app.js"},
		},
		{
			name:  "browser and binary have no defaults",
			files: fakeProbe{"src/browser.js": true, "src/cli.js": true},
			want:  Set{},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Resolve(tt.overrides, tt.files)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve_MissingOverride(t *testing.T) {
	_, err := Resolve(Overrides{Binary: "src/cli.js"}, fakeProbe{"src/index.js": true})
	require.Error(t, err)

	var missing *MissingFileError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, RoleBinary, missing.Role)
	assert.Equal(t, "src/cli.js", missing.Path)
}

func TestResolve_Deterministic(t *testing.T) {
	files := fakeProbe{"src/index.ts": true, "src/extra.js": true}
	first, err := Resolve(Overrides{}, files)
	require.NoError(t, err)
	second, err := Resolve(Overrides{}, files)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestDirProbe(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "src", "nested"), 0750))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "src", "index.js"), []byte("export default 1"), 0600))

	probe := DirProbe{Root: dir}
	assert.True(t, probe.Exists("src/index.js"))
	assert.True(t, probe.Exists(filepath.Join(dir, "src", "index.js")))
	assert.False(t, probe.Exists("src/index.ts"))
	assert.False(t, probe.Exists("src/nested"))
}

func TestIsTyped(t *testing.T) {
	assert.True(t, IsTyped("src/index.ts"))
	assert.True(t, IsTyped("src/index.TSX"))
	assert.False(t, IsTyped("src/index.js"))
	assert.False(t, IsTyped("src/index.d"))
}
