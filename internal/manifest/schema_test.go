package manifest

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidate_Valid(t *testing.T) {
	tests := []string{
		`{"name":"foo","version":"1.0.0"}`,
		`{"name":"foo","version":"1.0.0","author":null,"browser":{"fs":false,"./a.js":"./b.js"}}`,
		`{"name":"foo","version":"1.0.0","bin":{"foo":"bin/foo"},"dependencies":{"lodash":"^4"}}`,
		`{"name":"foo","version":"1.0.0","scripts":{"test":"jest"},"private":true}`,
	}
	for _, data := range tests {
		assert.NoError(t, Validate([]byte(data)), data)
	}
}

func TestValidate_Issues(t *testing.T) {
	tests := []struct {
		name string
		data string
		path string
	}{
		{"missing name", `{"version":"1.0.0"}`, ""},
		{"numeric main", `{"name":"foo","version":"1.0.0","main":1}`, "/main"},
		{"numeric bin entry", `{"name":"foo","version":"1.0.0","bin":{"foo":1}}`, "/bin/foo"},
		{"array dependencies", `{"name":"foo","version":"1.0.0","dependencies":["lodash"]}`, "/dependencies"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate([]byte(tt.data))
			var schemaErr *SchemaError
			require.True(t, errors.As(err, &schemaErr), "got %v", err)
			require.NotEmpty(t, schemaErr.Issues)

			var paths []string
			for _, issue := range schemaErr.Issues {
				paths = append(paths, issue.Path)
			}
			assert.Contains(t, paths, tt.path)
		})
	}
}

func TestValidate_MalformedJSON(t *testing.T) {
	err := Validate([]byte(`{"name":`))
	require.Error(t, err)

	var schemaErr *SchemaError
	assert.False(t, errors.As(err, &schemaErr))
}

func TestParse_SchemaErrorSurfaces(t *testing.T) {
	_, err := Parse([]byte(`{"name":"foo","version":"1.0.0","types":false}`))
	var schemaErr *SchemaError
	require.True(t, errors.As(err, &schemaErr))
	assert.Contains(t, err.Error(), "/types")
}
