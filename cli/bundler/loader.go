package bundler

import (
	"encoding/json"
	"fmt"

	"gopkg.in/yaml.v3"
)

// yamlToJSON converts a YAML document into the JSON esbuild loads as a data
// module. An empty document becomes null.
func yamlToJSON(data []byte) (string, error) {
	var doc interface{}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return "", err
	}

	out, err := json.Marshal(normalize(doc))
	if err != nil {
		return "", err
	}
	return string(out), nil
}

// normalize turns the non-string-keyed maps yaml.v3 may produce into
// values encoding/json accepts
func normalize(v interface{}) interface{} {
	switch val := v.(type) {
	case map[string]interface{}:
		for k, item := range val {
			val[k] = normalize(item)
		}
		return val
	case map[interface{}]interface{}:
		out := make(map[string]interface{}, len(val))
		for k, item := range val {
			out[fmt.Sprint(k)] = normalize(item)
		}
		return out
	case []interface{}:
		for i, item := range val {
			val[i] = normalize(item)
		}
		return val
	}
	return v
}
