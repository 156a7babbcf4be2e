// Package manifest provides a typed, read-only view over a project's package.json.
package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"unicode"

	"github.com/Masterminds/semver/v3"
)

// FileName is the manifest file looked up in the project root
const FileName = "package.json"

// Author identifies the package author
type Author struct {
	Name  string
	Email string
	URL   string
}

// Manifest is the subset of package.json consumed by the packager.
// All paths are relative to the project root.
type Manifest struct {
	Name         string
	Version      string
	Author       *Author
	Main         string
	Module       string
	UMD          string
	Browser      string
	Types        string
	Bin          string
	Dependencies map[string]struct{}
}

// rawManifest mirrors the JSON layout, including legacy aliases
type rawManifest struct {
	Name             string            `json:"name"`
	Version          string            `json:"version"`
	Author           json.RawMessage   `json:"author"`
	Main             string            `json:"main"`
	Module           string            `json:"module"`
	JSNextMain       string            `json:"jsnext:main"`
	UMD              string            `json:"umd"`
	Unpkg            string            `json:"unpkg"`
	Browser          json.RawMessage   `json:"browser"`
	Types            string            `json:"types"`
	Typings          string            `json:"typings"`
	Bin              json.RawMessage   `json:"bin"`
	Dependencies     map[string]string `json:"dependencies"`
	PeerDependencies map[string]string `json:"peerDependencies"`
}

// authorRegex matches the npm "Name <email> (url)" shorthand
var authorRegex = regexp.MustCompile(`^([^<(]*?)\s*(?:<([^>]*)>)?\s*(?:\(([^)]*)\))?$`)

// Load reads and parses package.json from the project root
func Load(root string) (*Manifest, error) {
	path := filepath.Join(root, FileName)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("no %s found in %s", FileName, root)
		}
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	m, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", path, err)
	}
	return m, nil
}

// Parse validates and decodes manifest JSON
func Parse(data []byte) (*Manifest, error) {
	if err := Validate(data); err != nil {
		return nil, err
	}

	var raw rawManifest
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse manifest: %w", err)
	}

	if raw.Name == "" {
		return nil, fmt.Errorf("manifest has no name")
	}
	if raw.Version == "" {
		return nil, fmt.Errorf("manifest has no version")
	}
	if _, err := semver.NewVersion(raw.Version); err != nil {
		return nil, fmt.Errorf("invalid version %q: %w", raw.Version, err)
	}

	m := &Manifest{
		Name:         raw.Name,
		Version:      raw.Version,
		Main:         raw.Main,
		Module:       firstNonEmpty(raw.Module, raw.JSNextMain),
		UMD:          firstNonEmpty(raw.UMD, raw.Unpkg),
		Types:        firstNonEmpty(raw.Types, raw.Typings),
		Dependencies: make(map[string]struct{}, len(raw.Dependencies)+len(raw.PeerDependencies)),
	}

	author, err := parseAuthor(raw.Author)
	if err != nil {
		return nil, err
	}
	m.Author = author

	// Object-form browser fields are module replacement maps, not outputs
	var browser string
	if len(raw.Browser) > 0 && json.Unmarshal(raw.Browser, &browser) == nil {
		m.Browser = browser
	}

	bin, err := parseBin(raw.Bin, raw.Name)
	if err != nil {
		return nil, err
	}
	m.Bin = bin

	for name := range raw.Dependencies {
		m.Dependencies[name] = struct{}{}
	}
	for name := range raw.PeerDependencies {
		m.Dependencies[name] = struct{}{}
	}

	return m, nil
}

func parseAuthor(data json.RawMessage) (*Author, error) {
	if len(data) == 0 || string(data) == "null" {
		return nil, nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		s = strings.TrimSpace(s)
		if s == "" {
			return nil, nil
		}
		match := authorRegex.FindStringSubmatch(s)
		if match == nil {
			return &Author{Name: s}, nil
		}
		return &Author{Name: strings.TrimSpace(match[1]), Email: match[2], URL: match[3]}, nil
	}

	var obj struct {
		Name  string `json:"name"`
		Email string `json:"email"`
		URL   string `json:"url"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("invalid author field: %w", err)
	}
	if obj.Name == "" {
		return nil, nil
	}
	return &Author{Name: obj.Name, Email: obj.Email, URL: obj.URL}, nil
}

// parseBin accepts both the string and the map form of "bin". For maps the
// entry named after the package wins, otherwise the first name in sort order.
func parseBin(data json.RawMessage, pkgName string) (string, error) {
	if len(data) == 0 || string(data) == "null" {
		return "", nil
	}

	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		return s, nil
	}

	var bins map[string]string
	if err := json.Unmarshal(data, &bins); err != nil {
		return "", fmt.Errorf("invalid bin field: %w", err)
	}
	if len(bins) == 0 {
		return "", nil
	}
	if path, ok := bins[unscoped(pkgName)]; ok {
		return path, nil
	}
	names := make([]string, 0, len(bins))
	for name := range bins {
		names = append(names, name)
	}
	sort.Strings(names)
	return bins[names[0]], nil
}

// HasDependency reports whether name is a declared (peer) dependency
func (m *Manifest) HasDependency(name string) bool {
	_, ok := m.Dependencies[name]
	return ok
}

// Banner returns the license-style comment prepended to every artifact
func (m *Manifest) Banner() string {
	banner := fmt.Sprintf("/*! %s v%s", m.Name, strings.TrimPrefix(m.Version, "v"))
	if m.Author != nil && m.Author.Name != "" {
		banner += " by " + m.Author.Name
	}
	return banner + " */"
}

// GlobalName returns the camelCased package name used as the UMD global
func (m *Manifest) GlobalName() string {
	return GlobalNameFor(m.Name)
}

// GlobalNameFor derives the browser global for a package or import id:
// "@scope/my-lib" becomes "myLib" and "lodash/fp" becomes "lodashFp".
func GlobalNameFor(id string) string {
	var b strings.Builder
	upper := false
	for _, r := range unscoped(id) {
		if !unicode.IsLetter(r) && !unicode.IsDigit(r) {
			upper = b.Len() > 0
			continue
		}
		switch {
		case b.Len() == 0:
			if unicode.IsDigit(r) {
				b.WriteRune('_')
			}
			b.WriteRune(unicode.ToLower(r))
		case upper:
			b.WriteRune(unicode.ToUpper(r))
		default:
			b.WriteRune(r)
		}
		upper = false
	}
	return b.String()
}

// PackageName returns the package an import id belongs to, so "lodash/fp"
// maps to "lodash" and "@scope/pkg/sub" to "@scope/pkg"
func PackageName(id string) string {
	parts := strings.SplitN(id, "/", 3)
	if strings.HasPrefix(id, "@") && len(parts) >= 2 {
		return parts[0] + "/" + parts[1]
	}
	return parts[0]
}

func unscoped(name string) string {
	if strings.HasPrefix(name, "@") {
		if idx := strings.Index(name, "/"); idx >= 0 {
			return name[idx+1:]
		}
	}
	return name
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
