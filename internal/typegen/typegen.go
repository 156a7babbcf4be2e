// Package typegen extracts TypeScript declaration files with the TypeScript compiler.
package typegen

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/rs/zerolog"
)

// DefaultTimeout bounds a single compiler run
const DefaultTimeout = 2 * time.Minute

// Extractor runs tsc in declaration-only mode
type Extractor struct {
	root    string
	tscPath string
	timeout time.Duration
	logger  zerolog.Logger
}

// Option customizes an Extractor
type Option func(*Extractor)

// WithCompiler uses the given tsc executable instead of looking one up
func WithCompiler(path string) Option {
	return func(e *Extractor) { e.tscPath = path }
}

// WithTimeout overrides DefaultTimeout
func WithTimeout(d time.Duration) Option {
	return func(e *Extractor) { e.timeout = d }
}

// WithLogger sets the logger receiving compiler output in verbose mode
func WithLogger(l zerolog.Logger) Option {
	return func(e *Extractor) { e.logger = l }
}

// New creates an extractor for the project at root
func New(root string, opts ...Option) *Extractor {
	e := &Extractor{
		root:    root,
		timeout: DefaultTimeout,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// findCompiler prefers the project-local compiler over one on PATH
func (e *Extractor) findCompiler() (string, error) {
	if e.tscPath != "" {
		return e.tscPath, nil
	}

	name := "tsc"
	if os.PathSeparator == '\\' {
		name = "tsc.cmd"
	}
	local := filepath.Join(e.root, "node_modules", ".bin", name)
	if _, err := os.Stat(local); err == nil {
		return local, nil
	}

	path, err := exec.LookPath("tsc")
	if err != nil {
		return "", fmt.Errorf("tsc is required for type extraction; install typescript in the project")
	}
	return path, nil
}

// Args returns the compiler arguments for source and destDir
func Args(source, destDir string) []string {
	return []string{
		"--declaration",
		"--emitDeclarationOnly",
		"--declarationDir", destDir,
		"--jsx", "preserve",
		"--esModuleInterop",
		"--skipLibCheck",
		"--allowSyntheticDefaultImports",
		"--target", "es2018",
		"--moduleResolution", "node",
		source,
	}
}

// Extract writes declaration files for source into destDir
func (e *Extractor) Extract(ctx context.Context, source, destDir string, verbose bool) error {
	tsc, err := e.findCompiler()
	if err != nil {
		return err
	}

	runCtx, cancel := context.WithTimeout(ctx, e.timeout)
	defer cancel()

	cmd := exec.CommandContext(runCtx, tsc, Args(source, destDir)...) //nolint:gosec // compiler path comes from the project or PATH
	cmd.Dir = e.root

	var out strings.Builder
	cmd.Stdout = &out
	cmd.Stderr = &out

	runErr := cmd.Run()

	if runCtx.Err() == context.DeadlineExceeded {
		return fmt.Errorf("type extraction timed out after %s", e.timeout)
	}

	output := strings.TrimSpace(out.String())
	if verbose && output != "" {
		e.logger.Debug().Str("source", source).Msg(output)
	}

	if runErr != nil {
		if output == "" {
			output = runErr.Error()
		}
		return fmt.Errorf("tsc failed: %s", output)
	}
	return nil
}
