package manifest

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/hashicorp/hcl/v2/gohcl"
	"github.com/hashicorp/hcl/v2/hclparse"
	"github.com/vk/buildgridgo/internal/ctxlog"
	"github.com/vk/buildgridgo/internal/matrix"
)

// Load reads the gridfile at path — a single .hcl file or a directory
// searched recursively — merges all blocks, and returns the validated model.
func Load(ctx context.Context, path string) (*Model, error) {
	logger := ctxlog.FromContext(ctx)

	files, err := findGridFiles(path)
	if err != nil {
		return nil, err
	}
	if len(files) == 0 {
		return nil, &matrix.ConfigurationError{Reason: fmt.Sprintf("no .hcl files found at %q", path)}
	}
	logger.Debug("Gridfiles discovered.", "count", len(files))

	merged := &GridFile{}
	parser := hclparse.NewParser()
	for _, file := range files {
		parsed, err := parseGridFile(parser, file)
		if err != nil {
			return nil, err
		}
		if err := mergeGridFile(merged, parsed, file); err != nil {
			return nil, err
		}
	}

	model, err := translate(merged)
	if err != nil {
		return nil, err
	}
	logger.Debug("Gridfile model built.",
		"dimensions", len(model.Registry.Dimensions()),
		"excludes", len(model.Excludes),
		"includes", len(model.Includes),
		"artifacts", len(model.Artifacts),
	)
	return model, nil
}

// findGridFiles resolves a path into the ordered list of .hcl files it
// names. Directories are walked recursively; results are sorted so load
// order is stable across platforms.
func findGridFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("gridfile path: %w", err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	var files []string
	err = filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && strings.HasSuffix(d.Name(), ".hcl") {
			files = append(files, p)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(files)
	return files, nil
}

// parseGridFile parses one file and decodes its blocks.
func parseGridFile(parser *hclparse.Parser, path string) (*GridFile, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading gridfile %s: %w", path, err)
	}

	file, diags := parser.ParseHCL(src, path)
	if diags.HasErrors() {
		return nil, fmt.Errorf("parsing %s: %w", path, diags)
	}

	var grid GridFile
	if diags := gohcl.DecodeBody(file.Body, nil, &grid); diags.HasErrors() {
		return nil, fmt.Errorf("decoding %s: %w", path, diags)
	}
	return &grid, nil
}

// mergeGridFile folds one parsed file into the accumulated configuration.
// Block lists concatenate in file order; a second settings block is a
// configuration error rather than a silent override.
func mergeGridFile(dst, src *GridFile, path string) error {
	dst.Dimensions = append(dst.Dimensions, src.Dimensions...)
	dst.Excludes = append(dst.Excludes, src.Excludes...)
	dst.Includes = append(dst.Includes, src.Includes...)
	dst.Artifacts = append(dst.Artifacts, src.Artifacts...)

	if src.Settings != nil {
		if dst.Settings != nil {
			return &matrix.ConfigurationError{Reason: fmt.Sprintf("duplicate settings block in %s", path)}
		}
		dst.Settings = src.Settings
	}
	return nil
}
