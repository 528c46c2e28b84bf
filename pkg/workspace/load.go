// SPDX-License-Identifier: MPL-2.0

package workspace

import (
	_ "embed"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/clonescan/clonescan/pkg/cueutil"
)

// DefaultFileNames are probed in order when LoadGraph is given a directory.
var DefaultFileNames = []string{"clonescan.cue", "clonescan.yaml", "clonescan.yml"}

//go:embed workspace_schema.cue
var workspaceSchema []byte

type (
	// Format is the syntax a workspace description is written in.
	Format string

	// File is the decoded workspace description.
	File struct {
		Name    string   `json:"name,omitempty"`
		Modules []Module `json:"modules"`
	}
)

const (
	// FormatCUE covers CUE and JSON documents.
	FormatCUE Format = "cue"
	// FormatYAML covers YAML documents.
	FormatYAML Format = "yaml"
)

// FormatOf picks the workspace format from a file extension. Unknown
// extensions are treated as CUE, which also accepts JSON.
func FormatOf(path string) Format {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	default:
		return FormatCUE
	}
}

// LoadGraph reads a workspace description and builds its module graph.
// When path is a directory the DefaultFileNames are tried in order.
// Relative output paths are resolved against the description's directory.
func LoadGraph(path string) (*Graph, error) {
	resolved, err := locate(path)
	if err != nil {
		return nil, err
	}

	data, err := os.ReadFile(resolved)
	if err != nil {
		return nil, &WorkspaceNotFoundError{Path: resolved, Err: err}
	}

	file, err := Parse(data, filepath.Base(resolved), FormatOf(resolved))
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(resolved)
	for i := range file.Modules {
		out := filepath.FromSlash(file.Modules[i].Output)
		if !filepath.IsAbs(out) {
			out = filepath.Join(dir, out)
		}
		file.Modules[i].Output = out
	}

	return NewGraph(file.Name, file.Modules)
}

func locate(path string) (string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return "", &WorkspaceNotFoundError{Path: path, Err: err}
	}
	if !info.IsDir() {
		return path, nil
	}
	for _, name := range DefaultFileNames {
		candidate := filepath.Join(path, name)
		if st, statErr := os.Stat(candidate); statErr == nil && !st.IsDir() {
			return candidate, nil
		}
	}
	return "", &WorkspaceNotFoundError{Path: path}
}

// Parse validates a workspace description against the #Workspace schema.
// YAML input is converted to JSON first so both formats share one schema.
func Parse(data []byte, filename string, format Format) (*File, error) {
	if format == FormatYAML {
		converted, err := yamlToJSON(data)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", filename, err)
		}
		data = converted
	}

	result, err := cueutil.ParseAndDecode[File](workspaceSchema, data, "#Workspace", cueutil.WithFilename(filename))
	if err != nil {
		return nil, err
	}
	return result.Value, nil
}

func yamlToJSON(data []byte) ([]byte, error) {
	var doc any
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("invalid YAML: %w", err)
	}
	if doc == nil {
		return nil, fmt.Errorf("empty workspace document")
	}
	out, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("YAML document cannot be represented as JSON: %w", err)
	}
	return out, nil
}
