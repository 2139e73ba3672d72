package config

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/zjrosen/cutoff/internal/log"
)

// labelsDocument is the shape of a labels file.
type labelsDocument struct {
	Labels []LabelConfig `yaml:"labels"`
}

// LoadLabels reads and validates a labels file. A missing file yields no
// labels and no error.
func LoadLabels(path string) ([]LabelConfig, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		log.Debug(log.CatConfig, "labels file not found", "path", path)
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading labels file: %w", err)
	}

	var doc labelsDocument
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing labels file %s: %w", path, err)
	}
	if err := ValidateLabels(doc.Labels); err != nil {
		return nil, fmt.Errorf("labels file %s: %w", path, err)
	}

	log.Debug(log.CatConfig, "loaded labels", "path", path, "count", len(doc.Labels))
	return doc.Labels, nil
}

// SaveLabels replaces the labels list in the file at path.
// This preserves comments and formatting in other sections by using yaml.Node.
func SaveLabels(path string, labels []LabelConfig) error {
	if err := ValidateLabels(labels); err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("reading labels file: %w", err)
	}

	// Parse into yaml.Node to preserve comments
	var doc yaml.Node
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return fmt.Errorf("parsing labels file: %w", err)
		}
	}

	var labelsNode yaml.Node
	if err := labelsNode.Encode(labels); err != nil {
		return fmt.Errorf("building labels node: %w", err)
	}

	if doc.Kind == 0 {
		// Empty or new file - create document structure
		doc = yaml.Node{
			Kind: yaml.DocumentNode,
			Content: []*yaml.Node{
				{
					Kind: yaml.MappingNode,
					Content: []*yaml.Node{
						{Kind: yaml.ScalarNode, Value: "labels"},
						&labelsNode,
					},
				},
			},
		}
	} else if doc.Kind == yaml.DocumentNode && len(doc.Content) > 0 {
		root := doc.Content[0]
		if root.Kind != yaml.MappingNode {
			return fmt.Errorf("labels file %s: top level must be a mapping", path)
		}
		found := false
		for i := 0; i < len(root.Content)-1; i += 2 {
			if root.Content[i].Value == "labels" {
				root.Content[i+1] = &labelsNode
				found = true
				break
			}
		}
		if !found {
			root.Content = append(root.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: "labels"},
				&labelsNode,
			)
		}
	}

	var buf bytes.Buffer
	encoder := yaml.NewEncoder(&buf)
	encoder.SetIndent(2)
	if err := encoder.Encode(&doc); err != nil {
		return fmt.Errorf("marshaling labels: %w", err)
	}
	_ = encoder.Close()

	return writeAtomic(path, buf.Bytes())
}

// AddLabel appends l to the labels file, or replaces the label with the same name.
func AddLabel(path string, l LabelConfig) error {
	labels, err := LoadLabels(path)
	if err != nil {
		return err
	}

	replaced := false
	for i := range labels {
		if labels[i].Name == l.Name {
			labels[i] = l
			replaced = true
			break
		}
	}
	if !replaced {
		labels = append(labels, l)
	}

	if err := SaveLabels(path, labels); err != nil {
		return err
	}
	log.Info(log.CatConfig, "saved label", "path", path, "name", l.Name, "replaced", replaced)
	return nil
}

// RemoveLabel deletes the named label from the labels file.
func RemoveLabel(path, name string) error {
	labels, err := LoadLabels(path)
	if err != nil {
		return err
	}

	kept := make([]LabelConfig, 0, len(labels))
	for _, l := range labels {
		if l.Name != name {
			kept = append(kept, l)
		}
	}
	if len(kept) == len(labels) {
		return fmt.Errorf("label %q not found in %s", name, path)
	}

	return SaveLabels(path, kept)
}

// writeAtomic writes to a temp file and renames it over path, so the labels
// watcher never sees a half-written file.
func writeAtomic(path string, data []byte) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating labels directory: %w", err)
	}

	temp, err := os.CreateTemp(dir, ".cutoff-labels.tmp.*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tempPath := temp.Name()

	if _, err := temp.Write(data); err != nil {
		_ = temp.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := temp.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("closing temp file: %w", err)
	}

	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("renaming temp file: %w", err)
	}
	return nil
}
