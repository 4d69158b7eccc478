// Package knowledge loads knowledge snippets from YAML (or JSON) seed files.
package knowledge

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/wayfarer/internal/domain/document"
)

type seedFile struct {
	Documents []seedDocument `yaml:"documents"`
}

type seedDocument struct {
	ID          string     `yaml:"id"`
	Text        string     `yaml:"text"`
	Destination string     `yaml:"destination"`
	Categories  []string   `yaml:"categories"`
	Locations   []string   `yaml:"locations"`
	Source      seedSource `yaml:"source"`
}

type seedSource struct {
	Name string `yaml:"name"`
	URL  string `yaml:"url"`
	Type string `yaml:"type"`
}

// LoadSeed reads and validates a seed file.
func LoadSeed(path string) ([]document.Document, error) {
	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("read seed %s: %w", path, err)
	}
	docs, err := ParseSeed(data)
	if err != nil {
		return nil, fmt.Errorf("seed %s: %w", path, err)
	}
	return docs, nil
}

// ParseSeed decodes seed documents. Entries without an id get doc_<position>.
func ParseSeed(data []byte) ([]document.Document, error) {
	var f seedFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse seed: %w", err)
	}

	docs := make([]document.Document, 0, len(f.Documents))
	for i, d := range f.Documents {
		meta, err := document.NewMetadata(d.Destination, d.Categories, d.Locations, document.Source{
			Name: d.Source.Name,
			URL:  d.Source.URL,
			Type: d.Source.Type,
		})
		if err != nil {
			return nil, fmt.Errorf("document [%d]: %w", i, err)
		}
		id := d.ID
		if id == "" {
			id = document.DefaultID(i)
		}
		doc, err := document.New(id, d.Text, meta)
		if err != nil {
			return nil, fmt.Errorf("document [%d]: %w", i, err)
		}
		docs = append(docs, doc)
	}
	return docs, nil
}
