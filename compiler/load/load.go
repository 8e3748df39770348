// Package load reads schema documents from disk and extracts the schema
// set the compiler consumes. A document is either a full OpenAPI document,
// in which case the schemas under components/schemas are taken, or a bare
// mapping of schema name to schema.
package load

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"

	"github.com/argentdb/argent/schema"
)

// Document is the subset of an OpenAPI document the compiler reads.
type Document struct {
	Components struct {
		Schemas schema.Schemas `json:"schemas" yaml:"schemas"`
	} `json:"components" yaml:"components"`
}

// Decode extracts the schema set from raw document bytes. JSON documents
// are detected by their leading token; everything else parses as YAML.
func Decode(data []byte) (schema.Schemas, error) {
	var doc Document
	if err := unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("load: parse document: %w", err)
	}
	if doc.Components.Schemas != nil {
		return doc.Components.Schemas, nil
	}
	var schemas schema.Schemas
	if err := unmarshal(data, &schemas); err != nil {
		return nil, fmt.Errorf("load: parse document: %w", err)
	}
	if schemas == nil {
		return nil, fmt.Errorf("load: document contains no schemas")
	}
	return schemas, nil
}

func unmarshal(data []byte, v any) error {
	if isJSON(data) {
		return json.Unmarshal(data, v)
	}
	return yaml.Unmarshal(data, v)
}

func isJSON(data []byte) bool {
	trimmed := strings.TrimLeft(string(data), " \t\r\n")
	return strings.HasPrefix(trimmed, "{")
}

// File reads one schema document from path.
func File(path string) (schema.Schemas, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("load: %w", err)
	}
	schemas, err := Decode(data)
	if err != nil {
		return nil, fmt.Errorf("load: %s: %w", filepath.Base(path), err)
	}
	return schemas, nil
}

// Files reads the given schema documents concurrently and merges their
// schema sets. A schema name appearing in more than one document is an
// error; loading stops on the first failure.
func Files(paths ...string) (schema.Schemas, error) {
	var (
		g      errgroup.Group
		mu     sync.Mutex
		merged = make(schema.Schemas)
		source = make(map[string]string)
	)
	for _, path := range paths {
		path := path
		g.Go(func() error {
			schemas, err := File(path)
			if err != nil {
				return err
			}
			mu.Lock()
			defer mu.Unlock()
			for name, s := range schemas {
				if prev, ok := source[name]; ok {
					return fmt.Errorf("load: schema %q defined in both %s and %s", name, prev, path)
				}
				merged[name] = s
				source[name] = path
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return merged, nil
}
