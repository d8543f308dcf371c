package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// planDocument is a batch of tree and transfer steps executed over a single
// session. Plans are YAML by default; a .json extension switches the decoder.
type planDocument struct {
	Version    int        `json:"version" yaml:"version"`
	Credential string     `json:"cred" yaml:"cred"`
	Steps      []planStep `json:"steps" yaml:"steps"`
}

type planStep struct {
	Op         string     `json:"op" yaml:"op"`
	Path       string     `json:"path" yaml:"path"`
	LocalPath  string     `json:"local_path" yaml:"local_path"`
	RemotePath string     `json:"remote_path" yaml:"remote_path"`
	ChunkSize  int        `json:"chunk_size" yaml:"chunk_size"`
	WithInfo   bool       `json:"with_info" yaml:"with_info"`
	Types      stringList `json:"types" yaml:"types"`
	Exclude    stringList `json:"exclude" yaml:"exclude"`
}

// stringList accepts both a bare scalar and a sequence, so small plans stay
// terse.
type stringList []string

func (s *stringList) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		var value string
		if err := node.Decode(&value); err != nil {
			return err
		}
		value = strings.TrimSpace(value)
		if value == "" {
			*s = nil
		} else {
			*s = []string{value}
		}
		return nil
	case yaml.SequenceNode:
		var result []string
		for _, child := range node.Content {
			var item string
			if err := child.Decode(&item); err != nil {
				return err
			}
			item = strings.TrimSpace(item)
			if item != "" {
				result = append(result, item)
			}
		}
		*s = result
		return nil
	default:
		return fmt.Errorf("unsupported YAML type for string list")
	}
}

func (s *stringList) UnmarshalJSON(data []byte) error {
	data = bytesTrimSpace(data)
	if len(data) == 0 {
		*s = nil
		return nil
	}
	if data[0] == '"' {
		var value string
		if err := json.Unmarshal(data, &value); err != nil {
			return err
		}
		value = strings.TrimSpace(value)
		if value == "" {
			*s = nil
		} else {
			*s = []string{value}
		}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	for i := range list {
		list[i] = strings.TrimSpace(list[i])
	}
	*s = list
	return nil
}

func bytesTrimSpace(b []byte) []byte {
	start := 0
	for start < len(b) && (b[start] == ' ' || b[start] == '\n' || b[start] == '\t' || b[start] == '\r') {
		start++
	}
	end := len(b)
	for end > start && (b[end-1] == ' ' || b[end-1] == '\n' || b[end-1] == '\t' || b[end-1] == '\r') {
		end--
	}
	return b[start:end]
}

func loadPlanDocument(path string) (*planDocument, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read plan file: %w", err)
	}
	format := strings.ToLower(filepath.Ext(path))
	if format != ".yaml" && format != ".yml" && format != ".json" {
		format = ".yaml"
	}
	doc, err := decodePlanDocument(data, format)
	if err != nil {
		return nil, err
	}
	if doc.Version == 0 {
		doc.Version = 1
	}
	if doc.Version != 1 {
		return nil, fmt.Errorf("unsupported plan version %d", doc.Version)
	}
	if err := doc.validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

func decodePlanDocument(data []byte, format string) (*planDocument, error) {
	var doc planDocument
	switch format {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse plan file: %w", err)
		}
	case ".json":
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("parse plan file: %w", err)
		}
	default:
		return nil, fmt.Errorf("unknown plan format %q", format)
	}
	return &doc, nil
}

func (doc *planDocument) validate() error {
	if strings.TrimSpace(doc.Credential) == "" {
		return fmt.Errorf("plan missing cred")
	}
	if len(doc.Steps) == 0 {
		return fmt.Errorf("plan has no steps")
	}
	for i, step := range doc.Steps {
		op := strings.ToLower(strings.TrimSpace(step.Op))
		switch op {
		case "mkdirs", "remove", "list":
			if strings.TrimSpace(step.Path) == "" {
				return fmt.Errorf("steps[%d] (%s) missing path", i, op)
			}
		case "upload", "download":
			if strings.TrimSpace(step.LocalPath) == "" {
				return fmt.Errorf("steps[%d] (%s) missing local_path", i, op)
			}
			if strings.TrimSpace(step.RemotePath) == "" {
				return fmt.Errorf("steps[%d] (%s) missing remote_path", i, op)
			}
		case "":
			return fmt.Errorf("steps[%d] missing op", i)
		default:
			return fmt.Errorf("steps[%d] unknown op %q", i, step.Op)
		}
	}
	return nil
}
