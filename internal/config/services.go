package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"github.com/devobox/devobox/internal/domain"
)

// loadServices reads and parses the services manifest at path, which
// is accepted in two shapes per spec: a root mapping with a `services`
// key, or a bare root sequence of the same items. Grounded on
// original_source/src/infra/config.rs's DatabaseDocument untagged enum,
// detected here by peeking the decoded root node's kind rather than
// relying on an untagged-union decode (Go's yaml.v3 has no serde-style
// untagged enum support).
func loadServices(path string) ([]domain.Service, error) {
	if _, err := os.Stat(path); err != nil {
		return nil, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, domain.WrapConfigError(err, "reading services manifest %s", path)
	}
	if len(data) == 0 {
		return nil, nil
	}

	var root yaml.Node
	if err := yaml.Unmarshal(data, &root); err != nil {
		return nil, domain.WrapConfigError(err, "parsing services manifest %s", path)
	}
	if len(root.Content) == 0 {
		return nil, nil
	}

	doc := root.Content[0]

	var raw []domain.Service
	switch doc.Kind {
	case yaml.SequenceNode:
		if err := doc.Decode(&raw); err != nil {
			return nil, domain.WrapConfigError(err, "parsing services manifest %s", path)
		}
	case yaml.MappingNode:
		var wrapper struct {
			Services []domain.Service `yaml:"services"`
		}
		if err := doc.Decode(&wrapper); err != nil {
			return nil, domain.WrapConfigError(err, "parsing services manifest %s", path)
		}
		raw = wrapper.Services
	default:
		return nil, domain.NewConfigError("services manifest %s is neither a mapping nor a sequence", path)
	}

	for i := range raw {
		raw[i].Normalize()
		if raw[i].Name == "" {
			return nil, domain.NewConfigError("entry %d in %s has no name", i+1, path)
		}
		if raw[i].Image == "" {
			return nil, domain.NewConfigError("entry %d in %s (%s) has no image", i+1, path, raw[i].Name)
		}
	}

	return raw, nil
}
