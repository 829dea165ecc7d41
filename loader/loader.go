// Package loader reads model definitions from YAML files or Go sources.
package loader

import (
	"fmt"
	"os"
	"strings"

	"github.com/ridoystarlord/fixturegen/schema"
)

// Load reads models from a YAML file, or from the Go sources of a directory.
func Load(source string) ([]schema.Model, error) {
	info, err := os.Stat(source)
	if err != nil {
		return nil, fmt.Errorf("model source %s: %w", source, err)
	}
	if info.IsDir() {
		return LoadModelsFromTags(source)
	}
	if strings.HasSuffix(source, ".yaml") || strings.HasSuffix(source, ".yml") {
		return LoadModelsFromYAML(source)
	}
	return nil, fmt.Errorf("model source %s is neither a directory nor a YAML file", source)
}

// Select returns the models whose name or table is in names, in the order
// given. No names selects everything.
func Select(models []schema.Model, names []string) ([]schema.Model, error) {
	if len(names) == 0 {
		return models, nil
	}
	out := make([]schema.Model, 0, len(names))
	for _, name := range names {
		found := false
		for _, m := range models {
			if m.Name == name || m.TableName() == name {
				out = append(out, m)
				found = true
				break
			}
		}
		if !found {
			return nil, fmt.Errorf("model %q not found", name)
		}
	}
	return out, nil
}
