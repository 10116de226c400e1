package director

import (
	"os"

	"gopkg.in/yaml.v3"
)

// WriteLayout writes a layout to a YAML file
func WriteLayout(layout *Layout, path string) error {
	data, err := yaml.Marshal(layout)
	if err != nil {
		return err
	}

	return os.WriteFile(path, data, 0644)
}

// ReadLayout reads a layout from a YAML file
func ReadLayout(path string) (*Layout, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var layout Layout
	if err := yaml.Unmarshal(data, &layout); err != nil {
		return nil, err
	}

	return &layout, nil
}
