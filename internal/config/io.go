package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/ivlev/folio/internal/system"
)

var ErrNoSite = errors.New("no site file found")

// GenerateSitePath creates a timestamped site filename in dir.
func GenerateSitePath(dir string) string {
	timestamp := time.Now().Format("2006-01-02_15-04-05")
	return filepath.Join(dir, fmt.Sprintf("site_%s.yaml", timestamp))
}

// FindLatestSite finds the most recently modified site file in dir.
func FindLatestSite(dir string) (string, error) {
	path, err := system.FindLatest(dir, ".yaml", ".yml")
	if err != nil {
		return "", fmt.Errorf("%w in %s: %v", ErrNoSite, dir, err)
	}
	return path, nil
}

// WriteSite writes a site to a YAML file
func WriteSite(site *Site, path string) error {
	data, err := yaml.Marshal(site)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	return os.WriteFile(path, data, 0644)
}

// ReadSite reads and validates a site YAML file
func ReadSite(path string) (*Site, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var site Site
	if err := yaml.Unmarshal(data, &site); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if err := site.Validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return &site, nil
}

// Validate checks the invariants the runtime relies on.
func (s *Site) Validate() error {
	if len(s.Sections) == 0 {
		return errors.New("site has no sections")
	}
	seen := make(map[string]bool)
	for i, sec := range s.Sections {
		if sec.ID == "" {
			return fmt.Errorf("section %d: missing id", i)
		}
		if seen[sec.ID] {
			return fmt.Errorf("section %q: duplicate id", sec.ID)
		}
		seen[sec.ID] = true
		switch sec.Layout {
		case "services", "projects", "":
		default:
			return fmt.Errorf("section %q: unknown layout %q", sec.ID, sec.Layout)
		}
		for j, c := range sec.Cards {
			if len(c.Images) == 0 {
				return fmt.Errorf("section %q card %d (%s): no images", sec.ID, j, c.Title)
			}
			switch c.ImagePosition {
			case "", "left", "right":
			default:
				return fmt.Errorf("section %q card %d: image_position must be left or right", sec.ID, j)
			}
		}
	}
	return nil
}
