package config

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

func TestSiteWriteRead(t *testing.T) {
	site := DefaultSite()
	path := filepath.Join(t.TempDir(), "site.yaml")

	if err := WriteSite(site, path); err != nil {
		t.Fatalf("WriteSite failed: %v", err)
	}

	read, err := ReadSite(path)
	if err != nil {
		t.Fatalf("ReadSite failed: %v", err)
	}

	if read.Version != site.Version {
		t.Errorf("Version mismatch: expected %s, got %s", site.Version, read.Version)
	}
	if len(read.Sections) != len(site.Sections) {
		t.Fatalf("Section count mismatch: expected %d, got %d", len(site.Sections), len(read.Sections))
	}
	if got := read.Sections[0].Cards[2].Images; len(got) != 2 {
		t.Errorf("Mobile Apps card should keep 2 images, got %d", len(got))
	}
	if read.Contact.ToEmail != site.Contact.ToEmail {
		t.Errorf("contact recipient lost: %q", read.Contact.ToEmail)
	}
}

func TestReadSiteScenarioSteps(t *testing.T) {
	doc := `
version: "1.0"
sections:
  - id: work
    layout: services
    cards:
      - title: Deck
        description: From a PDF
        images: [talk.pdf]
        rotation_period: 3
        tilt: 8
        reveal:
          effect: scenario
          steps:
            - target: card
              from: {y: 100}
              to: {y: 0}
              duration: 1
              ease: power3.out
            - target: title
              split: chars
              from: {opacity: 0}
              to: {opacity: 1}
              duration: 0.8
              ease: back.out(1.7)
              position: "-=0.5"
              stagger: 0.02
`
	path := filepath.Join(t.TempDir(), "site.yaml")
	if err := os.WriteFile(path, []byte(doc), 0644); err != nil {
		t.Fatal(err)
	}
	site, err := ReadSite(path)
	if err != nil {
		t.Fatalf("ReadSite failed: %v", err)
	}

	card := site.Sections[0].Cards[0]
	if card.Reveal.Effect != "scenario" || len(card.Reveal.Steps) != 2 {
		t.Fatalf("reveal not parsed: %+v", card.Reveal)
	}
	if st := card.Reveal.Steps[1]; st.Position != "-=0.5" || st.Stagger != 0.02 || st.From["opacity"] != 0 {
		t.Errorf("step 2 = %+v", st)
	}

	cfg := &Config{RotationPeriod: 5 * time.Second, MaxTilt: 5}
	p := cfg.Params(card, 0, 1200, 400)
	if p.RotationPeriod != 3*time.Second {
		t.Errorf("rotation period = %v, expected 3s", p.RotationPeriod)
	}
	if p.MaxTilt != 8 {
		t.Errorf("max tilt = %v, expected 8", p.MaxTilt)
	}
	if p.ParallaxPercent != DefaultCardParallax {
		t.Errorf("parallax = %v, expected default", p.ParallaxPercent)
	}
	if !p.ImageLeft {
		t.Error("image should default to the left")
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(s *Site)
		wantErr string
	}{
		{"default is valid", func(s *Site) {}, ""},
		{"no sections", func(s *Site) { s.Sections = nil }, "no sections"},
		{"duplicate id", func(s *Site) { s.Sections[1].ID = s.Sections[0].ID }, "duplicate"},
		{"card without images", func(s *Site) { s.Sections[0].Cards[0].Images = nil }, "no images"},
		{"bad layout", func(s *Site) { s.Sections[0].Layout = "masonry" }, "unknown layout"},
		{"bad image side", func(s *Site) { s.Sections[0].Cards[0].ImagePosition = "top" }, "image_position"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := DefaultSite()
			tt.mutate(s)
			err := s.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, expected to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestFindLatestSite(t *testing.T) {
	dir := t.TempDir()

	if _, err := FindLatestSite(dir); !errors.Is(err, ErrNoSite) {
		t.Errorf("empty dir error = %v, expected ErrNoSite", err)
	}

	files := []string{
		filepath.Join(dir, "site_2026-02-12_10-00-00.yaml"),
		filepath.Join(dir, "site_2026-02-13_01-00-00.yml"),
		filepath.Join(dir, "site_2026-02-11_15-30-00.yaml"),
		filepath.Join(dir, "notes.txt"),
	}
	for i, f := range files {
		if err := os.WriteFile(f, []byte("version: '1.0'"), 0644); err != nil {
			t.Fatal(err)
		}
		modTime := time.Now().Add(time.Duration(i) * time.Hour)
		os.Chtimes(f, modTime, modTime)
	}

	latest, err := FindLatestSite(dir)
	if err != nil {
		t.Fatalf("FindLatestSite failed: %v", err)
	}
	t.Logf("Latest site: %s", latest)

	if latest != files[2] {
		t.Errorf("Expected latest to be %s, got %s", files[2], latest)
	}
}

func TestGenerateSitePath(t *testing.T) {
	path := GenerateSitePath("sites")
	if !strings.HasPrefix(path, filepath.Join("sites", "site_")) || !strings.HasSuffix(path, ".yaml") {
		t.Errorf("unexpected path: %s", path)
	}
}
