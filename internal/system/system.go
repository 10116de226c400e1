package system

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"
)

// MediaExtensions are the file types a carousel can show.
var MediaExtensions = []string{".pdf", ".jpg", ".jpeg", ".png", ".webp"}

// FindLatest returns the most recently modified file in dir whose name ends
// with one of exts (case-insensitive).
func FindLatest(dir string, exts ...string) (string, error) {
	files, err := os.ReadDir(dir)
	if err != nil {
		return "", err
	}

	var latestFile string
	var latestTime time.Time

	for _, f := range files {
		if f.IsDir() || !hasExt(f.Name(), exts) {
			continue
		}
		info, err := f.Info()
		if err != nil {
			// Файл мог исчезнуть между ReadDir и Info, просто пропускаем
			continue
		}
		if info.ModTime().After(latestTime) {
			latestTime = info.ModTime()
			latestFile = filepath.Join(dir, f.Name())
		}
	}

	if latestFile == "" {
		return "", fmt.Errorf("no %s files in %s", strings.Join(exts, "/"), dir)
	}
	return latestFile, nil
}

// FindLatestMedia finds the newest PDF or image in dir.
func FindLatestMedia(dir string) (string, error) {
	return FindLatest(dir, MediaExtensions...)
}

// IsMedia reports whether path has a supported media extension.
func IsMedia(path string) bool {
	return hasExt(path, MediaExtensions)
}

func hasExt(name string, exts []string) bool {
	lower := strings.ToLower(name)
	for _, ext := range exts {
		if strings.HasSuffix(lower, ext) {
			return true
		}
	}
	return false
}
