package source

import (
	"context"
	"errors"
	"fmt"
	"image"
	"log"
	"path/filepath"
	"strconv"
	"strings"
	"sync"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/folio/internal/system"
)

// ErrRemote marks a reference that is not a local file (a URL or a video).
// Such frames keep their place in the carousel but have no thumbnail.
var ErrRemote = errors.New("not a local image")

// Library turns card image references into carousel frames and caches their thumbnails.
//
// A reference to a PDF expands into one frame per page ("deck.pdf#1", "deck.pdf#2", ...),
// a directory expands into its images, and anything else is kept as a single frame.
type Library struct {
	root   string
	dpi    int
	size   image.Point
	logger *log.Logger

	mu     sync.RWMutex
	thumbs map[string]*image.RGBA
	failed map[string]error
}

// NewLibrary resolves relative references against root and renders thumbnails of size thumb.
func NewLibrary(root string, dpi int, thumb image.Point, logger *log.Logger) *Library {
	if logger == nil {
		logger = log.Default()
	}
	if dpi <= 0 {
		dpi = 72
	}
	return &Library{
		root:   root,
		dpi:    dpi,
		size:   thumb,
		logger: logger,
		thumbs: make(map[string]*image.RGBA),
		failed: make(map[string]error),
	}
}

// Expand returns the frames for refs in order. Unreadable PDFs and
// directories stay as single frames so a card never loses its images.
func (l *Library) Expand(refs []string) []string {
	var frames []string
	for _, ref := range refs {
		path := l.path(ref)
		if isRemote(ref) || !exists(path) {
			frames = append(frames, ref)
			continue
		}
		src, err := Open(path)
		if err != nil {
			l.logger.Printf("[!] media %s: %v", ref, err)
			frames = append(frames, ref)
			continue
		}
		switch s := src.(type) {
		case *PDFSource:
			for i := 0; i < s.PageCount(); i++ {
				frames = append(frames, fmt.Sprintf("%s#%d", ref, i+1))
			}
		case *ImageSource:
			if s.PageCount() == 0 {
				frames = append(frames, ref)
			}
			for _, p := range s.Paths() {
				if p == path {
					frames = append(frames, ref)
					continue
				}
				rel, err := filepath.Rel(l.root, p)
				if err != nil || l.root == "" {
					rel = p
				}
				frames = append(frames, rel)
			}
		}
		src.Close()
	}
	return frames
}

// Preload renders thumbnails for frames with at most workers concurrent decoders.
// Failures are logged and remembered; only cancellation is returned.
func (l *Library) Preload(ctx context.Context, frames []string, workers int) error {
	if workers < 1 {
		workers = 1
	}
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)

	for _, ref := range frames {
		ref := ref
		if _, ok := l.Thumbnail(ref); ok {
			continue
		}
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			img, err := l.Render(ref)
			l.mu.Lock()
			defer l.mu.Unlock()
			if err != nil {
				if !errors.Is(err, ErrRemote) {
					l.logger.Printf("[!] thumbnail %s: %v", ref, err)
				}
				l.failed[ref] = err
				return nil
			}
			l.thumbs[ref] = system.Thumbnail(img, l.size.X, l.size.Y)
			return nil
		})
	}
	return g.Wait()
}

// Render decodes one frame at full size.
func (l *Library) Render(ref string) (image.Image, error) {
	if isRemote(ref) {
		return nil, ErrRemote
	}
	file, page := splitFrame(ref)
	path := l.path(file)
	if !exists(path) {
		return nil, fmt.Errorf("%w: %s", ErrRemote, ref)
	}
	src, err := Open(path)
	if err != nil {
		return nil, err
	}
	defer src.Close()
	return src.RenderPage(page, l.dpi)
}

// Thumbnail returns the cached thumbnail of a frame.
func (l *Library) Thumbnail(ref string) (*image.RGBA, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()
	img, ok := l.thumbs[ref]
	return img, ok
}

// Failed returns the error recorded for a frame during Preload, if any.
func (l *Library) Failed(ref string) error {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return l.failed[ref]
}

func (l *Library) path(ref string) string {
	if filepath.IsAbs(ref) || l.root == "" {
		return ref
	}
	return filepath.Join(l.root, ref)
}

// splitFrame parses "deck.pdf#3" into the file and a zero-based page.
func splitFrame(ref string) (string, int) {
	i := strings.LastIndex(ref, "#")
	if i < 0 {
		return ref, 0
	}
	n, err := strconv.Atoi(ref[i+1:])
	if err != nil || n < 1 {
		return ref, 0
	}
	return ref[:i], n - 1
}

func isRemote(ref string) bool {
	lower := strings.ToLower(ref)
	if strings.HasPrefix(lower, "http://") || strings.HasPrefix(lower, "https://") {
		return true
	}
	file, _ := splitFrame(lower)
	return !system.IsMedia(file) && filepath.Ext(file) != ""
}
