package system

import (
	"image"
	"image/color"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestFindLatest(t *testing.T) {
	dir := t.TempDir()
	names := []string{"old.pdf", "deck.PDF", "shot.png", "notes.txt"}
	for i, n := range names {
		p := filepath.Join(dir, n)
		if err := os.WriteFile(p, []byte("x"), 0644); err != nil {
			t.Fatal(err)
		}
		mt := time.Now().Add(time.Duration(i) * time.Minute)
		os.Chtimes(p, mt, mt)
	}

	tests := []struct {
		name string
		find func(string) (string, error)
		want string
	}{
		{"pdf", func(dir string) (string, error) { return FindLatest(dir, ".pdf") }, "deck.PDF"},
		{"media", FindLatestMedia, "shot.png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.find(dir)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if filepath.Base(got) != tt.want {
				t.Errorf("got %s, expected %s", filepath.Base(got), tt.want)
			}
		})
	}

	if _, err := FindLatest(dir, ".webp"); err == nil {
		t.Error("expected an error when nothing matches")
	}
}

func TestBudgetAdjust(t *testing.T) {
	tests := []struct {
		name   string
		in     Budget
		fps    int
		worker int
	}{
		{"idle", Budget{FPS: 60, Workers: 4, Cores: 8, Load1: 0.5}, 60, 4},
		{"workers capped by cores", Budget{FPS: 30, Workers: 16, Cores: 4}, 30, 4},
		{"overloaded", Budget{FPS: 30, Workers: 8, Cores: 4, Load1: 9}, 15, 1},
		{"floor", Budget{FPS: 12, Workers: 2, Cores: 2, MemUsed: 99}, 10, 1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := tt.in.adjust()
			if got.FPS != tt.fps || got.Workers != tt.worker {
				t.Errorf("adjust() = fps %d workers %d, expected %d/%d", got.FPS, got.Workers, tt.fps, tt.worker)
			}
		})
	}

	if d := (Budget{FPS: 50}).FrameInterval(); d != 20*time.Millisecond {
		t.Errorf("FrameInterval = %v", d)
	}
}

func TestThumbnailLetterbox(t *testing.T) {
	src := image.NewRGBA(image.Rect(0, 0, 200, 100))
	for y := 0; y < 100; y++ {
		for x := 0; x < 200; x++ {
			src.Set(x, y, color.White)
		}
	}

	th := Thumbnail(src, 40, 40)
	if th.Bounds().Dx() != 40 || th.Bounds().Dy() != 40 {
		t.Fatalf("thumbnail size %v", th.Bounds())
	}
	// 2:1 image in a square: bars above and below.
	if c := th.RGBAAt(20, 2); c.R != 0 {
		t.Errorf("top bar should be black, got %v", c)
	}
	if c := th.RGBAAt(20, 20); c.R < 200 {
		t.Errorf("centre should be the image, got %v", c)
	}

	// The returned image must not alias the pooled buffer.
	th2 := Thumbnail(nil, 40, 40)
	if &th.Pix[0] == &th2.Pix[0] {
		t.Error("thumbnails share a buffer")
	}
}

func TestRaiseFileLimit(t *testing.T) {
	got, err := RaiseFileLimit(64)
	if err != nil {
		t.Fatalf("RaiseFileLimit: %v", err)
	}
	if got < 64 {
		t.Errorf("limit %d below the request", got)
	}
	t.Logf("open-file limit: %d", got)
}
