package parallax

import (
	"math"
	"testing"
)

func TestOffset(t *testing.T) {
	b := &Binding{StartScrollY: 1000, EndScrollY: 2000, MinOffset: 0, MaxOffset: -80}

	tests := []struct {
		scrollY  float64
		expected float64
	}{
		{0, 0},      // before range: clamped
		{1000, 0},   // start
		{1500, -40}, // midpoint
		{2000, -80}, // end
		{5000, -80}, // after range: clamped
	}
	for _, tt := range tests {
		if got := b.Offset(tt.scrollY); math.Abs(got-tt.expected) > 1e-9 {
			t.Errorf("Offset(%v) = %v, expected %v", tt.scrollY, got, tt.expected)
		}
	}
}

func TestOffsetMonotonic(t *testing.T) {
	b := &Binding{StartScrollY: 200, EndScrollY: 900, MinOffset: -10, MaxOffset: 30}
	prev := b.Offset(0)
	for y := 0.0; y <= 1200; y += 7 {
		v := b.Offset(y)
		if v < prev {
			t.Fatalf("offset decreased at %v: %v -> %v", y, prev, v)
		}
		if math.Abs(v-prev) > 40.0*7/700+1e-9 {
			t.Fatalf("offset jumped at %v: %v -> %v", y, prev, v)
		}
		prev = v
	}
}

func TestZeroLengthRange(t *testing.T) {
	b := &Binding{StartScrollY: 500, EndScrollY: 500, MinOffset: 3, MaxOffset: 9}
	for _, y := range []float64{0, 500, 1000} {
		if got := b.Offset(y); got != 3 {
			t.Errorf("Offset(%v) = %v, expected MinOffset", y, got)
		}
	}
}

func TestUpdateSkipsRedundantWrites(t *testing.T) {
	var writes []float64
	b := &Binding{StartScrollY: 0, EndScrollY: 1000, MinOffset: 0, MaxOffset: 100, Sink: func(o float64) { writes = append(writes, o) }}

	e := NewEngine()
	e.Bind(b)

	e.Update(-500) // clamped to 0
	e.Update(-100) // still 0
	e.Update(500)
	e.Update(500.00001)
	e.Update(2000)
	e.Update(3000)

	if len(writes) != 3 {
		t.Errorf("expected 3 writes, got %d: %v", len(writes), writes)
	}

	e.Close()
	if n := e.Update(100); n != 0 || e.Len() != 0 {
		t.Errorf("closed engine should not update bindings")
	}
}

func TestUpdateLandsOnClampedEnd(t *testing.T) {
	var last float64
	b := &Binding{StartScrollY: 0, EndScrollY: 1000, MinOffset: 0, MaxOffset: 100, Sink: func(o float64) { last = o }}

	b.Update(999.95) // 99.995, within Epsilon of the end
	if _, wrote := b.Update(1000); !wrote || last != 100 {
		t.Errorf("end offset = %v (wrote %v), expected exactly 100", last, wrote)
	}
	if _, wrote := b.Update(1200); wrote {
		t.Error("clamped offset written twice")
	}
}
