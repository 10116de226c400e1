package trigger

import (
	"math"
	"reflect"
	"sync"
	"testing"

	"github.com/ivlev/folio/internal/geom"
)

const viewport = 800.0

// element at document y=2000, 400px tall
var cardBounds = geom.Rect{X: 0, Y: 2000, W: 1200, H: 400}

func TestParseAnchor(t *testing.T) {
	tests := []struct {
		in      string
		want    Anchor
		wantErr bool
	}{
		{"top bottom", Anchor{Element: 0, Viewport: 1}, false},
		{"top center+=100", Anchor{Element: 0, Viewport: 0.5, Offset: 100}, false},
		{"bottom top", Anchor{Element: 1, Viewport: 0}, false},
		{"center center-=50", Anchor{Element: 0.5, Viewport: 0.5, Offset: -50}, false},
		{"top 80%", Anchor{Element: 0, Viewport: 0.8}, false},
		{"top", Anchor{}, true},
		{"left bottom", Anchor{}, true},
		{"top center+=abc", Anchor{}, true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseAnchor(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseAnchor(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if err == nil && got != tt.want {
				t.Errorf("ParseAnchor(%q) = %+v, expected %+v", tt.in, got, tt.want)
			}
		})
	}
}

func TestAnchorScrollY(t *testing.T) {
	a, _ := ParseAnchor("top center+=100")
	// element top 2000 meets viewport line 400+100 => scrollY 1500
	if got := a.ScrollY(cardBounds, viewport); got != 1500 {
		t.Errorf("ScrollY = %v, expected 1500", got)
	}
	if got := BottomTop.ScrollY(cardBounds, viewport); got != 2400 {
		t.Errorf("bottom top ScrollY = %v, expected 2400", got)
	}
}

func discreteRecorder(s *Scheduler) (*Handle, *[]string) {
	var events []string
	h := s.Register(Registration{
		Bounds:  cardBounds,
		Start:   TopBottom, // scrollY 1200
		End:     BottomTop, // scrollY 2400
		OnEnter: func() { events = append(events, "enter") },
		OnExit:  func() { events = append(events, "exit") },
	})
	return h, &events
}

func sweep(s *Scheduler, from, to, step float64) {
	if from <= to {
		for y := from; y <= to; y += step {
			s.Tick(y)
		}
		return
	}
	for y := from; y >= to; y -= step {
		s.Tick(y)
	}
}

func TestDiscreteSweep(t *testing.T) {
	s := NewScheduler(viewport)
	_, events := discreteRecorder(s)

	sweep(s, 0, 3000, 50)
	if want := []string{"enter", "exit"}; !reflect.DeepEqual(*events, want) {
		t.Errorf("forward sweep events = %v, expected %v", *events, want)
	}

	sweep(s, 3000, 0, 50)
	if want := []string{"enter", "exit", "enter", "exit"}; !reflect.DeepEqual(*events, want) {
		t.Errorf("re-entering sweep events = %v, expected %v", *events, want)
	}
}

func TestDiscreteJumpAcrossZone(t *testing.T) {
	s := NewScheduler(viewport)
	_, events := discreteRecorder(s)

	s.Tick(0)
	s.Tick(5000)
	if len(*events) != 0 {
		t.Errorf("jumping over the whole zone in one tick should fire nothing, got %v", *events)
	}
}

func TestScrubProgress(t *testing.T) {
	s := NewScheduler(viewport)
	var got []float64
	s.Register(Registration{
		Bounds:     cardBounds,
		Start:      TopBottom,
		End:        TopCenter, // scrollY 1600
		Scrub:      true,
		OnProgress: func(p float64) { got = append(got, p) },
		OnEnter:    func() { t.Errorf("scrub registration must not fire enter") },
	})

	for y := 1200.0; y <= 1600; y += 40 {
		s.Tick(y)
	}

	if len(got) == 0 {
		t.Fatal("no progress delivered")
	}
	if got[0] != 0 {
		t.Errorf("p at start = %v, expected 0", got[0])
	}
	if got[len(got)-1] != 1 {
		t.Errorf("p at end = %v, expected 1", got[len(got)-1])
	}
	for i := 1; i < len(got); i++ {
		if got[i] < got[i-1] {
			t.Fatalf("progress decreased at %d: %v -> %v", i, got[i-1], got[i])
		}
	}

	// Leaving the window delivers the clamped value only once.
	n := len(got)
	s.Tick(1700)
	s.Tick(1800)
	if len(got) != n {
		t.Errorf("expected no deliveries past the window at the same clamped value, got %v", got[n:])
	}
}

func TestScrubJumpSettlesEndpoint(t *testing.T) {
	s := NewScheduler(viewport)
	last := math.NaN()
	s.Register(Registration{
		Bounds:     cardBounds,
		Start:      TopBottom,
		End:        TopCenter,
		Scrub:      true,
		OnProgress: func(p float64) { last = p },
	})
	s.Tick(1300)
	s.Tick(9000)
	if last != 1 {
		t.Errorf("after jumping past the end p = %v, expected 1", last)
	}
}

func TestRegistrationOrderAndIndependence(t *testing.T) {
	s := NewScheduler(viewport)
	var order []int
	for i := 0; i < 3; i++ {
		i := i
		s.Register(Registration{
			Bounds:  cardBounds,
			Start:   TopBottom,
			End:     BottomTop,
			OnEnter: func() { order = append(order, i) },
		})
	}
	s.Tick(1500)
	if want := []int{0, 1, 2}; !reflect.DeepEqual(order, want) {
		t.Errorf("dispatch order = %v, expected %v", order, want)
	}
}

func TestUnregisterDuringTick(t *testing.T) {
	s := NewScheduler(viewport)
	calls := 0

	var victim *Handle
	s.Register(Registration{
		Bounds:  cardBounds,
		Start:   TopBottom,
		End:     BottomTop,
		OnEnter: func() { s.Unregister(victim) },
	})
	victim = s.Register(Registration{
		Bounds:  cardBounds,
		Start:   TopBottom,
		End:     BottomTop,
		OnEnter: func() { calls++ },
		OnExit:  func() { calls++ },
	})

	s.Tick(1500)
	s.Tick(3000)
	s.Tick(1500)

	if calls != 0 {
		t.Errorf("unregistered handle received %d callbacks", calls)
	}
	if s.Len() != 1 {
		t.Errorf("expected 1 live registration, got %d", s.Len())
	}

	// Idempotent.
	s.Unregister(victim)
	s.Unregister(nil)
}

func TestSelfUnregisterAndRegisterDuringTick(t *testing.T) {
	s := NewScheduler(viewport)
	var self *Handle
	added := 0
	self = s.Register(Registration{
		Bounds: cardBounds,
		Start:  TopBottom,
		End:    BottomTop,
		OnEnter: func() {
			s.Unregister(self)
			s.Register(Registration{
				Bounds:  cardBounds,
				Start:   TopBottom,
				End:     BottomTop,
				OnEnter: func() { added++ },
			})
		},
	})

	s.Tick(1500)
	if added != 0 {
		t.Errorf("registration made during a tick must wait for the next pass")
	}
	s.Tick(1510)
	if added != 1 {
		t.Errorf("new registration should enter on the next tick, got %d", added)
	}
}

func TestReentrantTickIsQueued(t *testing.T) {
	s := NewScheduler(viewport)
	var seen []float64
	s.Register(Registration{
		Bounds: cardBounds,
		Start:  TopBottom,
		End:    TopCenter,
		Scrub:  true,
		OnProgress: func(p float64) {
			seen = append(seen, p)
			if len(seen) == 1 {
				s.Tick(1600)
			}
		},
	})
	s.Tick(1400)
	if want := []float64{0.5, 1}; !reflect.DeepEqual(seen, want) {
		t.Errorf("progress = %v, expected %v", seen, want)
	}
}

func TestQueuedTicksRunInOrder(t *testing.T) {
	s := NewScheduler(viewport)
	queued := false
	s.Register(Registration{
		Bounds: cardBounds,
		Start:  TopBottom,
		End:    BottomTop,
		OnEnter: func() {
			if queued {
				return
			}
			queued = true
			// out, back in and out again before the first pass ends
			s.Tick(3000)
			s.Tick(1500)
			s.Tick(3000)
		},
	})
	_, events := discreteRecorder(s)

	s.Tick(0)
	s.Tick(1500)
	if want := []string{"enter", "exit", "enter", "exit"}; !reflect.DeepEqual(*events, want) {
		t.Errorf("events = %v, expected %v", *events, want)
	}
	if s.ScrollY() != 3000 {
		t.Errorf("ScrollY = %v, expected 3000", s.ScrollY())
	}
}

func TestConcurrentRegisterUnregister(t *testing.T) {
	s := NewScheduler(viewport)
	stop := make(chan struct{})
	var ticker sync.WaitGroup

	ticker.Add(1)
	go func() {
		defer ticker.Done()
		y := 0.0
		for {
			select {
			case <-stop:
				return
			default:
			}
			s.Tick(y)
			y += 10
			if y > 3000 {
				y = 0
			}
		}
	}()

	var cards sync.WaitGroup
	for w := 0; w < 4; w++ {
		cards.Add(1)
		go func() {
			defer cards.Done()
			for i := 0; i < 200; i++ {
				h := s.Register(Registration{Bounds: cardBounds, Start: TopBottom, End: BottomTop, OnEnter: func() {}})
				s.Unregister(h)
			}
		}()
	}

	cards.Wait()
	close(stop)
	ticker.Wait()

	s.Tick(0)
	if s.Len() != 0 {
		t.Errorf("expected all registrations removed, %d left", s.Len())
	}
}
