package timeline

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// EasingFunc maps linear progress [0,1] to eased progress.
// Overshooting curves (BackOut) may leave [0,1] before settling at 1.
type EasingFunc func(t float64) float64

// DefaultBackOvershoot matches the classic "back" curve constant.
const DefaultBackOvershoot = 1.70158

var (
	// EaseLinear - constant speed ("none" / "linear").
	EaseLinear EasingFunc = func(t float64) float64 { return t }

	// EaseOutQuad - power1.out
	EaseOutQuad EasingFunc = func(t float64) float64 {
		return 1 - (1-t)*(1-t)
	}

	// EaseOutCubic - power2.out, fast start and slow landing.
	EaseOutCubic EasingFunc = func(t float64) float64 {
		return 1 - math.Pow(1-t, 3)
	}

	// EaseOutQuart - power3.out
	EaseOutQuart EasingFunc = func(t float64) float64 {
		return 1 - math.Pow(1-t, 4)
	}

	// EaseOutQuint - power4.out
	EaseOutQuint EasingFunc = func(t float64) float64 {
		return 1 - math.Pow(1-t, 5)
	}

	// EaseInOutQuint - power4.inOut
	EaseInOutQuint EasingFunc = func(t float64) float64 {
		if t < 0.5 {
			return 16 * t * t * t * t * t
		}
		return 1 - math.Pow(-2*t+2, 5)/2
	}

	// EaseInOutCubic - smooth in-out, used for camera-like moves such as ScrollTo.
	EaseInOutCubic EasingFunc = func(t float64) float64 {
		if t < 0.5 {
			return 4 * t * t * t
		}
		return 1 - math.Pow(-2*t+2, 3)/2
	}

	// EaseOutExpo - expo.out
	EaseOutExpo EasingFunc = func(t float64) float64 {
		if t >= 1 {
			return 1
		}
		return 1 - math.Pow(2, -10*t)
	}

	// EaseBackOut - back.out with the default overshoot.
	EaseBackOut = BackOut(DefaultBackOvershoot)
)

// BackOut returns an ease-out curve that overshoots 1 by an amount controlled by s.
func BackOut(s float64) EasingFunc {
	return func(t float64) float64 {
		if t <= 0 {
			return 0
		}
		if t >= 1 {
			return 1
		}
		t1 := t - 1
		return 1 + (s+1)*t1*t1*t1 + s*t1*t1
	}
}

// ParseEasing resolves an easing name as written in site files:
// "none", "linear", "power1.out" .. "power4.out", "power4.inOut",
// "expo.out", "back.out" and "back.out(1.7)".
func ParseEasing(name string) (EasingFunc, error) {
	n := strings.TrimSpace(name)
	switch n {
	case "", "none", "linear":
		return EaseLinear, nil
	case "power1.out", "quad.out":
		return EaseOutQuad, nil
	case "power2.out", "cubic.out":
		return EaseOutCubic, nil
	case "power3.out", "quart.out":
		return EaseOutQuart, nil
	case "power4.out", "quint.out":
		return EaseOutQuint, nil
	case "power4.inOut", "quint.inOut":
		return EaseInOutQuint, nil
	case "power2.inOut", "cubic.inOut":
		return EaseInOutCubic, nil
	case "expo.out":
		return EaseOutExpo, nil
	case "back.out":
		return EaseBackOut, nil
	}

	if strings.HasPrefix(n, "back.out(") && strings.HasSuffix(n, ")") {
		arg := strings.TrimSuffix(strings.TrimPrefix(n, "back.out("), ")")
		s, err := strconv.ParseFloat(strings.TrimSpace(arg), 64)
		if err != nil {
			return nil, fmt.Errorf("easing %q: bad overshoot: %w", name, err)
		}
		return BackOut(s), nil
	}
	return nil, fmt.Errorf("unknown easing: %s", name)
}

// Lerp performs linear interpolation between a and b.
// The endpoints are returned exactly.
func Lerp(a, b, t float64) float64 {
	switch t {
	case 0:
		return a
	case 1:
		return b
	}
	return a + (b-a)*t
}

// Clamp01 clamps t to [0,1].
func Clamp01(t float64) float64 {
	if t < 0 {
		return 0
	}
	if t > 1 {
		return 1
	}
	return t
}
