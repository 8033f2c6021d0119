package model

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// DeriveSecondaryColor shifts the lightness of primary in HSL space: darker
// by 0.2 for mid/light colors, lighter by 0.25 for dark ones. The result
// always differs from primary. Invalid input derives from the default color.
func DeriveSecondaryColor(primary string) string {
	c := NormalizeHex(primary)
	if c == "" {
		c = DefaultPrimaryColor
	}
	r, g, b := hexToRGB(c)
	h, s, l := rgbToHSL(r, g, b)
	if l > 0.35 {
		l -= 0.2
	} else {
		l += 0.25
	}
	l = math.Max(0, math.Min(1, l))
	return rgbToHex(hslToRGB(h, s, l))
}

// NormalizeHex returns a lowercase six-digit "#rrggbb" for a valid hex color,
// or "" when s is not one.
func NormalizeHex(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if !strings.HasPrefix(s, "#") {
		return ""
	}
	hex := s[1:]
	if len(hex) == 3 {
		hex = string([]byte{hex[0], hex[0], hex[1], hex[1], hex[2], hex[2]})
	}
	if len(hex) != 6 {
		return ""
	}
	if _, err := strconv.ParseUint(hex, 16, 32); err != nil {
		return ""
	}
	return "#" + hex
}

// HSL returns the hue, saturation and lightness of a "#rrggbb" color, each
// in [0, 1].
func HSL(c string) (h, s, l float64) {
	return rgbToHSL(hexToRGB(c))
}

func hexToRGB(c string) (float64, float64, float64) {
	v, _ := strconv.ParseUint(strings.TrimPrefix(c, "#"), 16, 32)
	return float64(v>>16&0xff) / 255, float64(v>>8&0xff) / 255, float64(v&0xff) / 255
}

func rgbToHex(r, g, b float64) string {
	clamp := func(x float64) int {
		return int(math.Max(0, math.Min(255, math.Round(x*255))))
	}
	return fmt.Sprintf("#%02x%02x%02x", clamp(r), clamp(g), clamp(b))
}

func rgbToHSL(r, g, b float64) (h, s, l float64) {
	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	l = (maxC + minC) / 2
	if maxC == minC {
		return 0, 0, l
	}
	d := maxC - minC
	if l > 0.5 {
		s = d / (2 - maxC - minC)
	} else {
		s = d / (maxC + minC)
	}
	switch maxC {
	case r:
		h = (g - b) / d
		if g < b {
			h += 6
		}
	case g:
		h = (b-r)/d + 2
	default:
		h = (r-g)/d + 4
	}
	return h / 6, s, l
}

func hslToRGB(h, s, l float64) (float64, float64, float64) {
	if s == 0 {
		return l, l, l
	}
	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q
	return hueToRGB(p, q, h+1.0/3), hueToRGB(p, q, h), hueToRGB(p, q, h-1.0/3)
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 1.0/2:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	default:
		return p
	}
}
