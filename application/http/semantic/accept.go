package semantic

import (
	"cmp"
	"math"
	"slices"
	"strconv"
	"strings"

	"litehttpd/application/util/rule"
)

const (
	MaxQuality     = 10
	DefaultQuality = MaxQuality
)

// MediaRange is one entry of an Accept header.
// Quality is the q parameter scaled to 0..10.
type MediaRange struct {
	Type    string
	Quality int
}

// Accept lists media ranges by descending quality.
// Entries of equal quality keep the order they were added in.
type Accept struct {
	ranges []MediaRange
}

// ParseAccept parses an Accept header value.
func ParseAccept(value string) Accept {
	var a Accept
	a.Parse(value)
	return a
}

// Parse appends every entry of a comma separated Accept value.
//
// Only the q parameter is recognized, and only if "q=" starts
// at least three bytes before the end of its entry.
// So "q=0.5" counts but "q=1" does not and the entry keeps [DefaultQuality].
// If several match, the last one wins.
func (a *Accept) Parse(value string) {
	for entry := range strings.SplitSeq(value, ",") {
		mime, params, _ := strings.Cut(entry, ";")

		mime = strings.Trim(mime, string(rule.Whitespaces))
		if mime == "" {
			continue
		}

		a.Add(mime, parseQuality(params))
	}
}

// parseQuality scans params, everything after the first ';' of an entry.
func parseQuality(params string) int {
	q := DefaultQuality

	for idx := 0; idx < len(params)-3; idx++ {
		if params[idx] != 'q' || params[idx+1] != '=' {
			continue
		}
		if f, ok := scanFloat(params[idx+2:]); ok {
			q = scaleQuality(f)
		}
	}

	return q
}

// scaleQuality truncates f*10 as if f were exact,
// so "0.7" is 7 even though 0.7*10 is slightly below 7 in binary.
func scaleQuality(f float64) int {
	scaled := f*10 + 1e-9
	switch {
	case math.IsNaN(scaled):
		return 0
	case scaled >= MaxQuality:
		return MaxQuality
	case scaled <= 0:
		return 0
	}
	return int(scaled)
}

// scanFloat parses the longest decimal number at the start of s,
// after optional leading whitespace. Trailing text is ignored.
func scanFloat(s string) (float64, bool) {
	s = strings.TrimLeft(s, string(rule.Whitespaces))

	end := 0
	if end < len(s) && (s[end] == '+' || s[end] == '-') {
		end++
	}

	digits := 0
	for end < len(s) && rule.IsDigit(s[end]) {
		end++
		digits++
	}
	if end < len(s) && s[end] == '.' {
		end++
		for end < len(s) && rule.IsDigit(s[end]) {
			end++
			digits++
		}
	}
	if digits == 0 {
		return 0, false
	}

	// Exponent, only if digits follow.
	if end < len(s) && (s[end] == 'e' || s[end] == 'E') {
		exp := end + 1
		if exp < len(s) && (s[exp] == '+' || s[exp] == '-') {
			exp++
		}
		if exp < len(s) && rule.IsDigit(s[exp]) {
			for exp < len(s) && rule.IsDigit(s[exp]) {
				exp++
			}
			end = exp
		}
	}

	f, err := strconv.ParseFloat(s[:end], 64)
	if err != nil {
		// Out of range, which still saturates to a usable value.
		if ne, ok := err.(*strconv.NumError); ok && ne.Err == strconv.ErrRange {
			return f, true
		}
		return 0, false
	}
	return f, true
}

// Add inserts a media range, clamping quality to 0..10.
func (a *Accept) Add(mime string, quality int) {
	quality = min(max(quality, 0), MaxQuality)

	a.ranges = append(a.ranges, MediaRange{Type: mime, Quality: quality})
	slices.SortStableFunc(a.ranges, func(x, y MediaRange) int {
		return cmp.Compare(y.Quality, x.Quality)
	})
}

func (a *Accept) Count() int { return len(a.ranges) }

// At returns the i-th media range in quality order.
func (a *Accept) At(i int) (MediaRange, bool) {
	if i < 0 || i >= len(a.ranges) {
		return MediaRange{}, false
	}
	return a.ranges[i], true
}

// Ranges returns a copy of the media ranges in quality order.
func (a *Accept) Ranges() []MediaRange {
	return slices.Clone(a.ranges)
}
