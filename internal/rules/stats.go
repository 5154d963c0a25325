package rules

import (
	"math"
	"sort"
	"strconv"
	"strings"
)

// quantile returns the q-quantile of sorted values using linear
// interpolation between closest ranks. Empty input yields NaN.
func quantile(sorted []float64, q float64) float64 {
	if len(sorted) == 0 {
		return math.NaN()
	}
	if q <= 0 {
		return sorted[0]
	}
	if q >= 1 {
		return sorted[len(sorted)-1]
	}
	pos := q * float64(len(sorted)-1)
	lo := int(math.Floor(pos))
	hi := int(math.Ceil(pos))
	if lo == hi {
		return sorted[lo]
	}
	w := pos - float64(lo)
	return sorted[lo]*(1-w) + sorted[hi]*w
}

func percentileOfInts(vals []int, q float64) float64 {
	f := make([]float64, len(vals))
	for i, v := range vals {
		f[i] = float64(v)
	}
	sort.Float64s(f)
	return quantile(f, q)
}

// keyOrder decides per key column whether values compare as numbers. A
// column is numeric only when every value in it parses as a finite or
// infinite number; otherwise the whole column compares lexically, which
// keeps the ordering total.
type keyOrder []bool

func newKeyOrder(keys [][]string) keyOrder {
	if len(keys) == 0 {
		return nil
	}
	o := make(keyOrder, len(keys[0]))
	for c := range o {
		o[c] = true
		for _, k := range keys {
			if _, ok := parseNumber(k[c]); !ok {
				o[c] = false
				break
			}
		}
	}
	return o
}

func parseNumber(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
	if err != nil || math.IsNaN(f) {
		return 0, false
	}
	return f, true
}

// compare orders two values of column c. Numerically equal values such as
// "1" and "1.0" fall back to their text.
func (o keyOrder) compare(c int, a, b string) int {
	if o[c] {
		fa, _ := parseNumber(a)
		fb, _ := parseNumber(b)
		switch {
		case fa < fb:
			return -1
		case fa > fb:
			return 1
		}
	}
	return strings.Compare(a, b)
}

// less compares group key tuples element by element.
func (o keyOrder) less(a, b []string) bool {
	for i := range a {
		if c := o.compare(i, a[i], b[i]); c != 0 {
			return c < 0
		}
	}
	return false
}

// hasBlank reports whether any group column is empty.
func hasBlank(key []string) bool {
	for _, v := range key {
		if v == "" {
			return true
		}
	}
	return false
}
