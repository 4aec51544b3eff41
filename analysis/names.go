package analysis

import (
	"math"
	"strconv"
	"strings"
)

// parseName splits a tensor name of the form <id>@<d1>_<d2>_..._<dn> into its
// dimensions. Every dimension must be a positive integer.
func parseName(name string) []int {
	parts := strings.Split(name, "@")
	if len(parts) != 2 {
		fatalf(ErrMalformedName, "%q: want <id>@<d1>_..._<dn>", name)
	}

	fields := strings.Split(parts[1], "_")
	dims := make([]int, len(fields))
	for i, f := range fields {
		d, err := strconv.Atoi(f)
		if err != nil || d <= 0 {
			fatalf(ErrMalformedName, "%q: dimension %d is %q", name, i, f)
		}
		dims[i] = d
	}
	return dims
}

// numel multiplies dims. It panics if the product does not fit an int.
func numel(name string, dims []int) int {
	n := 1
	for _, d := range dims {
		if n > math.MaxInt/d {
			fatalf(ErrMalformedName, "%q: too many elements", name)
		}
		n *= d
	}
	return n
}
