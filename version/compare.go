package version

import (
	"cmp"
	"fmt"
	"strconv"
	"strings"
)

// Compare orders two major.minor.patch versions, with or without a "v" prefix.
// It returns 1 if a is newer, -1 if b is newer and 0 if they are equal.
func Compare(a, b string) (int, error) {
	pa, err := parts(a)
	if err != nil {
		return 0, err
	}
	pb, err := parts(b)
	if err != nil {
		return 0, err
	}

	for i := range pa {
		if c := cmp.Compare(pa[i], pb[i]); c != 0 {
			return c, nil
		}
	}
	return 0, nil
}

func parts(v string) ([3]int, error) {
	var out [3]int
	fields := strings.SplitN(strings.TrimPrefix(v, "v"), ".", 3)
	if len(fields) != 3 {
		return out, fmt.Errorf("invalid version %q", v)
	}
	for i, f := range fields {
		// pre-release and build suffixes are ignored
		f, _, _ = strings.Cut(f, "-")
		n, err := strconv.Atoi(f)
		if err != nil {
			return out, fmt.Errorf("invalid version %q", v)
		}
		out[i] = n
	}
	return out, nil
}
