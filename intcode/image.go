package intcode

import (
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ParseImage parses a program in its textual form: decimal integers
// separated by commas. Whitespace around each value is ignored, as is a
// single trailing comma.
func ParseImage(s string) ([]int64, error) {
	s = strings.TrimSpace(s)
	s = strings.TrimSuffix(s, ",")
	if s == "" {
		return nil, fmt.Errorf("empty program")
	}
	fields := strings.Split(s, ",")
	image := make([]int64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseInt(strings.TrimSpace(f), 10, 64)
		if err != nil {
			return nil, fmt.Errorf("value %d: %v", i, err)
		}
		image[i] = v
	}
	return image, nil
}

// ReadImage reads a program from r and parses it with ParseImage.
func ReadImage(r io.Reader) ([]int64, error) {
	b, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParseImage(string(b))
}
