package config_test

import (
	"os"
	"strconv"
)

// parseOctal parses a textual octal file mode such as "0644" the way a
// config loader would, returning an os.FileMode.
func parseOctal(s string) (os.FileMode, error) {
	v, err := strconv.ParseUint(s, 8, 32)
	if err != nil {
		return 0, err
	}
	return os.FileMode(v), nil
}
