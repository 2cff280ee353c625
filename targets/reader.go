package targets

import (
	"bufio"
	"os"
	"strings"

	"github.com/cockroachdb/errors"
)

const maxLineBytes = 1 << 20

// ReadLines returns the trimmed, non-empty lines of path in file order.
func ReadLines(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	lines := make([]string, 0)
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		lines = append(lines, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, errors.Wrap(err, "read impacted targets file")
	}
	return lines, nil
}
