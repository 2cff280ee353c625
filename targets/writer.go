// Package targets reads and writes the impacted-targets file handed from
// detection to upload.
package targets

import (
	"encoding/json"
	"slices"
	"strings"

	"github.com/cockroachdb/errors"
)

// DefaultOutput is where detect writes unless told otherwise.
const DefaultOutput = "impacted_targets_json_tmp"

type Format string

const (
	FormatJSON  Format = "json"
	FormatLines Format = "lines"
)

var (
	ErrUnknownFormat = errors.New("unknown target file format")
	ErrWrite         = errors.New("write impacted targets")
)

func ParseFormat(s string) (Format, error) {
	switch Format(strings.ToLower(strings.TrimSpace(s))) {
	case "", FormatJSON:
		return FormatJSON, nil
	case FormatLines:
		return FormatLines, nil
	default:
		return "", errors.Wrapf(ErrUnknownFormat, "%q (want %s or %s)", s, FormatJSON, FormatLines)
	}
}

// Encode renders folders sorted ascending. An empty list encodes as `[]`
// in JSON and as an empty file in lines format.
func Encode(folders []string, format Format) ([]byte, error) {
	sorted := slices.Clone(folders)
	if sorted == nil {
		sorted = []string{}
	}
	slices.Sort(sorted)

	switch format {
	case FormatJSON, "":
		data, err := json.Marshal(sorted)
		if err != nil {
			return nil, errors.Wrap(err, "encode impacted targets")
		}
		return data, nil
	case FormatLines:
		if len(sorted) == 0 {
			return []byte{}, nil
		}
		return []byte(strings.Join(sorted, "\n") + "\n"), nil
	default:
		return nil, errors.Wrapf(ErrUnknownFormat, "%q", format)
	}
}

// Write stores folders at path, replacing any previous file atomically.
func Write(path string, folders []string, format Format) error {
	data, err := Encode(folders, format)
	if err != nil {
		return err
	}
	if err := writeFileAtomic(path, data, 0o644); err != nil {
		return errors.Mark(errors.Wrapf(err, "writing to %s", path), ErrWrite)
	}
	return nil
}
