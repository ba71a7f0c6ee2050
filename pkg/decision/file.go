package decision

import (
	"bytes"
	"io"
	"os"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// File is the on-disk format of a batch of decisions
type File struct {
	Decisions []Request `yaml:"decisions"`
}

// LoadFile reads and validates a batch of requests from a YAML file
func LoadFile(path string) ([]Request, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading decision file %s", path)
	}

	requests, err := Parse(data)
	if err != nil {
		return nil, errors.Wrapf(err, "loading decision file %s", path)
	}

	return requests, nil
}

// Parse decodes and validates a batch of requests. Unknown fields are
// rejected.
func Parse(data []byte) ([]Request, error) {
	var f File

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&f); err != nil && err != io.EOF {
		return nil, errors.Wrap(err, "decoding decisions")
	}

	if len(f.Decisions) == 0 {
		return nil, errors.New("no decisions provided")
	}

	for i, r := range f.Decisions {
		if err := r.Validate(); err != nil {
			return nil, errors.Wrapf(err, "decision %d", i)
		}
	}

	return f.Decisions, nil
}
