package fleet

import (
	"fmt"
	"sort"
	"strings"
)

// Tag is a single key/value pair attached to a Group
type Tag struct {
	Key   string `json:"key" yaml:"key"`
	Value string `json:"value" yaml:"value"`
}

// Group is a read-only snapshot of a provider autoscaling group. Groups are
// never mutated locally; all changes happen remotely and are observed on the
// next fetch.
type Group struct {
	Name    string `json:"name"`
	Tags    []Tag  `json:"tags,omitempty"`
	Desired int    `json:"desired"`
	Min     int    `json:"min"`
	Max     int    `json:"max"`
}

// Active returns true if the group is able to run instances at all
func (g Group) Active() bool {
	return g.Max > 0 && g.Desired > 0
}

// WithinBounds returns true if 0 <= Min <= Desired <= Max
func (g Group) WithinBounds() bool {
	return 0 <= g.Min && g.Min <= g.Desired && g.Desired <= g.Max
}

// HasTag returns true if any of the group's tags equals the given pair
func (g Group) HasTag(key, value string) bool {
	for _, t := range g.Tags {
		if t.Key == key && t.Value == value {
			return true
		}
	}

	return false
}

// Filter selects a single Group by exact name or by a set of required tags.
// Exactly one of Name or Tags must be provided.
type Filter struct {
	Name string            `json:"name,omitempty" yaml:"name,omitempty"`
	Tags map[string]string `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// ByName returns a Filter matching the group with the given name
func ByName(name string) Filter {
	return Filter{Name: name}
}

// ByTags returns a Filter matching groups carrying all of the given tags
func ByTags(tags map[string]string) Filter {
	return Filter{Tags: tags}
}

// String returns a stable representation of the filter for logs and lock keys
func (f Filter) String() string {
	if f.Name != "" {
		return f.Name
	}

	keys := make([]string, 0, len(f.Tags))
	for k := range f.Tags {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, fmt.Sprintf("%s=%s", k, f.Tags[k]))
	}

	return "{" + strings.Join(pairs, ",") + "}"
}

// Decision is a request to converge a fleet to a desired capacity
type Decision struct {
	Filter Filter

	// Desired is the proposed desired capacity. Any rounding must happen
	// before it gets here.
	Desired int

	// Source is an opaque description of where the decision came from,
	// carried through to reported outcomes for auditing.
	Source string

	// Provider is the name of the gateway to use. Empty selects the
	// engine's default gateway.
	Provider string
}
