package selector

import (
	"github.com/pkg/errors"

	"github.com/containership/fleetscaler/pkg/fleet"
)

var (
	// ErrInvalidFilter is returned when a filter specifies neither or both
	// of a name and tags
	ErrInvalidFilter = errors.New("invalid filter")
	// ErrNoMatch is returned when no active group matches a filter
	ErrNoMatch = errors.New("no matching group")
	// ErrAmbiguousMatch is returned when more than one active group matches
	// a filter
	ErrAmbiguousMatch = errors.New("ambiguous match")
)

// ValidateFilter returns ErrInvalidFilter if the filter does not specify
// exactly one selection mode
func ValidateFilter(f fleet.Filter) error {
	hasName := f.Name != ""
	hasTags := len(f.Tags) != 0

	switch {
	case hasName && hasTags:
		return errors.Wrapf(ErrInvalidFilter, "name %q and tags %s both provided", f.Name, f.String())
	case !hasName && !hasTags:
		return errors.Wrap(ErrInvalidFilter, "one of name or tags must be provided")
	}

	return nil
}

// Resolve returns the single active group in roster selected by the filter.
// It never guesses: zero candidates is ErrNoMatch and more than one is
// ErrAmbiguousMatch.
func Resolve(f fleet.Filter, roster []fleet.Group) (fleet.Group, error) {
	if err := ValidateFilter(f); err != nil {
		return fleet.Group{}, err
	}

	var candidates []fleet.Group
	for _, g := range roster {
		if !Matches(f, g) {
			continue
		}

		if !g.Active() || !g.WithinBounds() {
			continue
		}

		candidates = append(candidates, g)
	}

	switch len(candidates) {
	case 0:
		return fleet.Group{}, errors.Wrapf(ErrNoMatch, "filter %s matched 0 of %d groups", f.String(), len(roster))
	case 1:
		return candidates[0], nil
	}

	return fleet.Group{}, errors.Wrapf(ErrAmbiguousMatch, "filter %s matched %d active groups (%s)",
		f.String(), len(candidates), candidateNames(candidates))
}

// Matches returns true if the group satisfies the filter's name or tags,
// without considering whether the group is active. Tag filters are ANDed
// across entries.
func Matches(f fleet.Filter, g fleet.Group) bool {
	if f.Name != "" {
		return g.Name == f.Name
	}

	if len(f.Tags) == 0 {
		return false
	}

	for key, value := range f.Tags {
		if !g.HasTag(key, value) {
			return false
		}
	}

	return true
}

// FindByName returns the group with the given name regardless of whether it
// is active
func FindByName(roster []fleet.Group, name string) (fleet.Group, error) {
	for _, g := range roster {
		if g.Name == name {
			return g, nil
		}
	}

	return fleet.Group{}, errors.Wrapf(ErrNoMatch, "group %q not found in %d groups", name, len(roster))
}

func candidateNames(groups []fleet.Group) string {
	var names string
	for i, g := range groups {
		names += g.Name
		if i != len(groups)-1 {
			names += ", "
		}
	}

	return names
}
