package decision

import (
	"github.com/pkg/errors"

	"github.com/containership/fleetscaler/pkg/fleet"
	"github.com/containership/fleetscaler/pkg/selector"
)

// Request is a decision as a caller writes it: a group filter plus either
// an absolute desired capacity or an adjustment relative to the group's
// current desired capacity
type Request struct {
	Name     string            `yaml:"name,omitempty"`
	Tags     map[string]string `yaml:"tags,omitempty"`
	Desired  *int              `yaml:"desired,omitempty"`
	Adjust   string            `yaml:"adjust,omitempty"`
	Source   string            `yaml:"source,omitempty"`
	Provider string            `yaml:"provider,omitempty"`
}

// Filter returns the group filter of the request
func (r Request) Filter() fleet.Filter {
	return fleet.Filter{Name: r.Name, Tags: r.Tags}
}

// Relative returns true if the request needs the group's current capacity
func (r Request) Relative() bool {
	return r.Adjust != ""
}

// Validate checks the request is well formed
func (r Request) Validate() error {
	if err := selector.ValidateFilter(r.Filter()); err != nil {
		return err
	}

	switch {
	case r.Desired != nil && r.Adjust != "":
		return errors.New("only one of desired or adjust may be provided")
	case r.Desired == nil && r.Adjust == "":
		return errors.New("one of desired or adjust must be provided")
	case r.Adjust != "":
		if _, err := ParseAdjustment(r.Adjust); err != nil {
			return err
		}
	}

	return nil
}

// Decide converts the request into a fleet.Decision. Relative requests are
// resolved against roster to find the current desired capacity; absolute
// requests ignore it.
func (r Request) Decide(roster []fleet.Group) (fleet.Decision, error) {
	if err := r.Validate(); err != nil {
		return fleet.Decision{}, err
	}

	d := fleet.Decision{
		Filter:   r.Filter(),
		Source:   r.Source,
		Provider: r.Provider,
	}

	if !r.Relative() {
		d.Desired = *r.Desired
		return d, nil
	}

	// Validate already parsed it
	adjustment, _ := ParseAdjustment(r.Adjust)

	group, err := selector.Resolve(d.Filter, roster)
	if err != nil {
		return fleet.Decision{}, errors.Wrapf(err, "resolving current capacity of %s", d.Filter)
	}

	d.Desired = adjustment.Target(group.Desired)
	if d.Source == "" {
		d.Source = "adjust " + adjustment.String()
	}

	return d, nil
}
