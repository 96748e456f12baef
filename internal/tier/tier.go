package tier

import (
	"fmt"

	"github.com/felixgeelhaar/wavemaker/internal/domain"
)

// Tier is a worker capability level. It selects which external worker
// configuration is invoked and carries no behavioral logic of its own.
type Tier int

const (
	// Baseline is the default worker configuration.
	Baseline Tier = iota
	// Elevated requests additional reasoning capability.
	Elevated
	// Maximal requests the strongest available worker configuration.
	Maximal
)

// String returns the configuration name of the tier.
func (t Tier) String() string {
	switch t {
	case Elevated:
		return "elevated"
	case Maximal:
		return "maximal"
	default:
		return "baseline"
	}
}

// Parse converts a configuration string into a Tier.
func Parse(s string) (Tier, error) {
	switch s {
	case "baseline":
		return Baseline, nil
	case "elevated":
		return Elevated, nil
	case "maximal":
		return Maximal, nil
	default:
		return Baseline, fmt.Errorf("invalid tier %q: must be baseline, elevated, or maximal", s)
	}
}

// FromComplexity maps a task's declared complexity to a tier: baseline for
// 1-2, elevated for 3, maximal for 4 and above.
func FromComplexity(c domain.Complexity) Tier {
	switch {
	case c >= 4:
		return Maximal
	case c == 3:
		return Elevated
	default:
		return Baseline
	}
}

// Escalate returns the next-higher tier. Maximal escalates to itself; there
// is nothing above it.
func (t Tier) Escalate() Tier {
	switch t {
	case Baseline:
		return Elevated
	default:
		return Maximal
	}
}

// Select resolves the tier for a task: an explicit override wins, otherwise
// the complexity mapping applies. Override strings come from the task
// document or configuration and must already be validated.
func Select(c domain.Complexity, override string) Tier {
	if override != "" {
		if t, err := Parse(override); err == nil {
			return t
		}
	}
	return FromComplexity(c)
}
