// Package policy maps a pull request's base branch to the bump rule that
// applies to it. Policies are matched in order; the first one listing the
// branch wins. When nothing matches, the stable rule (plain bump, nothing
// pinned) applies.
package policy

import (
	"github.com/oakmont-embedded/gh-fwbump/internal/fwver"
)

// Policy binds a set of branches to a bump rule.
type Policy struct {
	Name     string   `yaml:"name"`
	Branches []string `yaml:"branches"`
	PinMajor *int     `yaml:"pin_major,omitempty"`
	PinMinor *int     `yaml:"pin_minor,omitempty"`
	Skip     bool     `yaml:"skip,omitempty"`
}

// Decision is the outcome of resolving a base branch against the policies.
type Decision struct {
	// Policy is the name of the matched policy, or "stable" for the fallback.
	Policy string
	// Rule is the bump rule to apply. Meaningless when Skip is set.
	Rule fwver.Rule
	// Skip indicates the branch is explicitly excluded from bumping.
	Skip bool
}

// Resolve picks the decision for base from policies.
func Resolve(policies []Policy, base string) Decision {
	for _, p := range policies {
		for _, b := range p.Branches {
			if b != base {
				continue
			}
			return Decision{
				Policy: p.Name,
				Rule:   fwver.Rule{PinMajor: p.PinMajor, PinMinor: p.PinMinor},
				Skip:   p.Skip,
			}
		}
	}
	// Unknown bases get the stable treatment.
	return Decision{Policy: "stable"}
}
