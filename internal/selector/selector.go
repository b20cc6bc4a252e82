// Package selector resolves the ordered list of downstream targets for one
// delivery from the configured callback slots.
package selector

import (
	"github.com/hookbridge/hookbridge/internal/config"
	"github.com/hookbridge/hookbridge/internal/forwarder"
)

// Slot labels. Used only for logging and fallback gating; the forwarder
// never interprets them.
const (
	LabelCanary = "canary"
	LabelStable = "stable"
)

// Candidates builds the attempt order for one delivery: the canary slot
// first when configured, then the stable slot. A slot holding the unset
// sentinel is skipped. An empty result means the relay has nowhere to
// forward at all, which the caller must surface as a misconfiguration
// rather than silently drop.
func Candidates(targets config.TargetsConfig) []forwarder.Candidate {
	candidates := make([]forwarder.Candidate, 0, 2)

	if targets.CanarySet() {
		candidates = append(candidates, forwarder.Candidate{
			Label: LabelCanary,
			URL:   targets.CanaryURL,
		})
	}
	if targets.StableSet() {
		candidates = append(candidates, forwarder.Candidate{
			Label: LabelStable,
			URL:   targets.StableURL,
		})
	}

	return candidates
}
