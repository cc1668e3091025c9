package haconfig

import (
	"math"
	"time"
)

const (
	maxPatinaAge               = 365
	maxPatinaUsageContribution = 80
	usageScale                 = 5000
	maxPatinaLevel             = 100
)

// Score computes the pure age+usage patina level in [0,100] from
// installDate and the accumulated interaction count (spec.md §4.7).
func Score(installDate time.Time, interactionCount int, now time.Time) int {
	days := int(now.Sub(installDate).Hours() / 24)
	age := days
	if age > maxPatinaAge {
		age = maxPatinaAge
	}
	if age < 0 {
		age = 0
	}

	ageComponent := int(math.Round(float64(age) * 20 / 365))

	usageComponent := int(math.Round(float64(interactionCount) * 80 / usageScale))
	if usageComponent > maxPatinaUsageContribution {
		usageComponent = maxPatinaUsageContribution
	}

	level := ageComponent + usageComponent
	if level > maxPatinaLevel {
		level = maxPatinaLevel
	}
	return level
}

// StageFor classifies a patina level into its UI bucket.
func StageFor(level int) Stage {
	switch {
	case level < 26:
		return StageFresh
	case level < 71:
		return StageUsed
	default:
		return StageLoved
	}
}

// RecordEvent adds the kind-dependent weight to the patina's interaction
// counter and, if key is non-empty, to its per-key tally.
func (p *Patina) RecordEvent(kind string, key string) {
	weight, ok := patinaWeights[kind]
	if !ok {
		weight = patinaWeights["default"]
	}

	p.InteractionCount += weight
	if key == "" {
		return
	}
	if p.InteractionsByKey == nil {
		p.InteractionsByKey = make(map[string]int)
	}
	p.InteractionsByKey[key] += weight
}
