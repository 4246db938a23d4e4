package tier

import "math"

// Tier is a coarse classification of a grinder's progression counter.
type Tier int

const (
	Bronze Tier = iota
	Silver
	Gold
	Diamond
	Legend
)

// Tier thresholds. Boundaries are inclusive-lower.
const (
	ThresholdSilver  = 10
	ThresholdGold    = 50
	ThresholdDiamond = 100
	ThresholdLegend  = 500
)

const MaxLevel = "Max Level"

var names = [...]string{"BRONZE", "SILVER", "GOLD", "DIAMOND", "LEGEND"}

func (t Tier) String() string {
	if t < Bronze || t > Legend {
		return "UNKNOWN"
	}
	return names[t]
}

// Of maps a progression counter to its tier. It is recomputed on every read.
func Of(counter uint64) Tier {
	switch {
	case counter >= ThresholdLegend:
		return Legend
	case counter >= ThresholdDiamond:
		return Diamond
	case counter >= ThresholdGold:
		return Gold
	case counter >= ThresholdSilver:
		return Silver
	default:
		return Bronze
	}
}

// Status describes where a counter sits relative to the next tier.
type Status struct {
	Tier          Tier    `json:"-"`
	TierName      string  `json:"tier"`
	NextTier      string  `json:"next_tier"`      // next tier name, or "Max Level"
	Counter       uint64  `json:"counter"`        // current progression counter
	TargetCounter uint64  `json:"target_counter"` // counter needed for the next tier
	Progress      float64 `json:"progress"`       // percentage to next tier (0-100)
}

// StatusOf calculates the tier status for a progression counter.
func StatusOf(counter uint64) Status {
	status := Status{Tier: Of(counter), Counter: counter}
	status.TierName = status.Tier.String()

	var target uint64
	switch status.Tier {
	case Legend:
		status.NextTier = MaxLevel
		status.TargetCounter = ThresholdLegend
		status.Progress = 100
		return status
	case Diamond:
		target = ThresholdLegend
	case Gold:
		target = ThresholdDiamond
	case Silver:
		target = ThresholdGold
	default:
		target = ThresholdSilver
	}

	status.NextTier = (status.Tier + 1).String()
	status.TargetCounter = target
	status.Progress = (float64(counter) / float64(target)) * 100

	// Round progress to 2 decimal places
	status.Progress = math.Round(status.Progress*100) / 100

	return status
}
