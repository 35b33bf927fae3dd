package pagescmd

import "errors"

// ErrSchedulingDisabled is returned when scheduled publishing is switched off.
var ErrSchedulingDisabled = errors.New("pagescmd: scheduled publishing is disabled")

// FeatureGates exposes the runtime toggles of page command handlers.
type FeatureGates struct {
	// SchedulingEnabled reports whether scheduled publishing runs.
	SchedulingEnabled func() bool
}

func (g FeatureGates) schedulingEnabled() bool {
	if g.SchedulingEnabled == nil {
		return true
	}
	return g.SchedulingEnabled()
}
