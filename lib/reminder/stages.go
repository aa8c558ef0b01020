package reminder

import (
	"time"

	"github.com/fiffu/dropwatch/lib/models"
)

// minutesUntil truncates toward zero, matching the whole-minute arithmetic of
// the stage bands.
func minutesUntil(now, dropAt time.Time) int {
	return int(dropAt.Sub(now).Minutes())
}

// dueStage finds the stage whose band [lead, lead+tolerance) covers the time
// left until the drop. The bands stay disjoint while the tolerance is under
// the 10-minute gap between the 5m and 15m stages, so at most one stage is
// due per release at any instant. Drops already past, or further out than the
// longest lead plus tolerance, have no due stage.
func dueStage(now, dropAt time.Time, tolerance time.Duration) (models.Stage, bool) {
	if !dropAt.After(now) {
		return models.Stage{}, false
	}

	minutesLeft := minutesUntil(now, dropAt)
	toleranceMins := int(tolerance.Minutes())

	for _, stage := range models.Stages {
		if stage.LeadMinutes <= minutesLeft && minutesLeft < stage.LeadMinutes+toleranceMins {
			return stage, true
		}
	}
	return models.Stage{}, false
}
