package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDueStage(t *testing.T) {
	tolerance := 5 * time.Minute
	dropAt := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	tests := []struct {
		name      string
		now       time.Time
		wantLabel string
		wantDue   bool
	}{
		{"exactly at 30m lower bound", dropAt.Add(-30 * time.Minute), "30m", true},
		{"inside 30m band", dropAt.Add(-32 * time.Minute), "30m", true},
		{"one tolerance below 30m bound", dropAt.Add(-25 * time.Minute), "", false},
		{"just above 30m band", dropAt.Add(-35 * time.Minute), "", false},
		{"upper edge of 24h band", dropAt.Add(-1444 * time.Minute), "24h", true},
		{"beyond largest lead", dropAt.Add(-1445 * time.Minute), "", false},
		{"exactly at 24h lower bound", dropAt.Add(-24 * time.Hour), "24h", true},
		{"1h band", dropAt.Add(-63 * time.Minute), "1h", true},
		{"15m band", dropAt.Add(-19 * time.Minute), "15m", true},
		{"gap between 15m and 30m bands", dropAt.Add(-22 * time.Minute), "", false},
		{"exactly at 5m lower bound", dropAt.Add(-5 * time.Minute), "5m", true},
		{"partial minute truncates into 5m band", dropAt.Add(-9*time.Minute - 30*time.Second), "5m", true},
		{"under smallest lead", dropAt.Add(-4 * time.Minute), "", false},
		{"at the drop instant", dropAt, "", false},
		{"already passed", dropAt.Add(2 * time.Minute), "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			stage, due := dueStage(tc.now, dropAt, tolerance)
			assert.Equal(t, tc.wantDue, due)
			assert.Equal(t, tc.wantLabel, stage.Label)
		})
	}
}

func TestMinutesUntilTruncates(t *testing.T) {
	now := time.Date(2026, 3, 14, 10, 0, 0, 0, time.UTC)

	assert.Equal(t, 29, minutesUntil(now, now.Add(29*time.Minute+59*time.Second)))
	assert.Equal(t, 30, minutesUntil(now, now.Add(30*time.Minute)))
	assert.Equal(t, 0, minutesUntil(now, now.Add(45*time.Second)))
}
