package models

type Urgency string

const (
	UrgencyEarly    Urgency = "early"
	UrgencyUpcoming Urgency = "upcoming"
	UrgencyUrgent   Urgency = "urgent"
)

// Embed accent colors per urgency tier.
const (
	colorGreen  = 0x00FF00
	colorOrange = 0xFFA500
	colorRed    = 0xFF0000
)

// Stage is one lead-time checkpoint before a drop. Color and urgency are
// presentation only.
type Stage struct {
	Label       string
	LeadMinutes int
	Color       int
	Urgency     Urgency
}

// Stages is the fixed reminder ladder, longest lead first.
var Stages = []Stage{
	{Label: "24h", LeadMinutes: 24 * 60, Color: colorGreen, Urgency: UrgencyEarly},
	{Label: "1h", LeadMinutes: 60, Color: colorGreen, Urgency: UrgencyEarly},
	{Label: "30m", LeadMinutes: 30, Color: colorGreen, Urgency: UrgencyEarly},
	{Label: "15m", LeadMinutes: 15, Color: colorOrange, Urgency: UrgencyUpcoming},
	{Label: "5m", LeadMinutes: 5, Color: colorRed, Urgency: UrgencyUrgent},
}
