package scrape

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"
)

var (
	nonSlug  = regexp.MustCompile(`[^\w\s-]`)
	dashRuns = regexp.MustCompile(`[-\s]+`)
)

// Slugify flattens a release name into a stable identifier fragment.
func Slugify(text string) string {
	text = strings.ToLower(strings.TrimSpace(text))
	text = nonSlug.ReplaceAllString(text, "")
	text = dashRuns.ReplaceAllString(text, "-")
	return text
}

// Date formats observed on the release calendar.
var dateFormats = []string{
	"January 2, 2006 3:04 PM",
	"January 2, 2006",
	"Jan 2, 2006",
	"2006-01-02",
	"01/02/2006",
}

// ParseDropDate parses scraped date text in the given timezone. Dates with no
// time of day default to 10:00, the usual drop hour.
func ParseDropDate(text string, loc *time.Location) (time.Time, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return time.Time{}, errors.New("no date text")
	}

	for _, format := range dateFormats {
		parsed, err := time.ParseInLocation(format, text, loc)
		if err != nil {
			continue
		}
		if parsed.Hour() == 0 && parsed.Minute() == 0 {
			parsed = parsed.Add(10 * time.Hour)
		}
		return parsed, nil
	}
	return time.Time{}, fmt.Errorf("unparseable date: '%s'", text)
}

// InferBrand guesses the brand from the release name.
func InferBrand(name string) string {
	lowered := strings.ToLower(name)
	switch {
	case strings.Contains(lowered, "jordan"):
		return "Jordan"
	case strings.Contains(lowered, "nike"):
		return "Nike"
	case strings.Contains(lowered, "adidas"), strings.Contains(lowered, "yeezy"):
		return "Adidas"
	case strings.Contains(lowered, "new balance"):
		return "New Balance"
	case strings.Contains(lowered, "asics"):
		return "Asics"
	default:
		return "Unknown"
	}
}
