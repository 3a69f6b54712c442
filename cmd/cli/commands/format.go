package commands

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jakechorley/volunteer-hub/pkg/core/engagement"
	"github.com/jakechorley/volunteer-hub/pkg/core/model"
)

// ANSI color codes
const (
	colorReset  = "\033[0m"
	colorGreen  = "\033[32m"
	colorRed    = "\033[31m"
	colorYellow = "\033[33m"
	colorDim    = "\033[2m"
	colorBold   = "\033[1m"
)

const eventTimeLayout = "Mon 02 Jan 15:04"

// formatEventLine renders one event row: id, date, title, location and category
func formatEventLine(e engagement.ListedEvent) string {
	where := e.Event.Location.Name
	if e.Event.Location.Type == model.LocationVirtual {
		where = "online"
	}
	mark := " "
	if e.Registered() {
		mark = "✓"
	}
	return fmt.Sprintf("%s %4d  %s  %-32s %-16s %s",
		mark,
		e.Event.ID,
		e.Event.Start.Format(eventTimeLayout),
		truncate(e.Event.Title, 32),
		truncate(where, 16),
		e.Event.Category)
}

// statusColor picks the color for a task status
func statusColor(status model.TaskStatus) string {
	switch status {
	case model.TaskComplete:
		return colorGreen
	case model.TaskInProgress:
		return colorYellow
	case model.TaskUnassigned:
		return colorDim
	default:
		return colorReset
	}
}

// ratingStars renders a 1-5 rating, or a dash when unrated
func ratingStars(rating int) string {
	if rating <= 0 {
		return "-"
	}
	if rating > engagement.MaxRating {
		rating = engagement.MaxRating
	}
	return strings.Repeat("★", rating) + strings.Repeat("☆", engagement.MaxRating-rating)
}

func skillNames(skills []model.Skill) string {
	if len(skills) == 0 {
		return "none"
	}
	names := make([]string, 0, len(skills))
	for _, s := range skills {
		names = append(names, s.Name)
	}
	return strings.Join(names, ", ")
}

func truncate(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	if n <= 1 {
		return string(runes[:n])
	}
	return string(runes[:n-1]) + "…"
}

// parseIDs parses positional ids
func parseIDs(args []string) ([]int64, error) {
	ids := make([]int64, 0, len(args))
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil || id <= 0 {
			return nil, fmt.Errorf("invalid id %q: must be a positive integer", arg)
		}
		ids = append(ids, id)
	}
	return ids, nil
}

// relativeTime renders how long ago t was, for chat timestamps
func relativeTime(now, t time.Time) string {
	d := now.Sub(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d.Minutes()))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d.Hours()))
	default:
		return t.Format("02 Jan")
	}
}
