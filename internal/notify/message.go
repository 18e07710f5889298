package notify

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/dgnsrekt/neuroinfo-watcher/internal/api"
	"github.com/dgnsrekt/neuroinfo-watcher/internal/events"
)

// Message is one push notification.
type Message struct {
	Title    string
	Body     string
	Tags     []string
	Priority string // empty uses the configured priority
}

// Format renders ev as a notification.
func Format(ev events.Event) Message {
	switch ev.Kind {
	case events.StreamOnline:
		return Message{
			Title:    "Stream is live",
			Body:     formatStream(ev.Stream),
			Tags:     []string{"red_circle"},
			Priority: "high",
		}

	case events.StreamOffline:
		return Message{
			Title: "Stream ended",
			Body:  "The stream is now offline.",
			Tags:  []string{"black_circle"},
		}

	case events.StreamUpdate:
		return Message{
			Title: "Stream updated",
			Body:  formatStream(ev.Stream),
			Tags:  []string{"pencil2"},
		}

	case events.ScheduleUpdate:
		return formatSchedule(ev.Schedule)

	case events.SubathonUpdate:
		return formatSubathon(ev.Subathon)

	case events.SubathonGoalUpdate:
		return formatGoal(ev.Goal)
	}

	return Message{Title: "Unknown event", Body: ev.Kind.String()}
}

func formatStream(s *api.Stream) string {
	if s == nil {
		return ""
	}

	var sb strings.Builder
	sb.WriteString(s.Title)
	if s.Game != nil && s.Game.Name != "" {
		sb.WriteString(fmt.Sprintf("\nGame: %s", s.Game.Name))
	}
	if s.IsLive {
		sb.WriteString(fmt.Sprintf("\nViewers: %d", s.ViewerCount))
	}
	return sb.String()
}

func formatSchedule(s *api.Schedule) Message {
	if s == nil {
		return Message{Title: "Schedule updated"}
	}

	var sb strings.Builder
	entries := append([]api.ScheduleEntry(nil), s.Entries...)
	sort.SliceStable(entries, func(i, j int) bool { return entries[i].Time < entries[j].Time })

	for _, e := range entries {
		when := time.UnixMilli(e.Time).UTC().Format("Mon 15:04 MST")
		sb.WriteString(fmt.Sprintf("- %s: %s", when, e.Message))
		if e.Type != api.ScheduleNormal && e.Type != "" {
			sb.WriteString(fmt.Sprintf(" (%s)", e.Type))
		}
		sb.WriteString("\n")
	}
	if s.IsFinal {
		sb.WriteString("Schedule is final.")
	}

	return Message{
		Title: fmt.Sprintf("Schedule updated: week %d/%d", s.Week, s.Year),
		Body:  strings.TrimSuffix(sb.String(), "\n"),
		Tags:  []string{"calendar"},
	}
}

func formatSubathon(s *api.Subathon) Message {
	if s == nil {
		return Message{Title: "Subathon updated"}
	}

	state := "ended"
	if s.IsActive {
		state = "active"
	}

	return Message{
		Title: fmt.Sprintf("Subathon %d: %s", s.Year, s.Name),
		Body:  fmt.Sprintf("Status: %s\nSubs: %d", state, s.Subcount),
		Tags:  []string{"hourglass"},
	}
}

func formatGoal(g *events.GoalUpdate) Message {
	if g == nil {
		return Message{Title: "Subathon goal updated"}
	}

	var status string
	switch {
	case g.Goal.Completed:
		status = "completed"
	case g.Goal.Reached:
		status = "reached"
	default:
		status = "pending"
	}

	return Message{
		Title: fmt.Sprintf("Subathon %d goal %d %s", g.Subathon.Year, g.GoalNumber, status),
		Body:  fmt.Sprintf("%s\nSubs: %d", g.Goal.Name, g.Subathon.Subcount),
		Tags:  []string{"trophy"},
	}
}
