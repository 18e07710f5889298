package events

import "github.com/dgnsrekt/neuroinfo-watcher/internal/api"

// GoalUpdate reports a single subathon goal that is new or changed.
type GoalUpdate struct {
	Subathon   api.Subathon     `json:"subathon"`
	Goal       api.SubathonGoal `json:"goal"`
	GoalNumber int              `json:"goalNumber"`
}

// Event is delivered to listeners. Exactly one payload is set, chosen by Kind:
// Stream for the stream kinds, Schedule for ScheduleUpdate, Subathon for
// SubathonUpdate and Goal for SubathonGoalUpdate.
type Event struct {
	Kind     Kind          `json:"kind"`
	Stream   *api.Stream   `json:"stream,omitempty"`
	Schedule *api.Schedule `json:"schedule,omitempty"`
	Subathon *api.Subathon `json:"subathon,omitempty"`
	Goal     *GoalUpdate   `json:"goal,omitempty"`
}

// Clone returns a deep copy of ev, so each listener owns its payload.
func (ev Event) Clone() Event {
	out := Event{Kind: ev.Kind}
	if ev.Stream != nil {
		s := ev.Stream.Clone()
		out.Stream = &s
	}
	if ev.Schedule != nil {
		s := ev.Schedule.Clone()
		out.Schedule = &s
	}
	if ev.Subathon != nil {
		s := ev.Subathon.Clone()
		out.Subathon = &s
	}
	if ev.Goal != nil {
		g := *ev.Goal
		g.Subathon = ev.Goal.Subathon.Clone()
		out.Goal = &g
	}
	return out
}

type (
	Handler      func(Event)
	ErrorHandler func(error)
)
