package api

import "time"

// Game is the category a stream is running under.
type Game struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Stream is the current Twitch stream status.
// Only IsLive is guaranteed; the rest is populated while live.
type Stream struct {
	IsLive       bool       `json:"isLive"`
	ID           string     `json:"id,omitempty"`
	Title        string     `json:"title,omitempty"`
	Game         *Game      `json:"game,omitempty"`
	Language     string     `json:"language,omitempty"`
	Tags         []string   `json:"tags,omitempty"`
	IsMature     bool       `json:"isMature,omitempty"`
	ViewerCount  int        `json:"viewerCount,omitempty"`
	StartedAt    *time.Time `json:"startedAt,omitempty"`
	ThumbnailURL string     `json:"thumbnailUrl,omitempty"`
}

// Clone returns a deep copy of s.
func (s Stream) Clone() Stream {
	out := s
	if s.Game != nil {
		g := *s.Game
		out.Game = &g
	}
	if s.Tags != nil {
		out.Tags = append([]string(nil), s.Tags...)
	}
	if s.StartedAt != nil {
		t := *s.StartedAt
		out.StartedAt = &t
	}
	return out
}

// Vod is an archived stream.
type Vod struct {
	ID           string `json:"id"`
	StreamID     string `json:"streamId"`
	Title        string `json:"title"`
	URL          string `json:"url"`
	Viewable     string `json:"viewable"`
	Type         string `json:"type"`
	Language     string `json:"language"`
	Duration     string `json:"duration"`
	ViewCount    int    `json:"viewCount"`
	CreatedAt    int64  `json:"createdAt"`
	PublishedAt  int64  `json:"publishedAt"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// ScheduleType classifies a schedule entry.
type ScheduleType string

const (
	ScheduleNormal  ScheduleType = "normal"
	ScheduleOffline ScheduleType = "offline"
	ScheduleTBD     ScheduleType = "TBD"
	ScheduleUnknown ScheduleType = "unknown"
)

// ScheduleEntry is one day of a weekly schedule.
type ScheduleEntry struct {
	Day     int          `json:"day"`  // 0-6, Sunday first
	Time    int64        `json:"time"` // unix milliseconds
	Message string       `json:"message"`
	Type    ScheduleType `json:"type"`
}

// Schedule is a weekly stream schedule.
type Schedule struct {
	Year    int             `json:"year"`
	Week    int             `json:"week"`
	Entries []ScheduleEntry `json:"schedule"`
	IsFinal bool            `json:"isFinal"`
}

// Clone returns a deep copy of s.
func (s Schedule) Clone() Schedule {
	out := s
	if s.Entries != nil {
		out.Entries = append([]ScheduleEntry(nil), s.Entries...)
	}
	return out
}

// SubathonGoal is a numbered goal of a subathon. Reached is computed by the API.
type SubathonGoal struct {
	Name      string `json:"name"`
	Completed bool   `json:"completed"`
	Reached   bool   `json:"reached"`
}

// Subathon is a year-scoped fundraising campaign.
type Subathon struct {
	Year           int                  `json:"year"`
	Name           string               `json:"name"`
	Subcount       int                  `json:"subcount"`
	Goals          map[int]SubathonGoal `json:"goals"`
	IsActive       bool                 `json:"isActive"`
	StartTimestamp *int64               `json:"startTimestamp,omitempty"`
	EndTimestamp   *int64               `json:"endTimestamp,omitempty"`
}

// Clone returns a deep copy of s.
func (s Subathon) Clone() Subathon {
	out := s
	if s.Goals != nil {
		out.Goals = make(map[int]SubathonGoal, len(s.Goals))
		for n, g := range s.Goals {
			out.Goals[n] = g
		}
	}
	if s.StartTimestamp != nil {
		v := *s.StartTimestamp
		out.StartTimestamp = &v
	}
	if s.EndTimestamp != nil {
		v := *s.EndTimestamp
		out.EndTimestamp = &v
	}
	return out
}

// CloneSubathons deep copies a subathon list.
func CloneSubathons(list []Subathon) []Subathon {
	if list == nil {
		return nil
	}
	out := make([]Subathon, len(list))
	for i, s := range list {
		out[i] = s.Clone()
	}
	return out
}
