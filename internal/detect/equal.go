package detect

import (
	"time"

	"github.com/dgnsrekt/neuroinfo-watcher/internal/api"
)

// EqualStream reports whether two stream snapshots carry the same value.
func EqualStream(a, b api.Stream) bool {
	if a.IsLive != b.IsLive ||
		a.ID != b.ID ||
		a.Title != b.Title ||
		a.Language != b.Language ||
		a.IsMature != b.IsMature ||
		a.ViewerCount != b.ViewerCount ||
		a.ThumbnailURL != b.ThumbnailURL {
		return false
	}
	if !equalGame(a.Game, b.Game) {
		return false
	}
	if !equalTime(a.StartedAt, b.StartedAt) {
		return false
	}
	return equalStrings(a.Tags, b.Tags)
}

// EqualSchedule compares schedules including entry order.
func EqualSchedule(a, b api.Schedule) bool {
	if a.Year != b.Year || a.Week != b.Week || a.IsFinal != b.IsFinal {
		return false
	}
	if len(a.Entries) != len(b.Entries) {
		return false
	}
	for i := range a.Entries {
		if a.Entries[i] != b.Entries[i] {
			return false
		}
	}
	return true
}

// EqualSubathon compares subathons; goals are compared by number, not order.
func EqualSubathon(a, b api.Subathon) bool {
	if a.Year != b.Year ||
		a.Name != b.Name ||
		a.Subcount != b.Subcount ||
		a.IsActive != b.IsActive {
		return false
	}
	if !equalInt64(a.StartTimestamp, b.StartTimestamp) || !equalInt64(a.EndTimestamp, b.EndTimestamp) {
		return false
	}
	if len(a.Goals) != len(b.Goals) {
		return false
	}
	for n, ga := range a.Goals {
		gb, ok := b.Goals[n]
		if !ok || !EqualGoal(ga, gb) {
			return false
		}
	}
	return true
}

func EqualGoal(a, b api.SubathonGoal) bool {
	return a == b
}

func equalGame(a, b *api.Game) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

func equalTime(a, b *time.Time) bool {
	if a == nil || b == nil {
		return a == b
	}
	return a.Equal(*b)
}

func equalInt64(a, b *int64) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// equalStrings treats nil and empty as equal; the API omits empty tag lists.
func equalStrings(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
