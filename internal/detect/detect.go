package detect

import (
	"sort"

	"github.com/dgnsrekt/neuroinfo-watcher/internal/api"
)

// StreamOnline fires when the stream goes live. An absent snapshot counts as offline.
func StreamOnline(cached *api.Stream, fresh api.Stream) bool {
	wasLive := cached != nil && cached.IsLive
	return !wasLive && fresh.IsLive
}

// StreamOffline fires when a stream that was live is no longer live.
func StreamOffline(cached *api.Stream, fresh api.Stream) bool {
	return cached != nil && cached.IsLive && !fresh.IsLive
}

// StreamUpdate fires on any change that is not an online/offline transition.
// Nothing fires on the first observation.
func StreamUpdate(cached *api.Stream, fresh api.Stream) bool {
	if cached == nil || cached.IsLive != fresh.IsLive {
		return false
	}
	return !EqualStream(*cached, fresh)
}

// ScheduleUpdate fires on the first observation and on every change after it.
func ScheduleUpdate(cached *api.Schedule, fresh api.Schedule) bool {
	return cached == nil || !EqualSchedule(*cached, fresh)
}

// SubathonUpdates returns the subathons to report. New or changed years come
// first, in fetched order. Years that disappeared follow in cached order as
// their last known value with IsActive forced to false.
func SubathonUpdates(cached, fresh []api.Subathon) []api.Subathon {
	prev := indexByYear(cached)
	seen := make(map[int]bool, len(fresh))

	var out []api.Subathon
	for _, s := range fresh {
		if seen[s.Year] {
			continue
		}
		seen[s.Year] = true

		old, ok := prev[s.Year]
		if !ok || !EqualSubathon(old, s) {
			out = append(out, s.Clone())
		}
	}

	reported := make(map[int]bool)
	for _, s := range cached {
		if seen[s.Year] || reported[s.Year] {
			continue
		}
		reported[s.Year] = true

		ended := s.Clone()
		ended.IsActive = false
		out = append(out, ended)
	}
	return out
}

// GoalChange is a goal whose value is new or different from the cached one.
type GoalChange struct {
	Subathon   api.Subathon
	Goal       api.SubathonGoal
	GoalNumber int
}

// GoalUpdates compares every goal of every fetched subathon against the
// cached goal with the same year and number. Goals are reported in
// ascending goal number.
func GoalUpdates(cached, fresh []api.Subathon) []GoalChange {
	prev := indexByYear(cached)
	seen := make(map[int]bool, len(fresh))

	var out []GoalChange
	for _, s := range fresh {
		if seen[s.Year] {
			continue
		}
		seen[s.Year] = true
		old, hadYear := prev[s.Year]

		numbers := make([]int, 0, len(s.Goals))
		for n := range s.Goals {
			numbers = append(numbers, n)
		}
		sort.Ints(numbers)

		for _, n := range numbers {
			goal := s.Goals[n]
			if hadYear {
				if oldGoal, ok := old.Goals[n]; ok && EqualGoal(oldGoal, goal) {
					continue
				}
			}
			out = append(out, GoalChange{
				Subathon:   s.Clone(),
				Goal:       goal,
				GoalNumber: n,
			})
		}
	}
	return out
}

// indexByYear keeps the first entry per year.
func indexByYear(list []api.Subathon) map[int]api.Subathon {
	out := make(map[int]api.Subathon, len(list))
	for _, s := range list {
		if _, ok := out[s.Year]; !ok {
			out[s.Year] = s
		}
	}
	return out
}
