package watcher

import (
	"context"

	"go.uber.org/zap"

	"github.com/dgnsrekt/neuroinfo-watcher/internal/api"
	"github.com/dgnsrekt/neuroinfo-watcher/internal/detect"
	"github.com/dgnsrekt/neuroinfo-watcher/internal/events"
	"github.com/dgnsrekt/neuroinfo-watcher/internal/snapshot"
)

func (w *Watcher) pollStream(ctx context.Context) {
	fresh, err := w.fetcher.FetchStream(ctx)
	if err == nil && fresh == nil {
		err = &api.FetchError{Code: api.CodeUnknown, Message: "empty stream response"}
	}
	if err != nil {
		w.fail(snapshot.ResourceStream, err)
		return
	}
	w.fetched(snapshot.ResourceStream)

	var cached *api.Stream
	if s, ok := w.cache.Stream(); ok {
		cached = &s
	}

	if detect.StreamOnline(cached, *fresh) {
		w.emitStream(events.StreamOnline, *fresh)
	}
	if detect.StreamOffline(cached, *fresh) {
		w.emitStream(events.StreamOffline, *fresh)
	}
	if detect.StreamUpdate(cached, *fresh) {
		w.emitStream(events.StreamUpdate, *fresh)
	}

	w.cache.SetStream(*fresh)
}

func (w *Watcher) pollSchedule(ctx context.Context) {
	fresh, err := w.fetcher.FetchLatestSchedule(ctx)
	if err == nil && fresh == nil {
		err = &api.FetchError{Code: api.CodeUnknown, Message: "empty schedule response"}
	}
	if err != nil {
		w.fail(snapshot.ResourceSchedule, err)
		return
	}
	w.fetched(snapshot.ResourceSchedule)

	var cached *api.Schedule
	if s, ok := w.cache.Schedule(); ok {
		cached = &s
	}

	if detect.ScheduleUpdate(cached, *fresh) && w.registry.Count(events.ScheduleUpdate) > 0 {
		s := fresh.Clone()
		w.registry.Emit(events.Event{Kind: events.ScheduleUpdate, Schedule: &s})
	}

	w.cache.SetSchedule(*fresh)
}

func (w *Watcher) pollSubathons(ctx context.Context) {
	fresh, err := w.fetcher.FetchCurrentSubathons(ctx)
	if err != nil {
		w.fail(snapshot.ResourceSubathons, err)
		return
	}
	w.fetched(snapshot.ResourceSubathons)

	cached, _ := w.cache.Subathons()

	if w.registry.Count(events.SubathonUpdate) > 0 {
		for _, s := range detect.SubathonUpdates(cached, fresh) {
			w.registry.Emit(events.Event{Kind: events.SubathonUpdate, Subathon: &s})
		}
	}

	if w.registry.Count(events.SubathonGoalUpdate) > 0 {
		for _, g := range detect.GoalUpdates(cached, fresh) {
			w.registry.Emit(events.Event{
				Kind: events.SubathonGoalUpdate,
				Goal: &events.GoalUpdate{
					Subathon:   g.Subathon,
					Goal:       g.Goal,
					GoalNumber: g.GoalNumber,
				},
			})
		}
	}

	w.cache.SetSubathons(fresh)
}

func (w *Watcher) emitStream(kind events.Kind, s api.Stream) {
	if w.registry.Count(kind) == 0 {
		return
	}
	cp := s.Clone()
	w.registry.Emit(events.Event{Kind: kind, Stream: &cp})
}

// fail clears the snapshot of res and reports err to the error handlers
// of the kinds driven by res only.
func (w *Watcher) fail(res snapshot.Resource, err error) {
	w.cache.Clear(res)

	fe := api.AsFetchError(err)
	w.logger.Warn("fetch failed",
		zap.String("resource", res.String()),
		zap.String("code", string(fe.Code)),
		zap.Int("status", fe.Status),
		zap.Error(err),
	)
	if w.metrics != nil {
		w.metrics.FetchTotal.WithLabelValues(res.String(), string(fe.Code)).Inc()
	}

	for _, kind := range events.KindsFor(res) {
		w.registry.EmitError(kind, err)
	}
}

func (w *Watcher) fetched(res snapshot.Resource) {
	if w.metrics != nil {
		w.metrics.FetchTotal.WithLabelValues(res.String(), "ok").Inc()
	}
}
