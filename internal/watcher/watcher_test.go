package watcher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
	"go.uber.org/zap"

	"github.com/dgnsrekt/neuroinfo-watcher/internal/api"
	"github.com/dgnsrekt/neuroinfo-watcher/internal/events"
	"github.com/dgnsrekt/neuroinfo-watcher/internal/metrics"
)

func newTestWatcher(t *testing.T) (*Watcher, *api.MockFetcher) {
	t.Helper()
	ctrl := gomock.NewController(t)
	fetcher := api.NewMockFetcher(ctrl)
	w := New(fetcher, Options{RequestDelay: time.Millisecond}, zap.NewNop())
	return w, fetcher
}

func TestNew_Defaults(t *testing.T) {
	w, _ := newTestWatcher(t)

	assert.Equal(t, DefaultFetchInterval, w.FetchInterval())
	assert.False(t, w.Running())

	w2 := New(api.NewMockFetcher(gomock.NewController(t)), Options{FetchInterval: time.Second}, nil)
	assert.Equal(t, MinFetchInterval, w2.FetchInterval())
	assert.Equal(t, DefaultRequestDelay, w2.requestDelay)
}

func TestSetFetchInterval_Clamps(t *testing.T) {
	w, _ := newTestWatcher(t)

	assert.Equal(t, 10*time.Second, w.SetFetchInterval(5000*time.Millisecond))
	assert.Equal(t, 10*time.Second, w.FetchInterval())

	assert.Equal(t, time.Minute, w.SetFetchInterval(time.Minute))
	assert.Equal(t, time.Minute, w.FetchInterval())
}

func TestSetAuthToken_Forwards(t *testing.T) {
	w, fetcher := newTestWatcher(t)

	fetcher.EXPECT().SetAuthToken("secret")
	fetcher.EXPECT().SetAuthToken("")

	w.SetAuthToken("secret")
	w.SetAuthToken("")
}

func TestPoll_NoListenersFetchesNothing(t *testing.T) {
	w, _ := newTestWatcher(t)

	// no EXPECT calls: any fetch fails the test
	assert.True(t, w.Poll(context.Background()))
}

func TestPoll_OnlyDemandedResources(t *testing.T) {
	w, fetcher := newTestWatcher(t)

	w.On(events.ScheduleUpdate, func(events.Event) {}, nil)
	fetcher.EXPECT().FetchLatestSchedule(gomock.Any()).Return(&api.Schedule{Year: 2025}, nil)

	assert.True(t, w.Poll(context.Background()))
}

func TestPoll_FetchOrder(t *testing.T) {
	w, fetcher := newTestWatcher(t)

	w.On(events.StreamUpdate, func(events.Event) {}, nil)
	w.On(events.ScheduleUpdate, func(events.Event) {}, nil)
	w.On(events.SubathonUpdate, func(events.Event) {}, nil)

	gomock.InOrder(
		fetcher.EXPECT().FetchStream(gomock.Any()).Return(&api.Stream{}, nil),
		fetcher.EXPECT().FetchLatestSchedule(gomock.Any()).Return(&api.Schedule{}, nil),
		fetcher.EXPECT().FetchCurrentSubathons(gomock.Any()).Return(nil, nil),
	)

	w.Poll(context.Background())
}

func TestPoll_StreamOnlineScenario(t *testing.T) {
	w, fetcher := newTestWatcher(t)

	var online, updates []events.Event
	w.On(events.StreamOnline, func(ev events.Event) { online = append(online, ev) }, nil)
	w.On(events.StreamUpdate, func(ev events.Event) { updates = append(updates, ev) }, nil)

	gomock.InOrder(
		fetcher.EXPECT().FetchStream(gomock.Any()).Return(&api.Stream{IsLive: false}, nil),
		fetcher.EXPECT().FetchStream(gomock.Any()).Return(&api.Stream{IsLive: true, ID: "42"}, nil),
		fetcher.EXPECT().FetchStream(gomock.Any()).Return(&api.Stream{IsLive: true, ID: "42"}, nil),
	)

	ctx := context.Background()
	w.Poll(ctx)
	assert.Empty(t, online)

	w.Poll(ctx)
	require.Len(t, online, 1)
	assert.Equal(t, "42", online[0].Stream.ID)
	assert.Empty(t, updates)

	w.Poll(ctx)
	assert.Len(t, online, 1, "unchanged value must not fire again")
	assert.Empty(t, updates)

	snap := w.Snapshot()
	require.NotNil(t, snap.Stream)
	assert.True(t, snap.Stream.IsLive)
}

func TestPoll_ScheduleFirstObservationFires(t *testing.T) {
	w, fetcher := newTestWatcher(t)

	var got []events.Event
	w.On(events.ScheduleUpdate, func(ev events.Event) { got = append(got, ev) }, nil)

	schedule := &api.Schedule{Year: 2025, Week: 3, Entries: []api.ScheduleEntry{{Day: 1, Message: "collab"}}}
	fetcher.EXPECT().FetchLatestSchedule(gomock.Any()).Return(schedule, nil).Times(2)

	w.Poll(context.Background())
	w.Poll(context.Background())

	require.Len(t, got, 1)
	assert.Equal(t, 3, got[0].Schedule.Week)
}

func TestPoll_SubathonGoalScenario(t *testing.T) {
	w, fetcher := newTestWatcher(t)

	var order []events.Kind
	var goal *events.GoalUpdate
	w.On(events.SubathonUpdate, func(ev events.Event) { order = append(order, ev.Kind) }, nil)
	w.On(events.SubathonGoalUpdate, func(ev events.Event) {
		order = append(order, ev.Kind)
		goal = ev.Goal
	}, nil)

	gomock.InOrder(
		fetcher.EXPECT().FetchCurrentSubathons(gomock.Any()).Return([]api.Subathon{
			{Year: 2024, Goals: map[int]api.SubathonGoal{1: {Completed: false}}},
		}, nil),
		fetcher.EXPECT().FetchCurrentSubathons(gomock.Any()).Return([]api.Subathon{
			{Year: 2024, Goals: map[int]api.SubathonGoal{1: {Completed: true}}},
		}, nil),
	)

	w.Poll(context.Background())
	order = nil
	goal = nil

	w.Poll(context.Background())

	assert.Equal(t, []events.Kind{events.SubathonUpdate, events.SubathonGoalUpdate}, order)
	require.NotNil(t, goal)
	assert.Equal(t, 1, goal.GoalNumber)
	assert.True(t, goal.Goal.Completed)
	assert.Equal(t, 2024, goal.Subathon.Year)
}

func TestPoll_RemovedSubathonReportedInactive(t *testing.T) {
	w, fetcher := newTestWatcher(t)

	var got []api.Subathon
	w.On(events.SubathonUpdate, func(ev events.Event) { got = append(got, *ev.Subathon) }, nil)

	gomock.InOrder(
		fetcher.EXPECT().FetchCurrentSubathons(gomock.Any()).Return([]api.Subathon{{Year: 2023, IsActive: true}}, nil),
		fetcher.EXPECT().FetchCurrentSubathons(gomock.Any()).Return([]api.Subathon{}, nil),
	)

	w.Poll(context.Background())
	got = nil
	w.Poll(context.Background())

	require.Len(t, got, 1)
	assert.Equal(t, 2023, got[0].Year)
	assert.False(t, got[0].IsActive)
}

func TestPoll_FailureIsolation(t *testing.T) {
	w, fetcher := newTestWatcher(t)

	var streamErrs, subathonErrs []error
	var schedules int
	w.On(events.StreamOnline, func(events.Event) {}, func(err error) { streamErrs = append(streamErrs, err) })
	w.On(events.StreamUpdate, func(events.Event) {}, func(err error) { streamErrs = append(streamErrs, err) })
	w.On(events.ScheduleUpdate, func(events.Event) { schedules++ }, nil)
	w.On(events.SubathonUpdate, func(events.Event) {}, func(err error) { subathonErrs = append(subathonErrs, err) })

	fetchErr := &api.FetchError{Code: api.CodeUnauthorized, Status: 401, Err: api.ErrUnauthorized}
	fetcher.EXPECT().FetchStream(gomock.Any()).Return(nil, fetchErr)
	fetcher.EXPECT().FetchLatestSchedule(gomock.Any()).Return(&api.Schedule{Year: 2025}, nil)
	fetcher.EXPECT().FetchCurrentSubathons(gomock.Any()).Return(nil, nil)

	w.Poll(context.Background())

	require.Len(t, streamErrs, 2)
	assert.ErrorIs(t, streamErrs[0], api.ErrUnauthorized)
	assert.Equal(t, 1, schedules)
	assert.Empty(t, subathonErrs)
}

func TestPoll_FailureClearsSnapshot(t *testing.T) {
	w, fetcher := newTestWatcher(t)

	var online int
	w.On(events.StreamOnline, func(events.Event) { online++ }, nil)

	gomock.InOrder(
		fetcher.EXPECT().FetchStream(gomock.Any()).Return(&api.Stream{IsLive: true}, nil),
		fetcher.EXPECT().FetchStream(gomock.Any()).Return(nil, errors.New("connection reset")),
		fetcher.EXPECT().FetchStream(gomock.Any()).Return(&api.Stream{IsLive: true}, nil),
	)

	ctx := context.Background()
	w.Poll(ctx)
	assert.NotNil(t, w.Snapshot().Stream)

	w.Poll(ctx)
	assert.Nil(t, w.Snapshot().Stream)

	// after a failure the next success is a first observation again
	w.Poll(ctx)
	assert.Equal(t, 2, online)
}

func TestPoll_UndemandedSnapshotCleared(t *testing.T) {
	w, fetcher := newTestWatcher(t)

	_, off := w.On(events.StreamUpdate, func(events.Event) {}, nil)
	fetcher.EXPECT().FetchStream(gomock.Any()).Return(&api.Stream{}, nil)

	w.Poll(context.Background())
	require.NotNil(t, w.Snapshot().Stream)

	off()
	w.Poll(context.Background())
	assert.Nil(t, w.Snapshot().Stream)
}

func TestPoll_OnceAcrossTicks(t *testing.T) {
	w, fetcher := newTestWatcher(t)

	calls := 0
	w.Once(events.StreamOnline, func(events.Event) { calls++ }, nil)

	gomock.InOrder(
		fetcher.EXPECT().FetchStream(gomock.Any()).Return(&api.Stream{IsLive: true}, nil),
	)

	w.Poll(context.Background())
	assert.Equal(t, 1, calls)
	assert.Zero(t, w.ListenerCount(events.StreamOnline))

	// no listeners left, so nothing is fetched
	w.Poll(context.Background())
	assert.Equal(t, 1, calls)
}

func TestPoll_ListenerPanicDoesNotAbortTick(t *testing.T) {
	w, fetcher := newTestWatcher(t)

	var got int
	w.On(events.StreamOnline, func(events.Event) { panic("listener failure") }, nil)
	w.On(events.ScheduleUpdate, func(events.Event) { got++ }, nil)

	fetcher.EXPECT().FetchStream(gomock.Any()).Return(&api.Stream{IsLive: true}, nil)
	fetcher.EXPECT().FetchLatestSchedule(gomock.Any()).Return(&api.Schedule{}, nil)

	assert.NotPanics(t, func() { w.Poll(context.Background()) })
	assert.Equal(t, 1, got)
	assert.NotNil(t, w.Snapshot().Stream)
}

func TestPoll_OverlappingTickDropped(t *testing.T) {
	m := metrics.New(prometheus.NewRegistry())
	ctrl := gomock.NewController(t)
	fetcher := api.NewMockFetcher(ctrl)
	w := New(fetcher, Options{RequestDelay: time.Millisecond, Metrics: m}, zap.NewNop())

	w.On(events.StreamUpdate, func(events.Event) {}, nil)

	entered := make(chan struct{})
	release := make(chan struct{})
	fetcher.EXPECT().FetchStream(gomock.Any()).DoAndReturn(func(context.Context) (*api.Stream, error) {
		close(entered)
		<-release
		return &api.Stream{}, nil
	}).Times(1)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		assert.True(t, w.Poll(context.Background()))
	}()

	<-entered
	assert.False(t, w.Poll(context.Background()))
	close(release)
	wg.Wait()

	assert.Equal(t, 1.0, testutil.ToFloat64(m.TicksTotal.WithLabelValues("dropped")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.TicksTotal.WithLabelValues("ok")))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.FetchTotal.WithLabelValues("stream", "ok")))
}

func TestPoll_CancelledBetweenFetches(t *testing.T) {
	ctrl := gomock.NewController(t)
	fetcher := api.NewMockFetcher(ctrl)
	w := New(fetcher, Options{RequestDelay: time.Hour}, zap.NewNop())

	w.On(events.StreamUpdate, func(events.Event) {}, nil)
	w.On(events.ScheduleUpdate, func(events.Event) {}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	fetcher.EXPECT().FetchStream(gomock.Any()).DoAndReturn(func(context.Context) (*api.Stream, error) {
		cancel()
		return &api.Stream{}, nil
	})

	assert.True(t, w.Poll(ctx))
}

func TestStartStop(t *testing.T) {
	w, fetcher := newTestWatcher(t)

	polled := make(chan struct{})
	w.On(events.StreamUpdate, func(events.Event) {}, nil)
	fetcher.EXPECT().FetchStream(gomock.Any()).DoAndReturn(func(context.Context) (*api.Stream, error) {
		close(polled)
		return &api.Stream{}, nil
	}).Times(1)

	ctx := context.Background()
	w.Start(ctx)
	w.Start(ctx)
	assert.True(t, w.Running())

	select {
	case <-polled:
	case <-time.After(5 * time.Second):
		t.Fatal("start did not run an immediate tick")
	}

	w.Stop()
	w.Stop()
	w.Wait()
	assert.False(t, w.Running())
}

func TestStop_InFlightTickCompletes(t *testing.T) {
	w, fetcher := newTestWatcher(t)

	var mu sync.Mutex
	var got []events.Kind
	record := func(ev events.Event) {
		mu.Lock()
		got = append(got, ev.Kind)
		mu.Unlock()
	}
	w.On(events.StreamOnline, record, nil)
	w.On(events.ScheduleUpdate, record, nil)

	entered := make(chan struct{})
	release := make(chan struct{})
	gomock.InOrder(
		fetcher.EXPECT().FetchStream(gomock.Any()).DoAndReturn(func(context.Context) (*api.Stream, error) {
			close(entered)
			<-release
			return &api.Stream{IsLive: true, ID: "42"}, nil
		}),
		fetcher.EXPECT().FetchLatestSchedule(gomock.Any()).Return(&api.Schedule{Year: 2025, Week: 7}, nil),
	)

	w.Start(context.Background())

	select {
	case <-entered:
	case <-time.After(5 * time.Second):
		t.Fatal("start did not run an immediate tick")
	}

	w.Stop()
	assert.False(t, w.Running())

	close(release)
	w.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []events.Kind{events.StreamOnline, events.ScheduleUpdate}, got)

	snap := w.Snapshot()
	require.NotNil(t, snap.Stream)
	assert.True(t, snap.Stream.IsLive)
	require.NotNil(t, snap.Schedule)
	assert.Equal(t, 7, snap.Schedule.Week)
}

func TestStart_ContextCancelStops(t *testing.T) {
	w, _ := newTestWatcher(t)

	ctx, cancel := context.WithCancel(context.Background())
	w.Start(ctx)
	cancel()
	w.Wait()

	assert.False(t, w.Running())
}

func TestSetFetchInterval_WhileRunning(t *testing.T) {
	w, _ := newTestWatcher(t)

	w.Start(context.Background())
	defer func() {
		w.Stop()
		w.Wait()
	}()

	assert.Equal(t, 10*time.Second, w.SetFetchInterval(time.Second))
	assert.True(t, w.Running())
}

func TestRemoveAllListeners(t *testing.T) {
	w, _ := newTestWatcher(t)

	w.On(events.StreamOnline, func(events.Event) {}, nil)
	w.On(events.ScheduleUpdate, func(events.Event) {}, nil)

	w.RemoveAllListeners(events.StreamOnline)
	assert.Zero(t, w.ListenerCount(events.StreamOnline))
	assert.Equal(t, 1, w.ListenerCount(events.ScheduleUpdate))

	w.RemoveAllListeners()
	assert.Zero(t, w.ListenerCount(events.ScheduleUpdate))

	// nothing demanded, nothing fetched
	w.Poll(context.Background())
}
