package snapshot

import (
	"sync"

	"github.com/dgnsrekt/neuroinfo-watcher/internal/api"
)

// Resource identifies one upstream data source polled independently.
type Resource int

const (
	ResourceStream Resource = iota
	ResourceSchedule
	ResourceSubathons

	numResources
)

// Resources lists every resource in fetch order.
var Resources = [numResources]Resource{ResourceStream, ResourceSchedule, ResourceSubathons}

func (r Resource) String() string {
	switch r {
	case ResourceStream:
		return "stream"
	case ResourceSchedule:
		return "latest-schedule"
	case ResourceSubathons:
		return "current-subathons"
	default:
		return "unknown"
	}
}

// Cache holds the last successfully fetched value per resource.
// Values are copied on the way in and out so callers never share maps or
// slices with the cache.
type Cache struct {
	mu        sync.RWMutex
	stream    *api.Stream
	schedule  *api.Schedule
	subathons []api.Subathon
	present   [numResources]bool
}

func NewCache() *Cache {
	return &Cache{}
}

func (c *Cache) Stream() (api.Stream, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.present[ResourceStream] {
		return api.Stream{}, false
	}
	return c.stream.Clone(), true
}

func (c *Cache) SetStream(s api.Stream) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := s.Clone()
	c.stream = &cp
	c.present[ResourceStream] = true
}

func (c *Cache) Schedule() (api.Schedule, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.present[ResourceSchedule] {
		return api.Schedule{}, false
	}
	return c.schedule.Clone(), true
}

func (c *Cache) SetSchedule(s api.Schedule) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cp := s.Clone()
	c.schedule = &cp
	c.present[ResourceSchedule] = true
}

// Subathons returns the cached list. An empty list that was fetched
// successfully is present, unlike a list that was never fetched.
func (c *Cache) Subathons() ([]api.Subathon, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if !c.present[ResourceSubathons] {
		return nil, false
	}
	return api.CloneSubathons(c.subathons), true
}

func (c *Cache) SetSubathons(list []api.Subathon) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.subathons = api.CloneSubathons(list)
	c.present[ResourceSubathons] = true
}

// Has reports whether a snapshot exists for r.
func (c *Cache) Has(r Resource) bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return r >= 0 && r < numResources && c.present[r]
}

// Clear drops the snapshot for r so the next fetch counts as a first observation.
func (c *Cache) Clear(r Resource) {
	c.mu.Lock()
	defer c.mu.Unlock()

	switch r {
	case ResourceStream:
		c.stream = nil
	case ResourceSchedule:
		c.schedule = nil
	case ResourceSubathons:
		c.subathons = nil
	default:
		return
	}
	c.present[r] = false
}

// Reset clears every snapshot.
func (c *Cache) Reset() {
	for _, r := range Resources {
		c.Clear(r)
	}
}

// View is a point-in-time copy of the cache, used for status reporting.
type View struct {
	Stream    *api.Stream    `json:"stream,omitempty"`
	Schedule  *api.Schedule  `json:"schedule,omitempty"`
	Subathons []api.Subathon `json:"subathons,omitempty"`
}

func (c *Cache) View() View {
	var v View
	if s, ok := c.Stream(); ok {
		v.Stream = &s
	}
	if s, ok := c.Schedule(); ok {
		v.Schedule = &s
	}
	if s, ok := c.Subathons(); ok {
		v.Subathons = s
	}
	return v
}
