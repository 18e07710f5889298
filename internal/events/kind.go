package events

import (
	"fmt"

	"github.com/dgnsrekt/neuroinfo-watcher/internal/snapshot"
)

// Kind is a category of change a consumer can subscribe to.
type Kind int

const (
	StreamOnline Kind = iota
	StreamOffline
	StreamUpdate
	ScheduleUpdate
	SubathonUpdate
	SubathonGoalUpdate

	numKinds
)

// Kinds lists every kind in emission priority order.
var Kinds = [numKinds]Kind{
	StreamOnline,
	StreamOffline,
	StreamUpdate,
	ScheduleUpdate,
	SubathonUpdate,
	SubathonGoalUpdate,
}

var kindNames = [numKinds]string{
	StreamOnline:       "stream-online",
	StreamOffline:      "stream-offline",
	StreamUpdate:       "stream-update",
	ScheduleUpdate:     "schedule-update",
	SubathonUpdate:     "subathon-update",
	SubathonGoalUpdate: "subathon-goal-update",
}

var kindResources = [numKinds]snapshot.Resource{
	StreamOnline:       snapshot.ResourceStream,
	StreamOffline:      snapshot.ResourceStream,
	StreamUpdate:       snapshot.ResourceStream,
	ScheduleUpdate:     snapshot.ResourceSchedule,
	SubathonUpdate:     snapshot.ResourceSubathons,
	SubathonGoalUpdate: snapshot.ResourceSubathons,
}

func (k Kind) Valid() bool {
	return k >= 0 && k < numKinds
}

func (k Kind) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Kind(%d)", int(k))
	}
	return kindNames[k]
}

// Resource returns the resource whose fetch drives k.
func (k Kind) Resource() snapshot.Resource {
	if !k.Valid() {
		panic(fmt.Sprintf("invalid events.Kind: %d", int(k)))
	}
	return kindResources[k]
}

// KindsFor returns the kinds driven by r, in priority order.
func KindsFor(r snapshot.Resource) []Kind {
	var out []Kind
	for _, k := range Kinds {
		if kindResources[k] == r {
			out = append(out, k)
		}
	}
	return out
}

// ParseKind parses a kind name such as "stream-online".
func ParseKind(s string) (Kind, error) {
	for k, name := range kindNames {
		if name == s {
			return Kind(k), nil
		}
	}
	return 0, fmt.Errorf("unknown event kind %q", s)
}

func (k Kind) MarshalText() ([]byte, error) {
	if !k.Valid() {
		return nil, fmt.Errorf("invalid event kind %d", int(k))
	}
	return []byte(kindNames[k]), nil
}

func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}
