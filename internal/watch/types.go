// Package watch implements the long-lived streaming watch manager: a
// concurrent table of server-sent-event subscriptions against a BRP
// endpoint, each with its own buffered append-only log file.
package watch

import "fmt"

// Kind distinguishes the two watch flavors.
type Kind string

const (
	// KindComponents watches a fixed set of components on one entity.
	KindComponents Kind = "components"

	// KindList watches the full component list of one entity.
	KindList Kind = "list"
)

// BRP methods used to start each watch kind.
const (
	MethodWatchComponents = "bevy/get+watch"
	MethodWatchList       = "bevy/list+watch"
)

// Event types written to a watch log, per the wire log format.
const (
	EventWatchStarted    = "WATCH_STARTED"
	EventComponentUpdate = "COMPONENT_UPDATE"
	EventListUpdate      = "LIST_UPDATE"
	EventConnectionError = "CONNECTION_ERROR"
	EventWatchEnded      = "WATCH_ENDED"
)

// Info describes one active or recently active watch.
type Info struct {
	WatchID  uint32
	EntityID uint64
	Kind     Kind
	LogPath  string
	Port     uint16
}

func (i Info) String() string {
	return fmt.Sprintf("watch[%d] entity=%d kind=%s port=%d log=%s", i.WatchID, i.EntityID, i.Kind, i.Port, i.LogPath)
}
