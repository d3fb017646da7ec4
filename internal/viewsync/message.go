// Package viewsync shares BCF viewpoints between viewers over websockets.
// A Hub relays messages between the members of a room; a Client joins a
// room; a Component applies received viewpoints on the render thread.
package viewsync

import (
	"errors"

	"github.com/Faultbox/ifcview/internal/engine/viewpoint"
)

// TypeViewpoint marks a message carrying a viewpoint.
const TypeViewpoint = "viewpoint"

// ErrClosed is returned when publishing on a closed client.
var ErrClosed = errors.New("viewsync: client closed")

// Message is the JSON frame exchanged with the hub.
type Message struct {
	Type      string               `json:"type"`
	From      string               `json:"from,omitempty"`
	Viewpoint *viewpoint.Viewpoint `json:"viewpoint,omitempty"`
}
