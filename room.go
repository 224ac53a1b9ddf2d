/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"fmt"
	"io"
	"sync"
	"time"
)

// Peer is a connected client as seen by a room.
type Peer interface {
	ID() string
	// Send queues msg for delivery without blocking. Messages are
	// delivered in the order they were queued.
	Send(msg any) bool
}

// Messages coming from clients
type ClientMessage struct {
	Type         string      `json:"type"`                   // "joinRoom", "drawTop7"
	RoomID       looseString `json:"roomId"`                 // joinRoom / drawTop7
	Name         looseString `json:"name,omitempty"`         // joinRoom
	AsHost       bool        `json:"asHost,omitempty"`       // joinRoom
	HostPassword looseString `json:"hostPassword,omitempty"` // joinRoom
}

// ParticipantsUpdateMessage is broadcast whenever a room's membership changes.
type ParticipantsUpdateMessage struct {
	Type         string   `json:"type"` // "participantsUpdate"
	Participants []string `json:"participants"`
	HostOnline   bool     `json:"hostOnline"`
}

// JoinedMessage tells a joining client the name it was registered under.
type JoinedMessage struct {
	Type   string `json:"type"` // "joined"
	You    string `json:"you"`
	IsHost bool   `json:"isHost"`
}

// ErrorMessage is only ever sent to the client whose request failed.
type ErrorMessage struct {
	Type    string `json:"type"` // "errorMsg"
	Message string `json:"message"`
}

// DrawResultMessage is broadcast to the whole room after a draw.
type DrawResultMessage struct {
	Type         string    `json:"type"` // "drawTop7Result"
	Seed         uint32    `json:"seed"`
	Participants []string  `json:"participants"`
	Winners      []Winner  `json:"winners"`
	At           time.Time `json:"at"`
}

type participant struct {
	peer Peer
	name string
}

// Room is a single draw session. Every method suffixed with Locked
// assumes mu is held; RoomManager takes care of that.
type Room struct {
	id string

	mu sync.Mutex

	host         string // connection ID of the host, if any
	digest       string // hashed host password, empty until configured
	participants []participant

	lastActive time.Time
	closed     bool // removed from its manager; callers must look it up again
}

func newRoom(roomID string) *Room {
	return &Room{
		id:         roomID,
		lastActive: time.Now(),
	}
}

func (r *Room) namesLocked() []string {
	names := make([]string, 0, len(r.participants))
	for _, p := range r.participants {
		names = append(names, p.name)
	}
	return names
}

func (r *Room) hasNameLocked(name string) bool {
	for _, p := range r.participants {
		if p.name == name {
			return true
		}
	}
	return false
}

func (r *Room) indexOfLocked(connID string) int {
	for i, p := range r.participants {
		if p.peer.ID() == connID {
			return i
		}
	}
	return -1
}

// emptyLocked reports whether nobody, host included, is left in the room.
func (r *Room) emptyLocked() bool {
	return len(r.participants) == 0 && r.host == ""
}

func (r *Room) broadcastLocked(msg any) {
	for _, p := range r.participants {
		p.peer.Send(msg)
	}
}

func (r *Room) broadcastParticipantsLocked() {
	r.broadcastLocked(ParticipantsUpdateMessage{
		Type:         "participantsUpdate",
		Participants: r.namesLocked(),
		HostOnline:   r.host != "",
	})
}

// uniqueNameLocked disambiguates name with a suffix taken from the end of
// connID, lengthening the suffix until it no longer collides.
func (r *Room) uniqueNameLocked(name, connID string) string {
	if !r.hasNameLocked(name) {
		return name
	}

	for _, n := range []int{4, 8} {
		if n >= len(connID) {
			break
		}
		candidate := name + "-" + connID[len(connID)-n:]
		if !r.hasNameLocked(candidate) {
			return candidate
		}
	}

	return name + "-" + connID
}

// elevateLocked makes connID the host if password matches the room's digest.
func (r *Room) elevateLocked(connID, password string) error {
	switch {
	case r.host == connID:
		return nil
	case r.host != "":
		return ErrHostAlreadyPresent
	case r.digest == "":
		return ErrHostNotConfigured
	case !verifyPassword(password, r.digest):
		return ErrBadHostPassword
	}

	r.host = connID

	return nil
}

// joinLocked registers p under name and, if asked, elevates it to host.
//
// A failed host elevation is returned as err. When admitFailed is set the
// connection is still registered as a regular participant; otherwise the
// join stops there and joined is false.
func (r *Room) joinLocked(p Peer, name string, asHost bool, password string, admitFailed bool) (joined bool, err error) {
	r.lastActive = time.Now()

	if asHost {
		err = r.elevateLocked(p.ID(), password)
		if err != nil && !admitFailed {
			return false, err
		}
	}

	var resolved string
	if i := r.indexOfLocked(p.ID()); i >= 0 {
		resolved = r.participants[i].name
	} else {
		resolved = r.uniqueNameLocked(name, p.ID())
		r.participants = append(r.participants, participant{peer: p, name: resolved})
	}

	r.broadcastParticipantsLocked()

	p.Send(JoinedMessage{
		Type:   "joined",
		You:    resolved,
		IsHost: r.host == p.ID(),
	})

	return true, err
}

// leaveLocked drops connID from the room, clearing the host seat if it held
// it, and tells whoever is left.
func (r *Room) leaveLocked(connID string) bool {
	r.lastActive = time.Now()

	changed := false

	dst := r.participants[:0]
	for _, p := range r.participants {
		if p.peer.ID() == connID {
			changed = true
			continue
		}
		dst = append(dst, p)
	}
	clear(r.participants[len(dst):])
	r.participants = dst

	if r.host == connID {
		r.host = ""
		changed = true
	}

	if changed {
		r.broadcastParticipantsLocked()
	}

	return changed
}

// drawLocked picks up to maxWinners participants at random and broadcasts
// the ranked result. The published seed and the selection read separate
// bytes from random; the seed does not decide the winners.
func (r *Room) drawLocked(p Peer, random io.Reader, at time.Time) (DrawResultMessage, error) {
	r.lastActive = time.Now()

	if r.host == "" || r.host != p.ID() {
		return DrawResultMessage{}, ErrNotHost
	}

	if len(r.participants) == 0 {
		return DrawResultMessage{}, ErrEmptyRoom
	}

	names := r.namesLocked()

	seed, err := drawSeed(random)
	if err != nil {
		return DrawResultMessage{}, fmt.Errorf("unable to draw: %w", err)
	}

	picked, err := selectUniqueRankedFrom(random, len(names), maxWinners)
	if err != nil {
		return DrawResultMessage{}, fmt.Errorf("unable to draw: %w", err)
	}

	result := DrawResultMessage{
		Type:         "drawTop7Result",
		Seed:         seed,
		Participants: names,
		Winners:      rankWinners(picked, names),
		At:           at.UTC(),
	}

	r.broadcastLocked(result)

	return result, nil
}
