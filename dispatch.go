/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"crypto/rand"
	"errors"
	"io"
	"sync"
	"time"
)

type handler func(p Peer, msg ClientMessage)

// Dispatcher routes client messages to the room they name and remembers
// which rooms each connection joined, so a disconnect only visits those.
type Dispatcher struct {
	cfg    *Config
	rooms  *RoomManager
	stats  *stats
	random io.Reader

	handlers map[string]handler

	mu          sync.Mutex
	connections int
	memberships map[string]map[string]struct{} // connection ID -> room IDs
}

func newDispatcher(cfg *Config, rooms *RoomManager) *Dispatcher {
	d := &Dispatcher{
		cfg:         cfg,
		rooms:       rooms,
		stats:       newStats(),
		random:      rand.Reader,
		memberships: make(map[string]map[string]struct{}),
	}

	d.handlers = map[string]handler{
		"joinRoom": d.handleJoin,
		"drawTop7": d.handleDraw,
	}

	return d
}

// dispatch runs the handler registered for msg.Type. Unknown types are ignored.
func (d *Dispatcher) dispatch(p Peer, msg ClientMessage) {
	h, ok := d.handlers[msg.Type]
	if !ok {
		return
	}

	h(p, msg)
}

func (d *Dispatcher) connect(p Peer) {
	d.mu.Lock()
	d.connections++
	d.mu.Unlock()
}

func (d *Dispatcher) connectionCount() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.connections
}

func (d *Dispatcher) remember(connID, roomID string) {
	d.mu.Lock()
	defer d.mu.Unlock()

	joined, ok := d.memberships[connID]
	if !ok {
		joined = make(map[string]struct{})
		d.memberships[connID] = joined
	}
	joined[roomID] = struct{}{}
}

// roomsOf returns the IDs of every room connID has joined.
func (d *Dispatcher) roomsOf(connID string) []string {
	d.mu.Lock()
	defer d.mu.Unlock()

	ids := make([]string, 0, len(d.memberships[connID]))
	for id := range d.memberships[connID] {
		ids = append(ids, id)
	}
	return ids
}

func (d *Dispatcher) reject(p Peer, err error) {
	p.Send(ErrorMessage{
		Type:    "errorMsg",
		Message: err.Error(),
	})
}

func (d *Dispatcher) handleJoin(p Peer, msg ClientMessage) {
	roomID, name := string(msg.RoomID), string(msg.Name)
	if roomID == "" || name == "" {
		return
	}

	var (
		joined bool
		err    error
	)

	d.rooms.update(roomID, func(room *Room) {
		joined, err = room.joinLocked(p, name, msg.AsHost, string(msg.HostPassword), d.cfg.admitFailedHosts)

		// A rejected join must not leave behind a room nobody configured.
		if !joined && room.emptyLocked() && room.digest == "" {
			d.rooms.dropLocked(room)
		}
	})

	if joined {
		d.remember(p.ID(), roomID)
		logf(d.cfg, "ROOMS: %s joined %s as %q", p.ID(), roomID, name)
	}

	if err != nil {
		d.stats.joinErrors.WithLabelValues(joinErrorReason(err)).Inc()
		logf(d.cfg, "ROOMS: %s failed to join %s as host: %v", p.ID(), roomID, err)
		d.reject(p, err)
	}
}

func (d *Dispatcher) handleDraw(p Peer, msg ClientMessage) {
	roomID := string(msg.RoomID)
	if roomID == "" {
		return
	}

	var (
		result DrawResultMessage
		err    error
	)

	found := d.rooms.existing(roomID, func(room *Room) {
		result, err = room.drawLocked(p, d.random, time.Now())
	})
	if !found {
		err = ErrNoSuchRoom
	}

	if err != nil {
		logf(d.cfg, "DRAWS: %s could not draw in %s: %v", p.ID(), roomID, err)
		d.reject(p, err)

		return
	}

	d.stats.draws.Inc()
	logf(d.cfg, "DRAWS: %d winner(s) drawn from %d participant(s) in %s",
		len(result.Winners),
		len(result.Participants),
		roomID,
	)
}

// disconnect removes p from every room it joined, dropping rooms left empty.
func (d *Dispatcher) disconnect(p Peer) {
	connID := p.ID()
	roomIDs := d.roomsOf(connID)

	d.mu.Lock()
	delete(d.memberships, connID)
	d.connections--
	d.mu.Unlock()

	for _, roomID := range roomIDs {
		d.rooms.existing(roomID, func(room *Room) {
			room.leaveLocked(connID)

			if room.emptyLocked() {
				d.rooms.dropLocked(room)
			}
		})
	}
}

func joinErrorReason(err error) string {
	switch {
	case errors.Is(err, ErrHostAlreadyPresent):
		return "host_present"
	case errors.Is(err, ErrHostNotConfigured):
		return "host_not_configured"
	case errors.Is(err, ErrBadHostPassword):
		return "bad_password"
	default:
		return "other"
	}
}
