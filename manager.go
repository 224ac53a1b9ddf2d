/*
Copyright © 2026 Seednode <seednode@seedno.de>
*/

package main

import (
	"context"
	"sync"
	"time"
)

// RoomManager holds every live room keyed by room ID. Locks are always taken
// room first, manager second.
type RoomManager struct {
	cfg *Config

	mu    sync.Mutex
	rooms map[string]*Room

	defaultRoom   string
	defaultDigest string
}

func newRoomManager(cfg *Config) *RoomManager {
	gm := &RoomManager{
		cfg:   cfg,
		rooms: make(map[string]*Room),
	}

	if cfg.defaultRoom != "" {
		gm.defaultRoom = cfg.defaultRoom
		gm.defaultDigest = hashPassword(cfg.defaultPassword)

		gm.getOrCreate(cfg.defaultRoom)
		logf(cfg, "ROOMS: Default room %s initialized", cfg.defaultRoom)
	}

	return gm
}

// getOrCreate returns the room for roomID, creating it if needed. The
// default room always comes back with its default password.
func (gm *RoomManager) getOrCreate(roomID string) *Room {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	if room, ok := gm.rooms[roomID]; ok {
		return room
	}

	room := newRoom(roomID)
	if roomID == gm.defaultRoom {
		room.digest = gm.defaultDigest
	}
	gm.rooms[roomID] = room

	return room
}

func (gm *RoomManager) lookup(roomID string) *Room {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	return gm.rooms[roomID]
}

func (gm *RoomManager) count() int {
	gm.mu.Lock()
	defer gm.mu.Unlock()

	return len(gm.rooms)
}

// update runs fn with the room locked, creating the room first if needed.
func (gm *RoomManager) update(roomID string, fn func(room *Room)) {
	for {
		room := gm.getOrCreate(roomID)

		room.mu.Lock()
		if room.closed {
			room.mu.Unlock()
			continue
		}

		fn(room)
		room.mu.Unlock()

		return
	}
}

// existing runs fn with the room locked if it exists, and reports whether it did.
func (gm *RoomManager) existing(roomID string, fn func(room *Room)) bool {
	for {
		room := gm.lookup(roomID)
		if room == nil {
			return false
		}

		room.mu.Lock()
		if room.closed {
			room.mu.Unlock()
			continue
		}

		fn(room)
		room.mu.Unlock()

		return true
	}
}

// setHostPassword overwrites the host password of roomID.
func (gm *RoomManager) setHostPassword(roomID, password string) {
	digest := hashPassword(password)

	gm.update(roomID, func(room *Room) {
		room.digest = digest
		room.lastActive = time.Now()
	})
}

// dropLocked removes room from the manager. The caller must hold room.mu.
func (gm *RoomManager) dropLocked(room *Room) {
	room.closed = true

	gm.mu.Lock()
	if gm.rooms[room.id] == room {
		delete(gm.rooms, room.id)
	}
	gm.mu.Unlock()

	logf(gm.cfg, "ROOMS: Removed room %s", room.id)
}

// reap removes rooms that have been empty and idle since before cutoff.
func (gm *RoomManager) reap(cutoff time.Time) int {
	gm.mu.Lock()
	candidates := make([]*Room, 0, len(gm.rooms))
	for _, room := range gm.rooms {
		candidates = append(candidates, room)
	}
	gm.mu.Unlock()

	reaped := 0
	for _, room := range candidates {
		room.mu.Lock()
		if !room.closed && room.emptyLocked() && room.lastActive.Before(cutoff) {
			gm.dropLocked(room)
			reaped++
		}
		room.mu.Unlock()
	}

	return reaped
}

// reaperLoop periodically removes rooms that have sat empty longer than idleTimeout.
func (gm *RoomManager) reaperLoop(ctx context.Context, idleTimeout time.Duration) {
	ticker := time.NewTicker(idleTimeout / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := gm.reap(time.Now().Add(-idleTimeout)); n > 0 {
				logf(gm.cfg, "ROOMS: Reaped %d idle room(s)", n)
			}
		}
	}
}
