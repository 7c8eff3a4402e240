// Package room tracks which connections watch which game and fans messages
// out to them.
package room

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Conn is a live connection that can receive messages.
type Conn interface {
	ID() string
	Send(ctx context.Context, msg any) error
}

type room struct {
	// sendMu keeps broadcasts for one room from interleaving.
	sendMu  sync.Mutex
	members map[string]Conn
}

type Registry struct {
	logger *zap.Logger

	mu        sync.RWMutex
	rooms     map[string]*room
	connRooms map[string]map[string]struct{}
}

func NewRegistry(logger *zap.Logger) *Registry {
	return &Registry{
		logger:    logger.With(zap.String("component", "room_registry")),
		rooms:     make(map[string]*room),
		connRooms: make(map[string]map[string]struct{}),
	}
}

// Subscribe adds conn to the room of code, creating the room on first use.
// Subscribing twice is a no-op.
func (that *Registry) Subscribe(code string, conn Conn) {
	that.mu.Lock()
	defer that.mu.Unlock()

	r, ok := that.rooms[code]
	if !ok {
		r = &room{members: make(map[string]Conn)}
		that.rooms[code] = r
	}
	r.members[conn.ID()] = conn

	codes, ok := that.connRooms[conn.ID()]
	if !ok {
		codes = make(map[string]struct{})
		that.connRooms[conn.ID()] = codes
	}
	codes[code] = struct{}{}
}

// Unsubscribe removes conn from one room. Empty rooms are dropped.
func (that *Registry) Unsubscribe(code string, conn Conn) {
	that.mu.Lock()
	defer that.mu.Unlock()

	that.removeLocked(code, conn.ID())

	if codes, ok := that.connRooms[conn.ID()]; ok {
		delete(codes, code)
		if len(codes) == 0 {
			delete(that.connRooms, conn.ID())
		}
	}
}

// UnsubscribeAll removes conn from every room it joined.
func (that *Registry) UnsubscribeAll(conn Conn) {
	that.mu.Lock()
	defer that.mu.Unlock()

	for code := range that.connRooms[conn.ID()] {
		that.removeLocked(code, conn.ID())
	}
	delete(that.connRooms, conn.ID())
}

func (that *Registry) removeLocked(code, connID string) {
	r, ok := that.rooms[code]
	if !ok {
		return
	}

	delete(r.members, connID)
	if len(r.members) == 0 {
		delete(that.rooms, code)
	}
}

// Broadcast sends msg to every member of the room. A failing member is logged
// and skipped. Concurrent broadcasts to the same room are delivered in the
// order they acquire the room.
func (that *Registry) Broadcast(ctx context.Context, code string, msg any) {
	log := that.logger.With(zap.String("method", "Broadcast"), zap.String("game_code", code))

	that.mu.RLock()
	r, ok := that.rooms[code]
	that.mu.RUnlock()

	if !ok {
		return
	}

	r.sendMu.Lock()
	defer r.sendMu.Unlock()

	that.mu.RLock()
	members := make([]Conn, 0, len(r.members))
	for _, conn := range r.members {
		members = append(members, conn)
	}
	that.mu.RUnlock()

	for _, conn := range members {
		if err := conn.Send(ctx, msg); err != nil {
			log.Warn("failed to deliver message", zap.String("conn_id", conn.ID()), zap.Error(err))
		}
	}
}

// Members returns the number of connections watching code.
func (that *Registry) Members(code string) int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	if r, ok := that.rooms[code]; ok {
		return len(r.members)
	}

	return 0
}

// Rooms returns the number of rooms with at least one member.
func (that *Registry) Rooms() int {
	that.mu.RLock()
	defer that.mu.RUnlock()

	return len(that.rooms)
}
