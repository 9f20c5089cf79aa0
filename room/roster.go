// Copyright 2026 The Hallway Authors
// SPDX-License-Identifier: Apache-2.0

package room

import (
	"sort"
	"sync"

	"github.com/hallway-project/hallway/wire"
)

// Roster tracks the sessions present in one room, keyed by session ID.
// The owning Room mutates it from its event-processing path; everything
// else reads synchronous snapshots. All methods are safe for concurrent
// use.
//
// The roster tolerates duplicate and out-of-order notifications: adding a
// present session overwrites it, removing an absent one is a no-op, and a
// rename for an absent session is dropped (the session arrives correctly
// named on the next snapshot).
type Roster struct {
	mu            sync.Mutex
	sessions      map[string]wire.SessionView
	selfSessionID string
}

// NewRoster returns an empty roster.
func NewRoster() *Roster {
	return &Roster{sessions: make(map[string]wire.SessionView)}
}

// ApplySnapshot atomically replaces the entire roster with listing and
// records which entry is this connection's own session.
func (r *Roster) ApplySnapshot(listing []wire.SessionView, selfSessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = make(map[string]wire.SessionView, len(listing))
	for _, view := range listing {
		r.sessions[view.SessionID] = view
	}
	r.selfSessionID = selfSessionID
}

// Clear removes every entry and forgets the self session.
func (r *Roster) Clear() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions = make(map[string]wire.SessionView)
	r.selfSessionID = ""
}

// Add inserts or overwrites one session.
func (r *Roster) Add(view wire.SessionView) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[view.SessionID] = view
}

// Remove deletes the session with the given ID, returning the removed
// view. Removing an absent ID reports ok=false and changes nothing.
func (r *Roster) Remove(sessionID string) (wire.SessionView, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	view, ok := r.sessions[sessionID]
	if ok {
		delete(r.sessions, sessionID)
	}
	return view, ok
}

// Rename updates the name of the session with the given ID in place.
// Renaming an absent session reports ok=false and changes nothing.
func (r *Roster) Rename(sessionID, name string) (wire.SessionView, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	view, ok := r.sessions[sessionID]
	if !ok {
		return wire.SessionView{}, false
	}
	view.Name = name
	r.sessions[sessionID] = view
	return view, true
}

// RemovePartition removes every session hosted on the given server
// instance, returning the removed views. This handles network-event
// partitions, where a backend server's sessions all drop at once without
// individual part events.
func (r *Roster) RemovePartition(serverID, serverEra string) []wire.SessionView {
	r.mu.Lock()
	defer r.mu.Unlock()
	var removed []wire.SessionView
	for id, view := range r.sessions {
		if view.ServerID == serverID && view.ServerEra == serverEra {
			removed = append(removed, view)
			delete(r.sessions, id)
		}
	}
	sort.Slice(removed, func(i, j int) bool { return removed[i].SessionID < removed[j].SessionID })
	return removed
}

// Get returns the session with the given ID.
func (r *Roster) Get(sessionID string) (wire.SessionView, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	view, ok := r.sessions[sessionID]
	return view, ok
}

// Self returns this connection's own roster entry, once the snapshot has
// resolved it.
func (r *Roster) Self() (wire.SessionView, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	view, ok := r.sessions[r.selfSessionID]
	return view, ok
}

// Len returns the number of sessions present.
func (r *Roster) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.sessions)
}

// List returns every session, sorted by name then session ID for
// deterministic iteration.
func (r *Roster) List() []wire.SessionView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return sortViews(r.collect(func(wire.SessionView) bool { return true }))
}

// People returns the non-bot, non-lurker sessions.
func (r *Roster) People() []wire.SessionView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return sortViews(r.collect(func(view wire.SessionView) bool {
		kind := view.SessionType()
		return (kind == "account" || kind == "agent") && !view.IsLurker()
	}))
}

// Bots returns the named bot sessions.
func (r *Roster) Bots() []wire.SessionView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return sortViews(r.collect(func(view wire.SessionView) bool {
		return view.SessionType() == "bot" && !view.IsLurker()
	}))
}

// Lurkers returns the sessions that never set a nick.
func (r *Roster) Lurkers() []wire.SessionView {
	r.mu.Lock()
	defer r.mu.Unlock()
	return sortViews(r.collect(wire.SessionView.IsLurker))
}

// collect is called with r.mu held.
func (r *Roster) collect(keep func(wire.SessionView) bool) []wire.SessionView {
	views := make([]wire.SessionView, 0, len(r.sessions))
	for _, view := range r.sessions {
		if keep(view) {
			views = append(views, view)
		}
	}
	return views
}

func sortViews(views []wire.SessionView) []wire.SessionView {
	sort.Slice(views, func(i, j int) bool {
		if views[i].Name != views[j].Name {
			return views[i].Name < views[j].Name
		}
		return views[i].SessionID < views[j].SessionID
	})
	return views
}
