// Copyright 2026 The Hallway Authors
// SPDX-License-Identifier: Apache-2.0

package room

import (
	"testing"

	"github.com/hallway-project/hallway/wire"
)

func view(sessionID, userID, name string) wire.SessionView {
	return wire.SessionView{
		UserID:    userID,
		Name:      name,
		ServerID:  "server-1",
		ServerEra: "era-1",
		SessionID: sessionID,
	}
}

func TestRosterSnapshotAndSelf(t *testing.T) {
	roster := NewRoster()
	roster.Add(view("stale", "account:stale", "gone"))

	roster.ApplySnapshot([]wire.SessionView{
		view("s1", "bot:me", "TestBot"),
		view("s2", "account:a", "alice"),
	}, "s1")

	if roster.Len() != 2 {
		t.Errorf("Len() = %d, want 2", roster.Len())
	}
	if _, ok := roster.Get("stale"); ok {
		t.Errorf("snapshot did not replace pre-existing entries")
	}
	self, ok := roster.Self()
	if !ok || self.Name != "TestBot" {
		t.Errorf("Self() = %+v, %v; want TestBot", self, ok)
	}
}

func TestRosterTolerantMutations(t *testing.T) {
	roster := NewRoster()
	roster.Add(view("s1", "account:a", "alice"))

	// Adding a present session overwrites it.
	roster.Add(view("s1", "account:a", "alicia"))
	if roster.Len() != 1 {
		t.Fatalf("duplicate add grew the roster to %d", roster.Len())
	}
	if got, _ := roster.Get("s1"); got.Name != "alicia" {
		t.Errorf("duplicate add kept name %q, want alicia", got.Name)
	}

	// Removing an absent session is a no-op.
	if _, ok := roster.Remove("missing"); ok {
		t.Errorf("Remove of an absent session reported ok")
	}
	if roster.Len() != 1 {
		t.Errorf("Remove of an absent session changed the roster")
	}

	// Renaming an absent session is dropped.
	if _, ok := roster.Rename("missing", "nobody"); ok {
		t.Errorf("Rename of an absent session reported ok")
	}

	renamed, ok := roster.Rename("s1", "alice2")
	if !ok || renamed.Name != "alice2" {
		t.Errorf("Rename = %+v, %v; want alice2", renamed, ok)
	}

	removed, ok := roster.Remove("s1")
	if !ok || removed.Name != "alice2" {
		t.Errorf("Remove = %+v, %v; want alice2", removed, ok)
	}
	if roster.Len() != 0 {
		t.Errorf("Len() = %d after removing the last session", roster.Len())
	}
}

func TestRosterRemovePartition(t *testing.T) {
	roster := NewRoster()
	partitioned := view("s2", "account:b", "bob")
	partitioned.ServerID = "server-9"
	partitioned.ServerEra = "era-9"
	alsoPartitioned := view("s3", "account:c", "carol")
	alsoPartitioned.ServerID = "server-9"
	alsoPartitioned.ServerEra = "era-9"
	sameServerOlderEra := view("s4", "account:d", "dave")
	sameServerOlderEra.ServerID = "server-9"

	roster.ApplySnapshot([]wire.SessionView{
		view("s1", "account:a", "alice"),
		partitioned,
		alsoPartitioned,
		sameServerOlderEra,
	}, "s1")

	removed := roster.RemovePartition("server-9", "era-9")
	if len(removed) != 2 {
		t.Fatalf("RemovePartition removed %d sessions, want 2", len(removed))
	}
	if removed[0].SessionID != "s2" || removed[1].SessionID != "s3" {
		t.Errorf("removed = [%s %s], want sorted [s2 s3]", removed[0].SessionID, removed[1].SessionID)
	}
	if _, ok := roster.Get("s4"); !ok {
		t.Errorf("partition removed a session from a different era")
	}
	if roster.Len() != 2 {
		t.Errorf("Len() = %d after partition, want 2", roster.Len())
	}
}

func TestRosterFilters(t *testing.T) {
	roster := NewRoster()
	lurker := view("s4", "agent:l", "")
	roster.ApplySnapshot([]wire.SessionView{
		view("s1", "account:a", "zoe"),
		view("s2", "agent:g", "guest"),
		view("s3", "bot:b", "Helper"),
		lurker,
	}, "s1")

	people := roster.People()
	if len(people) != 2 || people[0].Name != "guest" || people[1].Name != "zoe" {
		t.Errorf("People() = %+v, want [guest zoe]", people)
	}
	bots := roster.Bots()
	if len(bots) != 1 || bots[0].Name != "Helper" {
		t.Errorf("Bots() = %+v, want [Helper]", bots)
	}
	lurkers := roster.Lurkers()
	if len(lurkers) != 1 || lurkers[0].SessionID != "s4" {
		t.Errorf("Lurkers() = %+v, want [s4]", lurkers)
	}
	if got := len(roster.List()); got != 4 {
		t.Errorf("List() returned %d sessions, want 4", got)
	}
}
