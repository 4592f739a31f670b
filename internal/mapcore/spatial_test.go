package mapcore

import (
	"testing"

	"github.com/google/uuid"

	"localist_backend/internal/notify"
)

type recordedPulse struct {
	sessionID string
	intensity notify.Intensity
}

type fakeHaptics struct {
	pulses []recordedPulse
}

func (h *fakeHaptics) Pulse(sessionID string, intensity notify.Intensity) {
	h.pulses = append(h.pulses, recordedPulse{sessionID, intensity})
}

type fakeNotifier struct {
	successes []string
	errors    []string
}

func (n *fakeNotifier) Success(_, messageKey string) {
	n.successes = append(n.successes, messageKey)
}

func (n *fakeNotifier) Error(_, messageKey string) {
	n.errors = append(n.errors, messageKey)
}

func countOps(commands []Command, op string) int {
	n := 0
	for _, cmd := range commands {
		if cmd.Op == op {
			n++
		}
	}
	return n
}

func lastOp(t *testing.T, commands []Command, op string) Command {
	t.Helper()
	for i := len(commands) - 1; i >= 0; i-- {
		if commands[i].Op == op {
			return commands[i]
		}
	}
	t.Fatalf("no %q command recorded", op)
	return Command{}
}

func testPin(name string, lat, lon float64) Pin {
	return Pin{ID: uuid.New(), Name: name, Lat: lat, Lon: lon, Icon: "map-pin", Color: "#ef4444"}
}

func newSpatialFixture() (*SpatialIndex, *CommandView, *fakeHaptics) {
	view := NewCommandView()
	haptics := &fakeHaptics{}
	return NewSpatialIndex("session-1", view, haptics), view, haptics
}

func TestSetAll_ReplacesExistingMarkers(t *testing.T) {
	index, view, _ := newSpatialFixture()

	old1 := testPin("Old A", 10, 20)
	old2 := testPin("Old B", 11, 21)
	index.SetAll([]Pin{old1, old2})
	view.Drain()

	fresh := testPin("Fresh", 12, 22)
	index.SetAll([]Pin{fresh})

	commands := view.Commands()
	if got := countOps(commands, "removeMarker"); got != 2 {
		t.Fatalf("expected both old markers removed, got %d removals", got)
	}
	if got := countOps(commands, "addMarker"); got != 1 {
		t.Fatalf("expected one marker added, got %d", got)
	}

	pins := index.Pins()
	if len(pins) != 1 || pins[0].ID != fresh.ID {
		t.Fatalf("expected only the fresh pin mirrored, got %+v", pins)
	}
}

func TestAdd_ReplacesInPlaceAndKeepsSelection(t *testing.T) {
	index, view, _ := newSpatialFixture()

	pin := testPin("Cafe", 10, 20)
	index.SetAll([]Pin{pin})
	if !index.Select(pin.ID, 16, 80) {
		t.Fatal("expected select to succeed")
	}
	view.Drain()

	moved := pin
	moved.Lat = 10.001
	index.Add(moved)

	if index.Len() != 1 {
		t.Fatalf("expected in-place replace, got %d pins", index.Len())
	}
	marker := lastOp(t, view.Commands(), "addMarker").Marker
	if marker.Lat != 10.001 {
		t.Fatalf("expected re-added marker at new position, got %v", marker.Lat)
	}
	if !marker.Selected {
		t.Fatal("expected selection to survive the in-place replace")
	}
}

func TestRemove_ClearsSelection(t *testing.T) {
	index, _, _ := newSpatialFixture()

	pin := testPin("Park", 10, 20)
	index.SetAll([]Pin{pin})
	index.Select(pin.ID, 16, 80)

	index.Remove(pin.ID)

	if index.Len() != 0 {
		t.Fatalf("expected empty index, got %d pins", index.Len())
	}
	if index.Selected() != uuid.Nil {
		t.Fatal("expected selection cleared with the removed pin")
	}

	// Removing again is a no-op.
	index.Remove(pin.ID)
}

func TestFindWithinRadius(t *testing.T) {
	index, _, _ := newSpatialFixture()

	atCenter := testPin("Here", 10, 20)
	near := testPin("Close", 10.0001, 20.0001)
	far := testPin("Far", 10.009, 20)
	index.SetAll([]Pin{atCenter, near, far})

	nearby := index.FindWithinRadius(10, 20, 0.05)
	if len(nearby) != 2 {
		t.Fatalf("expected 2 pins within 50m, got %d", len(nearby))
	}
	for _, p := range nearby {
		if p.ID == far.ID {
			t.Fatal("pin ~1km away must not appear in a 50m query")
		}
	}
}

func TestSelect_ExpandsCollapsedCluster(t *testing.T) {
	index, view, _ := newSpatialFixture()

	a := testPin("A", 10, 20)
	b := testPin("B", 10.0001, 20.0001)
	index.SetAll([]Pin{a, b})
	view.Drain()

	// At zoom 10 the two pins sit well within 80px of each other.
	if !index.Select(b.ID, 10, 80) {
		t.Fatal("expected select to succeed")
	}

	commands := view.Commands()
	if countOps(commands, "expandCluster") != 1 {
		t.Fatal("expected the collapsed cluster to expand before selection")
	}
	marker := lastOp(t, commands, "addMarker").Marker
	if !marker.Selected {
		t.Fatal("expected the target marker re-added selected")
	}
}

func TestSelect_SwitchesSelection(t *testing.T) {
	index, view, _ := newSpatialFixture()

	a := testPin("A", 10, 20)
	b := testPin("B", 50, 60)
	index.SetAll([]Pin{a, b})
	index.Select(a.ID, 16, 80)
	view.Drain()

	index.Select(b.ID, 16, 80)

	if index.Selected() != b.ID {
		t.Fatal("expected selection to move to the second pin")
	}
	var sawPreviousUnselected bool
	for _, cmd := range view.Commands() {
		if cmd.Op == "addMarker" && cmd.Marker.ID == markerID(a.ID) && !cmd.Marker.Selected {
			sawPreviousUnselected = true
		}
	}
	if !sawPreviousUnselected {
		t.Fatal("expected the previous selection re-added unstyled")
	}
}

func TestSelect_UnknownPin(t *testing.T) {
	index, view, _ := newSpatialFixture()
	index.SetAll([]Pin{testPin("A", 10, 20)})
	view.Drain()

	if index.Select(uuid.New(), 16, 80) {
		t.Fatal("expected select of an unknown pin to fail")
	}
	if len(view.Commands()) != 0 {
		t.Fatal("expected no view commands for a failed select")
	}
}

func TestDeselect_Idempotent(t *testing.T) {
	index, view, _ := newSpatialFixture()

	pin := testPin("A", 10, 20)
	index.SetAll([]Pin{pin})
	index.Select(pin.ID, 16, 80)
	view.Drain()

	index.Deselect()
	first := len(view.Commands())
	index.Deselect()

	if index.Selected() != uuid.Nil {
		t.Fatal("expected no selection")
	}
	if len(view.Commands()) != first {
		t.Fatal("expected the second deselect to issue no commands")
	}
}

func TestActivatePin_PulsesOnSuccessOnly(t *testing.T) {
	index, _, haptics := newSpatialFixture()

	pin := testPin("A", 10, 20)
	index.SetAll([]Pin{pin})

	if !index.ActivatePin(pin.ID, 16, 80) {
		t.Fatal("expected activation to succeed")
	}
	if len(haptics.pulses) != 1 || haptics.pulses[0].intensity != notify.Light {
		t.Fatalf("expected one light pulse, got %+v", haptics.pulses)
	}

	if index.ActivatePin(uuid.New(), 16, 80) {
		t.Fatal("expected activation of an unknown pin to fail")
	}
	if len(haptics.pulses) != 1 {
		t.Fatal("expected no pulse for a failed activation")
	}
}
