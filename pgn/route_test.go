package pgn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	n2k "github.com/oceanbus/n2k-node"
)

func testWaypoints() []Waypoint {
	return []Waypoint{
		{ID: 1, Name: "Start", Latitude: n2k.NewDouble(37.1), Longitude: n2k.NewDouble(-122.1)},
		{ID: 2, Name: "Mark A", Latitude: n2k.NewDouble(37.2), Longitude: n2k.NewDouble(-122.2)},
	}
}

func TestRouteWaypointInfo_roundTrip(t *testing.T) {
	r := RouteWaypointInfo{
		StartRID:     0,
		ItemCount:    2,
		DatabaseID:   1,
		RouteID:      5,
		NavDirection: 1,
		RouteName:    "Home Run",
		Waypoints:    testWaypoints(),
	}
	msg, err := r.EncodeMessage(txCtx())
	require.NoError(t, err)
	assert.Equal(t, uint32(129285), msg.PGN)

	got, err := DecodeRouteWaypointInfo(msg)
	require.NoError(t, err)
	assert.Equal(t, r.RouteID, got.RouteID)
	assert.Equal(t, r.RouteName, got.RouteName)
	require.Len(t, got.Waypoints, 2)
	assert.Equal(t, r.Waypoints[0].Name, got.Waypoints[0].Name)
	assert.InDelta(t, r.Waypoints[1].Latitude.Value, got.Waypoints[1].Latitude.Value, 1e-6)
}

func TestWaypointList_roundTrip(t *testing.T) {
	l := WaypointList{StartRID: 0, ItemCount: 2, DatabaseID: 9, Waypoints: testWaypoints()}
	msg, err := l.EncodeMessage(txCtx())
	require.NoError(t, err)

	got, err := DecodeWaypointList(msg)
	require.NoError(t, err)
	assert.Equal(t, l.DatabaseID, got.DatabaseID)
	require.Len(t, got.Waypoints, 2)
	assert.Equal(t, l.Waypoints[0].ID, got.Waypoints[0].ID)
}

func TestWaypointList_empty(t *testing.T) {
	l := WaypointList{StartRID: 0, ItemCount: 0, DatabaseID: 1}
	msg, err := l.EncodeMessage(txCtx())
	require.NoError(t, err)

	got, err := DecodeWaypointList(msg)
	require.NoError(t, err)
	assert.Empty(t, got.Waypoints)
}
