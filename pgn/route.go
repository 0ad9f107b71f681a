package pgn

import n2k "github.com/oceanbus/n2k-node"

// Waypoint is one entry of a route or waypoint list.
type Waypoint struct {
	ID        uint16
	Name      string
	Latitude  n2k.Double // degrees, signed, resolution 1e-7
	Longitude n2k.Double // degrees, signed, resolution 1e-7
}

func encodeWaypoint(e *n2k.Encoder, w Waypoint) {
	e.AddUint(n2k.NewInt(int64(w.ID)), 2)
	e.AddVarStr(w.Name)
	e.AddDouble(w.Latitude, 1e-7, 4, true)
	e.AddDouble(w.Longitude, 1e-7, 4, true)
}

func decodeWaypoint(d *n2k.Decoder) (Waypoint, error) {
	var w Waypoint
	id, err := d.Uint(2)
	if err != nil {
		return w, err
	}
	w.ID = uint16(id.Value)
	if w.Name, _, err = d.VarStr(); err != nil {
		return w, err
	}
	if w.Latitude, err = d.Double(1e-7, 4, true); err != nil {
		return w, err
	}
	if w.Longitude, err = d.Double(1e-7, 4, true); err != nil {
		return w, err
	}
	return w, nil
}

// RouteWaypointInfo is PGN 129285 (Fast Packet): a route definition plus its
// ordered waypoints.
type RouteWaypointInfo struct {
	StartRID     uint16
	ItemCount    uint16
	DatabaseID   uint16
	RouteID      uint16
	NavDirection uint8 // 2-bit
	RouteName    string
	Waypoints    []Waypoint
}

func (RouteWaypointInfo) PGN() uint32 { return 129285 }

func (r RouteWaypointInfo) EncodeMessage(ctx n2k.TxContext) (n2k.Message, error) {
	e := n2k.NewEncoder()
	e.AddUint(n2k.NewInt(int64(r.StartRID)), 2)
	e.AddUint(n2k.NewInt(int64(r.ItemCount)), 2)
	e.AddUint(n2k.NewInt(int64(len(r.Waypoints))), 2)
	e.AddUint(n2k.NewInt(int64(r.DatabaseID)), 2)
	e.AddUint(n2k.NewInt(int64(r.RouteID)), 2)
	e.AddByte((r.NavDirection & 0x3) | 0xFC)
	e.AddVarStr(r.RouteName)
	for _, w := range r.Waypoints {
		encodeWaypoint(e, w)
	}
	return finish(e, 129285, 3, ctx)
}

// DecodeRouteWaypointInfo parses a PGN 129285 payload.
func DecodeRouteWaypointInfo(msg n2k.Message) (RouteWaypointInfo, error) {
	d := n2k.NewDecoder(msg.Data)
	var r RouteWaypointInfo
	startRID, err := d.Uint(2)
	if err != nil {
		return r, err
	}
	r.StartRID = uint16(startRID.Value)
	itemCount, err := d.Uint(2)
	if err != nil {
		return r, err
	}
	r.ItemCount = uint16(itemCount.Value)
	total, err := d.Uint(2)
	if err != nil {
		return r, err
	}
	dbID, err := d.Uint(2)
	if err != nil {
		return r, err
	}
	r.DatabaseID = uint16(dbID.Value)
	routeID, err := d.Uint(2)
	if err != nil {
		return r, err
	}
	r.RouteID = uint16(routeID.Value)
	navByte, err := d.Byte()
	if err != nil {
		return r, err
	}
	r.NavDirection = navByte & 0x3
	if r.RouteName, _, err = d.VarStr(); err != nil {
		return r, err
	}
	r.Waypoints = make([]Waypoint, 0, int(total.Value))
	for d.Len() > 0 {
		w, err := decodeWaypoint(d)
		if err != nil {
			return r, err
		}
		r.Waypoints = append(r.Waypoints, w)
	}
	return r, nil
}

// WaypointList is PGN 130074 (Fast Packet).
type WaypointList struct {
	StartRID   uint16
	ItemCount  uint16
	DatabaseID uint16
	Waypoints  []Waypoint
}

func (WaypointList) PGN() uint32 { return 130074 }

func (l WaypointList) EncodeMessage(ctx n2k.TxContext) (n2k.Message, error) {
	e := n2k.NewEncoder()
	e.AddUint(n2k.NewInt(int64(l.StartRID)), 2)
	e.AddUint(n2k.NewInt(int64(l.ItemCount)), 2)
	e.AddUint(n2k.NewInt(int64(len(l.Waypoints))), 2)
	e.AddUint(n2k.NewInt(int64(l.DatabaseID)), 2)
	for _, w := range l.Waypoints {
		encodeWaypoint(e, w)
	}
	return finish(e, 130074, 7, ctx)
}

// DecodeWaypointList parses a PGN 130074 payload.
func DecodeWaypointList(msg n2k.Message) (WaypointList, error) {
	d := n2k.NewDecoder(msg.Data)
	var l WaypointList
	startRID, err := d.Uint(2)
	if err != nil {
		return l, err
	}
	l.StartRID = uint16(startRID.Value)
	itemCount, err := d.Uint(2)
	if err != nil {
		return l, err
	}
	l.ItemCount = uint16(itemCount.Value)
	total, err := d.Uint(2)
	if err != nil {
		return l, err
	}
	dbID, err := d.Uint(2)
	if err != nil {
		return l, err
	}
	l.DatabaseID = uint16(dbID.Value)
	l.Waypoints = make([]Waypoint, 0, int(total.Value))
	for d.Len() > 0 {
		w, err := decodeWaypoint(d)
		if err != nil {
			return l, err
		}
		l.Waypoints = append(l.Waypoints, w)
	}
	return l, nil
}
