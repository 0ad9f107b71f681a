// Package device tracks the other nodes seen on the bus: their ISO NAME,
// claimed source address, product information and configuration information.
package device

import (
	"sync"
	"time"

	n2k "github.com/oceanbus/n2k-node"
	"github.com/oceanbus/n2k-node/pgn"
)

// requestRetryInterval is both the delay before the first follow-up ISO
// Request for a newly claimed node's Product/Configuration Information, and
// the interval between retries while that node hasn't answered yet.
const requestRetryInterval = 1000 * time.Millisecond

// Record describes one node seen on the bus, built up from its ISO Address
// Claim, Product Information and Configuration Information broadcasts.
type Record struct {
	NAME   uint64
	Name   pgn.Name
	Source uint8

	ProductInfo    pgn.ProductInformation
	HasProductInfo bool

	ConfigInfo    pgn.ConfigurationInformation
	HasConfigInfo bool

	LastSeen time.Time
}

// slot tracks the request timers for whichever Record currently holds a
// given source address.
type slot struct {
	record *Record

	claimed              time.Time
	productInfoRequested time.Time
	configInfoRequested  time.Time
}

// Registry tracks every node seen on the bus, keyed by both its NAME (stable
// identity) and its currently claimed source address (volatile -- it can
// change under address-claim contention). Registry has no background
// goroutine: Process folds in one received Message and Tick returns
// whichever follow-up ISO Requests are now due, leaving the caller to
// actually write them.
type Registry struct {
	mu sync.Mutex

	byNAME   map[uint64]*Record
	bySource [n2k.AddressNull]*slot

	now func() time.Time
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byNAME: make(map[uint64]*Record),
		now:    time.Now,
	}
}

// Process folds one received Message into the registry. It returns true if
// the message changed which node holds a source address (a new claim or a
// contention takeover), so callers can react (e.g. invalidate cached routing).
func (r *Registry) Process(msg n2k.Message) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	source := msg.Source
	var sl *slot
	if source >= n2k.AddressNull { // 254/255 are NULL/global, not a real node address
		sl = &slot{}
	} else {
		sl = r.bySource[source]
		if sl == nil {
			sl = &slot{}
			r.bySource[source] = sl
		}
	}

	switch msg.PGN {
	case pgn.ISOAddressClaim{}.PGN():
		return r.processAddressClaim(sl, msg)
	case pgn.ProductInformation{}.PGN():
		return false, r.processProductInformation(sl, msg)
	case pgn.ConfigurationInformation{}.PGN():
		return false, r.processConfigurationInformation(sl, msg)
	}
	return false, nil
}

func (r *Registry) processAddressClaim(sl *slot, msg n2k.Message) (bool, error) {
	claim, err := pgn.DecodeISOAddressClaim(msg)
	if err != nil {
		return false, err
	}
	name := claim.Name
	NAME := name.Uint64()

	rec, ok := r.byNAME[NAME]
	if !ok {
		rec = &Record{NAME: NAME, Name: name}
		r.byNAME[NAME] = rec
	}
	rec.Source = msg.Source
	rec.LastSeen = msg.Time

	claimedAt := msg.Time
	if claimedAt.IsZero() {
		claimedAt = r.now()
	}

	changed := false
	if sl.record == nil {
		// We started listening on an already-claimed network: assume this
		// claim settles ownership of the address.
		sl.record = rec
		sl.claimed = claimedAt
		changed = true
	} else if sl.record.NAME != NAME && NAME < sl.record.NAME {
		// Lower NAME wins the address under J1939 address-claim rules.
		sl.record = rec
		sl.claimed = claimedAt
		changed = true
	}
	return changed, nil
}

func (r *Registry) processProductInformation(sl *slot, msg n2k.Message) error {
	if sl.record == nil {
		return nil
	}
	info, err := pgn.DecodeProductInformation(msg)
	if err != nil {
		return err
	}
	sl.record.ProductInfo = info
	sl.record.HasProductInfo = true
	return nil
}

func (r *Registry) processConfigurationInformation(sl *slot, msg n2k.Message) error {
	if sl.record == nil {
		return nil
	}
	info, err := pgn.DecodeConfigurationInformation(msg)
	if err != nil {
		return err
	}
	sl.record.ConfigInfo = info
	sl.record.HasConfigInfo = true
	return nil
}

// Tick returns the ISO Requests now due: Product Information for any node
// that hasn't answered yet, requested requestRetryInterval after its
// address claim and retried every requestRetryInterval after that, then
// Configuration Information the same way once Product Information has
// arrived. ownSource is used as the Source of each outgoing request
// (n2k.AddressNull if this node has not claimed its own address yet).
func (r *Registry) Tick(now time.Time, ownSource uint8) []n2k.Message {
	r.mu.Lock()
	defer r.mu.Unlock()

	var due []n2k.Message
	for source := 0; source < len(r.bySource); source++ {
		sl := r.bySource[source]
		if sl == nil || sl.record == nil {
			continue
		}
		if !sl.record.HasProductInfo && dueFor(now, sl.claimed, sl.productInfoRequested) {
			sl.productInfoRequested = now
			due = append(due, requestFor(pgn.ProductInformation{}.PGN(), uint8(source), ownSource, now))
		}
		if sl.record.HasProductInfo && !sl.record.HasConfigInfo && dueFor(now, sl.claimed, sl.configInfoRequested) {
			sl.configInfoRequested = now
			due = append(due, requestFor(pgn.ConfigurationInformation{}.PGN(), uint8(source), ownSource, now))
		}
	}
	return due
}

// dueFor reports whether a follow-up request should fire now: the first
// request is due requestRetryInterval after since, and every
// requestRetryInterval after lastRequested while still unanswered.
func dueFor(now, since, lastRequested time.Time) bool {
	if lastRequested.IsZero() {
		return now.Sub(since) >= requestRetryInterval
	}
	return now.Sub(lastRequested) >= requestRetryInterval
}

func requestFor(requestedPGN uint32, destination, ownSource uint8, now time.Time) n2k.Message {
	req := pgn.ISORequest{RequestedPGN: requestedPGN}
	msg, _ := req.EncodeMessage(n2k.TxContext{Source: ownSource, Destination: destination, Time: now})
	return msg
}

// Records returns every node this registry has ever seen a NAME for.
func (r *Registry) Records() []Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]Record, 0, len(r.byNAME))
	for _, rec := range r.byNAME {
		out = append(out, *rec)
	}
	return out
}

// BySource returns the node currently holding each claimed source address.
func (r *Registry) BySource() map[uint8]Record {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make(map[uint8]Record)
	for source, sl := range r.bySource {
		if sl == nil || sl.record == nil {
			continue
		}
		out[uint8(source)] = *sl.record
	}
	return out
}
