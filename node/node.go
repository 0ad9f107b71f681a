// Package node implements the NMEA 2000 node state machine: ISO address
// claim (with J1939 contention resolution), heartbeat broadcast, ISO Request
// responses and message dispatch to registered handlers. It is the single
// entry point a transport (package socketcan, package actisense) drives:
// feed it received Messages, tick it on a timer, and write back whatever it
// hands you.
//
// Node is not safe for concurrent use, by design: one goroutine owns one
// Node, matching the single-consumer-loop shape used elsewhere in this
// repo's read loops.
package node

import (
	"log/slog"
	"time"

	n2k "github.com/oceanbus/n2k-node"
	"github.com/oceanbus/n2k-node/device"
	"github.com/oceanbus/n2k-node/pgn"
)

type claimState uint8

const (
	stateClaiming claimState = iota
	stateClaimed
	stateLost
)

// Handler reacts to a received Message. PGN's second return value reports
// whether the first is exact; false means "every PGN" (a wildcard handler,
// e.g. a bus logger or the group-function dispatcher).
type Handler interface {
	PGN() (uint32, bool)
	Handle(msg n2k.Message)
}

// Node is one NMEA 2000 node: its own address claim state plus a Registry
// tracking every other node seen on the bus.
type Node struct {
	cfg    Config
	logger *slog.Logger

	registry *device.Registry
	handlers []Handler
	counters *messageCounter

	started         bool
	state           claimState
	source          uint8
	candidateSource uint8
	addressClaimStart uint8
	claimDeadline     time.Time

	heartbeatSeq  uint8
	nextHeartbeat time.Time

	productInfoDue  time.Time
	productInfoSent bool
	configInfoDue   time.Time
	configInfoSent  bool

	sendQueue []n2k.Message
}

// New validates cfg and returns an unstarted Node. Call Start to broadcast
// the first address claim.
func New(cfg Config, logger *slog.Logger) (*Node, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if logger == nil {
		logger = slog.Default()
	}
	cfg = cfg.withDefaults()
	return &Node{
		cfg:             cfg,
		logger:          logger,
		registry:        device.NewRegistry(),
		counters:        newMessageCounter(),
		state:           stateClaiming,
		candidateSource: cfg.PreferredSource,
	}, nil
}

// AddHandler registers h. Handlers run in registration order on every
// Receive call whose PGN matches (or every call, for a wildcard handler).
func (n *Node) AddHandler(h Handler) {
	n.handlers = append(n.handlers, h)
}

// Source returns this node's currently claimed source address and whether
// the claim has settled (false while still contending, or if lost).
func (n *Node) Source() (uint8, bool) {
	return n.source, n.state == stateClaimed
}

// Devices returns every other node this Node has seen an ISO Address Claim
// from.
func (n *Node) Devices() []device.Record {
	return n.registry.Records()
}

// Start broadcasts the node's first ISO Address Claim at its preferred
// source address and arms the claim-settlement timer.
func (n *Node) Start(now time.Time) []n2k.Message {
	n.started = true
	n.addressClaimStart = n.candidateSource
	n.state = stateClaiming
	n.claimDeadline = now.Add(n.cfg.ClaimTimeout)
	return []n2k.Message{n.claimMessage(now, n.candidateSource)}
}

func (n *Node) claimMessage(now time.Time, source uint8) n2k.Message {
	msg, _ := pgn.ISOAddressClaim{Name: n.cfg.Name}.EncodeMessage(n2k.TxContext{
		Source:      source,
		Destination: n2k.AddressGlobal,
		Time:        now,
	})
	return msg
}

// Send encodes payload addressed to destination and enqueues it for the
// next Drain/Tick, using this node's current (claiming or claimed) source
// address. It returns n2k.ErrBackpressure if the send queue is full.
func (n *Node) Send(payload pgn.Codec, destination uint8, now time.Time) error {
	source := n.candidateSource
	if n.state == stateClaimed {
		source = n.source
	}
	msg, err := payload.EncodeMessage(n2k.TxContext{Source: source, Destination: destination, Time: now})
	if err != nil {
		return err
	}
	return n.enqueue(msg)
}

// enqueue appends msg to the send queue. Once the queue is over its bound,
// the oldest undelivered message is dropped to make room and
// n2k.ErrBackpressure is surfaced; msg itself is still enqueued.
func (n *Node) enqueue(msg n2k.Message) error {
	n.sendQueue = append(n.sendQueue, msg)
	if len(n.sendQueue) > n.cfg.SendQueueSize {
		n.sendQueue = n.sendQueue[1:]
		n.logger.Warn("send queue full, dropped oldest message")
		return n2k.ErrBackpressure
	}
	return nil
}

// Retry re-enqueues msg, typically after the caller's transport failed to
// write it out. It is subject to the same backpressure/drop-oldest
// behavior as Send.
func (n *Node) Retry(msg n2k.Message) error {
	return n.enqueue(msg)
}

func (n *Node) drain() []n2k.Message {
	out := n.sendQueue
	n.sendQueue = nil
	return out
}

// Frames fragments each Message in msgs into the CAN frames that carry it
// (a single frame, or a Fast Packet sequence via n2k.FragmentFastPacket),
// assigning each PGN its own Fast Packet sequence counter. Transports whose
// wire API is frame-level (package socketcan) write these directly; a
// transport with a message-level write (package actisense) can skip this
// and hand the Message straight to its own WriteMessage.
func (n *Node) Frames(msgs []n2k.Message) ([]n2k.Frame, error) {
	var frames []n2k.Frame
	for _, msg := range msgs {
		fs, err := FragmentForWire(msg, n.counters.next(msg.PGN))
		if err != nil {
			return frames, err
		}
		frames = append(frames, fs...)
	}
	return frames, nil
}

// Tick advances time: it settles a pending address claim once the
// contention window passes (arming a one-shot Product/Configuration
// Information broadcast staggered by source address so a busy network
// doesn't get hit with every node's announcement at once), sends a due
// heartbeat, asks the device registry for any follow-up ISO Requests now
// due, and drains the send queue. It returns n2k.ErrAddressClaimLost once
// the claim walk-down has exhausted every candidate source address.
func (n *Node) Tick(now time.Time) ([]n2k.Message, error) {
	var out []n2k.Message

	if !n.started {
		return n.drain(), nil
	}

	if n.state == stateClaiming && !now.Before(n.claimDeadline) {
		n.state = stateClaimed
		n.source = n.candidateSource
		n.nextHeartbeat = now.Add(n.cfg.HeartbeatInterval)
		n.productInfoDue = now.Add(187*time.Millisecond + time.Duration(n.source)*8*time.Millisecond)
		n.configInfoDue = now.Add(187*time.Millisecond + time.Duration(n.source)*10*time.Millisecond)
		n.productInfoSent = false
		n.configInfoSent = false
		n.logger.Info("address claimed", "source", n.source)
	}

	if n.state == stateClaimed {
		if !now.Before(n.nextHeartbeat) {
			hb := pgn.Heartbeat{
				IntervalMs:      uint32(n.cfg.HeartbeatInterval / time.Millisecond),
				SequenceCounter: n.heartbeatSeq,
			}
			if msg, err := hb.EncodeMessage(n2k.TxContext{Source: n.source, Destination: n2k.AddressGlobal, Time: now}); err != nil {
				n.logger.Debug("failed to encode heartbeat", "error", err)
			} else {
				out = append(out, msg)
				n.heartbeatSeq++
			}
			n.nextHeartbeat = now.Add(n.cfg.HeartbeatInterval)
		}
		if !n.productInfoSent && !now.Before(n.productInfoDue) {
			if msg, err := n.cfg.ProductInfo.EncodeMessage(n2k.TxContext{Source: n.source, Destination: n2k.AddressGlobal, Time: now}); err != nil {
				n.logger.Debug("failed to encode product information", "error", err)
			} else {
				out = append(out, msg)
			}
			n.productInfoSent = true
		}
		if !n.configInfoSent && !now.Before(n.configInfoDue) {
			if msg, err := n.cfg.ConfigInfo.EncodeMessage(n2k.TxContext{Source: n.source, Destination: n2k.AddressGlobal, Time: now}); err != nil {
				n.logger.Debug("failed to encode configuration information", "error", err)
			} else {
				out = append(out, msg)
			}
			n.configInfoSent = true
		}
		out = append(out, n.registry.Tick(now, n.source)...)
	}

	out = append(out, n.drain()...)

	if n.state == stateLost {
		return out, n2k.ErrAddressClaimLost
	}
	return out, nil
}

// ForceHeartbeat emits a PGN 126993 Heartbeat immediately, bypassing the
// periodic schedule Tick otherwise follows, and reschedules the next
// periodic heartbeat from now. It is a no-op, returning no message and no
// error, while the address claim has not yet settled.
func (n *Node) ForceHeartbeat(now time.Time) ([]n2k.Message, error) {
	if n.state != stateClaimed {
		return nil, nil
	}
	hb := pgn.Heartbeat{
		IntervalMs:      uint32(n.cfg.HeartbeatInterval / time.Millisecond),
		SequenceCounter: n.heartbeatSeq,
	}
	msg, err := hb.EncodeMessage(n2k.TxContext{Source: n.source, Destination: n2k.AddressGlobal, Time: now})
	if err != nil {
		return nil, err
	}
	n.heartbeatSeq++
	n.nextHeartbeat = now.Add(n.cfg.HeartbeatInterval)
	return []n2k.Message{msg}, nil
}

// Receive folds one reassembled Message into the node: it resolves address
// claim contention for this node's own source address, updates the device
// registry, answers ISO Requests addressed to this node, and dispatches to
// every matching registered Handler. Replies are returned for the caller to
// write; nothing is sent as a side effect. It returns n2k.ErrAddressClaimLost
// if msg caused this node's claim walk-down to exhaust every candidate
// address.
func (n *Node) Receive(msg n2k.Message, now time.Time) ([]n2k.Message, error) {
	var out []n2k.Message

	if msg.PGN == (pgn.ISOAddressClaim{}).PGN() {
		out = append(out, n.handleAddressClaimContention(msg, now)...)
	}

	if _, err := n.registry.Process(msg); err != nil {
		n.logger.Debug("dropped malformed message", "pgn", msg.PGN, "source", msg.Source, "error", err)
	}

	if n.state == stateClaimed && msg.PGN == (pgn.ISORequest{}).PGN() &&
		(msg.Destination == n.source || msg.Destination == n2k.AddressGlobal) {
		resp, err := n.respondToRequest(msg, now)
		if err != nil {
			n.logger.Debug("failed to answer ISO request", "error", err)
		} else {
			out = append(out, resp...)
		}
	}

	for _, h := range n.handlers {
		if pgnNum, exact := h.PGN(); !exact || pgnNum == msg.PGN {
			h.Handle(msg)
		}
	}

	if n.state == stateClaimed && msg.PGN == GroupFunctionPGN {
		if resp, err := n.handleUnansweredGroupFunction(msg, now); err != nil {
			n.logger.Debug("failed to encode group function acknowledge", "error", err)
		} else {
			out = append(out, resp...)
		}
	}

	out = append(out, n.drain()...)

	if n.state == stateLost {
		return out, n2k.ErrAddressClaimLost
	}
	return out, nil
}

// stepDown is the address-claim walk-down: try the next lower source
// address, wrapping from 0 back to n2k.MaxCANBusAddress.
func stepDown(source uint8) uint8 {
	if source == 0 {
		return n2k.MaxCANBusAddress
	}
	return source - 1
}

func (n *Node) handleAddressClaimContention(msg n2k.Message, now time.Time) []n2k.Message {
	if !n.started {
		return nil
	}
	var mine uint8
	switch n.state {
	case stateClaiming:
		mine = n.candidateSource
	case stateClaimed:
		mine = n.source
	default:
		return nil
	}
	if msg.Source != mine {
		return nil
	}

	claim, err := pgn.DecodeISOAddressClaim(msg)
	if err != nil {
		n.logger.Debug("malformed address claim", "error", err)
		return nil
	}
	theirs := claim.Name.Uint64()
	ours := n.cfg.Name.Uint64()
	if theirs == ours {
		return nil // our own claim, reflected back by the bus
	}

	if theirs < ours {
		next := stepDown(mine)
		if next == n.addressClaimStart {
			n.state = stateLost
			n.logger.Error("address claim lost, no free source address available")
			return []n2k.Message{n.claimMessage(now, n2k.AddressNull)}
		}
		n.candidateSource = next
		n.state = stateClaiming
		n.claimDeadline = now.Add(n.cfg.ClaimTimeout)
		n.logger.Info("address claim contention, retrying at lower address", "next_source", next)
		return []n2k.Message{n.claimMessage(now, next)}
	}

	// Our NAME wins the contention: re-assert by broadcasting our claim again.
	return []n2k.Message{n.claimMessage(now, mine)}
}

func (n *Node) respondToRequest(msg n2k.Message, now time.Time) ([]n2k.Message, error) {
	req, err := pgn.DecodeISORequest(msg)
	if err != nil {
		return nil, err
	}
	ctx := n2k.TxContext{Source: n.source, Destination: n2k.AddressGlobal, Time: now}

	switch req.RequestedPGN {
	case (pgn.ISOAddressClaim{}).PGN():
		m, err := (pgn.ISOAddressClaim{Name: n.cfg.Name}).EncodeMessage(ctx)
		return wrap(m, err)
	case (pgn.ProductInformation{}).PGN():
		m, err := n.cfg.ProductInfo.EncodeMessage(ctx)
		return wrap(m, err)
	case (pgn.ConfigurationInformation{}).PGN():
		m, err := n.cfg.ConfigInfo.EncodeMessage(ctx)
		return wrap(m, err)
	}

	m, err := (pgn.ISOAcknowledgement{Control: pgn.ISONak, PGN: req.RequestedPGN}).EncodeMessage(ctx)
	return wrap(m, err)
}

func wrap(m n2k.Message, err error) ([]n2k.Message, error) {
	if err != nil {
		return nil, err
	}
	return []n2k.Message{m}, nil
}

// handleUnansweredGroupFunction returns the default PGN 126208 Acknowledge
// (PGNNotSupported) reply when msg targets a PGN no registered
// GroupFunctionHandler owns. Registered handlers are expected to reply via
// their own OnRequest callback; this only fills the gap they leave.
func (n *Node) handleUnansweredGroupFunction(msg n2k.Message, now time.Time) ([]n2k.Message, error) {
	requested, ok := requestedGroupFunctionPGN(msg)
	if !ok {
		return nil, nil
	}
	for _, h := range n.handlers {
		gf, ok := h.(GroupFunctionHandler)
		if ok && gf.OnRequest != nil && gf.TargetPGN == requested {
			return nil, nil
		}
	}
	m, err := encodeGroupFunctionAcknowledge(requested, GroupFunctionPGNNotSupported, n.source, msg.Source, now)
	return wrap(m, err)
}
