// Package socketcan implements a Connection and Device over Linux SocketCAN,
// the transport a node uses when it sits directly on a CAN controller rather
// than behind a serial gateway such as an Actisense NGT-1.
package socketcan

import (
	"encoding/binary"
	"errors"
	"fmt"
	"net"
	"syscall"
	"time"

	"golang.org/x/sys/unix"

	n2k "github.com/oceanbus/n2k-node"
)

const (
	canRaw = 1

	// canIDMask is bitmask to get 0-28bits belonging to CAN ID from socketCAN struct
	canIDMask = uint32(0b111) << 29
	// canIDERRFlag is bit 29 in CAN ID and means ERR error message flag (0 = data frame, 1 = error message)
	canIDERRFlag = uint32(1 << 29)
	// canIDRTRFlag is bit 30 in CAN ID and means RTR remote transmission request (1 = rtr frame)
	canIDRTRFlag = uint32(1 << 30)
	// canIDEFFFlag is bit 31 in CAN ID and means EFF extended frame format / IDE identifier extension flag (0 = standard 11 bit, 1 = extended 29 bit)
	canIDEFFFlag = uint32(1 << 31)
)

// Connection is a raw SocketCAN socket bound to one CAN interface.
type Connection struct {
	socketFD int
	timeNow  func() time.Time
}

// NewConnection opens and binds a raw CAN socket on the named interface
// (e.g. "can0").
func NewConnection(ifName string) (*Connection, error) {
	ifi, err := net.InterfaceByName(ifName)
	if err != nil {
		return nil, fmt.Errorf("bad ifName: %w", err)
	}

	fd, err := unix.Socket(unix.AF_CAN, unix.SOCK_RAW, canRaw)
	if err != nil {
		return nil, fmt.Errorf("could not create CAN socket: %w", err)
	}

	addr := &unix.SockaddrCAN{Ifindex: ifi.Index}
	if err = unix.Bind(fd, addr); err != nil {
		return nil, fmt.Errorf("could not bind CAN socket: %w", err)
	}

	return &Connection{
		socketFD: fd,
		timeNow:  time.Now,
	}, nil
}

func isContinuableSocketErr(err error) bool {
	// EWOULDBLOCK - a blocking read/write hit the SO_RCVTIMEO/SO_SNDTIMEO
	// deadline with no data ready.
	// EINTR - a signal interrupted the blocking call.
	return err == syscall.EWOULDBLOCK || err == syscall.EINTR
}

var errReadTimeout = errors.New("read timeout")
var errWriteTimeout = errors.New("write timeout")

func (i Connection) SetReadTimeout(timeout time.Duration) error {
	return i.setSocketTimeout(unix.SO_RCVTIMEO, timeout)
}

func (i Connection) SetSendTimeout(timeout time.Duration) error {
	return i.setSocketTimeout(unix.SO_SNDTIMEO, timeout)
}

func (i Connection) setSocketTimeout(opt int, timeout time.Duration) error {
	tv := unix.NsecToTimeval(timeout.Nanoseconds())
	return unix.SetsockoptTimeval(i.socketFD, unix.SOL_SOCKET, opt, &tv)
}

func (i Connection) Close() error {
	return unix.Close(i.socketFD)
}

// SendFrame writes one CAN 2.0B extended frame built from f.
func (i Connection) SendFrame(f n2k.Frame) error {
	// Can frame structure: https://github.com/linux-can/can-utils/blob/affdc1b79973c7497bb8607603c24734e11a91aa/include/linux/can.h#L107
	canFrame := make([]byte, 16)

	canID := f.Header.Uint32() | canIDEFFFlag
	binary.LittleEndian.PutUint32(canFrame[0:4], canID)

	canFrame[4] = f.Length
	copy(canFrame[8:], f.Data[:f.Length])

	_, err := unix.Write(i.socketFD, canFrame)
	if isContinuableSocketErr(err) {
		return errWriteTimeout
	}
	return err
}

// ReadFrame blocks (up to any timeout set via SetReadTimeout) for one
// incoming CAN frame.
func (i Connection) ReadFrame() (n2k.Frame, error) {
	canFrame := make([]byte, 16)
	_, err := unix.Read(i.socketFD, canFrame)
	if err != nil {
		if isContinuableSocketErr(err) {
			return n2k.Frame{}, errReadTimeout
		}
		return n2k.Frame{}, err
	}
	canID := binary.LittleEndian.Uint32(canFrame[0:4])
	if canID&canIDRTRFlag != 0 {
		return n2k.Frame{}, errors.New("read CAN remote transmission request frame")
	} else if canID&canIDERRFlag != 0 {
		return n2k.Frame{}, errors.New("read CAN error message frame")
	}

	f := n2k.Frame{
		Time:   i.timeNow(),
		Header: n2k.FromCANID(canID &^ canIDMask),
		Length: canFrame[4],
	}
	copy(f.Data[:], canFrame[8:8+f.Length])

	return f, nil
}
