package actisense

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	n2k "github.com/oceanbus/n2k-node"
)

// EBL log file format used by Actisense W2K-1, also called "CAN-Raw (BST-95)
// message format". NGT-1 EBL files are probably in a different format.
//
// Example data frame from one EBL file:
// 1b 01 07 95 0e 28 9a 00 01 f8 09 3d 0d b3 22 48 32 59 0d 1b 0a
//
// 1b 01 <-- start of data frame (ESC+SOH)
//
//	07 95 <-- "95" is the row type, the CAN-Raw (BST-95) message format
//	     0e <-- length 14 bytes till end
//	       28 9a <-- timestamp 39464 (hex 9A28) (little endian)
//	            00 01 f8 09  <--- 0x09f80100 = src:0, dst:255, pgn:129025 (1f801), prio:2 (little endian)
//	                       3d 0d b3 22 48 32 59 0d <-- CAN payload (N2K endian rules), lat(32bit) 22b30d3d = 582159677, lon(32bit) 0d593248 = 223949384
//	                                               1b 0a <-- end of data frame (ESC+LF)
const (
	// SOH is start of data frame byte for Actisense BST-95 (EBL file created by Actisense W2K-1 device)
	SOH = 0x01
	// NL is end of data frame byte
	NL = 0x0A
	// ESC is marker byte before start/end data frame byte. Is sent before SOH or NL byte is sent (ESC+SOH or ESC+NL). Is escaped by sending double ESC+ESC characters.
	ESC = 0x1b
)

// EBLFormatDevice reads the Actisense EBL log file format.
type EBLFormatDevice struct {
	device io.ReadWriter

	sleepFunc func(timeout time.Duration)
	timeNow   func() time.Time

	config Config
}

// NewEBLFormatDevice creates a new EBLFormatDevice using the default Config.
func NewEBLFormatDevice(reader io.ReadWriter) *EBLFormatDevice {
	return NewEBLFormatDeviceWithConfig(reader, Config{})
}

// NewEBLFormatDeviceWithConfig creates a new EBLFormatDevice with the given Config.
func NewEBLFormatDeviceWithConfig(reader io.ReadWriter, config Config) *EBLFormatDevice {
	if config.ReceiveDataTimeout <= 0 {
		config.ReceiveDataTimeout = 5 * time.Second
	}
	return &EBLFormatDevice{
		device:    reader,
		sleepFunc: time.Sleep,
		timeNow:   time.Now,
		config:    config,
	}
}

// ReadMessage reads and parses one n2k.Message from an EBL log stream. It
// blocks until a full message is read, ctx is cancelled, or the stream has
// been silent longer than config.ReceiveDataTimeout.
func (d *EBLFormatDevice) ReadMessage(ctx context.Context) (n2k.Message, error) {
	message := make([]byte, n2k.MaxDataLen+16)
	messageByteIndex := 0

	buf := make([]byte, 1)
	lastReadWithDataTime := d.timeNow()
	var previousByteWasEscape bool
	var currentByte byte

	st := waitingStartOfMessage
	for {
		select {
		case <-ctx.Done():
			return n2k.Message{}, ctx.Err()
		default:
		}

		n, err := d.device.Read(buf)
		// on read errors we do not return immediately as for:
		// os.ErrDeadlineExceeded - we set new deadline on next iteration
		// io.EOF - we check if already read + received is enough to form complete message
		if err != nil && !(errors.Is(err, os.ErrDeadlineExceeded) || errors.Is(err, io.EOF)) {
			return n2k.Message{}, err
		}

		now := d.timeNow()
		if n == 0 {
			if errors.Is(err, io.EOF) && now.Sub(lastReadWithDataTime) > d.config.ReceiveDataTimeout {
				return n2k.Message{}, err
			}
			continue
		}
		lastReadWithDataTime = now
		previousByteWasEscape = currentByte == ESC
		currentByte = buf[0]

		switch st {
		case waitingStartOfMessage: // start of message is (ESC + SOH)
			if previousByteWasEscape && currentByte == SOH {
				st = readingMessageData
			}
		case readingMessageData:
			if currentByte == ESC {
				st = processingEscapeSequence
				break
			}
			message[messageByteIndex] = currentByte
			messageByteIndex++
		case processingEscapeSequence:
			if currentByte == ESC { // any ESC characters are double escaped (ESC ESC)
				st = readingMessageData
				message[messageByteIndex] = currentByte
				messageByteIndex++
				break
			}
			if currentByte == NL { // end of message sequence (ESC + NL)
				if messageByteIndex-2 <= 2 {
					return n2k.Message{}, errors.New("message too short to be BST95 format")
				}
				msg := message[0:messageByteIndex]
				if d.config.DebugLogRawMessageBytes {
					fmt.Printf("# DEBUG read raw actisense EBL message: %x\n", msg)
				}
				if msg[0] == 0x7 && msg[1] == cmdRAWActisenseMessageReceived { // 0x07+0x95 identifies a BST-95 message
					got, err := fromActisenseBST95Message(msg[2:], now)
					if err != nil {
						st, messageByteIndex = waitingStartOfMessage, 0
						continue
					}
					return got, nil
				}
				if d.config.DebugLogRawMessageBytes {
					fmt.Printf("# DEBUG unknown EBL message type read: %x\n", msg)
				}
			}
			// when an unknown ESC + ??? sequence arrives, discard the current
			// message and wait for the next start sequence.
			st = waitingStartOfMessage
			messageByteIndex = 0
		}
	}
}

func fromActisenseBST95Message(raw []byte, now time.Time) (n2k.Message, error) {
	const startOfData = 7 // length(1) + timestamp(2) + canid(4) = 7
	if len(raw) < 8 {     // startOfData + min length of data (1)
		return n2k.Message{}, errors.New("raw message actual length too short to be valid BST-95 message")
	}
	if int(raw[0]) != len(raw)-1 {
		return n2k.Message{}, errors.New("raw message length field does not match actual length")
	}

	canID := uint32(raw[3]) + uint32(raw[4])<<8 + uint32(raw[5])<<16 + uint32(raw[6])<<24
	header := n2k.FromCANID(canID)

	dataBytes := make([]byte, len(raw)-startOfData)
	copy(dataBytes, raw[startOfData:])

	return n2k.Message{
		Time:        now,
		PGN:         header.PGN,
		Source:      header.Source,
		Destination: header.Destination,
		Priority:    header.Priority,
		// W2K-1 uses an (offset) counter for the two-byte timestamp at
		// raw[1:3], relative to a "start" time recorded elsewhere in the EBL
		// file -- not a usable wall-clock value, so it is not carried here.
		Data: dataBytes,
	}, nil
}

// Initialize is a no-op: an EBL file is a recording, there is nothing to
// configure on the other end.
func (d *EBLFormatDevice) Initialize() error {
	return nil
}

// WriteMessage is a no-op: EBL is a read-only log format.
func (d *EBLFormatDevice) WriteMessage(ctx context.Context, msg n2k.Message) error {
	return nil
}

func (d *EBLFormatDevice) Close() error {
	if c, ok := d.device.(io.Closer); ok {
		return c.Close()
	}
	return errors.New("device does not implement Closer interface")
}
