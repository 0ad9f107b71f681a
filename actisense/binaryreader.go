package actisense

import (
	"context"
	"encoding/binary"
	"errors"
	"fmt"
	"io"
	"os"
	"syscall"
	"time"

	n2k "github.com/oceanbus/n2k-node"
)

const (
	// STX start packet byte for Actisense parsed NMEA2000 packet
	STX = 0x02
	// ETX end packet byte for Actisense parsed NMEA2000 packet
	ETX = 0x03
	// DLE marker byte before start/end packet byte. Is sent before STX or ETX byte is sent (DLE+STX or DLE+ETX)
	DLE = 0x10

	// cmdNGTMessageReceived identifies that packet is received/incoming NMEA2000 data message as NGT binary format.
	cmdNGTMessageReceived = 0x93
	// cmdNGTMessageSend identifies that packet is sent/outgoing NMEA2000 data message as NGT binary format.
	cmdNGTMessageSend = 0x94

	// cmdRAWActisenseMessageReceived identifies that packet is received/incoming NMEA2000 data message as RAW Actisense format.
	cmdRAWActisenseMessageReceived = 0x95
	// cmdRAWActisenseMessageSend identifies that packet is sent/outgoing NMEA2000 data message as RAW Actisense format.
	cmdRAWActisenseMessageSend = 0x96

	// cmdN2KMessageReceived identifies that packet is received/incoming NMEA2000 data message as N2K binary format.
	cmdN2KMessageReceived = 0xD0
	// cmdN2KMessageSend identifies that packet is sent/outgoing NMEA2000 data message as N2K binary format.
	cmdN2KMessageSend = 0xD1

	// cmdDeviceMessageReceived identifies that received packet is (BEMCMD) Actisense device specific message.
	cmdDeviceMessageReceived = 0xA0
	// cmdDeviceMessageSend identifies that sent packet is Actisense device specific message.
	cmdDeviceMessageSend = 0xA1

	// CanBoatFakePGNOffset is the offset applied to PGNs that an Actisense device
	// manufactures for its own status/info messages, so they never collide with a
	// real NMEA 2000 PGN.
	CanBoatFakePGNOffset uint32 = 0x40000
)

// BinaryFormatDevice implements an Actisense device speaking one of its binary
// wire formats: NGT-1 binary (NGT1/NGX), N2K binary (W2K-1) and RAW Actisense.
// All three share the same DLE/STX/ETX framing and differ only in how the
// payload between STX and ETX encodes the PGN header.
type BinaryFormatDevice struct {
	device io.ReadWriter

	sleepFunc func(timeout time.Duration)
	timeNow   func() time.Time

	config Config
}

// Config configures an Actisense binary-format device.
type Config struct {
	// ReceiveDataTimeout bounds how long reads may keep producing no data
	// before ReadMessage gives up; it does not bound any single read call,
	// which stays short so ctx cancellation is checked often.
	ReceiveDataTimeout time.Duration

	// DebugLogRawMessageBytes logs every sent/received raw frame.
	DebugLogRawMessageBytes bool
	// OutputDeviceMessages makes ReadMessage also return the device's own
	// status messages (decoded into the CanBoatFakePGNOffset PGN range)
	// instead of silently discarding them.
	OutputDeviceMessages bool

	// IsN2KWriter makes WriteMessage use the N2K binary (W2K-1) command byte
	// instead of the NGT-1 one. Only the command byte changes: the rest of
	// the packet keeps the NGT-1 binary layout WriteMessage builds.
	IsN2KWriter bool
}

// NewBinaryDevice creates a device using the default Config.
func NewBinaryDevice(reader io.ReadWriter) *BinaryFormatDevice {
	return NewBinaryDeviceWithConfig(reader, Config{})
}

// NewBinaryDeviceWithConfig creates a device with the given Config.
func NewBinaryDeviceWithConfig(reader io.ReadWriter, config Config) *BinaryFormatDevice {
	if config.ReceiveDataTimeout <= 0 {
		config.ReceiveDataTimeout = 5 * time.Second
	}
	return &BinaryFormatDevice{
		device:    reader,
		sleepFunc: time.Sleep,
		timeNow:   time.Now,
		config:    config,
	}
}

type state uint8

const (
	waitingStartOfMessage state = iota
	readingMessageData
	processingEscapeSequence
)

// ReadMessage reads and reassembles incoming data into one complete
// n2k.Message. It blocks until a full Message is available, ctx is
// cancelled, or the bus has been silent longer than config.ReceiveDataTimeout.
func (d *BinaryFormatDevice) ReadMessage(ctx context.Context) (n2k.Message, error) {
	// Actisense N2K binary messages can be as large as the ISO-TP max.
	message := make([]byte, n2k.MaxDataLen+32)
	messageByteIndex := 0

	buf := make([]byte, 1)
	lastReadWithDataTime := d.timeNow()
	var previousByte byte
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
		previousByte = currentByte
		currentByte = buf[0]

		switch st {
		case waitingStartOfMessage:
			if previousByte == DLE && currentByte == STX {
				st = readingMessageData
			}
		case readingMessageData:
			if currentByte == DLE {
				st = processingEscapeSequence
				break
			}
			message[messageByteIndex] = currentByte
			messageByteIndex++
		case processingEscapeSequence:
			if currentByte == DLE { // any DLE characters are double escaped (DLE DLE)
				st = readingMessageData
				message[messageByteIndex] = currentByte
				messageByteIndex++
				break
			}
			if currentByte == ETX { // end of message sequence
				msg := message[0:messageByteIndex]
				if d.config.DebugLogRawMessageBytes {
					fmt.Printf("# DEBUG read raw actisense binary message: %x\n", msg)
				}
				switch msg[0] {
				case cmdNGTMessageReceived, cmdNGTMessageSend:
					got, err := fromActisenseNGTBinaryMessage(msg, now)
					if err != nil {
						st, messageByteIndex = waitingStartOfMessage, 0
						continue
					}
					return got, nil
				case cmdN2KMessageReceived, cmdN2KMessageSend:
					got, err := fromActisenseN2KBinaryMessage(msg, now)
					if err != nil {
						st, messageByteIndex = waitingStartOfMessage, 0
						continue
					}
					return got, nil
				case cmdRAWActisenseMessageReceived, cmdRAWActisenseMessageSend:
					got, err := fromRawActisenseMessage(msg, now)
					if err != nil {
						st, messageByteIndex = waitingStartOfMessage, 0
						continue
					}
					return got, nil
				case cmdDeviceMessageReceived:
					if d.config.OutputDeviceMessages {
						got, err := fromNGTMessage(msg, now)
						if err == nil {
							return got, nil
						}
					}
				}
			}
			// when OutputDeviceMessages is off, or an unknown DLE+??? sequence arrives,
			// discard the current message and wait for the next start sequence.
			st = waitingStartOfMessage
			messageByteIndex = 0
		}
	}
}

func fromNGTMessage(raw []byte, now time.Time) (n2k.Message, error) {
	// first 2 bytes for raw are command(@0) + len(@1)
	if len(raw) < (12 + 2) {
		return n2k.Message{}, errors.New("raw message length too short to be valid device message")
	}
	payloadLen := int(raw[1])
	dataBytes := make([]byte, payloadLen)
	copy(dataBytes, raw[2:2+payloadLen])

	return n2k.Message{
		Time:        now,
		PGN:         CanBoatFakePGNOffset + uint32(dataBytes[0]),
		Source:      0,
		Destination: 0,
		Priority:    0,
		Data:        dataBytes,
	}, nil
}

func fromActisenseNGTBinaryMessage(raw []byte, now time.Time) (n2k.Message, error) {
	length := len(raw) - 2 // 2 bytes for: command(raw[0]) + len(raw[1])
	data := raw[2:]
	if length < 11 {
		return n2k.Message{}, errors.New("raw message length too short to be valid NMEA message")
	}

	const dataPartIndex = int(11)
	l := data[10]
	endIndex := dataPartIndex + int(l)
	if length != endIndex+1 {
		return n2k.Message{}, fmt.Errorf("data length byte value is different from actual length, %v!=%v", l, length-dataPartIndex)
	}

	if err := crcCheck(raw); err != nil {
		return n2k.Message{}, err
	}

	pgn := uint32(data[1]) + uint32(data[2])<<8 + uint32(data[3])<<16
	dataBytes := make([]byte, l)
	copy(dataBytes, data[dataPartIndex:endIndex])

	msg := n2k.Message{
		Time:        now,
		PGN:         pgn,
		Source:      data[5],
		Destination: data[4],
		Priority:    data[0],
		// NB: actisense ngt-1 seems to have some incrementing value for each message
		// ala 0x46f1ba15 -> 1190246933 -> 2007-09-20T03:08:53+03:00, not a wall-clock
		// timestamp, so it is not carried into n2k.Message.
		Data: dataBytes,
	}
	msg.CheckDestination()
	return msg, nil
}

func fromActisenseN2KBinaryMessage(raw []byte, now time.Time) (n2k.Message, error) {
	// first 3 bytes are: 1 byte for message type, 2 bytes for rest of message length
	length := uint32(raw[1]) + uint32(raw[2])<<8
	if int(length)+1 != len(raw) {
		return n2k.Message{}, errors.New("raw message length do not match actual data length")
	}

	dst := raw[3] // destination
	src := raw[4] // source

	dprp := raw[7]          // data page (1bit) + reserved (1bit) + priority bits (3bits)
	prio := (dprp >> 2) & 7 // priority bits are 3,4,5th bit
	rAndDP := dprp & 3      // data page + reserved is first 2 bits

	pduFormat := raw[6] // PF (PDU Format)
	pgn := uint32(rAndDP)<<16 + uint32(pduFormat)<<8
	if pduFormat >= 240 { // message is broadcast, PS contains group extension
		pgn += uint32(raw[5]) // +PS (PDU Specific)
	}

	const dataPartIndex = int(13)
	dataBytes := make([]byte, len(raw)-dataPartIndex)
	copy(dataBytes, raw[dataPartIndex:])

	msg := n2k.Message{
		Time:        now,
		PGN:         pgn,
		Source:      src,
		Destination: dst,
		Priority:    prio,
		// NB: actisense N2K binary carries a four-byte millisecond timestamp at
		// raw[9:13] that is not a wall-clock value, so it is not carried into
		// n2k.Message either.
		Data: dataBytes,
	}
	msg.CheckDestination()
	return msg, nil
}

// fromRawActisenseMessage parses the W2K RAW Actisense server format:
//
//	byte 0: command identifier
//	byte 1: length of time counter + canid + data
//	byte 2,3: time/counter
//	byte 4,5,6,7: CAN ID (little endian)
//	byte 8 ... (N-1): data
//	byte N (last): CRC
func fromRawActisenseMessage(raw []byte, now time.Time) (n2k.Message, error) {
	if len(raw) < 8 {
		return n2k.Message{}, errors.New("raw actisense message length too short to be valid")
	}

	dLen := int(raw[1])
	if dLen+3 != len(raw) {
		return n2k.Message{}, fmt.Errorf("data length byte value is different from actual length, %v!=%v", dLen, len(raw)-3)
	}

	if err := crcCheck(raw); err != nil {
		return n2k.Message{}, err
	}

	header := n2k.FromCANID(binary.LittleEndian.Uint32(raw[4:8]))
	dataBytes := make([]byte, dLen-6)
	copy(dataBytes, raw[8:len(raw)-1])

	msg := n2k.Message{
		Time:        now,
		PGN:         header.PGN,
		Source:      header.Source,
		Destination: header.Destination,
		Priority:    header.Priority,
		// NB: RAW Actisense carries a two-byte incrementing counter, not a
		// wall-clock timestamp, at raw[2:4].
		Data: dataBytes,
	}
	return msg, nil
}

// crcCheck calculates and checks message checksum.
func crcCheck(data []byte) error {
	if crc(data) != 0 {
		return errors.New("raw message has invalid crc")
	}
	return nil
}

// crc calculates message checksum. CRC is such that the sum of all unescaped data bytes plus the command byte
// plus the length adds up to zero, modulo 256.
func crc(data []byte) uint8 {
	crc := uint16(0)
	for _, d := range data {
		dd := uint16(d)
		if crc+dd > 255 {
			crc = dd - (256 - crc)
			continue
		}
		crc = crc + dd
	}
	return uint8(crc)
}

// Initialize initializes the connection to the device. Otherwise
// BinaryFormatDevice will not send data.
//
// Reverse engineered from Actisense NMEAreader: it instructs the device to
// clear its PGN message TX list, so it starts sending all PGNs.
//
// Actisense own documentation:
// Page 14: ACommsCommand_SetOperatingMode
// https://www.actisense.com/wp-content/uploads/2020/01/ActisenseComms-SDK-User-Manual-Issue-1.07-1.pdf
func (d *BinaryFormatDevice) Initialize() error {
	clearPGNFilter := []byte{ // `Receive All Transfer` Operating Mode
		cmdDeviceMessageSend, // Op code (device specific message)
		3,                    // length
		0x11,                 // msg byte 1, command `operating mode`
		0x02,                 // msg byte 2, argument 'receive all' (2 bytes)
		0x00,                 // msg byte 3
	}
	return d.writeBstMessage(clearPGNFilter)
}

// WriteMessage sends msg. Unlike the raw CAN transports, the Actisense
// binary formats carry a whole reassembled PGN payload (up to n2k.MaxDataLen
// bytes) per framed packet -- the device's own firmware does the CAN-level
// Fast Packet fragmentation, so this layer never needs to split msg.Data
// itself.
func (d *BinaryFormatDevice) WriteMessage(ctx context.Context, msg n2k.Message) error {
	if d.config.DebugLogRawMessageBytes {
		fmt.Printf("# DEBUG sending raw message: %+v\n", msg)
	}

	dataLen := len(msg.Data)
	buf := make([]byte, dataLen+2+6)

	buf[0] = cmdNGTMessageSend // NGT-1 device, NGT binary format
	if d.config.IsN2KWriter {
		buf[0] = cmdN2KMessageSend // W2K-1 device, N2K binary format
	}
	buf[1] = byte(dataLen + 6) // length

	buf[2] = msg.Priority
	buf[3] = byte(msg.PGN)
	buf[4] = byte(msg.PGN >> 8)
	buf[5] = byte(msg.PGN >> 16)
	buf[6] = msg.Destination
	buf[7] = byte(dataLen)
	copy(buf[8:], msg.Data)

	return d.writeBstMessage(buf)
}

func (d *BinaryFormatDevice) writeBstMessage(data []byte) error {
	packet := make([]byte, 0, len(data)+4+3) // 4 for prefix/suffix bytes and 3 for possible DLEs that need escaping
	packet = append(packet, DLE, STX)
	for _, b := range data {
		if b == DLE { // needs to be escaped DLE => DLE, DLE
			packet = append(packet, DLE)
		}
		packet = append(packet, b)
	}
	crcByte := 0 - crc(data)
	packet = append(packet, crcByte, DLE, ETX)

	toWrite := len(packet)
	totalWritten := 0
	retryCount := 0
	maxRetry := 5

	if d.config.DebugLogRawMessageBytes {
		fmt.Printf("# DEBUG sent raw actisense binary message: %x\n", packet)
	}
	for {
		n, err := d.device.Write(packet)
		if err != nil {
			if !errors.Is(err, syscall.EAGAIN) {
				return fmt.Errorf("actisense write failure: %w", err)
			}
			retryCount++
		}
		totalWritten += n

		if totalWritten >= toWrite {
			break
		}
		if retryCount > maxRetry {
			return errors.New("actisense BinaryFormatDevice writes failed. retry count reached")
		}
		d.sleepFunc(250 * time.Millisecond)
	}
	return nil
}

func (d *BinaryFormatDevice) Close() error {
	if c, ok := d.device.(io.Closer); ok {
		return c.Close()
	}
	return errors.New("device does not implement Closer interface")
}
