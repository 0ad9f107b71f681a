package actisense

import (
	"bytes"
	"context"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	n2k "github.com/oceanbus/n2k-node"
)

const rawASCIIDelimiter = ' '

// RawASCIIDevice reads and writes the Actisense W2K-1 RAW ASCII format: plain
// CAN frames with 8 bytes of data, so Fast Packet and ISO TP reassembly must
// be done on top of it.
type RawASCIIDevice struct {
	device  io.ReadWriter
	timeNow func() time.Time

	readBuffer []byte
	readIndex  int

	assembler *n2k.FastPacketAssembler
	config    Config
}

// NewRawASCIIDevice creates a new RawASCIIDevice using the default Config.
func NewRawASCIIDevice(reader io.ReadWriter) *RawASCIIDevice {
	return NewRawASCIIDeviceWithConfig(reader, Config{})
}

// NewRawASCIIDeviceWithConfig creates a new RawASCIIDevice with the given Config.
func NewRawASCIIDeviceWithConfig(reader io.ReadWriter, config Config) *RawASCIIDevice {
	return &RawASCIIDevice{
		device:     reader,
		timeNow:    time.Now,
		readBuffer: make([]byte, 100),
		assembler:  n2k.NewFastPacketAssembler(n2k.SystemClock{}),
		config:     config,
	}
}

func (d *RawASCIIDevice) Close() error {
	if c, ok := d.device.(io.Closer); ok {
		return c.Close()
	}
	return errors.New("device does not implement Closer interface")
}

func (d *RawASCIIDevice) Initialize() error {
	return nil // no-op
}

const hextable = "0123456789ABCDEF"

func toRawASCIIBytes(frame n2k.Frame) []byte {
	canID, _ := n2k.ToCANID(frame.Header)
	f := []byte{
		// example: `00:00:00.000 S 1F223355 01 02 03 04 05 06 07 08\n`
		0x30, 0x30, 0x3a, 0x30, 0x30, 0x3a, 0x30, 0x30, 0x2e, 0x30, 0x30, 0x30, 0x20, 0x53, 0x20, // `00:00:00.000 S ` (0-14)
		0x30, 0x30, 0x30, 0x30, 0x30, 0x30, 0x30, 0x30, // canID part `1F223355` (15-22)
		0x20, 0x0, 0x0, 0x20, 0x0, 0x0, 0x20, 0x0, 0x0, // ` 01 02 03` (23-31)
		0x20, 0x0, 0x0, 0x20, 0x0, 0x0, 0x20, 0x0, 0x0, // ` 04 05 06` (32-40)
		0x20, 0x0, 0x0, 0x20, 0x0, 0x0, 0x0d, 0x0a, // ` 07 08\r\n` (41-48)
	}
	hexCanID := strings.ToUpper(strconv.FormatUint(uint64(canID), 16))
	canIDStart := 23 - len(hexCanID)
	for i, s := range hexCanID {
		f[canIDStart+i] = byte(s)
	}

	idx := uint8(24)
	for i := uint8(0); i < frame.Length; i++ {
		v := frame.Data[i]
		f[idx] = hextable[v>>4]
		f[idx+1] = hextable[v&0x0f]
		idx += 3 // additional byte is for space (0x20)
	}
	if frame.Length < 8 {
		// `\r\n` at the end
		f[idx-1] = 0x0d
		f[idx] = 0x0a
	}
	return f[0 : idx+1]
}

// WriteFrame writes one already-fragmented CAN frame; callers that need to
// transmit a Fast Packet PGN must fragment it first (n2k.FragmentFastPacket).
func (d *RawASCIIDevice) WriteFrame(ctx context.Context, frame n2k.Frame) error {
	rawB := toRawASCIIBytes(frame)
	if d.config.DebugLogRawMessageBytes {
		fmt.Printf("# DEBUG Writing Actisense N2K RAW ASCII bytes: `%x`\n", rawB)
	}
	_, err := d.device.Write(rawB)
	return err
}

// WriteMessage fragments msg into Fast Packet frames as needed and writes
// each one as a RAW ASCII line.
func (d *RawASCIIDevice) WriteMessage(ctx context.Context, msg n2k.Message) error {
	header := n2k.CANHeader{PGN: msg.PGN, Priority: msg.Priority, Source: msg.Source, Destination: msg.Destination}
	if len(msg.Data) <= 8 && !d.assembler.IsFastPacket(msg.PGN) {
		data := [8]byte{}
		copy(data[:], msg.Data)
		return d.WriteFrame(ctx, n2k.Frame{Time: msg.Time, Header: header, Length: uint8(len(msg.Data)), Data: data})
	}

	chunks, err := n2k.FragmentFastPacket(msg.Data, 0)
	if err != nil {
		return err
	}
	for _, data := range chunks {
		if err := d.WriteFrame(ctx, n2k.Frame{Time: msg.Time, Header: header, Length: 8, Data: data}); err != nil {
			return err
		}
	}
	return nil
}

// ReadMessage blocks until a complete Message is reassembled out of one or
// more RAW ASCII frames, or ctx is cancelled.
func (d *RawASCIIDevice) ReadMessage(ctx context.Context) (n2k.Message, error) {
	for {
		frame, err := d.ReadFrame(ctx)
		if err != nil {
			return n2k.Message{}, err
		}

		d.assembler.Tick(d.timeNow())
		msg, complete, err := d.assembler.Feed(frame)
		if err != nil {
			continue // malformed/orphan Fast Packet frame, keep reading
		}
		if !complete {
			continue
		}
		return msg, nil
	}
}

func (d *RawASCIIDevice) ReadFrame(ctx context.Context) (n2k.Frame, error) {
	// Example: '00:34:02.718 R 15FD0800 FF 00 01 CA 6F FF FF FF\n'
	buf := make([]byte, 50)

	for {
		select {
		case <-ctx.Done():
			return n2k.Frame{}, ctx.Err()
		default:
		}

		n, err := d.device.Read(buf) // FIXME: read is blocking call. we need to set read timeouts to work with context cancellations

		if err != nil {
			return n2k.Frame{}, err
		}
		if n == 0 {
			continue
		}

		endIndex := bytes.IndexByte(buf[0:n], '\n')
		if endIndex == -1 { // no end of line seen. add this line to buff and try reading more
			copy(d.readBuffer[d.readIndex:], buf[0:n])
			d.readIndex += n

			continue
		}
		endIndex++ // note: include \n
		// if end of line is found we copy data that we just read to previously read data to assemble full line
		copy(d.readBuffer[d.readIndex:], buf[0:endIndex])
		d.readIndex += endIndex

		line := d.readBuffer[0:d.readIndex]
		if d.config.DebugLogRawMessageBytes {
			fmt.Printf("# DEBUG Read Actisense RAW ASCII frame: %x\n", line)
		}
		now := d.timeNow()
		frame, skip, err := parseRawASCII(line, now)

		// reset read buffer to whatever we were able to read past current frame end. probably nothing but could be
		// start of next frame etc
		copy(d.readBuffer, buf[endIndex:n])
		d.readIndex = n - endIndex

		if skip {
			continue
		}

		return frame, err
	}
}

func parseRawASCII(raw []byte, now time.Time) (n2k.Frame, bool, error) {
	// Example: '00:34:02.718 R 15FD0800 FF 00 01 CA 6F FF FF FF\n'
	//                       1 2        3  4  5  6  7  8  9  0
	// We do not have documentation for RAW ASCII format so compared to N2K ASCII format we do this in more naive way:
	// find the 2nd and 3rd spaces so we can check for "R" meaning the frame was received and parse the CAN ID,
	// then decode hex to bytes for everything after the CAN ID block.
	spacesSeen := 0
	spaceIndex := 0
	previousSpaceIndex := 0
	for i, b := range raw {
		if b != rawASCIIDelimiter {
			continue
		}
		previousSpaceIndex = spaceIndex
		spaceIndex = i
		spacesSeen++
		if spacesSeen == 3 {
			break
		}
	}
	if spacesSeen != 3 { // skippable - this is probably some garbage from the wire, or we started reading frame not from the beginning
		return n2k.Frame{}, true, errors.New("failed to find correct space index in raw ascii frame")
	}
	if raw[previousSpaceIndex-1] != 'R' { // skippable - this is not received frame
		return n2k.Frame{}, true, errors.New("raw ascii frame does not seem to be received frame")
	}

	var canID uint32
	if err := decodeHexToInt(raw[previousSpaceIndex+1:spaceIndex], &canID, 4); err != nil {
		return n2k.Frame{}, false, err
	}
	header := n2k.FromCANID(canID)

	hexBytes := make([]byte, 16)
	dstIndex := 0
	for i := spaceIndex; i < len(raw); i++ {
		b := raw[i]
		if b == rawASCIIDelimiter {
			continue
		}
		if b == '\r' || b == '\n' {
			break
		}
		hexBytes[dstIndex] = b
		dstIndex++
	}
	dataDecoded := make([]byte, dstIndex)
	n, err := hex.Decode(dataDecoded, hexBytes)
	if err != nil {
		return n2k.Frame{}, false, err
	}
	data := [8]byte{}
	copy(data[:], dataDecoded[:n])

	return n2k.Frame{
		Time:   now,
		Header: header,
		Length: uint8(n),
		Data:   data,
	}, false, nil
}

func decodeHexToInt(raw []byte, target interface{}, dstLength int) error {
	dst := make([]byte, dstLength)

	diffInBytes := dstLength - int(math.Ceil(float64(len(raw))/2))
	if diffInBytes != 0 {
		tmp := make([]byte, dstLength*2)
		start := (dstLength * 2) - len(raw)
		for i := 0; i < start; i++ {
			tmp[i] = '0'
		}
		copy(tmp[start:], raw)
		raw = tmp
	}

	_, err := hex.Decode(dst, raw)
	if err != nil {
		return err
	}

	buffer := bytes.NewReader(dst)
	err = binary.Read(buffer, binary.BigEndian, target)
	return err
}
