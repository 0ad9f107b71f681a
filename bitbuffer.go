package n2k

import "encoding/binary"

// Encoder is an append-only cursor over a byte buffer capped at MaxDataLen,
// used to build the payload of an outgoing Message. All multi-byte integers
// are written little-endian.
type Encoder struct {
	buf []byte
	err error
}

// NewEncoder returns an Encoder starting from an empty buffer.
func NewEncoder() *Encoder {
	return &Encoder{buf: make([]byte, 0, 8)}
}

// Err returns the first error encountered by any Add* call, if any.
func (e *Encoder) Err() error { return e.err }

// Bytes returns the accumulated payload. Returns nil if a prior Add* call failed.
func (e *Encoder) Bytes() []byte {
	if e.err != nil {
		return nil
	}
	return e.buf
}

// Len returns the number of bytes written so far.
func (e *Encoder) Len() int { return len(e.buf) }

func (e *Encoder) reserve(n int) []byte {
	if e.err != nil {
		return nil
	}
	if len(e.buf)+n > MaxDataLen {
		e.err = ErrBufferFull
		return nil
	}
	start := len(e.buf)
	e.buf = append(e.buf, make([]byte, n)...)
	return e.buf[start : start+n]
}

// AddByte appends a single raw byte.
func (e *Encoder) AddByte(v uint8) {
	if dst := e.reserve(1); dst != nil {
		dst[0] = v
	}
}

// AddBytes appends raw bytes verbatim.
func (e *Encoder) AddBytes(v []byte) {
	if dst := e.reserve(len(v)); dst != nil {
		copy(dst, v)
	}
}

// sentinels for an unsigned field of the given byte width.
func unsignedSentinels(width int) (na, or uint64) {
	max := uint64(1)<<(uint(width)*8) - 1
	return max, max - 1
}

// sentinels for a signed field of the given byte width: MSB clear and the
// rest ones (e.g. 0x7fff for width=2), and one less for out-of-range.
func signedSentinels(width int) (na, or int64) {
	naU := (uint64(1) << (uint(width)*8 - 1)) - 1
	return int64(naU), int64(naU - 1)
}

// AddUint writes v as an unsigned little-endian integer of the given byte
// width (1, 2, 3, 4 or 8). An Unavailable/OutOfRange Int writes the
// corresponding sentinel instead of v.Value.
func (e *Encoder) AddUint(v Int, width int) {
	na, or := unsignedSentinels(width)
	raw := na
	switch v.State {
	case Present:
		raw = uint64(v.Value)
		if raw >= or { // would collide with a reserved sentinel
			raw = or - 1
		}
	case OutOfRange:
		raw = or
	}
	e.putUint(raw, width)
}

// AddInt writes v as a signed little-endian integer of the given byte width.
func (e *Encoder) AddInt(v Int, width int) {
	na, or := signedSentinels(width)
	raw := na
	switch v.State {
	case Present:
		raw = v.Value
		if raw >= or {
			raw = or - 1
		}
	case OutOfRange:
		raw = or
	}
	e.putUint(uint64(raw)&widthMask(width), width)
}

// AddDouble writes value/precision rounded to the nearest integer, as a
// scaled integer field.
func (e *Encoder) AddDouble(v Double, precision float64, width int, signed bool) {
	if v.State != Present {
		if signed {
			e.AddInt(Int{State: v.State}, width)
		} else {
			e.AddUint(Int{State: v.State}, width)
		}
		return
	}
	scaled := round(v.Value / precision)
	if signed {
		e.AddInt(NewInt(int64(scaled)), width)
	} else {
		e.AddUint(NewInt(int64(scaled)), width)
	}
}

func round(f float64) float64 {
	if f >= 0 {
		return float64(int64(f + 0.5))
	}
	return float64(int64(f - 0.5))
}

func widthMask(width int) uint64 {
	if width >= 8 {
		return ^uint64(0)
	}
	return (uint64(1) << (uint(width) * 8)) - 1
}

func (e *Encoder) putUint(raw uint64, width int) {
	dst := e.reserve(width)
	if dst == nil {
		return
	}
	var b [8]byte
	binary.LittleEndian.PutUint64(b[:], raw)
	copy(dst, b[:width])
}

// AddStr writes s padded with 0x00 to exactly n bytes. s is truncated if
// longer than n.
func (e *Encoder) AddStr(s string, n int) {
	dst := e.reserve(n)
	if dst == nil {
		return
	}
	copy(dst, s)
}

// AddVarStr writes s as `[len+2, 0x01, bytes...]`, the variable-length
// string encoding used by several PGNs.
func (e *Encoder) AddVarStr(s string) {
	if len(s)+2 > 255 {
		e.err = ErrBufferFull
		return
	}
	dst := e.reserve(len(s) + 2)
	if dst == nil {
		return
	}
	dst[0] = byte(len(s) + 2)
	dst[1] = 0x01
	copy(dst[2:], s)
}

// aisSixBitAlphabet maps index -> character per ITU-R M.1371 6-bit ASCII.
const aisSixBitAlphabet = "@ABCDEFGHIJKLMNOPQRSTUVWXYZ[\\]^_ !\"#$%&'()*+,-./0123456789:;<=>?"

func aisCharToSixBit(c byte) uint8 {
	if c >= 'a' && c <= 'z' {
		c -= 'a' - 'A'
	}
	for i := 0; i < len(aisSixBitAlphabet); i++ {
		if aisSixBitAlphabet[i] == c {
			return uint8(i)
		}
	}
	return 0 // '@' - padding character
}

// AddAISStr packs s (uppercased) into n bytes of 6-bit-per-character AIS
// text per ITU-R M.1371, padding with '@' (6-bit code 0).
func (e *Encoder) AddAISStr(s string, n int) {
	dst := e.reserve(n)
	if dst == nil {
		return
	}
	totalBits := n * 8
	chars := totalBits / 6
	bitPos := 0
	for i := 0; i < chars; i++ {
		var code uint8
		if i < len(s) {
			code = aisCharToSixBit(s[i])
		}
		for b := 5; b >= 0; b-- {
			if code&(1<<uint(b)) != 0 {
				dst[bitPos/8] |= 1 << uint(7-bitPos%8)
			}
			bitPos++
		}
	}
}

func sixBitToAISChar(code uint8) byte {
	if int(code) >= len(aisSixBitAlphabet) {
		return '@'
	}
	return aisSixBitAlphabet[code]
}

// Decoder is a read-only cursor over an inbound Message payload, used to
// extract typed field values. All multi-byte integers are read
// little-endian.
type Decoder struct {
	buf []byte
	pos int
}

// NewDecoder returns a Decoder over buf starting at offset 0.
func NewDecoder(buf []byte) *Decoder {
	return &Decoder{buf: buf}
}

// Len returns the number of unread bytes remaining.
func (d *Decoder) Len() int { return len(d.buf) - d.pos }

// Skip advances the cursor by n bytes without reading them.
func (d *Decoder) Skip(n int) { d.pos += n }

func (d *Decoder) take(n int) ([]byte, error) {
	if d.pos+n > len(d.buf) {
		return nil, ErrDecodeShort
	}
	b := d.buf[d.pos : d.pos+n]
	d.pos += n
	return b, nil
}

// Byte reads a single raw byte.
func (d *Decoder) Byte() (uint8, error) {
	b, err := d.take(1)
	if err != nil {
		return 0, err
	}
	return b[0], nil
}

// Bytes reads n raw bytes verbatim.
func (d *Decoder) Bytes(n int) ([]byte, error) {
	return d.take(n)
}

func (d *Decoder) getUint(width int) (uint64, error) {
	b, err := d.take(width)
	if err != nil {
		return 0, err
	}
	var full [8]byte
	copy(full[:], b)
	return binary.LittleEndian.Uint64(full[:]), nil
}

// Uint reads an unsigned little-endian integer of the given byte width and
// reports its presence state against the field's sentinel codepoints.
func (d *Decoder) Uint(width int) (Int, error) {
	raw, err := d.getUint(width)
	if err != nil {
		return Int{}, err
	}
	na, or := unsignedSentinels(width)
	switch raw {
	case na:
		return UnavailableInt(), nil
	case or:
		return OutOfRangeInt(), nil
	default:
		return NewInt(int64(raw)), nil
	}
}

// Int reads a signed little-endian integer of the given byte width.
func (d *Decoder) Int(width int) (Int, error) {
	raw, err := d.getUint(width)
	if err != nil {
		return Int{}, err
	}
	signBit := uint64(1) << (uint(width)*8 - 1)
	v := int64(raw)
	if raw&signBit != 0 { // sign-extend
		v = int64(raw | ^widthMask(width))
	}
	na, or := signedSentinels(width)
	switch v {
	case na:
		return UnavailableInt(), nil
	case or:
		return OutOfRangeInt(), nil
	default:
		return NewInt(v), nil
	}
}

// Double reads a scaled field (unsigned or signed) and multiplies the raw
// integer by precision.
func (d *Decoder) Double(precision float64, width int, signed bool) (Double, error) {
	var raw Int
	var err error
	if signed {
		raw, err = d.Int(width)
	} else {
		raw, err = d.Uint(width)
	}
	if err != nil {
		return Double{}, err
	}
	if raw.State != Present {
		return Double{State: raw.State}, nil
	}
	return NewDouble(float64(raw.Value) * precision), nil
}

// StrFix reads a fixed-width string and truncates at the first 0x00, 0x40
// ('@') or 0xFF byte.
func (d *Decoder) StrFix(n int) (string, error) {
	b, err := d.take(n)
	if err != nil {
		return "", err
	}
	for i, c := range b {
		if c == 0x00 || c == 0x40 || c == 0xFF {
			return string(b[:i]), nil
		}
	}
	return string(b), nil
}

// AISStr reads n bytes of 6-bit-per-character AIS text and trims trailing
// '@' padding.
func (d *Decoder) AISStr(n int) (string, error) {
	b, err := d.take(n)
	if err != nil {
		return "", err
	}
	totalBits := n * 8
	chars := totalBits / 6
	out := make([]byte, 0, chars)
	bitPos := 0
	for i := 0; i < chars; i++ {
		var code uint8
		for bi := 0; bi < 6; bi++ {
			code <<= 1
			byteIdx := bitPos / 8
			bitIdx := 7 - bitPos%8
			if b[byteIdx]&(1<<uint(bitIdx)) != 0 {
				code |= 1
			}
			bitPos++
		}
		out = append(out, sixBitToAISChar(code))
	}
	end := len(out)
	for end > 0 && (out[end-1] == '@' || out[end-1] == ' ') {
		end--
	}
	return string(out[:end]), nil
}

// VarStr reads a `[len+2, 0x01, bytes...]` variable string. Returns "",
// false for a field whose length prefix is <= 2 (no payload, "unavailable").
func (d *Decoder) VarStr() (string, bool, error) {
	lenByte, err := d.Byte()
	if err != nil {
		return "", false, err
	}
	if lenByte <= 2 {
		// still consume the encoding byte if present, to keep the cursor aligned
		if lenByte == 2 {
			if _, err := d.Byte(); err != nil {
				return "", false, err
			}
		}
		return "", false, nil
	}
	tag, err := d.Byte()
	if err != nil {
		return "", false, err
	}
	if tag != 0x01 {
		return "", false, ErrDecodeMalformed
	}
	b, err := d.take(int(lenByte) - 2)
	if err != nil {
		return "", false, err
	}
	return string(b), true, nil
}
