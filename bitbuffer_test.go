package n2k

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncoder_AddUint_unavailableRoundTrip(t *testing.T) {
	var testCases = []struct {
		name  string
		width int
	}{
		{name: "1 byte", width: 1},
		{name: "2 byte", width: 2},
		{name: "3 byte", width: 3},
		{name: "4 byte", width: 4},
		{name: "8 byte", width: 8},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			e := NewEncoder()
			e.AddUint(UnavailableInt(), tc.width)
			require.NoError(t, e.Err())

			raw := e.Bytes()
			require.Len(t, raw, tc.width)
			for _, b := range raw {
				assert.Equal(t, uint8(0xFF), b)
			}

			d := NewDecoder(raw)
			got, err := d.Uint(tc.width)
			require.NoError(t, err)
			assert.Equal(t, Unavailable, got.State)
		})
	}
}

func TestEncoder_AddInt_unavailableRoundTrip(t *testing.T) {
	e := NewEncoder()
	e.AddInt(UnavailableInt(), 2)
	require.NoError(t, e.Err())
	assert.Equal(t, []byte{0xFF, 0x7F}, e.Bytes())

	d := NewDecoder(e.Bytes())
	got, err := d.Int(2)
	require.NoError(t, err)
	assert.Equal(t, Unavailable, got.State)
}

func TestEncoder_AddDouble_scaledRoundTrip(t *testing.T) {
	e := NewEncoder()
	e.AddDouble(NewDouble(10.00), 0.01, 2, false) // wind speed resolution, 0.01 m/s
	require.NoError(t, e.Err())
	assert.Equal(t, []byte{0xE8, 0x03}, e.Bytes()) // 1000 = 0x03E8

	d := NewDecoder(e.Bytes())
	got, err := d.Double(0.01, 2, false)
	require.NoError(t, err)
	assert.InDelta(t, 10.00, got.Value, 0.01)
}

func TestDecoder_Byte_decodeShort(t *testing.T) {
	d := NewDecoder(nil)
	_, err := d.Byte()
	assert.ErrorIs(t, err, ErrDecodeShort)
}

func TestEncoder_AddStr_padsWithZero(t *testing.T) {
	e := NewEncoder()
	e.AddStr("AB", 5)
	require.NoError(t, e.Err())
	assert.Equal(t, []byte{'A', 'B', 0, 0, 0}, e.Bytes())

	d := NewDecoder(e.Bytes())
	s, err := d.StrFix(5)
	require.NoError(t, err)
	assert.Equal(t, "AB", s)
}

func TestEncoder_AddVarStr_roundTrip(t *testing.T) {
	e := NewEncoder()
	e.AddVarStr("hello")
	require.NoError(t, e.Err())
	assert.Equal(t, []byte{7, 0x01, 'h', 'e', 'l', 'l', 'o'}, e.Bytes())

	d := NewDecoder(e.Bytes())
	s, ok, err := d.VarStr()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hello", s)
}

func TestDecoder_VarStr_emptyForShortLength(t *testing.T) {
	d := NewDecoder([]byte{2, 0x01})
	s, ok, err := d.VarStr()
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "", s)
}

func TestEncoder_bufferFull(t *testing.T) {
	e := NewEncoder()
	e.AddBytes(make([]byte, MaxDataLen))
	e.AddByte(1)
	assert.ErrorIs(t, e.Err(), ErrBufferFull)
	assert.Nil(t, e.Bytes())
}

func TestEncoder_AddAISStr_roundTrip(t *testing.T) {
	e := NewEncoder()
	e.AddAISStr("TEST", 3) // 3 bytes = 24 bits = 4 six-bit chars
	require.NoError(t, e.Err())
	assert.Len(t, e.Bytes(), 3)

	d := NewDecoder(e.Bytes())
	s, err := d.AISStr(3)
	require.NoError(t, err)
	assert.Equal(t, "TEST", s)
}
