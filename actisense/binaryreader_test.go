package actisense

import (
	"encoding/hex"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	n2k "github.com/oceanbus/n2k-node"
)

// sent by Simrad GS25 and read with NGT-1
func TestFromActisenseNGTBinaryMessage(t *testing.T) {
	now := time.Unix(1623928400, 0)
	var testCases = []struct {
		name        string
		when        string
		expect      n2k.Message
		expectError string
	}{
		{
			name: "ok, 129026, COG & SOG, Rapid Update",
			when: "93130202f801ff7f15baf1460800fcffff0000ffffd9",
			expect: n2k.Message{
				Time:        now,
				Priority:    2,
				PGN:         129026,
				Destination: 255,
				Source:      127,
				Data:        []uint8{0x0, 0xfc, 0xff, 0xff, 0x0, 0x0, 0xff, 0xff},
			},
		},
		{
			name: "ok, 129025, Position, Rapid Update",
			when: "93130201f801ff7f15baf146081e17b3224919590d00",
			expect: n2k.Message{
				Time:        now,
				Priority:    2,
				PGN:         129025,
				Destination: 255,
				Source:      127,
				Data:        []uint8{0x1e, 0x17, 0xb3, 0x22, 0x49, 0x19, 0x59, 0xd},
			},
		},
		{
			name: "ok, 127250, Vessel Heading",
			when: "93130212f101ff8016baf1460800bdeeff7f3105fd6a",
			expect: n2k.Message{
				Time:        now,
				Priority:    2,
				PGN:         127250,
				Destination: 255,
				Source:      128,
				Data:        []uint8{0x0, 0xbd, 0xee, 0xff, 0x7f, 0x31, 0x5, 0xfd},
			},
		},
		{
			name: "ok, 127251, Rate of Turn",
			when: "93130313f101ff8017baf1460800f2e61d0000ffffd0",
			expect: n2k.Message{
				Time:        now,
				Priority:    3,
				PGN:         127251,
				Destination: 255,
				Source:      128,
				Data:        []uint8{0x0, 0xf2, 0xe6, 0x1d, 0x0, 0x0, 0xff, 0xff},
			},
		},
		{
			name: "ok, 126992, System Time",
			when: "93130310f001ff7f1bbcf1460800f05549b8d94e1045",
			expect: n2k.Message{
				Time:        now,
				Priority:    3,
				PGN:         126992,
				Destination: 255,
				Source:      127,
				Data:        []uint8{0x0, 0xf0, 0x55, 0x49, 0xb8, 0xd9, 0x4e, 0x10},
			},
		},
		{
			name: "ok, 126208",
			when: "93110300ed01080353a07200060200ef01010002",
			expect: n2k.Message{
				Time:        now,
				Priority:    0x3,
				PGN:         126208,
				Destination: 0x8,
				Source:      0x3,
				Data:        []uint8{0x2, 0x0, 0xef, 0x1, 0x1, 0x0},
			},
		},
		{
			name:        "nok, actual length 8!=10",
			when:        "9313020df101ff0c1f23d30908ff0700ff7f0000ffffa6",
			expect:      n2k.Message{},
			expectError: "data length byte value is different from actual length, 8!=10",
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := hex.DecodeString(tc.when)
			assert.NoError(t, err)

			result, err := fromActisenseNGTBinaryMessage(raw, now)

			assert.Equal(t, tc.expect, result)
			if tc.expectError != "" {
				assert.EqualError(t, err, tc.expectError)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestFromActisenseN2KBinaryMessage(t *testing.T) {
	now := time.Unix(1623928400, 0)

	raw, err := hex.DecodeString(
		"d0ec00ff0b1dff1de118" +
			"e419003f9f1212ff1515" +
			"074816de819411ffffff" +
			"7f0110470fcb38100eff" +
			"ffff7f011ac10fc822a0" +
			"0fffffff7f011dbe0669" +
			"f33c0fffffff7f010b7f" +
			"1a12c75c12ffffff7f01" +
			"047a25a9395c12ffffff" +
			"7f0114820ff0ce740eff" +
			"ffff7f01066a1ca6a6c0" +
			"12ffffff7f01094338c7" +
			"955014ffffff7f01cf12" +
			"0ac5213c0fffffff7f01" +
			"58f908029d3c0fffffff" +
			"7f01487d13db403011ff" +
			"ffff7f01497107b80b10" +
			"0effffff7f01418036c4" +
			"23c012ffffff7f0142c8" +
			"17e3c39411ffffff7f01" +
			"515618b9c0c012ffffff" +
			"7f014aa61da824cc10ff" +
			"ffff7f014b1a1b4e5b5c" +
			"12ffffff7f01c3")
	assert.NoError(t, err)

	result, err := fromActisenseN2KBinaryMessage(raw, now)
	assert.NoError(t, err)

	assert.Equal(t, uint32(130845), result.PGN)
	assert.Equal(t, uint8(11), result.Source)
	assert.Equal(t, uint8(255), result.Destination)
	assert.Equal(t, uint8(7), result.Priority)
	assert.Equal(t, now, result.Time)
	assert.Len(t, result.Data, len(raw)-13)
	assert.Equal(t, byte(0x3f), result.Data[0])
}

func TestFromRawActisenseMessage(t *testing.T) {
	now := time.Unix(1623928400, 0)
	var testCases = []struct {
		name   string
		when   string
		expect n2k.Message
	}{
		{
			name: "ok, ISORequest broadcast, address claim",
			when: "95093eb7feffea1800ee0080",
			expect: n2k.Message{
				Time:        now,
				Priority:    0x6,
				PGN:         59904, // ISO Request
				Destination: n2k.AddressGlobal,
				Source:      n2k.AddressNull,
				Data:        []uint8{0x0, 0xee, 0x0},
			},
		},
		{
			name: "ok, 130310",
			when: "950ea57f1606fd1501c170ffffffffffde",
			expect: n2k.Message{
				Time:        now,
				Priority:    0x5,
				PGN:         130310,
				Destination: n2k.AddressGlobal,
				Source:      22,
				Data:        []uint8{0x1, 0xc1, 0x70, 0xff, 0xff, 0xff, 0xff, 0xff},
			},
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			raw, err := hex.DecodeString(tc.when)
			assert.NoError(t, err)

			result, err := fromRawActisenseMessage(raw, now)

			assert.NoError(t, err)
			assert.Equal(t, tc.expect, result)
		})
	}
}

func TestFromNGTMessage(t *testing.T) {
	raw, err := hex.DecodeString("a022f2010e00708503000000000002050200000000000000000c5a020200000004000000ce")
	assert.NoError(t, err)

	now := time.Unix(1623928400, 0)
	msg, err := fromNGTMessage(raw, now)
	assert.NoError(t, err)
	assert.Equal(t, CanBoatFakePGNOffset+uint32(0xf2), msg.PGN)
	assert.Equal(t, now, msg.Time)
}

func TestFromNGTMessage_tooShort(t *testing.T) {
	_, err := fromNGTMessage([]byte{0xa0, 0x01, 0x02}, time.Now())
	assert.Error(t, err)
}
