package actisense

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	n2k "github.com/oceanbus/n2k-node"
)

func TestFromActisenseBST95Message(t *testing.T) {
	now := time.Date(2022, 10, 11, 11, 47, 22, 0, time.UTC)

	var testCases = []struct {
		name        string
		whenRaw     []byte
		expect      n2k.Message
		expectError string
	}{
		{
			name:    "ok",
			whenRaw: []byte{0x0e, 0x28, 0x9a, 0x00, 0x01, 0xf8, 0x09, 0x3d, 0x0d, 0xb3, 0x22, 0x48, 0x32, 0x59, 0x0d},
			expect: n2k.Message{
				Time:        now,
				PGN:         129025,
				Priority:    2,
				Source:      0,
				Destination: 255,
				Data:        []byte{0x3d, 0x0d, 0xb3, 0x22, 0x48, 0x32, 0x59, 0x0d},
			},
		},
		{
			name:        "nok, too short, missing data",
			whenRaw:     []byte{0x0e, 0x28, 0x9a, 0x00, 0x01, 0xf8, 0x09},
			expect:      n2k.Message{},
			expectError: "raw message actual length too short to be valid BST-95 message",
		},
		{
			name:        "nok, incorrect length value",
			whenRaw:     []byte{0x0e, 0x28, 0x9a, 0x00, 0x01, 0xf8, 0x09, 0x3d, 0x0d, 0xb3, 0x22, 0x48, 0x32, 0x59},
			expect:      n2k.Message{},
			expectError: "raw message length field does not match actual length",
		},
	}
	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			result, err := fromActisenseBST95Message(tc.whenRaw, now)

			assert.Equal(t, tc.expect, result)
			if tc.expectError != "" {
				assert.EqualError(t, err, tc.expectError)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
