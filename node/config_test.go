package node

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	n2k "github.com/oceanbus/n2k-node"
	"github.com/oceanbus/n2k-node/pgn"
)

func TestConfig_Validate(t *testing.T) {
	valid := Config{Name: pgn.Name{UniqueNumber: 1}, PreferredSource: 10}

	var testCases = []struct {
		name        string
		given       Config
		expectError bool
	}{
		{name: "ok", given: valid, expectError: false},
		{
			name:        "nok, zero NAME",
			given:       Config{PreferredSource: 10},
			expectError: true,
		},
		{
			name:        "nok, preferred source reserved",
			given:       Config{Name: valid.Name, PreferredSource: n2k.AddressNull},
			expectError: true,
		},
		{
			name:        "nok, heartbeat interval too short",
			given:       Config{Name: valid.Name, PreferredSource: 10, HeartbeatInterval: time.Millisecond},
			expectError: true,
		},
		{
			name:        "nok, send queue size negative",
			given:       Config{Name: valid.Name, PreferredSource: 10, SendQueueSize: -1},
			expectError: true,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.given.Validate()
			if tc.expectError {
				assert.True(t, errors.Is(err, n2k.ErrConfigError))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}
