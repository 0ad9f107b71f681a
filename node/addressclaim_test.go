package node

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	n2k "github.com/oceanbus/n2k-node"
	"github.com/oceanbus/n2k-node/pgn"
)

func newTestNode(t *testing.T, name pgn.Name, source uint8) *Node {
	t.Helper()
	n, err := New(Config{Name: name, PreferredSource: source, ClaimTimeout: 100 * time.Millisecond}, nil)
	require.NoError(t, err)
	return n
}

func otherClaim(t *testing.T, source uint8, name pgn.Name, when time.Time) n2k.Message {
	t.Helper()
	msg, err := pgn.ISOAddressClaim{Name: name}.EncodeMessage(n2k.TxContext{
		Source: source, Destination: n2k.AddressGlobal, Time: when,
	})
	require.NoError(t, err)
	return msg
}

func TestNode_Start_claimsAfterTimeoutWithNoContention(t *testing.T) {
	now := time.Unix(1700000000, 0)
	n := newTestNode(t, pgn.Name{UniqueNumber: 100}, 20)

	out := n.Start(now)
	require.Len(t, out, 1)
	claim, err := pgn.DecodeISOAddressClaim(out[0])
	require.NoError(t, err)
	assert.Equal(t, uint64(100)|uint64(1)<<63, claim.Name.Uint64())

	source, claimed := n.Source()
	assert.False(t, claimed)
	assert.Equal(t, uint8(0), source)

	out, err = n.Tick(now.Add(50 * time.Millisecond))
	require.NoError(t, err)
	assert.Empty(t, out)
	_, claimed = n.Source()
	assert.False(t, claimed)

	out, err = n.Tick(now.Add(100 * time.Millisecond))
	require.NoError(t, err)
	source, claimed = n.Source()
	assert.True(t, claimed)
	assert.Equal(t, uint8(20), source)
}

func TestNode_Receive_losesContentionToLowerNAME(t *testing.T) {
	now := time.Unix(1700000000, 0)
	n := newTestNode(t, pgn.Name{UniqueNumber: 1000}, 20)
	n.Start(now)

	out, err := n.Receive(otherClaim(t, 20, pgn.Name{UniqueNumber: 1}, now), now)
	require.NoError(t, err)
	require.Len(t, out, 1)

	claim, err := pgn.DecodeISOAddressClaim(out[0])
	require.NoError(t, err)
	assert.Equal(t, n.cfg.Name.Uint64(), claim.Name.Uint64())
	assert.Equal(t, uint8(19), out[0].Source)
	assert.Equal(t, uint8(19), n.candidateSource)

	_, claimed := n.Source()
	assert.False(t, claimed)
}

func TestNode_Receive_winsContentionAgainstHigherNAME(t *testing.T) {
	now := time.Unix(1700000000, 0)
	n := newTestNode(t, pgn.Name{UniqueNumber: 1}, 20)
	n.Start(now)

	out, err := n.Receive(otherClaim(t, 20, pgn.Name{UniqueNumber: 1000}, now), now)
	require.NoError(t, err)
	require.Len(t, out, 1)
	claim, err := pgn.DecodeISOAddressClaim(out[0])
	require.NoError(t, err)
	assert.Equal(t, n.cfg.Name.Uint64(), claim.Name.Uint64())
	assert.Equal(t, uint8(20), out[0].Source)
	assert.Equal(t, uint8(20), n.candidateSource)
}

func TestNode_Receive_addressClaimLostAfterExhaustingEveryAddress(t *testing.T) {
	now := time.Unix(1700000000, 0)
	n := newTestNode(t, pgn.Name{UniqueNumber: 1000}, 1)
	n.Start(now)

	var err error
	for source := n.candidateSource; ; {
		var out []n2k.Message
		out, err = n.Receive(otherClaim(t, source, pgn.Name{UniqueNumber: 1}, now), now)
		if errors.Is(err, n2k.ErrAddressClaimLost) {
			// the final claim attempt fails out, but the node still
			// broadcasts its null-address (254) claim before giving up.
			require.Len(t, out, 1)
			claim, decodeErr := pgn.DecodeISOAddressClaim(out[0])
			require.NoError(t, decodeErr)
			assert.Equal(t, n2k.AddressNull, out[0].Source)
			assert.Equal(t, n.cfg.Name.Uint64(), claim.Name.Uint64())
			break
		}
		require.Len(t, out, 1)
		source = n.candidateSource
	}
	assert.ErrorIs(t, err, n2k.ErrAddressClaimLost)
}

func TestNode_Receive_ignoresOwnReflectedClaim(t *testing.T) {
	now := time.Unix(1700000000, 0)
	name := pgn.Name{UniqueNumber: 55}
	n := newTestNode(t, name, 20)
	n.Start(now)

	out, err := n.Receive(otherClaim(t, 20, name, now), now)
	require.NoError(t, err)
	assert.Empty(t, out)
}
