package device

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	n2k "github.com/oceanbus/n2k-node"
	"github.com/oceanbus/n2k-node/pgn"
)

func claimMessage(t *testing.T, source uint8, name pgn.Name, when time.Time) n2k.Message {
	t.Helper()
	msg, err := pgn.ISOAddressClaim{Name: name}.EncodeMessage(n2k.TxContext{
		Source: source, Destination: n2k.AddressGlobal, Time: when,
	})
	require.NoError(t, err)
	return msg
}

func TestRegistry_Process_newAddressClaim(t *testing.T) {
	r := NewRegistry()
	now := time.Unix(1700000000, 0)
	name := pgn.Name{UniqueNumber: 123, ManufacturerCode: 456, DeviceFunction: 130, DeviceClass: 25}

	changed, err := r.Process(claimMessage(t, 34, name, now))
	require.NoError(t, err)
	assert.True(t, changed)

	bySource := r.BySource()
	rec, ok := bySource[34]
	require.True(t, ok)
	assert.Equal(t, uint8(34), rec.Source)
	assert.Equal(t, name.Uint64(), rec.NAME)
	assert.Len(t, r.Records(), 1)
}

func TestRegistry_Process_addressContention(t *testing.T) {
	r := NewRegistry()
	now := time.Unix(1700000000, 0)

	highNAME := pgn.Name{UniqueNumber: 2000}
	lowNAME := pgn.Name{UniqueNumber: 1000}
	higherNAME := pgn.Name{UniqueNumber: 3000}

	changed, err := r.Process(claimMessage(t, 34, highNAME, now))
	require.NoError(t, err)
	assert.True(t, changed)

	// lower NAME wins the same address under J1939 contention rules
	changed, err = r.Process(claimMessage(t, 34, lowNAME, now.Add(time.Second)))
	require.NoError(t, err)
	assert.True(t, changed)
	assert.Equal(t, lowNAME.Uint64(), r.BySource()[34].NAME)

	// higher NAME does not take over an already-settled address
	changed, err = r.Process(claimMessage(t, 34, higherNAME, now.Add(2*time.Second)))
	require.NoError(t, err)
	assert.False(t, changed)
	assert.Equal(t, lowNAME.Uint64(), r.BySource()[34].NAME)
}

func TestRegistry_Process_productAndConfigurationInformation(t *testing.T) {
	r := NewRegistry()
	now := time.Unix(1700000000, 0)
	name := pgn.Name{UniqueNumber: 42}

	_, err := r.Process(claimMessage(t, 12, name, now))
	require.NoError(t, err)

	productMsg, err := pgn.ProductInformation{ModelID: "test-device"}.EncodeMessage(n2k.TxContext{
		Source: 12, Destination: n2k.AddressGlobal, Time: now,
	})
	require.NoError(t, err)
	changed, err := r.Process(productMsg)
	require.NoError(t, err)
	assert.False(t, changed)
	assert.True(t, r.BySource()[12].HasProductInfo)
	assert.Equal(t, "test-device", r.BySource()[12].ProductInfo.ModelID)

	configMsg, err := pgn.ConfigurationInformation{ManufacturerInformation: "acme"}.EncodeMessage(n2k.TxContext{
		Source: 12, Destination: n2k.AddressGlobal, Time: now,
	})
	require.NoError(t, err)
	_, err = r.Process(configMsg)
	require.NoError(t, err)
	assert.True(t, r.BySource()[12].HasConfigInfo)
	assert.Equal(t, "acme", r.BySource()[12].ConfigInfo.ManufacturerInformation)
}

func TestRegistry_Tick_requestsFollowUpInformation(t *testing.T) {
	r := NewRegistry()
	claimed := time.Unix(1700000000, 0)
	name := pgn.Name{UniqueNumber: 7}

	_, err := r.Process(claimMessage(t, 20, name, claimed))
	require.NoError(t, err)

	// too soon: no request due yet
	due := r.Tick(claimed.Add(10*time.Millisecond), n2k.AddressNull)
	assert.Empty(t, due)

	due = r.Tick(claimed.Add(requestRetryInterval+time.Millisecond), n2k.AddressNull)
	require.Len(t, due, 1)
	req, err := pgn.DecodeISORequest(due[0])
	require.NoError(t, err)
	assert.Equal(t, pgn.ProductInformation{}.PGN(), req.RequestedPGN)
	assert.Equal(t, uint8(20), due[0].Destination)

	// too soon for a retry yet
	due = r.Tick(claimed.Add(requestRetryInterval+2*time.Millisecond), n2k.AddressNull)
	assert.Empty(t, due)

	// it still hasn't answered: retried requestRetryInterval after the first ask
	due = r.Tick(claimed.Add(2*requestRetryInterval+2*time.Millisecond), n2k.AddressNull)
	require.Len(t, due, 1)
	req, err = pgn.DecodeISORequest(due[0])
	require.NoError(t, err)
	assert.Equal(t, pgn.ProductInformation{}.PGN(), req.RequestedPGN)

	productMsg, err := pgn.ProductInformation{}.EncodeMessage(n2k.TxContext{
		Source: 20, Destination: n2k.AddressGlobal, Time: claimed,
	})
	require.NoError(t, err)
	_, err = r.Process(productMsg)
	require.NoError(t, err)

	// answered: no more product info requests, but configuration info is now chased
	due = r.Tick(claimed.Add(3*requestRetryInterval+2*time.Millisecond), n2k.AddressNull)
	require.Len(t, due, 1)
	req, err = pgn.DecodeISORequest(due[0])
	require.NoError(t, err)
	assert.Equal(t, pgn.ConfigurationInformation{}.PGN(), req.RequestedPGN)

	// still hasn't answered the configuration info request: retried too
	due = r.Tick(claimed.Add(4*requestRetryInterval+2*time.Millisecond), n2k.AddressNull)
	require.Len(t, due, 1)
	req, err = pgn.DecodeISORequest(due[0])
	require.NoError(t, err)
	assert.Equal(t, pgn.ConfigurationInformation{}.PGN(), req.RequestedPGN)
}
