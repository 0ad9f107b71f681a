package pgn

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestProductInformation_roundTrip(t *testing.T) {
	p := ProductInformation{
		NMEA2000Version:     2100,
		ProductCode:         1234,
		ModelID:             "n2k-node",
		SoftwareVersionCode: "1.0.0",
		ModelVersion:        "rev-a",
		ModelSerialCode:     "SN-0001",
		CertificationLevel:  1,
		LoadEquivalency:     2,
	}
	msg, err := p.EncodeMessage(txCtx())
	require.NoError(t, err)
	assert.Len(t, msg.Data, productInfoLen)

	got, err := DecodeProductInformation(msg)
	require.NoError(t, err)
	assert.Equal(t, p, got)
}

func TestProductInformation_malformedLength(t *testing.T) {
	msg := txCtx()
	_ = msg
	bad, err := ProductInformation{}.EncodeMessage(txCtx())
	require.NoError(t, err)
	bad.Data = bad.Data[:len(bad.Data)-1]

	_, err = DecodeProductInformation(bad)
	assert.Error(t, err)
}

func TestConfigurationInformation_roundTrip(t *testing.T) {
	c := ConfigurationInformation{
		InstallationDescription1: "helm station",
		InstallationDescription2: "port side",
		ManufacturerInformation:  "oceanbus",
	}
	msg, err := c.EncodeMessage(txCtx())
	require.NoError(t, err)

	got, err := DecodeConfigurationInformation(msg)
	require.NoError(t, err)
	assert.Equal(t, c, got)
}

func TestSupportedPGNList_roundTrip(t *testing.T) {
	l := SupportedPGNList{Transmit: true, PGNs: []uint32{126992, 127250, 130306}}
	msg, err := l.EncodeMessage(txCtx())
	require.NoError(t, err)

	got, err := DecodeSupportedPGNList(msg)
	require.NoError(t, err)
	assert.Equal(t, l, got)
}
