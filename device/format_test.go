package device

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/oceanbus/n2k-node/pgn"
)

func TestRecord_String_escapesControlBytes(t *testing.T) {
	r := Record{
		NAME:   1,
		Source: 30,
		ProductInfo: pgn.ProductInformation{
			ModelID:         "n2k-node\t",
			ModelSerialCode: "SN1\n",
		},
	}
	s := r.String()
	assert.Contains(t, s, `n2k-node\t`)
	assert.Contains(t, s, `SN1\n`)
}
