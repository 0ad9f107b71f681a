package device

import (
	"fmt"

	"github.com/oceanbus/n2k-node/internal/utils"
)

// String renders r for logging. Whitespace control characters in the
// fixed-width ASCII fields (like ProductInfo.ModelID) are escaped, and the
// values are quoted so any trailing space padding stays visible.
func (r Record) String() string {
	return fmt.Sprintf(`NAME=%#x source=%d model="%s" serial="%s"`,
		r.NAME, r.Source,
		utils.FormatSpaces([]byte(r.ProductInfo.ModelID)),
		utils.FormatSpaces([]byte(r.ProductInfo.ModelSerialCode)))
}
