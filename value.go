package n2k

// ValueState distinguishes a present measurement from the two reserved
// NMEA 2000 sentinel codepoints present at every integer width: the "no
// data" all-ones code and the "out of range" code one below it. This
// replaces a raw-float NaN sentinel, which can silently collide with an
// extremely large-but-legal negative value.
type ValueState uint8

const (
	// Present means Value holds real field data.
	Present ValueState = iota
	// Unavailable means the field's raw encoding was the "N/A" sentinel (all-ones unsigned, 0x7f... signed).
	Unavailable
	// OutOfRange means the field's raw encoding was the "N/A - 1" sentinel.
	OutOfRange
)

// Double is a scaled floating-point field value together with its presence
// state. Zero value is Present(0), not Unavailable -- callers that want an
// absent value must use UnavailableDouble.
type Double struct {
	Value float64
	State ValueState
}

// UnavailableDouble is the canonical "no data" Double.
func UnavailableDouble() Double { return Double{State: Unavailable} }

// OutOfRangeDouble is the canonical "out of range" Double.
func OutOfRangeDouble() Double { return Double{State: OutOfRange} }

// NewDouble wraps a concrete measurement.
func NewDouble(v float64) Double { return Double{Value: v} }

// IsAvailable reports whether d holds real data.
func (d Double) IsAvailable() bool { return d.State == Present }

// Int is a scaled (or plain) integer field value with presence state, the
// integer analogue of Double (used for fields with no fractional resolution,
// e.g. counters and enumerations represented as plain numbers).
type Int struct {
	Value int64
	State ValueState
}

// UnavailableInt is the canonical "no data" Int.
func UnavailableInt() Int { return Int{State: Unavailable} }

// OutOfRangeInt is the canonical "out of range" Int.
func OutOfRangeInt() Int { return Int{State: OutOfRange} }

// NewInt wraps a concrete measurement.
func NewInt(v int64) Int { return Int{Value: v} }

// IsAvailable reports whether i holds real data.
func (i Int) IsAvailable() bool { return i.State == Present }
