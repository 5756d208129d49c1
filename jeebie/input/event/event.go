package event

// Type is the kind of input transition.
type Type int

const (
	Press   Type = iota // button went down
	Release             // button went up
	Hold                // button still down on a later poll
)

func (t Type) String() string {
	switch t {
	case Press:
		return "press"
	case Release:
		return "release"
	case Hold:
		return "hold"
	}
	return "unknown"
}
