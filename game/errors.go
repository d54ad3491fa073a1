package game

import "fmt"

// RejectKind classifies a refused action for the wire. Rejections are soft:
// they are reported to the acting connection only and never mutate state.
type RejectKind string

const (
	RejectProtocol RejectKind = "protocol"
	RejectPhase    RejectKind = "phase"
	RejectTurn     RejectKind = "turn"
	RejectRule     RejectKind = "rule"
	RejectAuth     RejectKind = "auth"
)

// Reject is the error type for every refused player action. Legality is
// always checked before any mutation is applied, so a Reject guarantees
// room state is unchanged.
type Reject struct {
	Kind   RejectKind
	Reason string
}

func (e *Reject) Error() string { return e.Reason }

func ProtocolErr(format string, args ...interface{}) error {
	return &Reject{Kind: RejectProtocol, Reason: fmt.Sprintf(format, args...)}
}

func PhaseErr(format string, args ...interface{}) error {
	return &Reject{Kind: RejectPhase, Reason: fmt.Sprintf(format, args...)}
}

func TurnErr(format string, args ...interface{}) error {
	return &Reject{Kind: RejectTurn, Reason: fmt.Sprintf(format, args...)}
}

func RuleErr(format string, args ...interface{}) error {
	return &Reject{Kind: RejectRule, Reason: fmt.Sprintf(format, args...)}
}

func AuthErr(format string, args ...interface{}) error {
	return &Reject{Kind: RejectAuth, Reason: fmt.Sprintf(format, args...)}
}

// KindOf returns the rejection kind of err, or RejectProtocol for errors
// that are not Rejects (the boundary treats those as malformed input).
func KindOf(err error) RejectKind {
	if r, ok := err.(*Reject); ok {
		return r.Kind
	}
	return RejectProtocol
}
