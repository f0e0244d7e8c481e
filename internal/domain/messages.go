package domain

// Header identifies the kind of an authenticated message. Headers are unique
// per message kind so protocol state can be disambiguated from the header
// alone.
type Header string

const (
	// Session setup: the initiator announces the sampled error estimate and
	// whether the run proceeds past the QBER threshold check.
	HeaderSessionStart Header = "SESSION_START"

	// Cascade reconciliation.
	HeaderParityRequest  Header = "CASCADE_PARITY_REQUEST"
	HeaderParityResponse Header = "CASCADE_PARITY_RESPONSE"
	HeaderCascadeDone    Header = "CASCADE_DONE"
	HeaderCascadeFinish  Header = "CASCADE_FINISHED"

	// Key verification.
	HeaderVerifyHash   Header = "VERIFY_HASH"
	HeaderVerifyResult Header = "VERIFY_RESULT"

	// Privacy amplification seed exchange.
	HeaderPASeed Header = "PA_SEED"
)

// Message is a decoded authenticated frame: a header naming the payload kind
// and the raw payload bytes. Tag verification happens before a Message is
// ever constructed.
type Message struct {
	Header  Header
	Payload []byte
}

// Role distinguishes the two parties of a run. The initiator drives the
// protocol (block parities, binary searches, verification hash, seed
// sampling); the responder answers and never samples shared randomness.
type Role int

const (
	Initiator Role = iota
	Responder
)

func (r Role) String() string {
	if r == Initiator {
		return "initiator"
	}
	return "responder"
}
