package types

import "time"

// Direction is the trade direction carried by a signal or decision.
type Direction int

const (
	DirectionNone Direction = iota
	DirectionBuy
	DirectionSell
)

func (d Direction) String() string {
	switch d {
	case DirectionBuy:
		return "BUY"
	case DirectionSell:
		return "SELL"
	default:
		return "NONE"
	}
}

// Sign returns +1 for buy, -1 for sell and 0 for none.
func (d Direction) Sign() float64 {
	switch d {
	case DirectionBuy:
		return 1
	case DirectionSell:
		return -1
	default:
		return 0
	}
}

// ReasonCode explains why a candidate trade was accepted or rejected.
type ReasonCode string

const (
	ReasonAccepted         ReasonCode = "ACCEPTED"
	ReasonRiskExceeded     ReasonCode = "RISK_EXCEEDED"
	ReasonLotBelowMinimum  ReasonCode = "LOT_BELOW_MINIMUM"
	ReasonLotAboveMaximum  ReasonCode = "LOT_ABOVE_MAXIMUM"
	ReasonDataInsufficient ReasonCode = "DATA_INSUFFICIENT"
	ReasonNoMetadata       ReasonCode = "NO_METADATA"
	ReasonAmbiguousPattern ReasonCode = "AMBIGUOUS_PATTERN"
)

// Decision is the engine output for one candidate trade: the signal, the
// computed size and the risk verdict, handed to the execution collaborator.
type Decision struct {
	Timestamp    time.Time
	Symbol       string
	Direction    Direction
	Lots         float64 // signed: negative for sells
	StopPips     float64
	ADR          float64
	RangePct     float64 // current daily range as % of ADR
	CurrentVaR   float64
	ProposedVaR  float64
	DeltaVaRPct  float64
	Accepted     bool
	Reason       ReasonCode
}
