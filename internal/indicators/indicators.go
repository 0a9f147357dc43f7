// Package indicators implements the rolling calculations the swing engine
// and the sizing policy are built on: moving averages, the Williams %R
// momentum oscillator, ATR and ADR.
//
// Values inside the warm-up window are not zero, they are undefined: every
// calculation reports ErrInsufficientData until its lookback is filled, and
// callers must treat that as a distinct state.
package indicators

import "errors"

// ErrInsufficientData is returned while an indicator's warm-up window is
// incomplete. Match with errors.Is.
var ErrInsufficientData = errors.New("insufficient data")
