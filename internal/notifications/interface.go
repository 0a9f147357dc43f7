package notifications

import "github.com/haruquant/swingrisk/pkg/types"

// Notifier defines the interface for notification services
type Notifier interface {
	// SendAlert sends an alert with the specified level and message
	SendAlert(level, message string) error

	// SendDecision sends a human-readable summary of one engine decision
	SendDecision(d types.Decision) error
}
