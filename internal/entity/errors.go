package entity

import "errors"

// Domain-level sentinel errors surfaced through actor Response channels and
// the orchestrator's error channel.
var (
	ErrUnknownAsset       = errors.New("unknown asset")
	ErrUnknownResource    = errors.New("unrecognized resource/skill")
	ErrPeriodNotInHorizon = errors.New("period is not in the scheduling horizon")
	ErrNonContiguousDays  = errors.New("day horizon is not contiguous")
	ErrWorkOrderNotFound  = errors.New("work order not found")
	ErrTechnicianNotFound = errors.New("technician not found")
	ErrMailboxFull        = errors.New("mailbox full")
	ErrMailboxClosed      = errors.New("mailbox closed")
	ErrRequestTimeout     = errors.New("request timed out")
)

// InvariantError reports a run-time invariant violation discovered inside an
// LNS iteration (§7 "Invariant violation"). It is always fatal for the
// actor that raised it and is forwarded to the orchestrator's error channel.
type InvariantError struct {
	Actor     string
	Invariant string
	Detail    string
}

func (e *InvariantError) Error() string {
	msg := e.Actor + ": invariant violated: " + e.Invariant
	if e.Detail != "" {
		msg += ": " + e.Detail
	}
	return msg
}

// ConfigurationError reports a fatal, startup-time configuration problem
// (§7 "Configuration error"): a missing asset configuration, an unparsable
// period string, or an unknown skill.
type ConfigurationError struct {
	Asset  Asset
	Reason string
}

func (e *ConfigurationError) Error() string {
	return "configuration error for asset " + string(e.Asset) + ": " + e.Reason
}
