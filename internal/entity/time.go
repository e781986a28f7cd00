package entity

import "time"

// Now returns the current instant in UTC, the single time source used
// throughout the engine so every actor and the orchestrator agree on "now".
func Now() time.Time {
	return time.Now().UTC()
}
