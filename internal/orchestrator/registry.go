// Package orchestrator implements the Orchestrator (§4.9): it owns the
// Scheduling Environment handle, spawns one actor goroutine per asset per
// actor kind via asset_factory, routes external requests to the right
// mailbox, and cancels an asset's actors on the first fatal error.
package orchestrator

import (
	"context"

	"github.com/ordinator/ordinator/internal/entity"
	"github.com/ordinator/ordinator/internal/operational"
	"github.com/ordinator/ordinator/internal/sharedsolution"
	"github.com/ordinator/ordinator/internal/strategic"
	"github.com/ordinator/ordinator/internal/supervisor"
	"github.com/ordinator/ordinator/internal/tactical"
)

// AssetRegistry is the set of mailboxes asset_factory spawned for one asset
// (§4.9 "the map Asset → ActorRegistry").
type AssetRegistry struct {
	Strategic   *strategic.Mailbox
	Tactical    *tactical.Mailbox
	Supervisors map[entity.Id]*supervisor.Mailbox
	Operational map[entity.Id]*operational.Mailbox

	cancel context.CancelFunc
}

func newAssetRegistry(cancel context.CancelFunc) *AssetRegistry {
	return &AssetRegistry{
		Supervisors: make(map[entity.Id]*supervisor.Mailbox),
		Operational: make(map[entity.Id]*operational.Mailbox),
		cancel:      cancel,
	}
}

// closeAll closes every mailbox spawned for this asset, the orchestrator's
// cancellation mechanism (§5 "the orchestrator cancels an actor by closing
// its mailbox").
func (r *AssetRegistry) closeAll() {
	r.cancel()
	if r.Strategic != nil {
		r.Strategic.Close()
	}
	if r.Tactical != nil {
		r.Tactical.Close()
	}
	for _, m := range r.Supervisors {
		m.Close()
	}
	for _, m := range r.Operational {
		m.Close()
	}
}

// assetFabric pairs an asset's registry with its Shared Solution Fabric,
// kept together so Delete/Route never have to juggle two maps out of sync.
type assetFabric struct {
	registry *AssetRegistry
	fabric   *sharedsolution.Fabric
}
