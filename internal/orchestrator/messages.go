package orchestrator

import (
	"context"
	"fmt"

	"github.com/ordinator/ordinator/internal/entity"
	"github.com/ordinator/ordinator/internal/operational"
	"github.com/ordinator/ordinator/internal/strategic"
	"github.com/ordinator/ordinator/internal/supervisor"
	"github.com/ordinator/ordinator/internal/tactical"
)

// RequestStrategic forwards req to the asset's strategic actor, timing out
// after cfg.RequestTimeout (§6 "Actor Request/Response contract").
func (o *Orchestrator) RequestStrategic(ctx context.Context, asset entity.Asset, req strategic.Request) (strategic.Response, error) {
	reg, ok := o.Registry(asset)
	if !ok || reg.Strategic == nil {
		return strategic.Response{}, fmt.Errorf("%w: %s", entity.ErrUnknownAsset, asset)
	}
	return reg.Strategic.Request(ctx, req, o.cfg.RequestTimeout)
}

// RequestTactical forwards req to the asset's tactical actor.
func (o *Orchestrator) RequestTactical(ctx context.Context, asset entity.Asset, req tactical.Request) (tactical.Response, error) {
	reg, ok := o.Registry(asset)
	if !ok || reg.Tactical == nil {
		return tactical.Response{}, fmt.Errorf("%w: %s", entity.ErrUnknownAsset, asset)
	}
	return reg.Tactical.Request(ctx, req, o.cfg.RequestTimeout)
}

// RequestSupervisor forwards req to the named supervisor actor for asset.
func (o *Orchestrator) RequestSupervisor(ctx context.Context, asset entity.Asset, id entity.Id, req supervisor.Request) (supervisor.Response, error) {
	reg, ok := o.Registry(asset)
	if !ok {
		return supervisor.Response{}, fmt.Errorf("%w: %s", entity.ErrUnknownAsset, asset)
	}
	mailbox, ok := reg.Supervisors[id]
	if !ok {
		return supervisor.Response{}, fmt.Errorf("%w: supervisor %s on asset %s", entity.ErrTechnicianNotFound, id, asset)
	}
	return mailbox.Request(ctx, req, o.cfg.RequestTimeout)
}

// RequestOperational forwards req to the named technician's operational actor.
func (o *Orchestrator) RequestOperational(ctx context.Context, asset entity.Asset, id entity.Id, req operational.Request) (operational.Response, error) {
	reg, ok := o.Registry(asset)
	if !ok {
		return operational.Response{}, fmt.Errorf("%w: %s", entity.ErrUnknownAsset, asset)
	}
	mailbox, ok := reg.Operational[id]
	if !ok {
		return operational.Response{}, fmt.Errorf("%w: technician %s on asset %s", entity.ErrTechnicianNotFound, id, asset)
	}
	return mailbox.Request(ctx, req, o.cfg.RequestTimeout)
}

// AssetStatus reports whether every actor spawned for asset is still
// answering Status requests, the orchestrator's health-check surface (§6
// "status queries").
type AssetStatus struct {
	Asset       entity.Asset
	Strategic   bool
	Tactical    bool
	Supervisors map[entity.Id]bool
	Operational map[entity.Id]bool
}

// Status polls every actor spawned for asset with a RequestStatus message.
func (o *Orchestrator) Status(ctx context.Context, asset entity.Asset) (AssetStatus, error) {
	reg, ok := o.Registry(asset)
	if !ok {
		return AssetStatus{}, fmt.Errorf("%w: %s", entity.ErrUnknownAsset, asset)
	}

	status := AssetStatus{
		Asset:       asset,
		Supervisors: make(map[entity.Id]bool, len(reg.Supervisors)),
		Operational: make(map[entity.Id]bool, len(reg.Operational)),
	}

	if reg.Strategic != nil {
		resp, err := reg.Strategic.Request(ctx, strategic.Request{Kind: strategic.RequestStatus}, o.cfg.RequestTimeout)
		status.Strategic = err == nil && resp.Running
	}
	if reg.Tactical != nil {
		resp, err := reg.Tactical.Request(ctx, tactical.Request{Kind: tactical.RequestStatus}, o.cfg.RequestTimeout)
		status.Tactical = err == nil && resp.Running
	}
	for id, m := range reg.Supervisors {
		resp, err := m.Request(ctx, supervisor.Request{Kind: supervisor.RequestStatus}, o.cfg.RequestTimeout)
		status.Supervisors[id] = err == nil && resp.Running
	}
	for id, m := range reg.Operational {
		resp, err := m.Request(ctx, operational.Request{Kind: operational.RequestStatus}, o.cfg.RequestTimeout)
		status.Operational[id] = err == nil && resp.Running
	}
	return status, nil
}
