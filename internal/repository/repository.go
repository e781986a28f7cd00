// Package repository defines the scheduling engine's two persistence
// surfaces (§6 "Persisted state"): an append-only audit trail of actor
// objective values sampled from the Shared Solution Fabric, and a JSON
// snapshot of the Scheduling Environment used as a startup fallback when no
// upstream ingestion is available.
package repository

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/ordinator/ordinator/internal/entity"
)

// ActorKind discriminates which of the four actor classes published an
// ObjectiveRecord.
type ActorKind string

const (
	ActorStrategic   ActorKind = "strategic"
	ActorTactical    ActorKind = "tactical"
	ActorSupervisor  ActorKind = "supervisor"
	ActorOperational ActorKind = "operational"
)

// ObjectiveRecord is one row of the audit trail: a single actor's objective
// value as read from the Shared Solution at one metrics sampling interval.
type ObjectiveRecord struct {
	ID          uuid.UUID
	Asset       entity.Asset
	Kind        ActorKind
	ActorID     entity.Id
	Objective   float64
	PublishedAt time.Time
}

// ObjectiveAuditRepository records sampled actor objectives and answers
// recent-history queries over them. Writes are append-only: no
// Update or Delete, mirroring the teacher's AuditLogRepository shape.
type ObjectiveAuditRepository interface {
	Record(ctx context.Context, rec ObjectiveRecord) error
	ListRecent(ctx context.Context, asset entity.Asset, limit int) ([]ObjectiveRecord, error)
	ListRecentByActor(ctx context.Context, asset entity.Asset, kind ActorKind, actorID entity.Id, limit int) ([]ObjectiveRecord, error)
	Count(ctx context.Context, asset entity.Asset) (int64, error)
}

// SnapshotRepository persists and restores a Scheduling Environment
// snapshot (§6). Implementations may back it with a local file, object
// storage, or any other durable store.
type SnapshotRepository interface {
	Save(ctx context.Context, path string, snapshot []byte) error
	Load(ctx context.Context, path string) ([]byte, error)
}

// Database bundles the repositories the engine needs plus connection
// lifecycle, the generalization of the teacher's Database interface to the
// engine's two persistence surfaces.
type Database interface {
	ObjectiveAuditRepository() ObjectiveAuditRepository
	Close() error
	Health(ctx context.Context) error
}
