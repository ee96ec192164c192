// Package mutation orquesta toda escritura sobre entidades:
// autenticar, autorizar, leer el estado previo, aplicar y auditar.
package mutation

import (
	"context"
	"sync"
	"time"

	"github.com/cockroachdb/errors"

	"github.com/jhoicas/inventory-manager/internal/application/audit"
	"github.com/jhoicas/inventory-manager/internal/domain"
	"github.com/jhoicas/inventory-manager/internal/domain/entity"
	"github.com/jhoicas/inventory-manager/internal/domain/policy"
	"github.com/jhoicas/inventory-manager/pkg/logger"
)

// AuditRecorder escribe una entrada de auditoría.
type AuditRecorder interface {
	Record(ctx context.Context, e audit.Entry) error
}

// Metrics contadores que el pipeline alimenta.
type Metrics interface {
	MutationApplied(entity, action string)
	AuditFailed(entity, action string)
}

// Change estado de la entidad antes y después de aplicar la mutación.
type Change[T any] struct {
	Before T
	After  T
}

// Op describe una mutación concreta. Fetch es obligatorio para UPDATE y DELETE salvo que
// Apply lea el estado previo por su cuenta (p. ej. dentro de una transacción) y lo
// devuelva en Change.Before.
type Op[T any] struct {
	Action      policy.Action
	Resource    policy.Resource
	AuditAction entity.AuditAction
	Entity      string
	EntityID    string

	// Guard autorización adicional propia de la operación. Corre antes de tocar la DB.
	Guard func(claim entity.Claim) error
	Fetch func(ctx context.Context) (T, error)
	Apply func(ctx context.Context, prior T) (Change[T], error)
	// ID identificador de la entidad aplicada (CREATE, donde EntityID aún no existe).
	ID func(T) string
	// Snapshot lo que se serializa en la auditoría; por defecto el propio T.
	Snapshot func(T) any
}

// Pipeline dependencias compartidas por todas las mutaciones.
type Pipeline struct {
	recorder     AuditRecorder
	metrics      Metrics
	log          *logger.Logger
	auditTimeout time.Duration

	detached sync.WaitGroup
}

// New construye el pipeline. auditTimeout acota el append de auditoría desacoplado de la petición.
func New(recorder AuditRecorder, metrics Metrics, log *logger.Logger, auditTimeout time.Duration) *Pipeline {
	if auditTimeout <= 0 {
		auditTimeout = 5 * time.Second
	}
	return &Pipeline{recorder: recorder, metrics: metrics, log: log.Named("mutation"), auditTimeout: auditTimeout}
}

// Wait bloquea hasta que terminen las auditorías lanzadas en segundo plano.
func (p *Pipeline) Wait() {
	p.detached.Wait()
}

// Run ejecuta op para claim. Un fallo de auditoría nunca cambia el resultado: la mutación
// ya aplicada se reporta como éxito.
func Run[T any](ctx context.Context, p *Pipeline, claim *entity.Claim, op Op[T]) (Change[T], error) {
	var zero Change[T]

	if err := policy.Authorize(claim, op.Action, op.Resource); err != nil {
		return zero, err
	}
	if op.Guard != nil {
		if err := op.Guard(*claim); err != nil {
			return zero, err
		}
	}

	var prior T
	if op.Fetch != nil {
		var err error
		prior, err = op.Fetch(ctx)
		if err != nil {
			return zero, err
		}
	}

	if err := ctx.Err(); err != nil {
		return zero, errors.Wrap(err, "mutación cancelada antes de aplicarse")
	}

	change, err := op.Apply(ctx, prior)
	if err != nil {
		return zero, err
	}
	if p.metrics != nil {
		p.metrics.MutationApplied(op.Entity, string(op.AuditAction))
	}

	p.recordAudit(ctx, auditEntry(claim.Snapshot(), op, change))
	return change, nil
}

func auditEntry[T any](actor entity.ActorSnapshot, op Op[T], change Change[T]) audit.Entry {
	snap := op.Snapshot
	if snap == nil {
		snap = func(v T) any { return v }
	}
	e := audit.Entry{
		Actor:    actor,
		Action:   op.AuditAction,
		Entity:   op.Entity,
		EntityID: op.EntityID,
	}
	switch op.AuditAction {
	case entity.AuditCreate:
		e.After = snap(change.After)
		if e.EntityID == "" && op.ID != nil {
			e.EntityID = op.ID(change.After)
		}
	case entity.AuditUpdate:
		e.Before = snap(change.Before)
		e.After = snap(change.After)
	case entity.AuditDelete:
		e.Before = snap(change.Before)
	}
	return e
}

// Audit registra una entrada fuera de Run, con el mismo tratamiento best-effort.
// Lo usa el auto-registro, donde el actor es la identidad recién creada.
func (p *Pipeline) Audit(ctx context.Context, e audit.Entry) {
	p.recordAudit(ctx, e)
}

// recordAudit escribe la entrada con un contexto que no hereda la cancelación de la petición.
// Si el cliente ya se fue, el append sigue en segundo plano.
func (p *Pipeline) recordAudit(ctx context.Context, e audit.Entry) {
	write := func() {
		actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), p.auditTimeout)
		defer cancel()
		if err := p.recorder.Record(actx, e); err != nil {
			p.auditFailed(e, err)
		}
	}

	if ctx.Err() != nil {
		p.detached.Add(1)
		go func() {
			defer p.detached.Done()
			write()
		}()
		return
	}
	write()
}

func (p *Pipeline) auditFailed(e audit.Entry, err error) {
	if !errors.Is(err, domain.ErrAuditFailure) {
		err = errors.Mark(err, domain.ErrAuditFailure)
	}
	if p.metrics != nil {
		p.metrics.AuditFailed(e.Entity, string(e.Action))
	}
	p.log.Error().Err(err).
		Str("entity", e.Entity).
		Str("action", string(e.Action)).
		Str("entity_id", e.EntityID).
		Str("user_id", e.Actor.UserID).
		Msg("auditoría no registrada; la mutación se mantiene")
}
