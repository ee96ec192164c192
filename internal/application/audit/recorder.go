// Package audit escribe el historial append-only de mutaciones.
package audit

import (
	"context"
	"encoding/json"
	"reflect"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"

	"github.com/jhoicas/inventory-manager/internal/domain"
	"github.com/jhoicas/inventory-manager/internal/domain/entity"
	"github.com/jhoicas/inventory-manager/internal/domain/repository"
)

// Entry datos de una mutación ya aplicada. Before y After son los estados a serializar;
// nil se guarda como NULL.
type Entry struct {
	Actor    entity.ActorSnapshot
	Action   entity.AuditAction
	Entity   string
	EntityID string
	Before   any
	After    any
}

// Recorder escribe entradas de auditoría. Nunca lee ni modifica entradas existentes.
type Recorder struct {
	repo repository.AuditRepository
	now  func() time.Time
}

// NewRecorder construye el recorder sobre el almacén append-only.
func NewRecorder(repo repository.AuditRepository) *Recorder {
	return &Recorder{repo: repo, now: time.Now}
}

// Record persiste una entrada. Cualquier fallo se devuelve marcado como domain.ErrAuditFailure;
// decidir qué hacer con él es cosa del llamador.
func (r *Recorder) Record(ctx context.Context, in Entry) error {
	if !in.Action.Valid() {
		return errors.Mark(errors.Newf("acción de auditoría inválida %q", in.Action), domain.ErrAuditFailure)
	}
	before, err := marshalState(in.Before)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "serializar estado previo"), domain.ErrAuditFailure)
	}
	after, err := marshalState(in.After)
	if err != nil {
		return errors.Mark(errors.Wrap(err, "serializar estado resultante"), domain.ErrAuditFailure)
	}

	e := &entity.AuditEntry{
		ID:          uuid.New().String(),
		Actor:       in.Actor,
		Action:      in.Action,
		Entity:      in.Entity,
		EntityID:    in.EntityID,
		BeforeState: before,
		AfterState:  after,
		CreatedAt:   r.now().UTC(),
	}
	if err := r.repo.Append(ctx, e); err != nil {
		return errors.Mark(errors.Wrapf(err, "auditoría %s %s/%s", in.Action, in.Entity, in.EntityID), domain.ErrAuditFailure)
	}
	return nil
}

func marshalState(v any) (json.RawMessage, error) {
	if isNil(v) {
		return nil, nil
	}
	return json.Marshal(v)
}

// isNil cubre también punteros tipados nil guardados en any.
func isNil(v any) bool {
	if v == nil {
		return true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Pointer, reflect.Map, reflect.Interface:
		return rv.IsNil()
	case reflect.Slice:
		return rv.Len() == 0
	}
	return false
}
