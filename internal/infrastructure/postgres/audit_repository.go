package postgres

import (
	"context"
	"strings"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"

	"github.com/jhoicas/inventory-manager/internal/domain/entity"
	"github.com/jhoicas/inventory-manager/internal/domain/repository"
)

var _ repository.AuditRepository = (*AuditRepo)(nil)

const auditColumns = "id, user_id, user_email, user_role, action, entity, entity_id, before_state, after_state, created_at"

// AuditRepo tabla audit_logs, solo INSERT y SELECT.
type AuditRepo struct {
	q Querier
}

// NewAuditRepository construye el adaptador del historial de auditoría.
func NewAuditRepository(q Querier) *AuditRepo {
	return &AuditRepo{q: q}
}

// Append inserta una entrada. El estado JSON nulo se guarda como NULL, no como 'null'.
func (r *AuditRepo) Append(ctx context.Context, e *entity.AuditEntry) error {
	query := `
		INSERT INTO audit_logs (` + auditColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`
	_, err := r.q.Exec(ctx, query,
		e.ID, e.Actor.UserID, e.Actor.Email, string(e.Actor.Role), string(e.Action),
		e.Entity, e.EntityID, nullableJSON(e.BeforeState), nullableJSON(e.AfterState), e.CreatedAt,
	)
	if err != nil {
		return storeErr(err, "insert audit log")
	}
	return nil
}

// List consulta el historial, más reciente primero.
func (r *AuditRepo) List(ctx context.Context, filter entity.AuditFilter) ([]*entity.AuditEntry, error) {
	query := psql.Select(strings.Split(auditColumns, ", ")...).
		From("audit_logs").
		OrderBy("created_at DESC")

	if filter.Day != nil {
		start := time.Date(filter.Day.Year(), filter.Day.Month(), filter.Day.Day(), 0, 0, 0, 0, time.UTC)
		query = query.Where(sq.GtOrEq{"created_at": start}).Where(sq.Lt{"created_at": start.AddDate(0, 0, 1)})
	}
	if filter.Action != "" {
		query = query.Where(sq.Eq{"action": string(filter.Action)})
	}
	if filter.Entity != "" {
		query = query.Where(sq.Eq{"entity": filter.Entity})
	}
	if filter.EntityID != "" {
		query = query.Where(sq.Eq{"entity_id": filter.EntityID})
	}
	if filter.UserID != "" {
		query = query.Where(sq.Eq{"user_id": filter.UserID})
	}
	if filter.Limit > 0 {
		query = query.Limit(uint64(filter.Limit))
	}
	if filter.Offset > 0 {
		query = query.Offset(uint64(filter.Offset))
	}

	sql, args, err := query.ToSql()
	if err != nil {
		return nil, storeErr(err, "build audit list")
	}
	rows, err := r.q.Query(ctx, sql, args...)
	if err != nil {
		return nil, storeErr(err, "list audit logs")
	}
	defer rows.Close()

	list := make([]*entity.AuditEntry, 0)
	for rows.Next() {
		e, err := scanAuditEntry(rows)
		if err != nil {
			return nil, storeErr(err, "scan audit log")
		}
		list = append(list, e)
	}
	if err := rows.Err(); err != nil {
		return nil, storeErr(err, "list audit logs")
	}
	return list, nil
}

func scanAuditEntry(row pgx.Row) (*entity.AuditEntry, error) {
	var (
		e             entity.AuditEntry
		role, action  string
		before, after []byte
	)
	err := row.Scan(&e.ID, &e.Actor.UserID, &e.Actor.Email, &role, &action,
		&e.Entity, &e.EntityID, &before, &after, &e.CreatedAt)
	if err != nil {
		return nil, err
	}
	// el rol se guarda tal cual se capturó; no se revalida contra el enum actual
	e.Actor.Role = entity.Role(role)
	e.Action = entity.AuditAction(action)
	e.BeforeState = before
	e.AfterState = after
	return &e, nil
}

func nullableJSON(b []byte) any {
	if len(b) == 0 || string(b) == "null" {
		return nil
	}
	return string(b)
}
