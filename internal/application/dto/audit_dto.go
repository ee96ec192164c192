package dto

import (
	"encoding/json"
	"time"
)

// AuditListQuery filtros de GET /audit-logs. Day en formato YYYY-MM-DD.
type AuditListQuery struct {
	Limit    int    `query:"limit" validate:"min=0,max=100"`
	Offset   int    `query:"offset" validate:"min=0"`
	Day      string `query:"day" validate:"omitempty,datetime=2006-01-02"`
	Action   string `query:"action" validate:"omitempty,oneof=CREATE UPDATE DELETE"`
	Entity   string `query:"entity" validate:"omitempty,oneof=product user"`
	EntityID string `query:"entity_id" validate:"omitempty,uuid"`
	UserID   string `query:"user_id" validate:"omitempty,uuid"`
}

// AuditLogResponse una entrada del historial tal como se guardó.
type AuditLogResponse struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	UserEmail   string          `json:"user_email"`
	UserRole    string          `json:"user_role"`
	Action      string          `json:"action"`
	Entity      string          `json:"entity"`
	EntityID    string          `json:"entity_id"`
	BeforeState json.RawMessage `json:"before_state"`
	AfterState  json.RawMessage `json:"after_state"`
	CreatedAt   time.Time       `json:"created_at"`
}
