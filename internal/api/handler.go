package api

import (
	"github.com/SherClockHolmes/webpush-go"
	"gorm.io/gorm"

	"hallpass-backend/internal/pass"
	"hallpass-backend/internal/policy"
)

// Handler holds shared dependencies for API handlers.
type Handler struct {
	manager *pass.Manager
	policy  *policy.Table
	db      *gorm.DB
	webpush *webpush.Options
}

// NewHandler creates a new API handler.
func NewHandler(manager *pass.Manager, table *policy.Table, db *gorm.DB, webpushOptions *webpush.Options) *Handler {
	return &Handler{
		manager: manager,
		policy:  table,
		db:      db,
		webpush: webpushOptions,
	}
}
