package domain

import (
	"context"
	"errors"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

const EmptyScheduleMessage = "No rent schedule has been generated for this lease yet."

type Service interface {
	// Generate builds and stores the schedule for a lease inside tx.
	Generate(ctx context.Context, tx *gorm.DB, leaseID snowflake.ID, plan Plan) (Schedule, []ScheduleEntry, error)
	// GetByLease renders the stored schedule. Missing schedules render empty.
	GetByLease(ctx context.Context, leaseID string) (Rendered, error)
}

var (
	ErrInvalidID         = errors.New("invalid_id")
	ErrInvalidPlan       = errors.New("invalid_schedule_plan")
	ErrScheduleExists    = errors.New("schedule_already_exists")
	ErrEntryAlreadyStamp = errors.New("schedule_entry_already_invoiced")
)
