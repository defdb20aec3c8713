// Package schedule submits crop/location/date requests to the external
// AI scheduler and merges the returned batch into the task store by way
// of a full reload.
package schedule

import (
	"context"
	"strings"

	"github.com/agrimitra/farmcal/internal/taskstore"
)

// Bridge connects the schedule-generation form to the AI scheduler.
// It batch-inserts tasks; it never edits existing ones.
type Bridge struct {
	svc   taskstore.Service
	store *taskstore.Store
}

// NewBridge creates a bridge over the given service and store.
func NewBridge(svc taskstore.Service, store *taskstore.Store) *Bridge {
	return &Bridge{svc: svc, store: store}
}

// Generate validates the request locally, submits it, and reloads the
// store so the new tasks appear in every view. Returns the number of
// tasks the scheduler added and the crop label it reported.
func (b *Bridge) Generate(ctx context.Context, req taskstore.ScheduleRequest) (count int, crop string, err error) {
	if err := validate(req); err != nil {
		return 0, "", err
	}
	result, err := b.svc.GenerateSchedule(ctx, req)
	if err != nil {
		return 0, "", err
	}
	if err := b.store.Load(ctx); err != nil {
		return 0, "", err
	}
	crop = result.Crop
	if crop == "" {
		crop = req.Crop
	}
	return len(result.Tasks), crop, nil
}

// validate rejects any empty field before a remote call is attempted.
func validate(req taskstore.ScheduleRequest) error {
	if strings.TrimSpace(req.Crop) == "" {
		return &taskstore.ValidationError{Field: "crop", Reason: "is required"}
	}
	if strings.TrimSpace(req.Location) == "" {
		return &taskstore.ValidationError{Field: "location", Reason: "is required"}
	}
	if strings.TrimSpace(req.PlantingDate) == "" {
		return &taskstore.ValidationError{Field: "planting_date", Reason: "is required"}
	}
	return nil
}
