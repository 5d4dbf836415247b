package tasks

import (
	"encoding/json"
	"time"

	"github.com/hibiken/asynq"
)

const TypeRiskSweep = "risk:sweep"

// RiskSweepPayload drives one batch risk evaluation over upcoming bookings.
type RiskSweepPayload struct {
	WithinDays int `json:"withinDays"`
}

func NewRiskSweepTask(payload RiskSweepPayload, fireAt time.Time) (*asynq.Task, []asynq.Option, error) {
	b, err := json.Marshal(payload)
	if err != nil {
		return nil, nil, err
	}
	task := asynq.NewTask(TypeRiskSweep, b)
	opts := []asynq.Option{asynq.ProcessAt(fireAt)}

	return task, opts, nil
}

// NextSweepTime returns the next occurrence of the nightly sweep hour.
func NextSweepTime(now time.Time, hour int) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), hour, 0, 0, 0, now.Location())
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}
