package services

import (
	"context"
	"fmt"
	"time"

	"firedues/internal/events"
	"firedues/internal/logger"
)

// NewPersonCreatedHandler assesses the current year for a newly registered
// person's properties. Re-delivery is harmless since rollover skips
// properties that are already assessed.
func NewPersonCreatedHandler(rollover RolloverServicer, now func() time.Time) events.Handler {
	return func(ctx context.Context, e events.Event) error {
		created, ok := e.(events.PersonCreated)
		if !ok {
			return fmt.Errorf("unexpected event %T for %s", e, events.PersonCreatedEvent)
		}
		asOf := now()
		n, err := rollover.CreateMissingAssessmentsForPerson(ctx, created.PersonID, asOf.Year(), asOf)
		if err != nil {
			return err
		}
		if n > 0 {
			logger.Get().Infow("Assessed new person's properties", "person_id", created.PersonID, "year", asOf.Year(), "created", n)
		}
		return nil
	}
}
