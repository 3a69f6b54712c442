package engagement

import (
	"time"

	"github.com/jakechorley/volunteer-hub/pkg/core/model"
)

// CheckRegistrationOpen rejects registration for finished or cancelled events and
// after the registration deadline
func CheckRegistrationOpen(now time.Time, event model.Event) error {
	if event.Cancelled || !event.End.After(now) {
		return ErrRegistrationClosed
	}
	if event.RegistrationDeadline != nil && !event.RegistrationDeadline.After(now) {
		return ErrRegistrationClosed
	}
	return nil
}

// Register produces the upserted registration row for (volunteer, event).
// Existing feedback survives re-registration.
func Register(now time.Time, session model.Session, event model.Event, existing *model.Registration) (model.Registration, error) {
	if err := RequireSession(&session); err != nil {
		return model.Registration{}, err
	}
	if err := CheckRegistrationOpen(now, event); err != nil {
		return model.Registration{}, err
	}

	reg := model.Registration{VolunteerID: session.VolunteerID, EventID: event.ID}
	if existing != nil {
		reg = *existing
	}
	reg.Status = model.StatusRegistered
	reg.UpdatedAt = now
	return reg, nil
}

// Withdraw marks an existing registration as not-registered
func Withdraw(now time.Time, session model.Session, existing *model.Registration) (model.Registration, error) {
	if err := RequireSession(&session); err != nil {
		return model.Registration{}, err
	}
	if existing == nil || existing.Status != model.StatusRegistered {
		return model.Registration{}, ErrNotRegistered
	}

	reg := *existing
	reg.Status = model.StatusNotRegistered
	reg.UpdatedAt = now
	return reg, nil
}
