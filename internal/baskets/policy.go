package basket

import (
	"time"

	"github.com/lojasocial-app/lojasocial-backend/pkg/db/models"
	pkgerrors "github.com/lojasocial-app/lojasocial-backend/pkg/errors"
)

// RescheduleOutcome is the transition the no-show policy authorizes.
type RescheduleOutcome string

const (
	// OutcomePlain moves the pickup date without touching the fault counter.
	OutcomePlain RescheduleOutcome = "plain"
	// OutcomeFault moves the date and records a missed pickup.
	OutcomeFault RescheduleOutcome = "fault"
)

// DecideReschedule authorizes a reschedule request. Plain reschedules are
// allowed at any time while the basket is active. Fault-counted reschedules
// require the pickup date to have passed and refuse the third fault: once the
// counter reaches two the only legal exits are not collected, cancelled or
// delivered.
func DecideReschedule(basket *models.Basket, now time.Time, countsAsFault bool) (RescheduleOutcome, error) {
	if basket.Status.IsTerminal() {
		return "", pkgerrors.New(pkgerrors.CodeStateConflict, "basket is terminal and cannot be rescheduled")
	}
	if !countsAsFault {
		return OutcomePlain, nil
	}
	if !basket.IsOverdue(now) {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "fault-counted reschedule requires the pickup date to have passed")
	}
	if basket.FaultCount >= models.FaultLimit-1 {
		return "", pkgerrors.New(pkgerrors.CodeStateConflict, "fault limit reached, basket must be marked not collected")
	}
	return OutcomeFault, nil
}

// DecideNotCollected authorizes the forced terminal no-show. The basket must
// still be active, its pickup date must have passed, and both grace
// reschedules must already be spent: the no-show is always the third strike.
func DecideNotCollected(basket *models.Basket, now time.Time) error {
	if basket.Status.IsTerminal() {
		return pkgerrors.New(pkgerrors.CodeStateConflict, "basket is already terminal")
	}
	if !basket.IsOverdue(now) {
		return pkgerrors.New(pkgerrors.CodeValidation, "basket pickup date has not passed")
	}
	if basket.FaultCount < models.FaultLimit-1 {
		return pkgerrors.New(pkgerrors.CodeStateConflict,
			"basket still has grace reschedules left and cannot be closed as not collected")
	}
	return nil
}

// RecordFault applies one missed pickup to the basket, capped at the limit.
func RecordFault(basket *models.Basket, now time.Time) {
	if basket.FaultCount < models.FaultLimit {
		basket.FaultCount++
	}
	at := now
	basket.LastFaultAt = &at
}
