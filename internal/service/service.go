// Package service implements the business engines: invoice settlement,
// payment application, daily reconciliation, and the supporting customer,
// truck, auth, and report operations. Every multi-record mutation runs
// inside a single GORM transaction; customer balances are additionally
// guarded by a per-customer distributed lock so whole operations serialize
// across API instances.
package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/Alishanbouraa/chickensap/internal/apierror"
	"github.com/Alishanbouraa/chickensap/internal/infra"
	"github.com/Alishanbouraa/chickensap/internal/worker"

	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// epsilon absorbs rounding drift when recomputing derived invoice fields.
var epsilon = decimal.RequireFromString("0.01")

var oneHundred = decimal.NewFromInt(100)

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
// Context cancellation before commit rolls back fully; the caller sees a
// retryable transient error, never a partial write.
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	err := db.WithContext(ctx).Transaction(fn)
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return apierror.Transient("storage timeout, no changes were committed", err)
	}
	return err
}

// withLock wraps fn in the distributed lock when a locker is wired,
// and degrades to a plain call when it is not.
func withLock(ctx context.Context, l infra.Locker, key string, fn func() error) error {
	if l == nil {
		return fn()
	}
	return l.WithLock(ctx, key, fn)
}

// withinEpsilon reports whether two decimals agree to the cent.
func withinEpsilon(a, b decimal.Decimal) bool {
	return a.Sub(b).Abs().LessThanOrEqual(epsilon)
}

// clampDebt floors a computed balance at zero. Overshoot is allowed business
// behavior (overpayment, void after partial payment) but worth a warning.
func clampDebt(newDebt decimal.Decimal, customerID, op string) decimal.Decimal {
	if newDebt.IsNegative() {
		log.Warn().
			Str("customer_id", customerID).
			Str("op", op).
			Str("overshoot", newDebt.Abs().String()).
			Msg("customer balance floored at zero")
		return decimal.Zero
	}
	return newDebt
}

// parseDateOrToday parses YYYY-MM-DD, defaulting to the current date.
func parseDateOrToday(s string) (time.Time, error) {
	if s == "" {
		now := time.Now()
		return time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC), nil
	}
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, apierror.Validation("invalid date %q, expected YYYY-MM-DD", s)
	}
	return t, nil
}

// enqueueAudit captures old/new values for a mutation and hands them to the
// audit worker. Fire-and-forget: an unreachable queue must never fail the
// business operation that already committed.
func enqueueAudit(ctx context.Context, d *worker.Dispatcher, table, op, recordID, actorID string, oldV, newV interface{}) {
	if d == nil {
		return
	}
	payload := worker.AuditJobPayload{
		TableName: table,
		Operation: op,
		RecordID:  recordID,
		ActorID:   actorID,
		OldValues: jsonSnapshot(oldV),
		NewValues: jsonSnapshot(newV),
	}
	if err := d.EnqueueAudit(ctx, payload); err != nil {
		log.Warn().Err(err).Str("table", table).Str("record_id", recordID).
			Msg("failed to enqueue audit entry")
	}
}

func jsonSnapshot(v interface{}) *string {
	if v == nil {
		return nil
	}
	data, err := json.Marshal(v)
	if err != nil {
		return nil
	}
	s := string(data)
	return &s
}
