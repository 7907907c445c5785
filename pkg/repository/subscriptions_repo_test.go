package repository

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/policyflow/policyflow/pkg/domain"
)

func TestSubscriptionsUpsert_Idempotent(t *testing.T) {
	conn := testDB(t)
	ctx := context.Background()
	repo := NewSubscriptionsRepository(conn)

	user := seedUser(t, conn)
	subID := "sub_" + uuid.NewString()
	row := &domain.Subscription{
		ID:                   uuid.New(),
		UserID:               user.ID,
		StripeCustomerID:     "cus_" + uuid.NewString(),
		StripeSubscriptionID: subID,
		Status:               "active",
		PriceID:              "price_foundational",
		Quantity:             1,
		Interval:             domain.IntervalMonth,
		CreatedAt:            time.Now().UTC(),
	}
	if err := repo.Upsert(ctx, row); err != nil {
		t.Fatalf("first Upsert failed: %v", err)
	}

	// A redelivered webhook event is translated into a fresh row id but
	// carries the same provider subscription id.
	redelivered := *row
	redelivered.ID = uuid.New()
	if err := repo.Upsert(ctx, &redelivered); err != nil {
		t.Fatalf("redelivered Upsert failed: %v", err)
	}

	var count int
	err := conn.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM subscriptions WHERE stripe_subscription_id = $1`, subID,
	).Scan(&count)
	if err != nil {
		t.Fatalf("count rows: %v", err)
	}
	if count != 1 {
		t.Errorf("rows for %s = %d, want 1", subID, count)
	}

	got, err := repo.GetByUserID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByUserID failed: %v", err)
	}
	if got.ID != row.ID {
		t.Errorf("row id = %s, want original %s", got.ID, row.ID)
	}
	if got.Status != "active" {
		t.Errorf("Status = %q, want %q", got.Status, "active")
	}

	// A later lifecycle event for the same subscription updates in place.
	canceled := redelivered
	canceled.ID = uuid.New()
	canceled.Status = "canceled"
	canceled.CancelAtPeriodEnd = true
	if err := repo.Upsert(ctx, &canceled); err != nil {
		t.Fatalf("Upsert after cancel failed: %v", err)
	}

	got, err = repo.GetByUserID(ctx, user.ID)
	if err != nil {
		t.Fatalf("GetByUserID after cancel failed: %v", err)
	}
	if got.ID != row.ID {
		t.Errorf("row id changed on update: got %s, want %s", got.ID, row.ID)
	}
	if got.Status != "canceled" {
		t.Errorf("Status = %q, want %q", got.Status, "canceled")
	}
	if !got.CancelAtPeriodEnd {
		t.Error("CancelAtPeriodEnd = false, want true")
	}
}
