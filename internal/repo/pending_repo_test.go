package repo

import (
	"context"
	"testing"
)

func TestPendingMessages_ReplaceGetClear(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	got, err := GetPendingMessages(ctx, db, 5)
	if err != nil || got != nil {
		t.Fatalf("fresh user should have no pending list (got=%v err=%v)", got, err)
	}

	if err := ReplacePendingMessages(ctx, db, 5, []int64{10, 11}); err != nil {
		t.Fatalf("replace: %v", err)
	}
	got, err = GetPendingMessages(ctx, db, 5)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if len(got) != 2 || got[0] != 10 || got[1] != 11 {
		t.Fatalf("unexpected list: %v", got)
	}

	// Replacement is wholesale, not an append.
	if err := ReplacePendingMessages(ctx, db, 5, []int64{20}); err != nil {
		t.Fatalf("second replace: %v", err)
	}
	got, err = GetPendingMessages(ctx, db, 5)
	if err != nil || len(got) != 1 || got[0] != 20 {
		t.Fatalf("replace did not overwrite: %v (err=%v)", got, err)
	}

	if err := ClearPendingMessages(ctx, db, 5); err != nil {
		t.Fatalf("clear: %v", err)
	}
	// Clearing an absent record stays silent.
	if err := ClearPendingMessages(ctx, db, 5); err != nil {
		t.Fatalf("second clear: %v", err)
	}
	got, err = GetPendingMessages(ctx, db, 5)
	if err != nil || got != nil {
		t.Fatalf("expected empty after clear (got=%v err=%v)", got, err)
	}
}
