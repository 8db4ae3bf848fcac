package store

import (
	"context"
	"errors"
	"testing"

	"finflow/internal/models"
)

func TestRecurring_CreateValidatesAccount(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	alice := mustUser(t, s, "alice@example.com")
	bob := mustUser(t, s, "bob@example.com")
	bobAcc := mustAccount(t, s, bob.ID)

	in := RecurringInput{
		AccountID: bobAcc.ID, Description: "Salary", Amount: dec("1000"),
		Type: models.TransactionIncome, Interval: models.IntervalMonthly, NextDate: models.NewDate(2024, 1, 25),
	}
	if _, err := s.Recurring.Create(ctx, alice.ID, in); !errors.Is(err, ErrInvalidReference) {
		t.Errorf("Create on foreign account error = %v, want ErrInvalidReference", err)
	}

	in.AccountID = mustAccount(t, s, alice.ID).ID
	in.Interval = "hourly"
	if _, err := s.Recurring.Create(ctx, alice.ID, in); !errors.Is(err, ErrValidation) {
		t.Errorf("Create with bad interval error = %v, want ErrValidation", err)
	}

	in.Interval = models.IntervalMonthly
	end := models.NewDate(2024, 1, 1)
	in.EndDate = &end
	if _, err := s.Recurring.Create(ctx, alice.ID, in); !errors.Is(err, ErrValidation) {
		t.Errorf("Create with end before next error = %v, want ErrValidation", err)
	}

	in.EndDate = nil
	r, err := s.Recurring.Create(ctx, alice.ID, in)
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := s.Recurring.Update(ctx, alice.ID, r.ID, RecurringPatch{AccountID: Some(bobAcc.ID)}); !errors.Is(err, ErrInvalidReference) {
		t.Errorf("Update to foreign account error = %v, want ErrInvalidReference", err)
	}
	if _, err := s.Recurring.Get(ctx, bob.ID, r.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Get as other owner error = %v, want ErrNotFound", err)
	}
}

func TestRecurring_MaterializeAdvancesAndExpires(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "u@example.com")
	acc := mustAccount(t, s, u.ID)
	end := models.NewDate(2024, 3, 15)

	r, err := s.Recurring.Create(ctx, u.ID, RecurringInput{
		AccountID: acc.ID, Description: "Rent", Amount: dec("500"),
		Type: models.TransactionExpense, Interval: models.IntervalMonthly,
		NextDate: models.NewDate(2024, 1, 31), EndDate: &end,
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	wantDates := []models.Date{models.NewDate(2024, 1, 31), models.NewDate(2024, 2, 29)}
	for i, want := range wantDates {
		txn, err := s.Recurring.Materialize(ctx, u.ID, r.ID)
		if err != nil {
			t.Fatalf("Materialize #%d error = %v", i+1, err)
		}
		if !txn.Date.Equal(want) {
			t.Errorf("Materialize #%d date = %s, want %s", i+1, txn.Date, want)
		}
		if !txn.IsRecurring || txn.RecurringTransactionID == nil || *txn.RecurringTransactionID != r.ID {
			t.Errorf("Materialize #%d = recurring %v id %v, want true %d", i+1, txn.IsRecurring, txn.RecurringTransactionID, r.ID)
		}
		if txn.Description == nil || *txn.Description != "Rent" || !txn.Amount.Equal(dec("500")) {
			t.Errorf("Materialize #%d did not copy template fields: %+v", i+1, txn)
		}
	}

	got, err := s.Recurring.Get(ctx, u.ID, r.ID)
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	// Feb 29 + 1 month = Mar 29, past Mar 15
	if !got.NextDate.Equal(models.NewDate(2024, 3, 29)) || got.IsActive {
		t.Errorf("template = next %s active %v, want 2024-03-29 false", got.NextDate, got.IsActive)
	}

	if _, err := s.Recurring.Materialize(ctx, u.ID, r.ID); !errors.Is(err, ErrValidation) {
		t.Errorf("Materialize(expired) error = %v, want ErrValidation", err)
	}

	list, err := s.Transactions.List(ctx, u.ID, TransactionFilter{Page: Page{Limit: 10}})
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(list) != 2 {
		t.Errorf("materialized transactions = %d, want 2", len(list))
	}

	// deleting the template keeps what it produced
	if err := s.Recurring.Delete(ctx, u.ID, r.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	if n := count(t, s, "transactions", ""); n != 2 {
		t.Errorf("transactions after template delete = %d, want 2", n)
	}
}

func TestRecurring_MaterializeInactive(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	u := mustUser(t, s, "u@example.com")
	acc := mustAccount(t, s, u.ID)

	r, err := s.Recurring.Create(ctx, u.ID, RecurringInput{
		AccountID: acc.ID, Description: "Gym", Amount: dec("30"),
		Type: models.TransactionExpense, Interval: models.IntervalWeekly, NextDate: models.NewDate(2024, 6, 3),
	})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}
	if _, err := s.Recurring.Update(ctx, u.ID, r.ID, RecurringPatch{IsActive: Some(false)}); err != nil {
		t.Fatalf("Update(is_active=false) error = %v", err)
	}
	if _, err := s.Recurring.Materialize(ctx, u.ID, r.ID); !errors.Is(err, ErrValidation) {
		t.Errorf("Materialize(inactive) error = %v, want ErrValidation", err)
	}
	if _, err := s.Recurring.Materialize(ctx, 9999, r.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Materialize(other owner) error = %v, want ErrNotFound", err)
	}
}
