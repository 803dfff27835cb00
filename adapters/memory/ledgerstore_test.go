package memory_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/artpar/paygate/adapters/memory"
	"github.com/artpar/paygate/domain/ledger"
	"github.com/shopspring/decimal"
)

func pendingEntry(id string) ledger.Entry {
	return ledger.Entry{
		ID:            id,
		ClientAddress: "0xA",
		Endpoint:      "/api/v1/predict",
		AmountCharged: decimal.RequireFromString("0.01"),
		Status:        ledger.StatusPending,
		CreatedAt:     baseTime,
	}
}

func TestLedgerStore_AppendGet(t *testing.T) {
	s := memory.NewLedgerStore()
	ctx := context.Background()

	if err := s.Append(ctx, pendingEntry("req_1")); err != nil {
		t.Fatalf("Append: %v", err)
	}

	got, err := s.Get(ctx, "req_1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Endpoint != "/api/v1/predict" {
		t.Errorf("Endpoint = %s", got.Endpoint)
	}

	if _, err := s.Get(ctx, "req_missing"); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("Get missing: err = %v, want ErrNotFound", err)
	}
}

func TestLedgerStore_RejectsDuplicateID(t *testing.T) {
	s := memory.NewLedgerStore()
	ctx := context.Background()

	s.Append(ctx, pendingEntry("req_1"))
	if err := s.Append(ctx, pendingEntry("req_1")); !errors.Is(err, ledger.ErrDuplicateID) {
		t.Errorf("err = %v, want ErrDuplicateID", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len = %d, want 1", s.Len())
	}
}

func TestLedgerStore_Transition(t *testing.T) {
	s := memory.NewLedgerStore()
	ctx := context.Background()
	s.Append(ctx, pendingEntry("req_1"))

	at := baseTime.Add(time.Second)
	e, err := s.Transition(ctx, "req_1", ledger.StatusCompleted, at)
	if err != nil {
		t.Fatalf("Transition: %v", err)
	}
	if e.Status != ledger.StatusCompleted || e.CompletedAt == nil || !e.CompletedAt.Equal(at) {
		t.Errorf("entry = %+v", e)
	}

	if _, err := s.Transition(ctx, "req_1", ledger.StatusPending, at); !errors.Is(err, ledger.ErrInvalidTransition) {
		t.Errorf("err = %v, want ErrInvalidTransition", err)
	}
	if _, err := s.Transition(ctx, "nope", ledger.StatusCompleted, at); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("err = %v, want ErrNotFound", err)
	}

	stored, _ := s.Get(ctx, "req_1")
	if stored.Status != ledger.StatusCompleted {
		t.Errorf("stored status = %s, want completed", stored.Status)
	}
}

func TestLedgerStore_ListIsSnapshot(t *testing.T) {
	s := memory.NewLedgerStore()
	ctx := context.Background()
	s.Append(ctx, pendingEntry("req_1"))
	s.Append(ctx, pendingEntry("req_2"))

	list, _ := s.List(ctx)
	list[0].ID = "mutated"

	if got, _ := s.Get(ctx, "req_1"); got.ID != "req_1" {
		t.Error("List exposed internal storage")
	}
	if list[1].ID != "req_2" {
		t.Errorf("order: second = %s, want req_2", list[1].ID)
	}
}

func TestLedgerStore_ConcurrentAppend(t *testing.T) {
	s := memory.NewLedgerStore()
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if err := s.Append(ctx, pendingEntry(fmt.Sprintf("req_%d", i))); err != nil {
				t.Errorf("Append: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if s.Len() != 100 {
		t.Errorf("Len = %d, want 100", s.Len())
	}
}
