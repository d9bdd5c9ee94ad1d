package rab

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/Simplici0/rab.works/internal/db"
	"github.com/Simplici0/rab.works/internal/migrations"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()

	database, err := db.Open(filepath.Join(t.TempDir(), "rab-test.db"))
	if err != nil {
		t.Fatalf("open sqlite database: %v", err)
	}
	t.Cleanup(func() { _ = database.Close() })

	if err := migrations.Up(database); err != nil {
		t.Fatalf("run migrations: %v", err)
	}
	return NewStore(database)
}

func TestStoreSaveItemsRoundTrip(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	id, err := store.Create(ctx, Estimate{Title: "Rumah Tipe 36", ClientName: "Bu Sari", OwnerEmail: "user@example.com"})
	if err != nil {
		t.Fatalf("create estimate: %v", err)
	}

	ledger := NewLedger()
	for _, in := range []NewItem{
		{Description: "Galian", Category: "Earthwork", Unit: "m³", Volume: 10, UnitPrice: 87000},
		{Description: "Struktur", Category: "Foundation & Structure", Unit: "m³", Volume: 15, UnitPrice: 850000},
	} {
		if _, err := ledger.AddItem(in, nil); err != nil {
			t.Fatalf("add item: %v", err)
		}
	}
	if err := store.SaveItems(ctx, id, ledger); err != nil {
		t.Fatalf("save items: %v", err)
	}

	got, err := store.Get(ctx, id)
	if err != nil {
		t.Fatalf("get estimate: %v", err)
	}
	if got.Title != "Rumah Tipe 36" || got.ClientName != "Bu Sari" {
		t.Fatalf("unexpected header: %+v", got)
	}
	if len(got.Items) != 2 || got.Items[0].Description != "Galian" || got.Items[1].Amount != 12750000 {
		t.Fatalf("unexpected items: %+v", got.Items)
	}
	if got.Items[0].ID != ledger.Items()[0].ID {
		t.Fatalf("item id not preserved")
	}
	nearlyEqual(t, "stored grand total", got.Totals.GrandTotal, ledger.Totals().GrandTotal)

	reloaded := got.Ledger()
	if !reloaded.RemoveItem(got.Items[0].ID) {
		t.Fatalf("expected reloaded ledger to contain stored item")
	}
	if err := store.SaveItems(ctx, id, reloaded); err != nil {
		t.Fatalf("save after removal: %v", err)
	}

	got, err = store.Get(ctx, id)
	if err != nil {
		t.Fatalf("get after removal: %v", err)
	}
	if len(got.Items) != 1 {
		t.Fatalf("expected 1 item after removal, got %d", len(got.Items))
	}
	nearlyEqual(t, "subtotal after removal", got.Totals.Subtotal, 12750000)
	nearlyEqual(t, "grand total after removal", got.Totals.GrandTotal, 17690625)
}

func TestStoreListFiltersAndOrder(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	for _, e := range []Estimate{
		{Title: "Gudang", OwnerEmail: "a@example.com"},
		{Title: "Rumah Tinggal", Notes: "dua lantai", OwnerEmail: "a@example.com"},
		{Title: "Ruko", OwnerEmail: "b@example.com"},
	} {
		if _, err := store.Create(ctx, e); err != nil {
			t.Fatalf("create %s: %v", e.Title, err)
		}
	}

	own, err := store.List(ctx, ListFilter{Owner: "a@example.com"})
	if err != nil {
		t.Fatalf("list own: %v", err)
	}
	if len(own) != 2 || own[0].Title != "Rumah Tinggal" {
		t.Fatalf("expected newest first for owner, got %+v", own)
	}

	all, err := store.List(ctx, ListFilter{})
	if err != nil {
		t.Fatalf("list all: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("expected 3 estimates, got %d", len(all))
	}

	byNotes, err := store.List(ctx, ListFilter{Query: "LANTAI"})
	if err != nil {
		t.Fatalf("list by query: %v", err)
	}
	if len(byNotes) != 1 || byNotes[0].Title != "Rumah Tinggal" {
		t.Fatalf("unexpected query result: %+v", byNotes)
	}
}

func TestStoreErrors(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	if _, err := store.Create(ctx, Estimate{Title: "  ", OwnerEmail: "a@example.com"}); !errors.Is(err, ErrTitleMissing) {
		t.Fatalf("expected ErrTitleMissing, got %v", err)
	}
	if _, err := store.Get(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from Get, got %v", err)
	}
	if err := store.SaveItems(ctx, 42, NewLedger()); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from SaveItems, got %v", err)
	}
	if err := store.Delete(ctx, 42); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound from Delete, got %v", err)
	}
}

func TestStoreDeleteCascadesItems(t *testing.T) {
	ctx := context.Background()
	store := newTestStore(t)

	id, err := store.Create(ctx, Estimate{Title: "Pagar", OwnerEmail: "a@example.com"})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	ledger := NewLedger()
	if _, err := ledger.AddItem(NewItem{Description: "Bata", Category: "Walls", Unit: "m²", Volume: 20, UnitPrice: 114000}, nil); err != nil {
		t.Fatalf("add item: %v", err)
	}
	if err := store.SaveItems(ctx, id, ledger); err != nil {
		t.Fatalf("save items: %v", err)
	}

	if err := store.Delete(ctx, id); err != nil {
		t.Fatalf("delete: %v", err)
	}

	var remaining int
	if err := store.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM estimate_items`).Scan(&remaining); err != nil {
		t.Fatalf("count items: %v", err)
	}
	if remaining != 0 {
		t.Fatalf("expected items to be deleted with estimate, got %d", remaining)
	}
}
