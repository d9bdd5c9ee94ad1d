package main

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strconv"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/rab.works/internal/pricing"
	"github.com/Simplici0/rab.works/internal/rab"
)

const stoneFoundation = "Pasangan batu kali pondasi (m³)"

func createEstimate(t *testing.T, srv *server, cookie *http.Cookie, title string) int64 {
	t.Helper()

	rec := do(t, srv, postForm("/estimates", url.Values{"title": {title}, "client_name": {"Pak Budi"}}), cookie)
	path, _ := redirectQuery(t, rec)

	list, err := srv.estimates.List(context.Background(), rab.ListFilter{Query: title})
	if err != nil || len(list) == 0 {
		t.Fatalf("expected created estimate %q: %v", title, err)
	}
	if want := "/estimates/" + itoa(list[0].ID); path != want {
		t.Fatalf("expected redirect to %s, got %s", want, path)
	}
	return list[0].ID
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}

func TestEstimateLifecycle(t *testing.T) {
	srv := newTestServer(t)
	owner := sessionCookie(t, srv, testUserEmail, roleUser)
	ctx := context.Background()

	id := createEstimate(t, srv, owner, "Rumah Tipe 36")
	base := "/estimates/" + itoa(id)

	rec := do(t, srv, postForm(base+"/items", url.Values{
		"description":  {"Pondasi keliling"},
		"sub_category": {stoneFoundation},
		"volume":       {"2,5"},
	}), owner)
	_, q := redirectQuery(t, rec)
	if q.Get("success") == "" {
		t.Fatalf("expected success message, got %v", q)
	}

	snapshot, err := srv.catalog.LoadSnapshot(ctx)
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	wantPrice := pricing.ResolveAutoPrice(stoneFoundation, snapshot)

	est, err := srv.estimates.Get(ctx, id)
	if err != nil {
		t.Fatalf("get estimate: %v", err)
	}
	if len(est.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(est.Items))
	}
	item := est.Items[0]
	if item.Unit != "m³" || item.Category != pricing.FoundationStructure {
		t.Fatalf("expected unit and category from sub-category, got %+v", item)
	}
	if math.Abs(item.UnitPrice-wantPrice) > 1e-6 || math.Abs(item.Amount-2.5*wantPrice) > 1e-6 {
		t.Fatalf("unexpected pricing %+v, want unit price %v", item, wantPrice)
	}

	rec = do(t, srv, postForm(base+"/items", url.Values{
		"description": {"Pekerjaan tambahan"},
		"category":    {"Lain-lain"},
		"unit":        {"ls"},
		"volume":      {"1"},
		"unit_price":  {"500000"},
	}), owner)
	redirectQuery(t, rec)

	rec = do(t, srv, httptest.NewRequest(http.MethodGet, base, nil), owner)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected detail page, got %d", rec.Code)
	}
	body := rec.Body.String()
	for _, want := range []string{"Pondasi keliling", "Pekerjaan tambahan", "Rp 500.000"} {
		if !strings.Contains(body, want) {
			t.Fatalf("expected detail page to contain %q", want)
		}
	}

	est, err = srv.estimates.Get(ctx, id)
	if err != nil {
		t.Fatalf("get estimate: %v", err)
	}
	if math.Abs(est.Totals.GrandTotal-rab.ComputeTotals(est.Items).GrandTotal) > 1e-6 {
		t.Fatalf("stored totals out of sync: %+v", est.Totals)
	}

	rec = do(t, srv, postForm(base+"/items/"+item.ID+"/delete", nil), owner)
	redirectQuery(t, rec)
	est, err = srv.estimates.Get(ctx, id)
	if err != nil {
		t.Fatalf("get estimate: %v", err)
	}
	if len(est.Items) != 1 || est.Items[0].Description != "Pekerjaan tambahan" {
		t.Fatalf("unexpected items after removal: %+v", est.Items)
	}
	if est.Totals.Subtotal != 500000 {
		t.Fatalf("expected subtotal 500000, got %v", est.Totals.Subtotal)
	}

	rec = do(t, srv, postForm(base+"/delete", nil), owner)
	if path, _ := redirectQuery(t, rec); path != "/estimates" {
		t.Fatalf("expected redirect to list, got %s", path)
	}
	if _, err := srv.estimates.Get(ctx, id); !errors.Is(err, rab.ErrNotFound) {
		t.Fatalf("expected estimate to be deleted, got %v", err)
	}
}

func TestAddItemValidationRedirectsWithError(t *testing.T) {
	srv := newTestServer(t)
	owner := sessionCookie(t, srv, testUserEmail, roleUser)
	id := createEstimate(t, srv, owner, "Pagar")
	base := "/estimates/" + itoa(id)

	tests := []struct {
		name string
		form url.Values
	}{
		{"zero volume", url.Values{"description": {"Pagar"}, "category": {"Walls"}, "unit": {"m²"}, "volume": {"0"}}},
		{"bad price", url.Values{"description": {"Pagar"}, "category": {"Walls"}, "unit": {"m²"}, "volume": {"2"}, "unit_price": {"-5"}}},
		{"missing description", url.Values{"sub_category": {stoneFoundation}, "volume": {"2"}}},
		{"no unit for manual item", url.Values{"description": {"Pagar"}, "category": {"Walls"}, "volume": {"2"}, "unit_price": {"1000"}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, postForm(base+"/items", tt.form), owner)
			path, q := redirectQuery(t, rec)
			if path != base || q.Get("error") == "" {
				t.Fatalf("expected error redirect to %s, got %s %v", base, path, q)
			}
		})
	}

	est, err := srv.estimates.Get(context.Background(), id)
	if err != nil {
		t.Fatalf("get estimate: %v", err)
	}
	if len(est.Items) != 0 {
		t.Fatalf("expected no items after failed adds, got %d", len(est.Items))
	}
}

func TestAddItemReportsMissingFieldsBeforeBadNumbers(t *testing.T) {
	srv := newTestServer(t)
	owner := sessionCookie(t, srv, testUserEmail, roleUser)
	base := "/estimates/" + itoa(createEstimate(t, srv, owner, "Pos Ronda"))

	tests := []struct {
		name string
		form url.Values
		want string
	}{
		{"bad volume", url.Values{"category": {"Walls"}, "unit": {"m²"}, "volume": {"abc"}}, "description"},
		{"bad volume and price", url.Values{"description": {"Pagar"}, "volume": {"-1"}, "unit_price": {"x"}}, "category, unit"},
		{"blank description", url.Values{"description": {"   "}, "sub_category": {stoneFoundation}, "volume": {""}}, "description"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := do(t, srv, postForm(base+"/items", tt.form), owner)
			_, q := redirectQuery(t, rec)
			msg := q.Get("error")
			if !strings.HasPrefix(msg, "missing required fields: ") || !strings.Contains(msg, tt.want) {
				t.Fatalf("expected missing field error naming %q, got %q", tt.want, msg)
			}
		})
	}
}

func TestCreateEstimateRequiresTitle(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, postForm("/estimates", url.Values{"title": {"   "}}), sessionCookie(t, srv, testUserEmail, roleUser))
	path, q := redirectQuery(t, rec)
	if path != "/estimates" || q.Get("error") == "" {
		t.Fatalf("expected error redirect, got %s %v", path, q)
	}
}

func TestEstimatesAreScopedToOwner(t *testing.T) {
	srv := newTestServer(t)
	owner := sessionCookie(t, srv, testUserEmail, roleUser)
	other := sessionCookie(t, srv, "lain@example.com", roleUser)
	admin := sessionCookie(t, srv, testAdminEmail, roleAdmin)

	id := createEstimate(t, srv, owner, "Gudang Beras")
	path := "/estimates/" + itoa(id)

	if rec := do(t, srv, httptest.NewRequest(http.MethodGet, path, nil), other); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for other user, got %d", rec.Code)
	}
	if rec := do(t, srv, postForm(path+"/delete", nil), other); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 when other user deletes, got %d", rec.Code)
	}
	if rec := do(t, srv, httptest.NewRequest(http.MethodGet, path, nil), admin); rec.Code != http.StatusOK {
		t.Fatalf("expected admin to see estimate, got %d", rec.Code)
	}

	rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/estimates", nil), other)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected list page, got %d", rec.Code)
	}
	if strings.Contains(rec.Body.String(), "Gudang Beras") {
		t.Fatalf("other user should not see foreign estimates")
	}

	rec = do(t, srv, httptest.NewRequest(http.MethodGet, "/estimates?q=gudang", nil), owner)
	if !strings.Contains(rec.Body.String(), "Gudang Beras") {
		t.Fatalf("owner should find the estimate by query")
	}
}

func TestEstimateDetailUnknownID(t *testing.T) {
	srv := newTestServer(t)

	req := httptest.NewRequest(http.MethodGet, "/estimates/abc", nil)
	rctx := chi.NewRouteContext()
	rctx.URLParams.Add("id", "abc")
	req = req.WithContext(context.WithValue(withSession(req.Context(), session{Email: testUserEmail, Role: roleUser}), chi.RouteCtxKey, rctx))

	rec := httptest.NewRecorder()
	srv.handleEstimateDetail(rec, req)
	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", rec.Code)
	}

	if rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/estimates/999", nil), sessionCookie(t, srv, testUserEmail, roleUser)); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for missing estimate, got %d", rec.Code)
	}
}

func TestEstimateExports(t *testing.T) {
	srv := newTestServer(t)
	owner := sessionCookie(t, srv, testUserEmail, roleUser)
	id := createEstimate(t, srv, owner, "Renovasi Dapur")
	base := "/estimates/" + itoa(id)

	redirectQuery(t, do(t, srv, postForm(base+"/items", url.Values{
		"description": {"Struktur beton"},
		"category":    {"Foundation & Structure"},
		"unit":        {"m³"},
		"volume":      {"15"},
		"unit_price":  {"850000"},
	}), owner))

	rec := do(t, srv, httptest.NewRequest(http.MethodGet, base+"/export.xlsx", nil), owner)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected xlsx export, got %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Body.String(), "PK") {
		t.Fatalf("expected zip container in xlsx body")
	}
	if !strings.Contains(rec.Header().Get("Content-Disposition"), ".xlsx") {
		t.Fatalf("unexpected content disposition %q", rec.Header().Get("Content-Disposition"))
	}

	rec = do(t, srv, httptest.NewRequest(http.MethodGet, base+"/export.pdf", nil), owner)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected pdf export, got %d", rec.Code)
	}
	if !strings.HasPrefix(rec.Body.String(), "%PDF-") || rec.Header().Get("Content-Type") != "application/pdf" {
		t.Fatalf("expected pdf body, got content type %q", rec.Header().Get("Content-Type"))
	}
	if rec := do(t, srv, httptest.NewRequest(http.MethodGet, base+"/export.pdf", nil), sessionCookie(t, srv, "lain@example.com", roleUser)); rec.Code != http.StatusNotFound {
		t.Fatalf("expected 404 for pdf of foreign estimate, got %d", rec.Code)
	}

	rec = do(t, srv, httptest.NewRequest(http.MethodGet, base+"/text", nil), owner)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected text export, got %d", rec.Code)
	}
	text := rec.Body.String()
	for _, want := range []string{"Renovasi Dapur", "Rp 12.750.000", "Rp 17.690.625"} {
		if !strings.Contains(text, want) {
			t.Fatalf("expected text export to contain %q:\n%s", want, text)
		}
	}
}

func TestAutoPriceAPI(t *testing.T) {
	srv := newTestServer(t)
	cookie := sessionCookie(t, srv, testUserEmail, roleUser)

	rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/api/auto-price?sub_category="+url.QueryEscape(stoneFoundation), nil), cookie)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got autoPriceResponse
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}

	snapshot, err := srv.catalog.LoadSnapshot(context.Background())
	if err != nil {
		t.Fatalf("load snapshot: %v", err)
	}
	if !got.Known || got.Unit != "m³" || math.Abs(got.Price-pricing.ResolveAutoPrice(stoneFoundation, snapshot)) > 1e-6 {
		t.Fatalf("unexpected auto price response: %+v", got)
	}

	rec = do(t, srv, httptest.NewRequest(http.MethodGet, "/api/auto-price?sub_category=tidak-ada", nil), cookie)
	got = autoPriceResponse{}
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if got.Known || got.Price != 0 {
		t.Fatalf("expected unknown label to price at zero, got %+v", got)
	}

	rec = do(t, srv, httptest.NewRequest(http.MethodGet, "/api/auto-price", nil), cookie)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 without sub_category, got %d", rec.Code)
	}
}

func TestWorkItemsAPI(t *testing.T) {
	srv := newTestServer(t)

	rec := do(t, srv, httptest.NewRequest(http.MethodGet, "/api/work-items", nil), sessionCookie(t, srv, testUserEmail, roleUser))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var got []pricing.WorkCategory
	if err := json.NewDecoder(rec.Body).Decode(&got); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(got) != len(pricing.Categories()) || len(got[0].SubCategories) == 0 {
		t.Fatalf("unexpected work items: %+v", got)
	}
}
