package main

import (
	"errors"
	"fmt"
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/rab.works/internal/export"
	"github.com/Simplici0/rab.works/internal/pricing"
	"github.com/Simplici0/rab.works/internal/rab"
)

type estimatesViewData struct {
	baseViewData
	Query     string
	Estimates []rab.Estimate
}

type estimateDetailViewData struct {
	baseViewData
	Estimate   rab.Estimate
	Totals     rab.Totals
	Categories []pricing.WorkCategory
}

func (s *server) handleEstimatesList(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r)
	query := strings.TrimSpace(r.URL.Query().Get("q"))

	estimates, err := s.estimates.List(r.Context(), rab.ListFilter{Owner: sess.Email, Query: query})
	if err != nil {
		log.Printf("[ERROR] list estimates: %v", err)
		http.Error(w, "failed to list estimates", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "estimates.html", estimatesViewData{
		baseViewData: pageBase(r),
		Query:        query,
		Estimates:    estimates,
	})
}

func (s *server) handleEstimateCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	sess, _ := sessionFrom(r)

	id, err := s.estimates.Create(r.Context(), rab.Estimate{
		Title:      r.FormValue("title"),
		ClientName: r.FormValue("client_name"),
		Location:   r.FormValue("location"),
		Notes:      r.FormValue("notes"),
		OwnerEmail: sess.Email,
	})
	if errors.Is(err, rab.ErrTitleMissing) {
		redirectWithMessage(w, r, "/estimates", "error", "Judul estimasi wajib diisi.")
		return
	}
	if err != nil {
		log.Printf("[ERROR] create estimate: %v", err)
		http.Error(w, "failed to create estimate", http.StatusInternalServerError)
		return
	}

	http.Redirect(w, r, fmt.Sprintf("/estimates/%d", id), http.StatusSeeOther)
}

// loadEstimate resolves the {id} URL parameter to an estimate the current
// user may see. It writes the error response and returns false otherwise.
func (s *server) loadEstimate(w http.ResponseWriter, r *http.Request) (rab.Estimate, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.NotFound(w, r)
		return rab.Estimate{}, false
	}

	est, err := s.estimates.Get(r.Context(), id)
	if errors.Is(err, rab.ErrNotFound) {
		http.NotFound(w, r)
		return rab.Estimate{}, false
	}
	if err != nil {
		log.Printf("[ERROR] load estimate %d: %v", id, err)
		http.Error(w, "failed to load estimate", http.StatusInternalServerError)
		return rab.Estimate{}, false
	}

	sess, _ := sessionFrom(r)
	if est.OwnerEmail != sess.Email && !sess.IsAdmin() {
		http.NotFound(w, r)
		return rab.Estimate{}, false
	}
	return est, true
}

func (s *server) handleEstimateDetail(w http.ResponseWriter, r *http.Request) {
	est, ok := s.loadEstimate(w, r)
	if !ok {
		return
	}

	s.renderTemplate(w, "estimate_detail.html", estimateDetailViewData{
		baseViewData: pageBase(r),
		Estimate:     est,
		Totals:       est.Ledger().Totals(),
		Categories:   pricing.Categories(),
	})
}

func (s *server) handleEstimateAddItem(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	s.ledgerMu.Lock()
	defer s.ledgerMu.Unlock()

	est, ok := s.loadEstimate(w, r)
	if !ok {
		return
	}
	detailPath := fmt.Sprintf("/estimates/%d", est.ID)

	in, err := newItemFromForm(r)
	if err != nil {
		redirectWithMessage(w, r, detailPath, "error", err.Error())
		return
	}

	snapshot, err := s.catalog.LoadSnapshot(r.Context())
	if err != nil {
		log.Printf("[ERROR] load catalog snapshot: %v", err)
		http.Error(w, "failed to load catalog", http.StatusInternalServerError)
		return
	}

	ledger := est.Ledger()
	item, err := ledger.AddItem(in, snapshot)
	var ve *rab.ValidationError
	if errors.As(err, &ve) {
		redirectWithMessage(w, r, detailPath, "error", ve.Message)
		return
	}
	if err != nil {
		log.Printf("[ERROR] add item to estimate %d: %v", est.ID, err)
		http.Error(w, "failed to add item", http.StatusInternalServerError)
		return
	}

	if err := s.estimates.SaveItems(r.Context(), est.ID, ledger); err != nil {
		log.Printf("[ERROR] save estimate %d items: %v", est.ID, err)
		http.Error(w, "failed to save estimate", http.StatusInternalServerError)
		return
	}

	log.Printf("[ESTIMATE] id=%d added item=%s amount=%.2f", est.ID, item.ID, item.Amount)
	redirectWithMessage(w, r, detailPath, "success", "Item ditambahkan.")
}

// newItemFromForm reads the add-item form. Unit and category default to
// the ones implied by the chosen sub-category. Missing text fields are
// reported before malformed numbers.
func newItemFromForm(r *http.Request) (rab.NewItem, error) {
	subCategory := strings.TrimSpace(r.FormValue("sub_category"))

	unit := strings.TrimSpace(r.FormValue("unit"))
	if unit == "" {
		unit = pricing.UnitOf(subCategory)
	}
	category := strings.TrimSpace(r.FormValue("category"))
	if category == "" {
		category = pricing.CategoryOf(subCategory)
	}

	in := rab.NewItem{
		Description: strings.TrimSpace(r.FormValue("description")),
		Category:    category,
		SubCategory: subCategory,
		Unit:        unit,
	}
	if err := rab.CheckRequired(in); err != nil {
		return rab.NewItem{}, err
	}

	volume, err := rab.ParseVolume(r.FormValue("volume"))
	if err != nil {
		return rab.NewItem{}, err
	}
	unitPrice, err := rab.ParseUnitPrice(r.FormValue("unit_price"))
	if err != nil {
		return rab.NewItem{}, err
	}
	in.Volume = volume
	in.UnitPrice = unitPrice
	return in, nil
}

func (s *server) handleEstimateRemoveItem(w http.ResponseWriter, r *http.Request) {
	s.ledgerMu.Lock()
	defer s.ledgerMu.Unlock()

	est, ok := s.loadEstimate(w, r)
	if !ok {
		return
	}
	detailPath := fmt.Sprintf("/estimates/%d", est.ID)

	ledger := est.Ledger()
	if !ledger.RemoveItem(chi.URLParam(r, "itemID")) {
		http.Redirect(w, r, detailPath, http.StatusSeeOther)
		return
	}

	if err := s.estimates.SaveItems(r.Context(), est.ID, ledger); err != nil {
		log.Printf("[ERROR] save estimate %d items: %v", est.ID, err)
		http.Error(w, "failed to save estimate", http.StatusInternalServerError)
		return
	}
	redirectWithMessage(w, r, detailPath, "success", "Item dihapus.")
}

func (s *server) handleEstimateDelete(w http.ResponseWriter, r *http.Request) {
	s.ledgerMu.Lock()
	defer s.ledgerMu.Unlock()

	est, ok := s.loadEstimate(w, r)
	if !ok {
		return
	}

	if err := s.estimates.Delete(r.Context(), est.ID); err != nil && !errors.Is(err, rab.ErrNotFound) {
		log.Printf("[ERROR] delete estimate %d: %v", est.ID, err)
		http.Error(w, "failed to delete estimate", http.StatusInternalServerError)
		return
	}
	redirectWithMessage(w, r, "/estimates", "success", "Estimasi dihapus.")
}

func (s *server) handleEstimateExportXLSX(w http.ResponseWriter, r *http.Request) {
	est, ok := s.loadEstimate(w, r)
	if !ok {
		return
	}

	content, err := export.EstimateXLSX(est)
	if err != nil {
		log.Printf("[ERROR] export estimate %d: %v", est.ID, err)
		http.Error(w, "failed to export estimate", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="rab-%d.xlsx"`, est.ID))
	_, _ = w.Write(content)
}

func (s *server) handleEstimateExportPDF(w http.ResponseWriter, r *http.Request) {
	est, ok := s.loadEstimate(w, r)
	if !ok {
		return
	}

	content, err := export.EstimatePDF(est)
	if err != nil {
		log.Printf("[ERROR] export estimate %d pdf: %v", est.ID, err)
		http.Error(w, "failed to export estimate", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="rab-%d.pdf"`, est.ID))
	_, _ = w.Write(content)
}

func (s *server) handleEstimateText(w http.ResponseWriter, r *http.Request) {
	est, ok := s.loadEstimate(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	_, _ = w.Write([]byte(export.EstimateText(est)))
}
