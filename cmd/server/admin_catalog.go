package main

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"math"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/Simplici0/rab.works/internal/catalog"
	"github.com/Simplici0/rab.works/internal/pricing"
)

const maxImportBytes = 10 << 20

type adminMaterialsViewData struct {
	baseViewData
	Filter     catalog.Filter
	Categories []string
	Materials  []catalog.MaterialRate
}

type adminLaborViewData struct {
	baseViewData
	Filter     catalog.Filter
	Categories []string
	Labor      []catalog.LaborRate
	SkillTiers []catalog.SkillTier
}

type adminFormulasViewData struct {
	baseViewData
	Explanations []pricing.Explanation
}

func filterFromQuery(r *http.Request) catalog.Filter {
	q := r.URL.Query()
	f := catalog.Filter{
		Query:    strings.TrimSpace(q.Get("q")),
		Category: strings.TrimSpace(q.Get("category")),
	}
	if raw := strings.TrimSpace(q.Get("status")); raw != "" {
		if status, ok := catalog.ParseStatus(raw); ok {
			f.Status = status
		}
	}
	return f
}

func (s *server) handleAdminMaterialsList(w http.ResponseWriter, r *http.Request) {
	filter := filterFromQuery(r)

	materials, err := s.catalog.ListMaterials(r.Context(), filter)
	if err != nil {
		log.Printf("[ERROR] list materials: %v", err)
		http.Error(w, "failed to list materials", http.StatusInternalServerError)
		return
	}
	categories, err := s.catalog.Categories(r.Context(), "materials")
	if err != nil {
		log.Printf("[ERROR] list material categories: %v", err)
		http.Error(w, "failed to list materials", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "admin_materials.html", adminMaterialsViewData{
		baseViewData: pageBase(r),
		Filter:       filter,
		Categories:   categories,
		Materials:    materials,
	})
}

func (s *server) handleAdminMaterialsCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	m, err := applyMaterialForm(r, catalog.MaterialRate{Status: catalog.StatusActive})
	if err != nil {
		redirectWithMessage(w, r, "/admin/materials", "error", err.Error())
		return
	}

	if _, err := s.catalog.CreateMaterial(r.Context(), m); err != nil {
		s.catalogWriteFailed(w, r, "/admin/materials", "create material", err)
		return
	}
	redirectWithMessage(w, r, "/admin/materials", "success", "Material ditambahkan.")
}

func (s *server) handleAdminMaterialsUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	id, ok := catalogID(w, r)
	if !ok {
		return
	}

	existing, err := s.catalog.GetMaterial(r.Context(), id)
	if errors.Is(err, catalog.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		log.Printf("[ERROR] load material %d: %v", id, err)
		http.Error(w, "failed to load material", http.StatusInternalServerError)
		return
	}

	m, err := applyMaterialForm(r, existing)
	if err != nil {
		redirectWithMessage(w, r, "/admin/materials", "error", err.Error())
		return
	}
	if err := s.catalog.UpdateMaterial(r.Context(), m); err != nil {
		s.catalogWriteFailed(w, r, "/admin/materials", "update material", err)
		return
	}
	redirectWithMessage(w, r, "/admin/materials", "success", "Material diperbarui.")
}

func (s *server) handleAdminMaterialsDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := catalogID(w, r)
	if !ok {
		return
	}
	if err := s.catalog.DeleteMaterial(r.Context(), id); err != nil {
		s.catalogWriteFailed(w, r, "/admin/materials", "delete material", err)
		return
	}
	redirectWithMessage(w, r, "/admin/materials", "success", "Material dihapus.")
}

func (s *server) handleAdminMaterialsExport(w http.ResponseWriter, r *http.Request) {
	materials, err := s.catalog.ListMaterials(r.Context(), catalog.Filter{})
	if err != nil {
		log.Printf("[ERROR] export materials: %v", err)
		http.Error(w, "failed to export materials", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="materials.csv"`)
	if err := catalog.ExportMaterialsCSV(w, materials); err != nil {
		log.Printf("[ERROR] write materials csv: %v", err)
	}
}

func (s *server) handleAdminMaterialsImport(w http.ResponseWriter, r *http.Request) {
	name, content, ok := readImportFile(w, r, "/admin/materials")
	if !ok {
		return
	}

	var result catalog.ImportResult[catalog.MaterialRate]
	if isXLSX(name) {
		rows, err := catalog.ReadXLSXRows(bytes.NewReader(content))
		if err != nil {
			redirectWithMessage(w, r, "/admin/materials", "error", "Berkas Excel tidak dapat dibaca.")
			return
		}
		result = catalog.ParseMaterialRows(rows)
	} else {
		var err error
		result, err = catalog.ImportMaterialsCSV(bytes.NewReader(content))
		if err != nil {
			redirectWithMessage(w, r, "/admin/materials", "error", "Berkas CSV tidak dapat dibaca.")
			return
		}
	}

	inserted, err := s.catalog.InsertMaterials(r.Context(), result.Rows)
	if err != nil {
		log.Printf("[ERROR] import materials: %v", err)
		http.Error(w, "failed to import materials", http.StatusInternalServerError)
		return
	}
	log.Printf("[CATALOG] materials imported=%d skipped=%d file=%s", inserted, result.Skipped, name)
	redirectWithMessage(w, r, "/admin/materials", "success", importSummary(inserted, result.Skipped))
}

func (s *server) handleAdminLaborList(w http.ResponseWriter, r *http.Request) {
	filter := filterFromQuery(r)

	labor, err := s.catalog.ListLabor(r.Context(), filter)
	if err != nil {
		log.Printf("[ERROR] list labor rates: %v", err)
		http.Error(w, "failed to list labor rates", http.StatusInternalServerError)
		return
	}
	categories, err := s.catalog.Categories(r.Context(), "labor_rates")
	if err != nil {
		log.Printf("[ERROR] list labor categories: %v", err)
		http.Error(w, "failed to list labor rates", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "admin_labor.html", adminLaborViewData{
		baseViewData: pageBase(r),
		Filter:       filter,
		Categories:   categories,
		Labor:        labor,
		SkillTiers:   catalog.SkillTiers,
	})
}

func (s *server) handleAdminLaborCreate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}

	l, err := applyLaborForm(r, catalog.LaborRate{Status: catalog.StatusActive, SkillTier: catalog.SkillIntermediate})
	if err != nil {
		redirectWithMessage(w, r, "/admin/labor", "error", err.Error())
		return
	}

	if _, err := s.catalog.CreateLabor(r.Context(), l); err != nil {
		s.catalogWriteFailed(w, r, "/admin/labor", "create labor rate", err)
		return
	}
	redirectWithMessage(w, r, "/admin/labor", "success", "Upah ditambahkan.")
}

func (s *server) handleAdminLaborUpdate(w http.ResponseWriter, r *http.Request) {
	if err := r.ParseForm(); err != nil {
		http.Error(w, "invalid form", http.StatusBadRequest)
		return
	}
	id, ok := catalogID(w, r)
	if !ok {
		return
	}

	existing, err := s.catalog.GetLabor(r.Context(), id)
	if errors.Is(err, catalog.ErrNotFound) {
		http.NotFound(w, r)
		return
	}
	if err != nil {
		log.Printf("[ERROR] load labor rate %d: %v", id, err)
		http.Error(w, "failed to load labor rate", http.StatusInternalServerError)
		return
	}

	l, err := applyLaborForm(r, existing)
	if err != nil {
		redirectWithMessage(w, r, "/admin/labor", "error", err.Error())
		return
	}
	if err := s.catalog.UpdateLabor(r.Context(), l); err != nil {
		s.catalogWriteFailed(w, r, "/admin/labor", "update labor rate", err)
		return
	}
	redirectWithMessage(w, r, "/admin/labor", "success", "Upah diperbarui.")
}

func (s *server) handleAdminLaborDelete(w http.ResponseWriter, r *http.Request) {
	id, ok := catalogID(w, r)
	if !ok {
		return
	}
	if err := s.catalog.DeleteLabor(r.Context(), id); err != nil {
		s.catalogWriteFailed(w, r, "/admin/labor", "delete labor rate", err)
		return
	}
	redirectWithMessage(w, r, "/admin/labor", "success", "Upah dihapus.")
}

func (s *server) handleAdminLaborExport(w http.ResponseWriter, r *http.Request) {
	labor, err := s.catalog.ListLabor(r.Context(), catalog.Filter{})
	if err != nil {
		log.Printf("[ERROR] export labor rates: %v", err)
		http.Error(w, "failed to export labor rates", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="labor_rates.csv"`)
	if err := catalog.ExportLaborCSV(w, labor); err != nil {
		log.Printf("[ERROR] write labor csv: %v", err)
	}
}

func (s *server) handleAdminLaborImport(w http.ResponseWriter, r *http.Request) {
	name, content, ok := readImportFile(w, r, "/admin/labor")
	if !ok {
		return
	}

	var result catalog.ImportResult[catalog.LaborRate]
	if isXLSX(name) {
		rows, err := catalog.ReadXLSXRows(bytes.NewReader(content))
		if err != nil {
			redirectWithMessage(w, r, "/admin/labor", "error", "Berkas Excel tidak dapat dibaca.")
			return
		}
		result = catalog.ParseLaborRows(rows)
	} else {
		var err error
		result, err = catalog.ImportLaborCSV(bytes.NewReader(content))
		if err != nil {
			redirectWithMessage(w, r, "/admin/labor", "error", "Berkas CSV tidak dapat dibaca.")
			return
		}
	}

	inserted, err := s.catalog.InsertLabor(r.Context(), result.Rows)
	if err != nil {
		log.Printf("[ERROR] import labor rates: %v", err)
		http.Error(w, "failed to import labor rates", http.StatusInternalServerError)
		return
	}
	log.Printf("[CATALOG] labor imported=%d skipped=%d file=%s", inserted, result.Skipped, name)
	redirectWithMessage(w, r, "/admin/labor", "success", importSummary(inserted, result.Skipped))
}

func (s *server) handleAdminFormulas(w http.ResponseWriter, r *http.Request) {
	snapshot, err := s.catalog.LoadSnapshot(r.Context())
	if err != nil {
		log.Printf("[ERROR] load catalog snapshot: %v", err)
		http.Error(w, "failed to load catalog", http.StatusInternalServerError)
		return
	}

	s.renderTemplate(w, "admin_formulas.html", adminFormulasViewData{
		baseViewData: pageBase(r),
		Explanations: pricing.Explanations(snapshot),
	})
}

// applyMaterialForm overlays the submitted fields on m. Fields absent from
// the form keep their current value.
func applyMaterialForm(r *http.Request, m catalog.MaterialRate) (catalog.MaterialRate, error) {
	setText(r, "name", &m.Name)
	setText(r, "category", &m.Category)
	setText(r, "unit", &m.Unit)
	setText(r, "supplier", &m.Supplier)
	setText(r, "description", &m.Description)

	if raw, ok := formValue(r, "unit_price"); ok {
		price, err := parseRupiah(raw)
		if err != nil {
			return m, err
		}
		m.UnitPrice = price
	}
	if raw, ok := formValue(r, "status"); ok {
		status, valid := catalog.ParseStatus(raw)
		if !valid {
			return m, fmt.Errorf("status %q tidak dikenal", raw)
		}
		m.Status = status
	}
	return m, nil
}

func applyLaborForm(r *http.Request, l catalog.LaborRate) (catalog.LaborRate, error) {
	setText(r, "job_type", &l.JobType)
	setText(r, "category", &l.Category)
	setText(r, "unit", &l.Unit)
	setText(r, "location", &l.Location)
	setText(r, "description", &l.Description)

	if raw, ok := formValue(r, "unit_price"); ok {
		price, err := parseRupiah(raw)
		if err != nil {
			return l, err
		}
		l.UnitPrice = price
	}
	if raw, ok := formValue(r, "skill_tier"); ok {
		tier, valid := catalog.ParseSkillTier(raw)
		if !valid {
			return l, fmt.Errorf("tingkat keahlian %q tidak dikenal", raw)
		}
		l.SkillTier = tier
	}
	if raw, ok := formValue(r, "status"); ok {
		status, valid := catalog.ParseStatus(raw)
		if !valid {
			return l, fmt.Errorf("status %q tidak dikenal", raw)
		}
		l.Status = status
	}
	return l, nil
}

func formValue(r *http.Request, key string) (string, bool) {
	values, ok := r.PostForm[key]
	if !ok || len(values) == 0 {
		return "", false
	}
	return strings.TrimSpace(values[0]), true
}

func setText(r *http.Request, key string, dst *string) {
	if v, ok := formValue(r, key); ok {
		*dst = v
	}
}

func parseRupiah(raw string) (int64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, fmt.Errorf("harga %q harus angka nol atau lebih", raw)
	}
	return int64(math.Round(v)), nil
}

func catalogID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		http.NotFound(w, r)
		return 0, false
	}
	return id, true
}

// catalogWriteFailed maps store errors of a catalog write to a response.
func (s *server) catalogWriteFailed(w http.ResponseWriter, r *http.Request, path, op string, err error) {
	var fe *catalog.FieldError
	switch {
	case errors.As(err, &fe):
		redirectWithMessage(w, r, path, "error", fe.Error())
	case errors.Is(err, catalog.ErrNotFound):
		http.NotFound(w, r)
	default:
		log.Printf("[ERROR] %s: %v", op, err)
		http.Error(w, "failed to "+op, http.StatusInternalServerError)
	}
}

func readImportFile(w http.ResponseWriter, r *http.Request, path string) (string, []byte, bool) {
	r.Body = http.MaxBytesReader(w, r.Body, maxImportBytes)
	if err := r.ParseMultipartForm(maxImportBytes); err != nil {
		redirectWithMessage(w, r, path, "error", "Berkas impor tidak valid.")
		return "", nil, false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		redirectWithMessage(w, r, path, "error", "Pilih berkas CSV atau Excel.")
		return "", nil, false
	}
	defer file.Close()

	content, err := io.ReadAll(file)
	if err != nil {
		log.Printf("[ERROR] read import file: %v", err)
		http.Error(w, "failed to read file", http.StatusInternalServerError)
		return "", nil, false
	}
	return header.Filename, content, true
}

func isXLSX(name string) bool {
	return strings.EqualFold(filepath.Ext(name), ".xlsx")
}

func importSummary(inserted, skipped int) string {
	if skipped == 0 {
		return fmt.Sprintf("%d baris diimpor.", inserted)
	}
	return fmt.Sprintf("%d baris diimpor, %d baris dilewati.", inserted, skipped)
}
