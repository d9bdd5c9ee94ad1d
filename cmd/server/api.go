package main

import (
	"encoding/json"
	"log"
	"net/http"
	"strings"

	"github.com/Simplici0/rab.works/internal/pricing"
)

type autoPriceResponse struct {
	SubCategory string  `json:"sub_category"`
	Category    string  `json:"category"`
	Unit        string  `json:"unit"`
	Price       float64 `json:"price"`
	Known       bool    `json:"known"`
}

// handleAutoPrice previews the unit price the add-item form would get for a
// sub-category against the current catalog.
func (s *server) handleAutoPrice(w http.ResponseWriter, r *http.Request) {
	label := strings.TrimSpace(r.URL.Query().Get("sub_category"))
	if label == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"error": "sub_category is required"})
		return
	}

	snapshot, err := s.catalog.LoadSnapshot(r.Context())
	if err != nil {
		log.Printf("[ERROR] load catalog snapshot: %v", err)
		writeJSON(w, http.StatusInternalServerError, map[string]string{"error": "failed to load catalog"})
		return
	}

	exp, known := pricing.Explain(label, snapshot)
	writeJSON(w, http.StatusOK, autoPriceResponse{
		SubCategory: label,
		Category:    exp.Category,
		Unit:        pricing.UnitOf(label),
		Price:       exp.Price,
		Known:       known,
	})
}

func (s *server) handleWorkItems(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, pricing.Categories())
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("[ERROR] encode json response: %v", err)
	}
}
