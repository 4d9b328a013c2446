// Package handler provides the HTTP handlers for the annotation server.
package handler

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/cnr-isti-vclab/openlime/store"
)

// Handler holds the server dependencies and registers routes.
type Handler struct {
	store  store.Store
	router *chi.Mux
}

// Response is the status envelope returned by the mutating endpoints.
type Response struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}

// New creates a Handler and wires up all routes.
func New(s store.Store) *Handler {
	h := &Handler{store: s, router: chi.NewRouter()}
	h.routes()
	return h
}

// ServeHTTP makes Handler an http.Handler.
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	h.router.ServeHTTP(w, r)
}

func (h *Handler) routes() {
	h.router.Use(middleware.Logger)
	h.router.Use(middleware.Recoverer)

	// Health / status
	h.router.Get("/", h.root)
	h.router.Get("/health", h.health)
	h.router.Get("/favicon.ico", h.favicon)

	// Annotation endpoints. Mounting the subrouter makes both /ol and
	// /ol/ reach the collection handlers.
	h.router.Route("/ol", func(r chi.Router) {
		r.Get("/", h.listAnnotations)
		r.Post("/", h.createAnnotation)
		r.Put("/{id}", h.updateAnnotation)
		r.Delete("/{id}", h.deleteAnnotation)
	})
}

// ---------- helpers ----------

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, Response{Status: "err", Message: msg})
}

func readJSON(r *http.Request, v any) error {
	defer r.Body.Close()
	return json.NewDecoder(r.Body).Decode(v)
}

// ---------- status endpoints ----------

func (h *Handler) root(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"message": "ok"})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
}

func (h *Handler) favicon(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusNoContent)
}

// ---------- annotation endpoints ----------

func (h *Handler) listAnnotations(w http.ResponseWriter, r *http.Request) {
	recs, err := h.store.ReadAll()
	if err != nil {
		log.Printf("error reading annotations: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if recs == nil {
		recs = []store.Record{}
	}
	writeJSON(w, http.StatusOK, recs)
}

func (h *Handler) createAnnotation(w http.ResponseWriter, r *http.Request) {
	var rec store.Record
	if err := readJSON(r, &rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if rec == nil || rec["id"] == nil {
		writeError(w, http.StatusBadRequest, "Annotation must have an id")
		return
	}
	if err := h.store.Create(rec); err != nil {
		log.Printf("error creating annotation: %v", err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, Response{Status: "ok", Message: "Annotation created successfully"})
}

func (h *Handler) updateAnnotation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	var rec store.Record
	if err := readJSON(r, &rec); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON: "+err.Error())
		return
	}
	if err := h.store.Update(id, rec); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "Error in updating annotation")
			return
		}
		log.Printf("error updating annotation %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, Response{Status: "ok", Message: "Annotation updated successfully"})
}

func (h *Handler) deleteAnnotation(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.store.Delete(id); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			writeError(w, http.StatusBadRequest, "Error in deleting annotation")
			return
		}
		log.Printf("error deleting annotation %s: %v", id, err)
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, Response{Status: "ok", Message: "Annotation deleted successfully"})
}
