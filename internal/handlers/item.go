package handlers

import (
	"Stockpile/internal/middleware"
	"Stockpile/internal/service"
	"Stockpile/internal/upload"
	"net/http"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// ItemHandler CRUD позиций с изображениями.
type ItemHandler struct {
	ItemService *service.ItemService
	Validator   *upload.Validator
	Logger      *zap.SugaredLogger
}

// NewItemHandler создаёт хендлер items
func NewItemHandler(itemService *service.ItemService, validator *upload.Validator, logger *zap.SugaredLogger) *ItemHandler {
	return &ItemHandler{ItemService: itemService, Validator: validator, Logger: logger}
}

// Create POST /item
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	form, ok := h.parseForm(w, r, "Create")
	if !ok {
		return
	}

	item, err := h.ItemService.Create(r.Context(), service.ItemInput{
		Name:     form.Name,
		Quantity: form.Quantity,
		Image:    form.Image,
	})
	if err != nil {
		h.fail(w, r, "Create", err)
		return
	}

	writeJSON(w, http.StatusCreated, item)
}

// Update PUT /item/{id}
func (h *ItemHandler) Update(w http.ResponseWriter, r *http.Request) {
	form, ok := h.parseForm(w, r, "Update")
	if !ok {
		return
	}

	item, err := h.ItemService.Update(r.Context(), chi.URLParam(r, "id"), service.ItemInput{
		Name:     form.Name,
		Quantity: form.Quantity,
		Image:    form.Image,
	})
	if err != nil {
		h.fail(w, r, "Update", err)
		return
	}

	writeJSON(w, http.StatusOK, item)
}

// List GET /item
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.ItemService.List(r.Context())
	if err != nil {
		h.fail(w, r, "List", err)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Delete DELETE /item/{id}
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.ItemService.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		h.fail(w, r, "Delete", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *ItemHandler) parseForm(w http.ResponseWriter, r *http.Request, op string) (*upload.Form, bool) {
	form, err := h.Validator.Parse(w, r)
	if err != nil {
		h.fail(w, r, op, err)
		return nil, false
	}
	return form, true
}

// fail пишет ошибку конвейера в лог и отвечает клиенту.
func (h *ItemHandler) fail(w http.ResponseWriter, r *http.Request, op string, err error) {
	userID, _ := middleware.GetUserIDFromContext(r.Context())
	status, msg := errorStatus(err)

	switch {
	case status >= http.StatusInternalServerError:
		h.Logger.Errorw(op+": service error", "user_id", userID, "id", chi.URLParam(r, "id"), "error", err)
	case status == http.StatusBadRequest:
		h.Logger.Warnw(op+": bad request", "user_id", userID, "error", err)
	}
	writeError(w, status, msg)
}
