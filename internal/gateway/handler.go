package gateway

import (
	"encoding/json"
	"io"
	"net/http"
	"strconv"

	"github.com/appetiteclub/apt"
	"github.com/appetiteclub/apt/telemetry"
	"github.com/go-chi/chi/v5"

	"github.com/comandaclub/comanda/internal/menu"
)

const MaxBodyBytes = 1 << 20

// Handler fronts the backend menu endpoints for thin browsing UIs: category
// listing and creation, menu-item listing and deletion. Upstream failures
// surface as 502; the gateway holds no state of its own.
type Handler struct {
	menuClient menu.Client
	logger     apt.Logger
	config     *apt.Config
	tlm        *telemetry.HTTP
}

func NewHandler(menuClient menu.Client, config *apt.Config, logger apt.Logger) *Handler {
	if logger == nil {
		logger = apt.NewNoopLogger()
	}
	if menuClient == nil {
		menuClient = menu.NewNoopClient()
	}
	return &Handler{
		menuClient: menuClient,
		logger:     logger,
		config:     config,
		tlm:        telemetry.NewHTTP(),
	}
}

func (h *Handler) RegisterRoutes(r chi.Router) {
	r.Route("/categories", func(r chi.Router) {
		r.Get("/", h.ListCategories)
		r.Post("/", h.CreateCategory)
	})

	r.Route("/menu-items", func(r chi.Router) {
		r.Get("/", h.ListMenuItems)
		r.Get("/class/{class}", h.ListMenuItemsByClass)
		r.Delete("/{id}", h.DeleteMenuItem)
	})
}

// ListCategories handles GET /categories
func (h *Handler) ListCategories(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListCategories")
	defer finish()
	log := h.log(r)

	specialities, err := h.menuClient.ListSpecialities(r.Context())
	if err != nil {
		log.Error("cannot list categories", "error", err)
		apt.RespondError(w, http.StatusBadGateway, "Could not fetch categories")
		return
	}

	apt.RespondCollection(w, specialities, "categories")
}

// CreateCategory handles POST /categories
func (h *Handler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.CreateCategory")
	defer finish()
	log := h.log(r)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err != nil {
		apt.RespondError(w, http.StatusBadRequest, "Cannot read request body")
		return
	}

	var payload struct {
		Name string `json:"name"`
	}
	if err := json.Unmarshal(body, &payload); err != nil || payload.Name == "" {
		apt.RespondError(w, http.StatusBadRequest, "Missing category name")
		return
	}

	if err := h.menuClient.CreateSpeciality(r.Context(), payload.Name); err != nil {
		log.Error("cannot create category", "name", payload.Name, "error", err)
		apt.RespondError(w, http.StatusBadGateway, "Could not create category")
		return
	}

	apt.RespondSuccess(w, payload)
}

// ListMenuItems handles GET /menu-items
func (h *Handler) ListMenuItems(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListMenuItems")
	defer finish()
	log := h.log(r)

	items, err := h.menuClient.ListItems(r.Context())
	if err != nil {
		log.Error("cannot list menu items", "error", err)
		apt.RespondError(w, http.StatusBadGateway, "Could not fetch menu items")
		return
	}

	apt.RespondCollection(w, items, "menu-items")
}

// ListMenuItemsByClass handles GET /menu-items/class/{class}
func (h *Handler) ListMenuItemsByClass(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.ListMenuItemsByClass")
	defer finish()
	log := h.log(r)

	class, err := strconv.Atoi(chi.URLParam(r, "class"))
	if err != nil {
		apt.RespondError(w, http.StatusBadRequest, "Invalid class parameter")
		return
	}

	items, err := h.menuClient.ItemsByClass(r.Context(), class)
	if err != nil {
		log.Error("cannot list menu items", "class", class, "error", err)
		apt.RespondError(w, http.StatusBadGateway, "Could not fetch menu items")
		return
	}

	apt.RespondCollection(w, items, "menu-items")
}

// DeleteMenuItem handles DELETE /menu-items/{id}
func (h *Handler) DeleteMenuItem(w http.ResponseWriter, r *http.Request) {
	w, r, finish := h.tlm.Start(w, r, "Handler.DeleteMenuItem")
	defer finish()
	log := h.log(r)

	id, err := strconv.Atoi(chi.URLParam(r, "id"))
	if err != nil {
		apt.RespondError(w, http.StatusBadRequest, "Invalid id parameter")
		return
	}

	if err := h.menuClient.DeleteItem(r.Context(), id); err != nil {
		log.Error("cannot delete menu item", "id", id, "error", err)
		apt.RespondError(w, http.StatusBadGateway, "Could not delete menu item")
		return
	}

	apt.RespondSuccess(w, map[string]int{"id": id})
}

func (h *Handler) log(r *http.Request) apt.Logger {
	return h.logger.With("request_id", r.Context().Value("request_id"))
}
