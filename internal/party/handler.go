package party

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/aldawsari/tadayun/pkg/middleware"
	"github.com/aldawsari/tadayun/pkg/response"
)

// Handler handles HTTP requests for friend directory operations
type Handler struct {
	service *Service
}

// NewHandler creates a new party handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for friend endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Add)
	r.Get("/", h.List)
	r.Delete("/{id}", h.Remove)

	return r
}

// Add handles POST /friends
// @Summary      Add a contact
// @Description  Add a registered contact by user_id or email, or a manual contact by name
// @Tags         friends
// @Accept       json
// @Produce      json
// @Param        request body AddFriendRequest true "Contact to add"
// @Success      201 {object} response.APIResponse{data=FriendResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /friends [post]
func (h *Handler) Add(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		ownerID = 1
	}

	var req AddFriendRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	friend, err := h.service.AddFriend(r.Context(), ownerID, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrCounterpartyRequired), errors.Is(err, ErrCannotBefriendSelf):
			response.BadRequest(w, err.Error())
		case errors.Is(err, ErrCounterpartyNotFound):
			response.NotFound(w, err.Error())
		case errors.Is(err, ErrFriendAlreadyExists):
			response.Conflict(w, err.Error())
		default:
			response.InternalError(w, "Failed to add contact")
		}
		return
	}

	response.JSON(w, http.StatusCreated, friend.ToResponse())
}

// List handles GET /friends
// @Summary      List contacts
// @Tags         friends
// @Produce      json
// @Param        page query int false "Page number"
// @Param        per_page query int false "Items per page"
// @Success      200 {object} response.APIResponse{data=[]FriendResponse}
// @Router       /friends [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		ownerID = 1
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	friends, total, err := h.service.List(r.Context(), ownerID, page, perPage)
	if err != nil {
		response.InternalError(w, "Failed to list contacts")
		return
	}

	friendResponses := make([]*FriendResponse, len(friends))
	for i, f := range friends {
		friendResponses[i] = f.ToResponse()
	}

	totalPages := (total + perPage - 1) / perPage
	meta := &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}

	response.JSONWithMeta(w, http.StatusOK, friendResponses, meta)
}

// Remove handles DELETE /friends/{id}
// @Summary      Remove a contact
// @Tags         friends
// @Produce      json
// @Param        id path int true "Contact ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /friends/{id} [delete]
func (h *Handler) Remove(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		ownerID = 1
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid contact ID")
		return
	}

	if err := h.service.Remove(r.Context(), ownerID, id); err != nil {
		if errors.Is(err, ErrFriendNotFound) {
			response.NotFound(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to remove contact")
		return
	}

	response.JSON(w, http.StatusOK, map[string]string{"message": "Contact removed"})
}
