package wallet

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/aldawsari/tadayun/pkg/middleware"
	"github.com/aldawsari/tadayun/pkg/response"
)

// Handler handles HTTP requests for wallet operations
type Handler struct {
	service *Service
}

// NewHandler creates a new wallet handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for wallet endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)
	r.Get("/{id}/movements", h.ListMovements)
	r.Post("/{id}/incomes", h.RecordIncome)
	r.Post("/{id}/expenses", h.RecordExpense)

	return r
}

// Create handles POST /wallets
// @Summary      Create a wallet
// @Tags         wallets
// @Accept       json
// @Produce      json
// @Param        request body CreateWalletRequest true "Wallet creation request"
// @Success      201 {object} response.APIResponse{data=WalletResponse}
// @Failure      400 {object} response.APIResponse
// @Router       /wallets [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		ownerID = 1
	}

	var req CreateWalletRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	wallet, err := h.service.Create(r.Context(), ownerID, &req)
	if err != nil {
		if errors.Is(err, ErrNameRequired) || errors.Is(err, ErrNegativeBalance) {
			response.BadRequest(w, err.Error())
			return
		}
		response.InternalError(w, "Failed to create wallet")
		return
	}

	response.JSON(w, http.StatusCreated, wallet.ToResponse())
}

// List handles GET /wallets
// @Summary      List the caller's wallets
// @Tags         wallets
// @Produce      json
// @Success      200 {object} response.APIResponse{data=[]WalletResponse}
// @Router       /wallets [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	ownerID, ok := middleware.GetUserID(r.Context())
	if !ok {
		ownerID = 1
	}

	wallets, err := h.service.List(r.Context(), ownerID)
	if err != nil {
		response.InternalError(w, "Failed to list wallets")
		return
	}

	walletResponses := make([]*WalletResponse, len(wallets))
	for i, wlt := range wallets {
		walletResponses[i] = wlt.ToResponse()
	}

	response.JSON(w, http.StatusOK, walletResponses)
}

// GetByID handles GET /wallets/{id}
// @Summary      Get one of the caller's wallets
// @Tags         wallets
// @Produce      json
// @Param        id path int true "Wallet ID"
// @Success      200 {object} response.APIResponse{data=WalletResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /wallets/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		actorID = 1
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid wallet ID")
		return
	}

	wallet, err := h.service.GetByID(r.Context(), actorID, id)
	if err != nil {
		h.writeWalletError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, wallet.ToResponse())
}

// ListMovements handles GET /wallets/{id}/movements
// @Summary      List movements of a wallet
// @Tags         wallets
// @Produce      json
// @Param        id path int true "Wallet ID"
// @Param        page query int false "Page number"
// @Param        per_page query int false "Items per page"
// @Success      200 {object} response.APIResponse{data=[]MovementResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /wallets/{id}/movements [get]
func (h *Handler) ListMovements(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		actorID = 1
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid wallet ID")
		return
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	movements, total, err := h.service.ListMovements(r.Context(), actorID, id, page, perPage)
	if err != nil {
		h.writeWalletError(w, err)
		return
	}

	movementResponses := make([]*MovementResponse, len(movements))
	for i, m := range movements {
		movementResponses[i] = m.ToResponse()
	}

	totalPages := (total + perPage - 1) / perPage
	meta := &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}

	response.JSONWithMeta(w, http.StatusOK, movementResponses, meta)
}

// RecordIncome handles POST /wallets/{id}/incomes
// @Summary      Record a standalone income
// @Tags         wallets
// @Accept       json
// @Produce      json
// @Param        id path int true "Wallet ID"
// @Param        request body RecordMovementRequest true "Income to record"
// @Success      201 {object} response.APIResponse{data=MovementResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /wallets/{id}/incomes [post]
func (h *Handler) RecordIncome(w http.ResponseWriter, r *http.Request) {
	h.recordMovement(w, r, MovementKindIncome)
}

// RecordExpense handles POST /wallets/{id}/expenses
// @Summary      Record a standalone expense
// @Tags         wallets
// @Accept       json
// @Produce      json
// @Param        id path int true "Wallet ID"
// @Param        request body RecordMovementRequest true "Expense to record"
// @Success      201 {object} response.APIResponse{data=MovementResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Router       /wallets/{id}/expenses [post]
func (h *Handler) RecordExpense(w http.ResponseWriter, r *http.Request) {
	h.recordMovement(w, r, MovementKindExpense)
}

func (h *Handler) recordMovement(w http.ResponseWriter, r *http.Request, kind MovementKind) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		actorID = 1
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid wallet ID")
		return
	}

	var req RecordMovementRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	var movement *Movement
	if kind == MovementKindIncome {
		movement, err = h.service.RecordIncome(r.Context(), actorID, id, &req)
	} else {
		movement, err = h.service.RecordExpense(r.Context(), actorID, id, &req)
	}
	if err != nil {
		if errors.Is(err, ErrInvalidAmount) || errors.Is(err, ErrInvalidDate) {
			response.BadRequest(w, err.Error())
			return
		}
		h.writeWalletError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, movement.ToResponse())
}

func (h *Handler) writeWalletError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ErrWalletNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrNotWalletOwner):
		response.Forbidden(w, err.Error())
	default:
		response.InternalError(w, "Wallet operation failed")
	}
}
