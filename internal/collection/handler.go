package collection

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/aldawsari/tadayun/internal/party"
	"github.com/aldawsari/tadayun/pkg/middleware"
	"github.com/aldawsari/tadayun/pkg/response"
)

// Handler handles HTTP requests for collection operations
type Handler struct {
	service *Service
}

// NewHandler creates a new collection handler
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// Routes returns the router for collection endpoints
func (h *Handler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Post("/", h.Create)
	r.Get("/", h.List)
	r.Get("/{id}", h.GetByID)
	r.Post("/{id}/respond", h.Respond)
	r.Post("/{id}/cancel", h.Cancel)
	r.Post("/{id}/payments", h.RecordPayment)
	r.Get("/{id}/payments", h.ListPayments)
	r.Post("/{id}/settle", h.MarkFullyPaid)
	r.Post("/payments/{paymentID}/allocate", h.Allocate)

	return r
}

// Create handles POST /collections
// @Summary      Create a collection
// @Description  Create a debt/credit record with the caller as creditor or debtor
// @Tags         collections
// @Accept       json
// @Produce      json
// @Param        request body CreateCollectionRequest true "Collection to create"
// @Success      201 {object} response.APIResponse{data=CollectionResponse}
// @Failure      400 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /collections [post]
func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		actorID = 1
	}

	var req CreateCollectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	c, err := h.service.Create(r.Context(), actorID, &req)
	if err != nil {
		switch {
		case errors.Is(err, ErrInvalidRole), errors.Is(err, ErrInvalidAmount),
			errors.Is(err, party.ErrCounterpartyRequired), errors.Is(err, party.ErrAmbiguousRef),
			errors.Is(err, party.ErrCannotBefriendSelf):
			response.BadRequest(w, err.Error())
		case errors.Is(err, party.ErrCounterpartyNotFound), errors.Is(err, party.ErrFriendNotFound):
			response.NotFound(w, err.Error())
		default:
			response.InternalError(w, "Failed to create collection")
		}
		return
	}

	response.JSON(w, http.StatusCreated, c.ToResponse())
}

// List handles GET /collections
// @Summary      List the caller's collections
// @Tags         collections
// @Produce      json
// @Param        page query int false "Page number"
// @Param        per_page query int false "Items per page"
// @Success      200 {object} response.APIResponse{data=[]CollectionResponse}
// @Router       /collections [get]
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		actorID = 1
	}

	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("per_page"))

	if page < 1 {
		page = 1
	}
	if perPage < 1 {
		perPage = 20
	}

	collections, total, err := h.service.List(r.Context(), actorID, page, perPage)
	if err != nil {
		response.InternalError(w, "Failed to list collections")
		return
	}

	collectionResponses := make([]*CollectionResponse, len(collections))
	for i, c := range collections {
		collectionResponses[i] = c.ToResponse()
	}

	totalPages := (total + perPage - 1) / perPage
	meta := &response.Meta{
		Page:       page,
		PerPage:    perPage,
		Total:      total,
		TotalPages: totalPages,
	}

	response.JSONWithMeta(w, http.StatusOK, collectionResponses, meta)
}

// GetByID handles GET /collections/{id}
// @Summary      Get a collection
// @Tags         collections
// @Produce      json
// @Param        id path int true "Collection ID"
// @Success      200 {object} response.APIResponse{data=CollectionResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /collections/{id} [get]
func (h *Handler) GetByID(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		actorID = 1
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid collection ID")
		return
	}

	c, err := h.service.GetByID(r.Context(), actorID, id)
	if err != nil {
		h.writeServiceError(w, err, "Failed to get collection")
		return
	}

	response.JSON(w, http.StatusOK, c.ToResponse())
}

// Respond handles POST /collections/{id}/respond
// @Summary      Accept or decline a pending collection
// @Tags         collections
// @Accept       json
// @Produce      json
// @Param        id path int true "Collection ID"
// @Param        request body RespondRequest true "Approval decision"
// @Success      200 {object} response.APIResponse{data=CollectionResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /collections/{id}/respond [post]
func (h *Handler) Respond(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		actorID = 1
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid collection ID")
		return
	}

	var req RespondRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	c, err := h.service.Respond(r.Context(), id, actorID, req.Accept)
	if err != nil {
		h.writeServiceError(w, err, "Failed to respond to collection")
		return
	}

	response.JSON(w, http.StatusOK, c.ToResponse())
}

// Cancel handles POST /collections/{id}/cancel
// @Summary      Cancel a collection
// @Tags         collections
// @Produce      json
// @Param        id path int true "Collection ID"
// @Success      200 {object} response.APIResponse{data=CollectionResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /collections/{id}/cancel [post]
func (h *Handler) Cancel(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		actorID = 1
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid collection ID")
		return
	}

	c, err := h.service.Cancel(r.Context(), id, actorID)
	if err != nil {
		h.writeServiceError(w, err, "Failed to cancel collection")
		return
	}

	response.JSON(w, http.StatusOK, c.ToResponse())
}

// paymentResult pairs a payment with the updated collection state
type paymentResult struct {
	Payment    *PaymentResponse    `json:"payment"`
	Collection *CollectionResponse `json:"collection"`
}

// RecordPayment handles POST /collections/{id}/payments
// @Summary      Record a partial payment
// @Description  Record a payment, optionally realizing the caller's side against a wallet
// @Tags         collections
// @Accept       json
// @Produce      json
// @Param        id path int true "Collection ID"
// @Param        request body RecordPaymentRequest true "Payment to record"
// @Success      201 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /collections/{id}/payments [post]
func (h *Handler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		actorID = 1
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid collection ID")
		return
	}

	var req RecordPaymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}

	payment, c, err := h.service.RecordPayment(r.Context(), id, actorID, &req)
	if err != nil {
		h.writeServiceError(w, err, "Failed to record payment")
		return
	}

	response.JSON(w, http.StatusCreated, &paymentResult{
		Payment:    payment.ToResponse(),
		Collection: c.ToResponse(),
	})
}

// MarkFullyPaid handles POST /collections/{id}/settle
// @Summary      Pay off the outstanding balance in one payment
// @Tags         collections
// @Accept       json
// @Produce      json
// @Param        id path int true "Collection ID"
// @Param        request body SettleRequest true "Settle options"
// @Success      201 {object} response.APIResponse
// @Failure      403 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /collections/{id}/settle [post]
func (h *Handler) MarkFullyPaid(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		actorID = 1
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid collection ID")
		return
	}

	var req SettleRequest
	if r.Body != nil {
		// body is optional here
		_ = json.NewDecoder(r.Body).Decode(&req)
	}

	payment, c, err := h.service.MarkFullyPaid(r.Context(), id, actorID, &req)
	if err != nil {
		h.writeServiceError(w, err, "Failed to settle collection")
		return
	}

	response.JSON(w, http.StatusCreated, &paymentResult{
		Payment:    payment.ToResponse(),
		Collection: c.ToResponse(),
	})
}

// ListPayments handles GET /collections/{id}/payments
// @Summary      List payments of a collection
// @Tags         collections
// @Produce      json
// @Param        id path int true "Collection ID"
// @Success      200 {object} response.APIResponse{data=[]PaymentResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /collections/{id}/payments [get]
func (h *Handler) ListPayments(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		actorID = 1
	}

	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid collection ID")
		return
	}

	payments, err := h.service.ListPayments(r.Context(), id, actorID)
	if err != nil {
		h.writeServiceError(w, err, "Failed to list payments")
		return
	}

	paymentResponses := make([]*PaymentResponse, len(payments))
	for i, p := range payments {
		paymentResponses[i] = p.ToResponse()
	}

	response.JSON(w, http.StatusOK, paymentResponses)
}

// Allocate handles POST /collections/payments/{paymentID}/allocate
// @Summary      Realize the caller's side of a payment against a wallet
// @Tags         collections
// @Accept       json
// @Produce      json
// @Param        paymentID path int true "Payment ID"
// @Param        request body AllocateRequest true "Wallet to allocate against"
// @Success      200 {object} response.APIResponse{data=PaymentResponse}
// @Failure      403 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /collections/payments/{paymentID}/allocate [post]
func (h *Handler) Allocate(w http.ResponseWriter, r *http.Request) {
	actorID, ok := middleware.GetUserID(r.Context())
	if !ok {
		actorID = 1
	}

	paymentID, err := strconv.ParseInt(chi.URLParam(r, "paymentID"), 10, 64)
	if err != nil {
		response.BadRequest(w, "Invalid payment ID")
		return
	}

	var req AllocateRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body")
		return
	}
	if req.WalletID == 0 {
		response.BadRequest(w, "wallet_id is required")
		return
	}

	payment, err := h.service.Allocate(r.Context(), paymentID, actorID, req.WalletID)
	if err != nil {
		h.writeServiceError(w, err, "Failed to allocate payment")
		return
	}

	response.JSON(w, http.StatusOK, payment.ToResponse())
}

// writeServiceError maps service sentinel errors onto HTTP statuses:
// validation to 400, authorization to 403, missing rows to 404 and state
// conflicts to 409
func (h *Handler) writeServiceError(w http.ResponseWriter, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidAmount), errors.Is(err, ErrInvalidRole),
		errors.Is(err, ErrCurrencyMismatch):
		response.BadRequest(w, err.Error())
	case errors.Is(err, ErrNotCounterparty), errors.Is(err, ErrNotCreator),
		errors.Is(err, ErrNotParticipant), errors.Is(err, ErrNotWalletOwner):
		response.Forbidden(w, err.Error())
	case errors.Is(err, ErrCollectionNotFound), errors.Is(err, ErrPaymentNotFound),
		errors.Is(err, ErrWalletNotFound):
		response.NotFound(w, err.Error())
	case errors.Is(err, ErrInvalidStatusChange), errors.Is(err, ErrCollectionClosed),
		errors.Is(err, ErrPaymentTooLarge), errors.Is(err, ErrAlreadyAllocated):
		response.Conflict(w, err.Error())
	default:
		response.InternalError(w, fallback)
	}
}
