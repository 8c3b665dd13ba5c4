package handler

import (
	"encoding/json"
	"net/http"
	"strconv"

	"github.com/electrade/network-api/internal/domain"
	"github.com/electrade/network-api/internal/repository"
	"github.com/electrade/network-api/internal/service"
	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// NetworkHandler handles HTTP requests for network operations
type NetworkHandler struct {
	networkService *service.NetworkService
	debtService    *service.DebtService
	logger         *zap.Logger
}

// NewNetworkHandler creates a new network handler instance
func NewNetworkHandler(
	networkService *service.NetworkService,
	debtService *service.DebtService,
	logger *zap.Logger,
) *NetworkHandler {
	return &NetworkHandler{
		networkService: networkService,
		debtService:    debtService,
		logger:         logger,
	}
}

// List godoc
// @Summary List networks
// @Description Get paginated list of trade networks with optional filters (superuser only)
// @Tags Networks
// @Accept json
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 30)" default(15)
// @Param country query string false "Filter by country (exact match)"
// @Param sortBy query string false "Sort field" Enums(createdAt, updatedAt, name, country, city, networkType, networkLevel, debt)
// @Param sortOrder query string false "Sort order" Enums(asc, desc) default(desc)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.NetworkDTO}
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Router /networks [get]
func (h *NetworkHandler) List(w http.ResponseWriter, r *http.Request) {
	page, pageSize, sort := parseListQuery(r)
	filters := &repository.NetworkFilters{
		Country: r.URL.Query().Get("country"),
	}

	result, err := h.networkService.List(r.Context(), page, pageSize, filters, sort)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list networks")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// ListDebtAboveAverage godoc
// @Summary List networks with above-average debt
// @Description Get networks whose debt exceeds the mean debt across all networks
// @Tags Networks
// @Produce json
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 30)" default(15)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.NetworkDTO}
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Router /networks/debt-above-average [get]
func (h *NetworkHandler) ListDebtAboveAverage(w http.ResponseWriter, r *http.Request) {
	page, pageSize, sort := parseListQuery(r)
	filters := &repository.NetworkFilters{
		Country:          r.URL.Query().Get("country"),
		DebtAboveAverage: true,
	}

	result, err := h.networkService.List(r.Context(), page, pageSize, filters, sort)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list networks")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// ListByProduct godoc
// @Summary List networks carrying a product
// @Description Get networks associated with the given product
// @Tags Networks
// @Produce json
// @Param productId path string true "Product ID" format(uuid)
// @Param page query int false "Page number" default(1)
// @Param pageSize query int false "Items per page (max 30)" default(15)
// @Success 200 {object} domain.PaginatedResponse{data=[]domain.NetworkDTO}
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Router /networks/by-product/{productId} [get]
func (h *NetworkHandler) ListByProduct(w http.ResponseWriter, r *http.Request) {
	productID, err := uuid.Parse(chi.URLParam(r, "productId"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid product ID format")
		return
	}

	page, pageSize, sort := parseListQuery(r)
	filters := &repository.NetworkFilters{
		ProductID: &productID,
	}

	result, err := h.networkService.List(r.Context(), page, pageSize, filters, sort)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to list networks")
		return
	}

	respondJSON(w, http.StatusOK, result)
}

// GetByID godoc
// @Summary Get network by ID
// @Description Get a single network with its supplier, products and employees
// @Tags Networks
// @Produce json
// @Param id path string true "Network ID" format(uuid)
// @Success 200 {object} domain.NetworkDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /networks/{id} [get]
func (h *NetworkHandler) GetByID(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid network ID format")
		return
	}

	network, err := h.networkService.GetByID(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to get network")
		return
	}

	respondJSON(w, http.StatusOK, network)
}

// Create godoc
// @Summary Create network
// @Description Create a new trade network node. The hierarchy level is derived; factories start debt-free.
// @Tags Networks
// @Accept json
// @Produce json
// @Param request body domain.CreateNetworkRequest true "Network data"
// @Success 201 {object} domain.NetworkDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Router /networks [post]
func (h *NetworkHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateNetworkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	network, err := h.networkService.Create(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to create network")
		return
	}

	respondJSON(w, http.StatusCreated, network)
}

// Update godoc
// @Summary Update network
// @Description Update a network. Debt and level are system-managed and ignored here.
// @Tags Networks
// @Accept json
// @Produce json
// @Param id path string true "Network ID" format(uuid)
// @Param request body domain.UpdateNetworkRequest true "Network data"
// @Success 200 {object} domain.NetworkDTO
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /networks/{id} [put]
func (h *NetworkHandler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid network ID format")
		return
	}

	var req domain.UpdateNetworkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	network, err := h.networkService.Update(r.Context(), id, &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to update network")
		return
	}

	respondJSON(w, http.StatusOK, network)
}

// Delete godoc
// @Summary Delete network
// @Description Delete a network. Networks it supplied keep their level and lose the supplier reference.
// @Tags Networks
// @Param id path string true "Network ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /networks/{id} [delete]
func (h *NetworkHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid network ID format")
		return
	}

	if err := h.networkService.Delete(r.Context(), id); err != nil {
		respondServiceError(w, h.logger, err, "Failed to delete network")
		return
	}

	respondJSON(w, http.StatusNoContent, nil)
}

// ClearDebt godoc
// @Summary Clear debt for selected networks
// @Description Zero the debt of the selected networks. Small selections run inline; large ones are scheduled and answered with a task id.
// @Tags Networks
// @Accept json
// @Produce json
// @Param request body domain.ClearDebtRequest true "Network ids"
// @Success 200 {object} domain.ClearDebtResult "completed inline"
// @Success 202 {object} domain.ClearDebtResult "scheduled"
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Security BearerAuth
// @Router /networks/clear-debt [post]
func (h *NetworkHandler) ClearDebt(w http.ResponseWriter, r *http.Request) {
	var req domain.ClearDebtRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	result, err := h.debtService.ClearDebt(r.Context(), &req)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to clear debt")
		return
	}

	status := http.StatusOK
	if result.Status == domain.ClearDebtScheduled {
		status = http.StatusAccepted
	}
	respondJSON(w, status, result)
}

// SendContactCode godoc
// @Summary Email the network's contact QR code
// @Description Schedule delivery of a QR code with the network's contact details to the requesting employee's email
// @Tags Networks
// @Produce json
// @Param id path string true "Network ID" format(uuid)
// @Success 202 {object} domain.ContactCodeResponse
// @Failure 400 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Security BearerAuth
// @Router /networks/{id}/contact-code [post]
func (h *NetworkHandler) SendContactCode(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid network ID format")
		return
	}

	result, err := h.networkService.SendContactCode(r.Context(), id)
	if err != nil {
		respondServiceError(w, h.logger, err, "Failed to send contact code")
		return
	}

	respondJSON(w, http.StatusAccepted, result)
}

// parseListQuery extracts pagination and sorting from the query string
func parseListQuery(r *http.Request) (int, int, repository.SortConfig) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	pageSize, _ := strconv.Atoi(r.URL.Query().Get("pageSize"))

	sort := repository.DefaultSortConfig()
	if sortBy := r.URL.Query().Get("sortBy"); sortBy != "" {
		sort.Field = sortBy
	}
	if sortOrder := r.URL.Query().Get("sortOrder"); sortOrder != "" {
		sort.Order = repository.ParseSortOrder(sortOrder)
	}

	return page, pageSize, sort
}
