package handler

import (
	"log/slog"
	"net/http"
	"strings"
	"time"
	"wellness-center/internal/api/handler/dto"
	"wellness-center/internal/domain/classification"
	"wellness-center/internal/domain/customer"
)

type CustomerHandler struct {
	service    customer.CustomerService
	classifier classification.Service
	logger     *slog.Logger
}

func NewCustomerHandler(s customer.CustomerService, c classification.Service, l *slog.Logger) *CustomerHandler {
	if s == nil || c == nil {
		panic("customer handler services cannot be nil")
	}
	if l == nil {
		panic("logger cannot be nil")
	}
	return &CustomerHandler{
		service:    s,
		classifier: c,
		logger:     l.With("component", "CustomerHandler"),
	}
}

// CreateCustomer handles POST /customers
// @Summary Register a new customer
// @Description Creates a customer with zero visits and revenue. New customers start as basic, dormant and high risk.
// @Tags Customers
// @Accept json
// @Produce json
// @Param request body dto.CreateCustomerRequest true "Customer creation request"
// @Success 201 {object} dto.CustomerResponse "Customer successfully created"
// @Failure 400 {object} dto.ErrorResponse "Invalid request payload (e.g., empty name)"
// @Failure 409 {object} dto.ErrorResponse "Phone number already registered"
// @Failure 500 {object} dto.ErrorResponse "Internal server error during creation"
// @Router /customers [post]
// @Security BearerAuth
func (h *CustomerHandler) CreateCustomer(w http.ResponseWriter, r *http.Request) {
	h.logger.DebugContext(r.Context(), "Received create customer request")

	var req dto.CreateCustomerRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, badRequest(err))
		return
	}
	if err := req.Validate(); err != nil {
		h.logger.WarnContext(r.Context(), "Validation failed", slog.Any("error", err))
		respondError(w, badRequest(err))
		return
	}

	created, err := h.service.CreateCustomer(r.Context(), strings.TrimSpace(req.Name), strings.TrimSpace(req.Phone))
	if err != nil {
		h.logger.Log(r.Context(), errorLevel(err), "Service failed to create customer", slog.Any("error", err))
		respondError(w, err)
		return
	}

	resp := dto.NewCustomerResponse(created)
	h.logger.InfoContext(r.Context(), "Customer created successfully", slog.String("customerID", resp.CustomerID))
	respondJSON(w, http.StatusCreated, resp)
}

// GetCustomer handles GET /customers/{customerID}
// @Summary Retrieve customer details
// @Description Retrieves a customer with their stored aggregates and classification.
// @Tags Customers
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Success 200 {object} dto.CustomerResponse "Customer details retrieved"
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID format"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID} [get]
// @Security BearerAuth
func (h *CustomerHandler) GetCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get customer ID from URL", slog.Any("error", err))
		respondError(w, err)
		return
	}

	cust, err := h.service.GetCustomer(r.Context(), customerID)
	if err != nil {
		h.logger.Log(r.Context(), errorLevel(err), "Service failed to get customer", slog.Int64("customerID", customerID), slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, dto.NewCustomerResponse(cust))
}

// ListCustomers handles GET /customers
// @Summary List customers
// @Description Lists customers, active ones by default, optionally filtered by membership level, status or risk.
// @Tags Customers
// @Produce json
// @Param active query bool false "Only active customers (default true)"
// @Param level query string false "Membership level" Enums(basic, silver, gold, platinum, vip)
// @Param status query string false "Customer status" Enums(active, inactive, dormant)
// @Param risk query string false "Risk level" Enums(stable, at_risk, high_risk)
// @Param limit query int false "Page size" Minimum(1) Maximum(500)
// @Param offset query int false "Page offset" Minimum(0)
// @Success 200 {array} dto.CustomerResponse "List of customers"
// @Failure 400 {object} dto.ErrorResponse "Invalid filter"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers [get]
// @Security BearerAuth
func (h *CustomerHandler) ListCustomers(w http.ResponseWriter, r *http.Request) {
	filter, err := dto.ParseCustomerFilter(r.URL.Query())
	if err != nil {
		h.logger.WarnContext(r.Context(), "Invalid customer list filter", slog.Any("error", err))
		respondError(w, badRequest(err))
		return
	}

	customers, err := h.service.ListCustomers(r.Context(), filter)
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Service failed to list customers", slog.Any("error", err))
		respondError(w, err)
		return
	}

	resp := make([]dto.CustomerResponse, len(customers))
	for i, cust := range customers {
		resp[i] = dto.NewCustomerResponse(cust)
	}

	h.logger.DebugContext(r.Context(), "Customers listed successfully", slog.Int("count", len(resp)))
	respondJSON(w, http.StatusOK, resp)
}

// RecordVisit handles POST /customers/{customerID}/visits
// @Summary Record a visit
// @Description Counts a visit for an active customer. visitDate defaults to today; a backdated visit counts but never moves the last visit date back.
// @Tags Customers
// @Accept json
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Param request body dto.RecordVisitRequest false "Visit date (YYYY-MM-DD)"
// @Success 200 {object} dto.CustomerResponse "Visit recorded"
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID or visit date"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 409 {object} dto.ErrorResponse "Customer is inactive"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID}/visits [post]
// @Security BearerAuth
func (h *CustomerHandler) RecordVisit(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.RecordVisitRequest
	if err := decodeOptionalJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, badRequest(err))
		return
	}
	visitDate, err := req.Date()
	if err != nil {
		respondError(w, badRequest(err))
		return
	}

	cust, err := h.service.RecordVisit(r.Context(), customerID, visitDate)
	if err != nil {
		h.logger.Log(r.Context(), errorLevel(err), "Service failed to record visit", slog.Int64("customerID", customerID), slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Visit recorded", slog.Int64("customerID", customerID))
	respondJSON(w, http.StatusOK, dto.NewCustomerResponse(cust))
}

// RecordComplaint handles POST /customers/{customerID}/complaints
// @Summary Record a complaint
// @Description Increments the customer's complaint count.
// @Tags Customers
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Success 200 {object} dto.CustomerResponse "Complaint recorded"
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 409 {object} dto.ErrorResponse "Customer is inactive"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID}/complaints [post]
// @Security BearerAuth
func (h *CustomerHandler) RecordComplaint(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}

	cust, err := h.service.RecordComplaint(r.Context(), customerID)
	if err != nil {
		h.logger.Log(r.Context(), errorLevel(err), "Service failed to record complaint", slog.Int64("customerID", customerID), slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Complaint recorded", slog.Int64("customerID", customerID))
	respondJSON(w, http.StatusOK, dto.NewCustomerResponse(cust))
}

// DeactivateCustomer handles DELETE /customers/{customerID}
// @Summary Deactivate a customer
// @Description Marks a customer as inactive. The record and its payment history are kept.
// @Tags Customers
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Success 204 "Customer successfully deactivated"
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID} [delete]
// @Security BearerAuth
func (h *CustomerHandler) DeactivateCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get customer ID from URL", slog.Any("error", err))
		respondError(w, err)
		return
	}

	if err := h.service.DeactivateCustomer(r.Context(), customerID); err != nil {
		h.logger.Log(r.Context(), errorLevel(err), "Service failed to deactivate customer", slog.Int64("customerID", customerID), slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Customer deactivated successfully", slog.Int64("customerID", customerID))
	respondJSON(w, http.StatusNoContent, nil)
}

// ReactivateCustomer handles PUT /customers/{customerID}/reactivate
// @Summary Reactivate a customer
// @Description Marks a customer account as active again.
// @Tags Customers
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Success 204 "Customer successfully reactivated"
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID}/reactivate [put]
// @Security BearerAuth
func (h *CustomerHandler) ReactivateCustomer(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		h.logger.WarnContext(r.Context(), "Failed to get customer ID from URL", slog.Any("error", err))
		respondError(w, err)
		return
	}

	if err := h.service.ReactivateCustomer(r.Context(), customerID); err != nil {
		h.logger.Log(r.Context(), errorLevel(err), "Service failed to reactivate customer", slog.Int64("customerID", customerID), slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Customer reactivated successfully", slog.Int64("customerID", customerID))
	respondJSON(w, http.StatusNoContent, nil)
}

// Reclassify handles POST /customers/{customerID}/classification
// @Summary Recompute a customer's classification
// @Description Recomputes trailing revenue and the membership level, status and risk level for one customer using the current criteria, and stores the result.
// @Tags Customers
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Success 200 {object} dto.OutcomeResponse "Classification recomputed"
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID}/classification [post]
// @Security BearerAuth
func (h *CustomerHandler) Reclassify(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}

	out, err := h.classifier.ReclassifyCustomer(r.Context(), customerID, time.Now())
	if err != nil {
		h.logger.Log(r.Context(), errorLevel(err), "Failed to reclassify customer", slog.Int64("customerID", customerID), slog.Any("error", err))
		respondError(w, err)
		return
	}

	h.logger.InfoContext(r.Context(), "Customer reclassified",
		slog.Int64("customerID", customerID),
		slog.String("level", string(out.Result.MembershipLevel)),
		slog.Bool("changed", out.Changed),
	)
	respondJSON(w, http.StatusOK, dto.NewOutcomeResponse(out))
}
