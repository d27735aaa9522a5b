package handler

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"
	"wellness-center/internal/api/handler/dto"
	"wellness-center/internal/domain/payment"
)

type PaymentHandler struct {
	service payment.PaymentService
	logger  *slog.Logger
}

func NewPaymentHandler(s payment.PaymentService, l *slog.Logger) *PaymentHandler {
	if s == nil || l == nil {
		panic("payment handler dependencies cannot be nil")
	}
	return &PaymentHandler{
		service: s,
		logger:  l.With("component", "PaymentHandler"),
	}
}

// RecordPayment handles POST /customers/{customerID}/payments
// @Summary Record a payment
// @Description Adds a positive payment to the customer's ledger. paymentDate defaults to today and method to card.
// @Tags Payments
// @Accept json
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Param request body dto.RecordPaymentRequest true "Payment details"
// @Success 201 {object} dto.PaymentResponse "Payment recorded"
// @Failure 400 {object} dto.ErrorResponse "Invalid amount, date or method"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 409 {object} dto.ErrorResponse "Customer is inactive"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID}/payments [post]
// @Security BearerAuth
func (h *PaymentHandler) RecordPayment(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.RecordPaymentRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, badRequest(err))
		return
	}
	amount, date, method, err := req.Parse()
	if err != nil {
		h.logger.WarnContext(r.Context(), "Payment request validation failed", slog.Any("error", err))
		respondError(w, badRequest(err))
		return
	}

	p, err := h.service.RecordPayment(r.Context(), customerID, date, amount, method, req.Note)
	if err != nil {
		h.logger.Log(r.Context(), errorLevel(err), "Service failed to record payment", slog.Int64("customerID", customerID), slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.NewPaymentResponse(p))
}

// RecordRefund handles POST /customers/{customerID}/refunds
// @Summary Record a refund
// @Description Adds a refund to the ledger as a negative entry, lowering trailing revenue. amount is the positive refunded value.
// @Tags Payments
// @Accept json
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Param request body dto.RecordRefundRequest true "Refund details"
// @Success 201 {object} dto.PaymentResponse "Refund recorded"
// @Failure 400 {object} dto.ErrorResponse "Invalid amount or date"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID}/refunds [post]
// @Security BearerAuth
func (h *PaymentHandler) RecordRefund(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}

	var req dto.RecordRefundRequest
	if err := decodeJSON(r, &req); err != nil {
		h.logger.WarnContext(r.Context(), "Failed to decode request body", slog.Any("error", err))
		respondError(w, badRequest(err))
		return
	}
	amount, date, err := req.Parse()
	if err != nil {
		respondError(w, badRequest(err))
		return
	}

	p, err := h.service.RecordRefund(r.Context(), customerID, date, amount, req.Note)
	if err != nil {
		h.logger.Log(r.Context(), errorLevel(err), "Service failed to record refund", slog.Int64("customerID", customerID), slog.Any("error", err))
		respondError(w, err)
		return
	}

	respondJSON(w, http.StatusCreated, dto.NewPaymentResponse(p))
}

// ListPayments handles GET /customers/{customerID}/payments
// @Summary List a customer's payments
// @Description Returns the full ledger, newest first, with the trailing 12-month revenue.
// @Tags Payments
// @Produce json
// @Param customerID path int true "Customer ID" Minimum(1)
// @Success 200 {object} dto.PaymentListResponse "Ledger entries"
// @Failure 400 {object} dto.ErrorResponse "Invalid customer ID"
// @Failure 404 {object} dto.ErrorResponse "Customer not found"
// @Failure 500 {object} dto.ErrorResponse "Internal server error"
// @Router /customers/{customerID}/payments [get]
// @Security BearerAuth
func (h *PaymentHandler) ListPayments(w http.ResponseWriter, r *http.Request) {
	customerID, err := getCustomerIDFromURL(r)
	if err != nil {
		respondError(w, err)
		return
	}

	payments, err := h.service.ListPayments(r.Context(), customerID)
	if err != nil {
		h.logger.Log(r.Context(), errorLevel(err), "Service failed to list payments", slog.Int64("customerID", customerID), slog.Any("error", err))
		respondError(w, err)
		return
	}
	revenue, err := h.service.AnnualRevenue(r.Context(), customerID, time.Now())
	if err != nil {
		h.logger.ErrorContext(r.Context(), "Failed to compute trailing revenue", slog.Int64("customerID", customerID), slog.Any("error", err))
		respondError(w, err)
		return
	}

	resp := dto.PaymentListResponse{
		CustomerID:    strconv.FormatInt(customerID, 10),
		AnnualRevenue: revenue.StringFixed(2),
		Payments:      make([]dto.PaymentResponse, len(payments)),
	}
	for i, p := range payments {
		resp.Payments[i] = dto.NewPaymentResponse(p)
	}
	respondJSON(w, http.StatusOK, resp)
}
