package api

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/TimurManjosov/flagdemo/internal/features"
	"github.com/TimurManjosov/flagdemo/internal/targeting"
)

// Flag keys consulted by the payment endpoint (payment project).
const (
	flagInstantPayment    = "instantPayment"
	flagProcessingTier    = "processingTier"
	flagRecurringDiscount = "recurringDiscount"
)

const defaultProcessingTier = "standard"

// PaymentStatus is the processing state reported for a transaction.
type PaymentStatus string

const (
	StatusPending    PaymentStatus = "PENDING"
	StatusProcessing PaymentStatus = "PROCESSING"
	StatusCompleted  PaymentStatus = "COMPLETED"
	StatusFailed     PaymentStatus = "FAILED"
	StatusCancelled  PaymentStatus = "CANCELLED"
)

var validate = validator.New()

type paymentRequest struct {
	Amount     float64 `json:"amount" validate:"required,gt=0"`
	Currency   string  `json:"currency" validate:"required,len=3"`
	Method     string  `json:"method" validate:"required"`
	CardNumber string  `json:"cardNumber,omitempty" validate:"omitempty,min=4"`
	Recurring  bool    `json:"recurring"`
}

type paymentMethod struct {
	Type        string `json:"type"`
	Last4Digits string `json:"last4Digits"`
}

type paymentFeatures struct {
	InstantPayment    bool   `json:"instantPayment"`
	ProcessingTier    string `json:"processingTier"`
	RecurringDiscount bool   `json:"recurringDiscount"`
}

type paymentResponse struct {
	TransactionID string           `json:"transactionId"`
	Amount        float64          `json:"amount"`
	Currency      string           `json:"currency"`
	Method        paymentMethod    `json:"method"`
	Status        PaymentStatus    `json:"status"`
	Features      paymentFeatures  `json:"features"`
	Metadata      responseMetadata `json:"metadata"`
}

// handleProcessPayment handles POST /api/payments/process. No money moves:
// the endpoint demonstrates flag-conditioned processing, so the only error
// paths are malformed input at the HTTP boundary.
func (s *Server) handleProcessPayment(w http.ResponseWriter, r *http.Request) {
	var req paymentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid payment request: "+err.Error())
		return
	}

	ctx, rec := features.WithRecorder(r.Context())

	tc := targeting.NewContext(r.Header.Get("X-User-ID"), "", map[string]string{
		targeting.AttrCountry:         r.Header.Get("X-Country"),
		targeting.AttrPaymentProvider: r.Header.Get("X-Payment-Provider"),
		targeting.AttrCurrency:        req.Currency,
		targeting.AttrAmountBucket:    targeting.AmountBucket(req.Amount),
	})

	instant := s.features.EvaluateBool(ctx, features.ProjectPayment, flagInstantPayment, tc)
	tier := s.features.EvaluateString(ctx, features.ProjectPayment, flagProcessingTier, defaultProcessingTier, tc)
	recurringDiscount := s.features.EvaluateBool(ctx, features.ProjectPayment, flagRecurringDiscount, tc)

	status := StatusPending
	if instant {
		status = StatusCompleted
	}

	resp := paymentResponse{
		TransactionID: uuid.NewString(),
		Amount:        req.Amount,
		Currency:      req.Currency,
		Method: paymentMethod{
			Type:        req.Method,
			Last4Digits: last4(req.CardNumber),
		},
		Status: status,
		Features: paymentFeatures{
			InstantPayment:    instant,
			ProcessingTier:    tier,
			RecurringDiscount: recurringDiscount,
		},
		Metadata: metadataFrom(r, rec),
	}

	writeJSON(w, http.StatusOK, resp)
}
