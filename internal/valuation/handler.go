package valuation

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/chrislyons-dev/bond-math/internal/problemdetails"
)

var validate = validator.New()

type cashFlowReq struct {
	TimeYears float64 `json:"timeYears" validate:"required,gt=0"`
	Amount    float64 `json:"amount" validate:"required"`
}

type presentValueReq struct {
	CashFlows []cashFlowReq `json:"cashFlows" validate:"required,min=1,dive"`
	Rate      float64       `json:"rate" validate:"gte=-1"`
}

type presentValueResp struct {
	PresentValue float64 `json:"presentValue"`
	Version      string  `json:"version"`
}

// Handler handles POST /v1/present-value.
type Handler struct {
	Version string
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req presentValueReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problemdetails.WriteKind(w, problemdetails.KindValidationError, "malformed request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		problemdetails.WriteKind(w, problemdetails.KindValidationError, "request failed validation")
		return
	}

	flows := make([]CashFlow, len(req.CashFlows))
	for i, cf := range req.CashFlows {
		flows[i] = CashFlow{TimeYears: cf.TimeYears, Amount: cf.Amount}
	}

	pv := PresentValue(flows, req.Rate)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(presentValueResp{PresentValue: pv, Version: h.Version})
}
