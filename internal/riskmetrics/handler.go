package riskmetrics

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

type metricsReq struct {
	CashFlows []cashFlowReq `json:"cashFlows" validate:"required,min=1,dive"`
	Yield     float64       `json:"yield" validate:"gte=-1"`
}

type metricsResp struct {
	MacaulayDuration float64 `json:"macaulayDuration"`
	ModifiedDuration float64 `json:"modifiedDuration"`
	Convexity        float64 `json:"convexity"`
	Version          string  `json:"version"`
}

// Handler handles POST /v1/metrics.
type Handler struct {
	Version string
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req metricsReq
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

	m := Compute(flows, req.Yield)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(metricsResp{
		MacaulayDuration: m.MacaulayDuration,
		ModifiedDuration: m.ModifiedDuration,
		Convexity:        m.Convexity,
		Version:          h.Version,
	})
}
