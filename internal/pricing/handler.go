package pricing

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"

	"github.com/chrislyons-dev/bond-math/internal/problemdetails"
)

var validate = validator.New()

type priceReq struct {
	FaceValue        float64 `json:"faceValue" validate:"required,gt=0"`
	CouponRate       float64 `json:"couponRate" validate:"gte=0"`
	YieldToMaturity  float64 `json:"yieldToMaturity" validate:"gte=-1"`
	PeriodsPerYear   int     `json:"periodsPerYear" validate:"required,gt=0"`
	PeriodsRemaining int     `json:"periodsRemaining" validate:"required,gt=0"`
}

type priceResp struct {
	CleanPrice float64 `json:"cleanPrice"`
	Version    string  `json:"version"`
}

// Handler handles POST /v1/price.
type Handler struct {
	Version string
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req priceReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problemdetails.WriteKind(w, problemdetails.KindValidationError, "malformed request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		problemdetails.WriteKind(w, problemdetails.KindValidationError, "request failed validation")
		return
	}

	price := CleanPrice(Bond{
		FaceValue:        req.FaceValue,
		CouponRate:       req.CouponRate,
		YieldToMaturity:  req.YieldToMaturity,
		PeriodsPerYear:   req.PeriodsPerYear,
		PeriodsRemaining: req.PeriodsRemaining,
	})

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(priceResp{CleanPrice: price, Version: h.Version})
}
