package daycount

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"github.com/chrislyons-dev/bond-math/internal/problemdetails"
)

const dateLayout = "2006-01-02"

var validate = validator.New()

type pairReq struct {
	Start string `json:"start" validate:"required,datetime=2006-01-02"`
	End   string `json:"end" validate:"required,datetime=2006-01-02"`
}

type countReq struct {
	Pairs      []pairReq `json:"pairs" validate:"required,min=1,dive"`
	Convention string    `json:"convention" validate:"required"`
}

type resultResp struct {
	Days         int     `json:"days"`
	YearFraction float64 `json:"yearFraction"`
	Basis        int     `json:"basis"`
}

type countResp struct {
	Results    []resultResp `json:"results"`
	Convention string       `json:"convention"`
	Version    string       `json:"version"`
}

// Handler handles POST /v1/count.
type Handler struct {
	Version string
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req countReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		problemdetails.WriteKind(w, problemdetails.KindValidationError, "malformed request body")
		return
	}

	if err := validate.Struct(req); err != nil {
		writeValidationErrors(w, err)
		return
	}

	convention := Convention(req.Convention)
	if !convention.Valid() {
		problemdetails.Write(w, problemdetails.New(problemdetails.KindValidationError, "unsupported convention: "+req.Convention).
			WithErrors([]problemdetails.FieldError{{Field: "convention", Message: "must be one of ACT_360, ACT_365, 30_360"}}))
		return
	}

	pairs := make([]Pair, len(req.Pairs))
	for i, p := range req.Pairs {
		start, err := time.Parse(dateLayout, p.Start)
		if err != nil {
			problemdetails.WriteKind(w, problemdetails.KindValidationError, "invalid start date at index")
			return
		}
		end, err := time.Parse(dateLayout, p.End)
		if err != nil {
			problemdetails.WriteKind(w, problemdetails.KindValidationError, "invalid end date at index")
			return
		}
		pairs[i] = Pair{Start: start, End: end}
	}

	results := Compute(pairs, convention)
	resp := countResp{
		Results:    make([]resultResp, len(results)),
		Convention: req.Convention,
		Version:    h.Version,
	}
	for i, r := range results {
		resp.Results[i] = resultResp{Days: r.Days, YearFraction: r.YearFraction, Basis: r.Basis}
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(resp)
}

func writeValidationErrors(w http.ResponseWriter, err error) {
	var fieldErrs []problemdetails.FieldError
	if verrs, ok := err.(validator.ValidationErrors); ok {
		for _, fe := range verrs {
			fieldErrs = append(fieldErrs, problemdetails.FieldError{
				Field:   fe.Namespace(),
				Message: fe.Tag(),
			})
		}
	}
	problemdetails.Write(w, problemdetails.New(problemdetails.KindValidationError, "request failed validation").WithErrors(fieldErrs))
}
