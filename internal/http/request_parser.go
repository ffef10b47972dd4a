package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strconv"
	"strings"
	"time"

	"viveka/internal/core"
)

const maxBodyBytes = 1 << 20

// decodeJSON reads one JSON document into dst, rejecting unknown fields and
// trailing data.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return badRequest("request body is empty")
		}
		return badRequest(fmt.Sprintf("invalid JSON body: %v", err))
	}
	if dec.More() {
		return badRequest("request body must contain a single JSON object")
	}
	return nil
}

// parseAsOf reads the optional as_of=YYYY-MM-DD query parameter.
func parseAsOf(r *http.Request, now time.Time) (time.Time, error) {
	v := strings.TrimSpace(r.URL.Query().Get("as_of"))
	if v == "" {
		return now, nil
	}
	t, err := time.ParseInLocation("2006-01-02", v, now.Location())
	if err != nil {
		return time.Time{}, badRequest("as_of must be a date in YYYY-MM-DD form")
	}
	return t, nil
}

// emiQuery holds the calculator inputs from the query string.
type emiQuery struct {
	Principal int64
	Rate      float64
	Months    int
}

// parseEMIQuery collects every bad parameter as a validation error.
func parseEMIQuery(r *http.Request) (emiQuery, error) {
	q := r.URL.Query()
	var out emiQuery
	var errs core.ValidationErrors

	principal, err := core.ParseAmount(q.Get("principal"))
	if err != nil || principal <= 0 {
		errs = append(errs, core.ValidationError{Field: "principal", Message: "Principal must be greater than 0"})
	}
	out.Principal = principal

	rate, err := strconv.ParseFloat(strings.TrimSpace(q.Get("rate")), 64)
	if err != nil || rate < 0 || math.IsNaN(rate) || math.IsInf(rate, 0) {
		errs = append(errs, core.ValidationError{Field: "rate", Message: "Interest rate must be a number of at least 0"})
	}
	out.Rate = rate

	months, err := strconv.Atoi(strings.TrimSpace(q.Get("months")))
	if err != nil || months <= 0 {
		errs = append(errs, core.ValidationError{Field: "months", Message: "Months must be a whole number greater than 0"})
	}
	out.Months = months

	if len(errs) > 0 {
		return emiQuery{}, errs
	}
	return out, nil
}
