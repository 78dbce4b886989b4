package api

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/kilianp07/gridstatus/core/model"
	"github.com/kilianp07/gridstatus/core/store"
)

const timeLayout = "2006-01-02T15:04:05Z07:00"

type observationsQuery struct {
	ISO      string `json:"iso" validate:"required"`
	Dataset  string `json:"dataset" validate:"required,oneof=fuel_mix load load_forecast lmp"`
	Market   string `json:"market" validate:"omitempty,oneof=REAL_TIME_5_MIN DAY_AHEAD_HOURLY"`
	Location string `json:"location"`
	Start    string `json:"start" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	End      string `json:"end" validate:"omitempty,datetime=2006-01-02T15:04:05Z07:00"`
	Limit    int    `json:"limit" validate:"gte=0"`
}

// queryObservations serves GET /api/observations.
func (s *server) queryObservations(w http.ResponseWriter, r *http.Request) {
	v := r.URL.Query()
	in := observationsQuery{
		ISO:      v.Get("iso"),
		Dataset:  v.Get("dataset"),
		Market:   v.Get("market"),
		Location: v.Get("location"),
		Start:    v.Get("start"),
		End:      v.Get("end"),
	}
	if l := v.Get("limit"); l != "" {
		n, err := strconv.Atoi(l)
		if err != nil {
			writeJSON(w, http.StatusBadRequest, errorBody{
				Error:   "invalid query",
				Details: map[string]string{"limit": "must be an integer"},
			})
			return
		}
		in.Limit = n
	}
	if err := s.validate.Struct(in); err != nil {
		writeValidationError(w, err)
		return
	}
	q, err := in.toQuery(s.deps.MaxLimit)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	obs, err := s.deps.Store.Query(r.Context(), q)
	if err != nil {
		s.log.Errorf("query observations: %v", err)
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	if obs == nil {
		obs = []model.Observation{}
	}
	writeJSON(w, http.StatusOK, obs)
}

func (in observationsQuery) toQuery(maxLimit int) (store.Query, error) {
	q := store.Query{
		ISO:      in.ISO,
		Dataset:  model.Dataset(in.Dataset),
		Market:   in.Market,
		Location: in.Location,
		Limit:    in.Limit,
	}
	if in.Start != "" {
		q.Start, _ = time.Parse(timeLayout, in.Start)
	}
	if in.End != "" {
		q.End, _ = time.Parse(timeLayout, in.End)
	}
	if !q.Start.IsZero() && !q.End.IsZero() && !q.End.After(q.Start) {
		return q, fmt.Errorf("end must be after start")
	}
	if q.Limit == 0 || q.Limit > maxLimit {
		q.Limit = maxLimit
	}
	return q, nil
}

// latest serves GET /api/latest/{iso}/{dataset}.
func (s *server) latest(w http.ResponseWriter, r *http.Request) {
	isoID := chi.URLParam(r, "iso")
	ds := model.Dataset(chi.URLParam(r, "dataset"))
	if !ds.Valid() {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unknown dataset %q", ds))
		return
	}
	obs, err := s.deps.Store.Latest(r.Context(), isoID, ds)
	if err != nil {
		s.log.Errorf("latest observations: %v", err)
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	if len(obs) == 0 {
		writeError(w, http.StatusNotFound, "no observations")
		return
	}
	writeJSON(w, http.StatusOK, obs)
}

func writeValidationError(w http.ResponseWriter, err error) {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	details := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		details[fe.Field()] = fe.Tag()
	}
	writeJSON(w, http.StatusBadRequest, errorBody{Error: "invalid query", Details: details})
}
