package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"net/http"
	"strings"

	sharedobs "github.com/couchcryptid/storm-data-shared/observability"

	"github.com/couchcryptid/flood-risk-service/internal/domain"
	"github.com/couchcryptid/flood-risk-service/internal/predictor"
)

const maxBodyBytes = 1 << 20

// predictBody mirrors domain.PredictionRequest with pointer fields so absent
// keys can be told apart from zero values.
type predictBody struct {
	WardName         *string  `json:"ward_name"`
	Month            *float64 `json:"month"`
	Temperature      *float64 `json:"temperature"`
	Humidity         *float64 `json:"humidity"`
	Pressure         *float64 `json:"pressure"`
	CloudCover       *float64 `json:"cloud_cover"`
	Elevation        *float64 `json:"elevation"`
	Siltation        *float64 `json:"siltation"`
	DrainageCapacity *float64 `json:"drainage_capacity"`
}

func (b predictBody) missing() []string {
	var fields []string
	check := func(name string, present bool) {
		if !present {
			fields = append(fields, name)
		}
	}
	check("ward_name", b.WardName != nil)
	check("month", b.Month != nil)
	check("temperature", b.Temperature != nil)
	check("humidity", b.Humidity != nil)
	check("pressure", b.Pressure != nil)
	check("cloud_cover", b.CloudCover != nil)
	check("elevation", b.Elevation != nil)
	check("siltation", b.Siltation != nil)
	check("drainage_capacity", b.DrainageCapacity != nil)
	return fields
}

// integralMonth reports whether month holds a whole number, so 8 and 8.0 are
// both accepted while 8.5 is not.
func (b predictBody) integralMonth() bool {
	m := *b.Month
	return m == math.Trunc(m) && math.Abs(m) <= math.MaxInt32
}

// request assumes missing() returned nothing and integralMonth() held.
func (b predictBody) request() domain.PredictionRequest {
	return domain.PredictionRequest{
		WardName: *b.WardName,
		Conditions: domain.Conditions{
			Month:            int(*b.Month),
			Temperature:      *b.Temperature,
			Humidity:         *b.Humidity,
			Pressure:         *b.Pressure,
			CloudCover:       *b.CloudCover,
			Elevation:        *b.Elevation,
			Siltation:        *b.Siltation,
			DrainageCapacity: *b.DrainageCapacity,
		},
	}
}

type liveBody struct {
	WardName         *string  `json:"ward_name"`
	Elevation        *float64 `json:"elevation"`
	Siltation        *float64 `json:"siltation"`
	DrainageCapacity *float64 `json:"drainage_capacity"`
}

func (b liveBody) missing() []string {
	var fields []string
	if b.WardName == nil {
		fields = append(fields, "ward_name")
	}
	if b.Elevation == nil {
		fields = append(fields, "elevation")
	}
	if b.Siltation == nil {
		fields = append(fields, "siltation")
	}
	if b.DrainageCapacity == nil {
		fields = append(fields, "drainage_capacity")
	}
	return fields
}

func (s *Server) handlePredict(w http.ResponseWriter, r *http.Request) {
	var body predictBody
	if !s.decode(w, r, &body) {
		return
	}
	if fields := body.missing(); len(fields) > 0 {
		s.reject(w, "missing_field", errorResponse{Error: "missing required fields", Fields: fields})
		return
	}
	if !body.integralMonth() {
		s.reject(w, "malformed", errorResponse{Error: "invalid value for month: expected integer", Fields: []string{"month"}})
		return
	}

	pred, err := s.svc.Predict(r.Context(), body.request())
	if err != nil {
		s.logger.Error("prediction failed", "error", err)
		sharedobs.WriteJSON(w, http.StatusInternalServerError, errorResponse{Error: "prediction failed"})
		return
	}
	sharedobs.WriteJSON(w, http.StatusOK, pred)
}

func (s *Server) handlePredictLive(w http.ResponseWriter, r *http.Request) {
	var body liveBody
	if !s.decode(w, r, &body) {
		return
	}
	if fields := body.missing(); len(fields) > 0 {
		s.reject(w, "missing_field", errorResponse{Error: "missing required fields", Fields: fields})
		return
	}

	pred, err := s.svc.PredictLive(r.Context(), predictor.LiveRequest{
		WardName:         *body.WardName,
		Elevation:        *body.Elevation,
		Siltation:        *body.Siltation,
		DrainageCapacity: *body.DrainageCapacity,
	})
	switch {
	case err == nil:
		sharedobs.WriteJSON(w, http.StatusOK, pred)
	case errors.Is(err, predictor.ErrUnknownWard):
		s.metrics.RequestsRejected.WithLabelValues("unknown_ward").Inc()
		sharedobs.WriteJSON(w, http.StatusNotFound, errorResponse{Error: err.Error(), Fields: []string{"ward_name"}})
	case errors.Is(err, predictor.ErrLiveWeatherDisabled):
		sharedobs.WriteJSON(w, http.StatusServiceUnavailable, errorResponse{Error: err.Error()})
	case errors.Is(err, predictor.ErrWeatherUnavailable):
		s.logger.Warn("live weather fetch failed", "ward", *body.WardName, "error", err)
		sharedobs.WriteJSON(w, http.StatusBadGateway, errorResponse{Error: predictor.ErrWeatherUnavailable.Error()})
	default:
		s.logger.Error("live prediction failed", "ward", *body.WardName, "error", err)
		sharedobs.WriteJSON(w, http.StatusInternalServerError, errorResponse{Error: "prediction failed"})
	}
}

// decode reads a JSON object into dst, answering 422 on failure. It reports
// whether the handler should continue.
func (s *Server) decode(w http.ResponseWriter, r *http.Request, dst any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	err := dec.Decode(dst)
	if err == nil {
		if dec.More() {
			err = errors.New("unexpected data after JSON object")
		} else {
			return true
		}
	}

	resp := errorResponse{Error: "malformed request body"}
	var typeErr *json.UnmarshalTypeError
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &typeErr):
		resp.Error = fmt.Sprintf("invalid value for %s: expected %s", typeErr.Field, typeErr.Type)
		resp.Fields = []string{typeErr.Field}
	case errors.As(err, &maxErr):
		resp.Error = fmt.Sprintf("request body exceeds %d bytes", maxErr.Limit)
	case errors.Is(err, io.EOF):
		resp.Error = "empty request body"
	default:
		resp.Error = "malformed request body: " + strings.TrimPrefix(err.Error(), "json: ")
	}
	s.reject(w, "malformed", resp)
	return false
}

func (s *Server) reject(w http.ResponseWriter, reason string, resp errorResponse) {
	s.metrics.RequestsRejected.WithLabelValues(reason).Inc()
	sharedobs.WriteJSON(w, http.StatusUnprocessableEntity, resp)
}
