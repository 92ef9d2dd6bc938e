package mux

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/sirupsen/logrus"

	"blackjackdealer-server/pkg/deck"
	"blackjackdealer-server/pkg/narrate"
	"blackjackdealer-server/pkg/retrieval"
)

func decodeRequest(w http.ResponseWriter, r *http.Request, payload interface{}) bool {
	if ct := r.Header.Get("Content-Type"); ct != "application/json" && ct != "text/json" {
		writeJSONError(w, http.StatusUnsupportedMediaType, nil)
		return false
	}

	if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
		writeJSONError(w, http.StatusBadRequest, err)
		return false
	}

	return true
}

func writeJSON(w http.ResponseWriter, statusCode int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logrus.WithError(err).Error("could not write JSON response")
	}
}

type errorResponse struct {
	Error      string `json:"error"`
	StatusCode int    `json:"statusCode"`
}

func writeJSONError(w http.ResponseWriter, statusCode int, err error) {
	var msg string

	if statusCode < 500 && err != nil {
		msg = err.Error()
	} else {
		msg = http.StatusText(statusCode)
	}

	if statusCode >= 500 {
		logrus.WithField("statusCode", statusCode).Error(err)
	}

	writeJSON(w, statusCode, errorResponse{
		Error:      msg,
		StatusCode: statusCode,
	})
}

// writeUpstreamError maps a failed collaborator call to a response. Upstream
// failures are 502s and are never retried here.
func writeUpstreamError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, deck.ErrDrawExhausted),
		errors.Is(err, deck.ErrUpstreamUnavailable),
		errors.Is(err, retrieval.ErrUpstreamUnavailable),
		errors.Is(err, narrate.ErrUpstreamUnavailable):
		writeJSONError(w, http.StatusBadGateway, err)
	default:
		writeJSONError(w, http.StatusInternalServerError, err)
	}
}
