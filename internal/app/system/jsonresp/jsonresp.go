// Package jsonresp writes the {data, error} envelope every JSON endpoint
// returns and maps apperr kinds onto HTTP status codes.
package jsonresp

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/dalemusser/gatherhub/internal/app/system/apperr"
	"go.uber.org/zap"
)

// ErrorBody is the error half of the envelope.
type ErrorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type envelope struct {
	Data  any        `json:"data"`
	Error *ErrorBody `json:"error,omitempty"`
}

// OK writes data with the given status.
func OK(w http.ResponseWriter, status int, data any) {
	write(w, status, envelope{Data: data})
}

// Fail writes an error envelope with an explicit status and code.
func Fail(w http.ResponseWriter, status int, code, message string) {
	write(w, status, envelope{Error: &ErrorBody{Code: code, Message: message}})
}

// Error translates err into an error envelope. Internal and unavailable
// failures are logged; caller mistakes are logged at debug only.
func Error(w http.ResponseWriter, log *zap.Logger, op string, err error) {
	kind := apperr.KindOf(err)
	status := StatusFor(kind)

	msg := err.Error()
	var ae *apperr.Error
	if errors.As(err, &ae) && ae.Msg != "" {
		msg = ae.Msg
	}

	switch {
	case status >= 500:
		if log != nil {
			log.Error("request failed", zap.String("op", op), zap.String("kind", string(kind)), zap.Error(err))
		}
		if kind == apperr.KindInternal {
			msg = "internal error"
		}
	default:
		if log != nil {
			log.Debug("request rejected", zap.String("op", op), zap.String("kind", string(kind)), zap.Error(err))
		}
	}

	Fail(w, status, string(kind), msg)
}

// StatusFor maps an error kind to an HTTP status.
func StatusFor(kind apperr.Kind) int {
	switch kind {
	case apperr.KindNotFound, apperr.KindEventNotFound:
		return http.StatusNotFound
	case apperr.KindForbidden:
		return http.StatusForbidden
	case apperr.KindValidation:
		return http.StatusBadRequest
	case apperr.KindAlreadyMember, apperr.KindAlreadyInvited, apperr.KindNoActiveInvitation,
		apperr.KindNotAMember, apperr.KindNotInvited, apperr.KindCreatorCannotLeave,
		apperr.KindCannotRemoveCreator, apperr.KindConflict:
		return http.StatusConflict
	case apperr.KindUnavailable:
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

// Decode reads a JSON request body into dst, rejecting unknown fields.
func Decode(w http.ResponseWriter, r *http.Request, dst any) error {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return apperr.New(apperr.KindValidation, "decode", "invalid JSON body: "+err.Error())
	}
	return nil
}

func write(w http.ResponseWriter, status int, body envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
