package web

import (
	"encoding/json"
	"io"
	"net/http"

	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/Faultbox/tlj-engine/internal/assets"
	"github.com/Faultbox/tlj-engine/internal/engine/model"
	"github.com/Faultbox/tlj-engine/pkg/formats"
)

// errBadRequest marks client input errors.
var errBadRequest = errors.New("bad request")

func statusOf(err error) int {
	switch {
	case errors.Is(err, errBadRequest):
		return http.StatusBadRequest
	case errors.Is(err, assets.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, formats.ErrTruncated),
		errors.Is(err, model.ErrInvalidMagic),
		errors.Is(err, model.ErrInvalidMagic2),
		errors.Is(err, model.ErrUnknownFormat),
		errors.Is(err, model.ErrUnsupportedReserved),
		errors.Is(err, model.ErrBoneIndexOutOfRange),
		errors.Is(err, model.ErrMaterialIndexOutOfRange),
		errors.Is(err, model.ErrTriangleIndexOutOfRange),
		errors.Is(err, model.ErrMultipleParents),
		errors.Is(err, model.ErrBoneCycle):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusInternalServerError
	}
}

func (s *Server) writeJSON(w http.ResponseWriter, data interface{}) {
	res, err := json.Marshal(data)
	if err != nil {
		s.writeError(w, errors.Wrap(err, "marshaling response"))
		return
	}
	w.Header().Set("Content-Type", "application/json")
	s.writeResult(w, res)
}

func (s *Server) writeError(w http.ResponseWriter, err error) {
	type jError struct {
		Error string `json:"error"`
	}

	status := statusOf(err)
	if status >= http.StatusInternalServerError {
		s.log.Error("request failed", zap.Error(err))
	} else {
		s.log.Debug("request rejected", zap.Int("status", status), zap.Error(err))
	}

	data, _ := json.Marshal(&jError{Error: err.Error()})
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	s.writeResult(w, data)
}

func (s *Server) writeResult(w http.ResponseWriter, data []byte) {
	if _, err := w.Write(data); err != nil {
		s.log.Warn("writing response", zap.Error(err))
	}
}

func writeFileHeaders(w http.ResponseWriter, contentType, name string) {
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", "attachment; filename=\""+name+"\"")
}

func readJSON(r io.Reader, v interface{}) error {
	dec := json.NewDecoder(io.LimitReader(r, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return errors.Wrapf(errBadRequest, "decoding body: %v", err)
	}
	return nil
}
