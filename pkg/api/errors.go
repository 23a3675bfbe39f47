package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/platinummonkey/chatterbox/pkg/apperr"
	"github.com/platinummonkey/chatterbox/pkg/httputil"
	"github.com/platinummonkey/chatterbox/pkg/observability"
	"github.com/platinummonkey/chatterbox/pkg/storage"
	"github.com/platinummonkey/chatterbox/pkg/storage/postgres"
)

// classify attaches an apperr.Kind to errors coming out of the stores.
func classify(err error) error {
	var (
		appErr *apperr.Error
		valErr *postgres.ValidationError
		refErr *storage.ReferenceError
		stErr  *storage.StorageError
	)
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.As(err, &valErr):
		return apperr.Wrap(apperr.Validation, err, valErr.Message)
	case errors.As(err, &refErr):
		return apperr.Wrap(apperr.ContentReference, err, refErr.Error())
	case errors.Is(err, postgres.ErrEmailExists):
		return apperr.Wrap(apperr.Conflict, err, "email already exists")
	case errors.Is(err, postgres.ErrNotFound), errors.Is(err, storage.ErrFileNotFound):
		return apperr.Wrap(apperr.NotFound, err, "not found")
	case errors.As(err, &stErr):
		return apperr.Wrap(apperr.Storage, err, "storage failure")
	case errors.Is(err, context.Canceled):
		return apperr.Wrap(apperr.Internal, err, "request cancelled")
	default:
		return err
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		httputil.WriteErrorMessage(w, http.StatusRequestEntityTooLarge, "request body too large")
		return
	}
	httputil.WriteAppError(w, s.requestLogger(r), classify(err))
}

// requestLogger prefers the request scoped logger set by the access log.
func (s *Server) requestLogger(r *http.Request) *observability.Logger {
	if observability.HasLogger(r.Context()) {
		return observability.FromContext(r.Context())
	}
	return s.logger
}
