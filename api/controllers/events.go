package controllers

import (
	"net/http"

	"github.com/avaloza-dev/marketstall-backend/api/responses"
	"github.com/avaloza-dev/marketstall-backend/api/validators"
	"github.com/avaloza-dev/marketstall-backend/internal/events"
	pkgerrors "github.com/avaloza-dev/marketstall-backend/pkg/errors"
	"github.com/avaloza-dev/marketstall-backend/pkg/logger"
)

// StoreEvents returns one page of the store's event trail, newest
// first. Pagination is cursor-based; pass the next_cursor from the
// previous page.
func StoreEvents(svc events.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "events service unavailable"))
			return
		}

		storeID, err := validators.UUIDParam(r, "storeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		limit, err := validators.ParseQueryInt(r, "limit", 50, 1, 100)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		page, err := svc.ListByStore(r.Context(), storeID, limit, r.URL.Query().Get("cursor"))
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, page)
	}
}
