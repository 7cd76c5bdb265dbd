package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/avaloza-dev/marketstall-backend/api/middleware"
	"github.com/avaloza-dev/marketstall-backend/api/responses"
	"github.com/avaloza-dev/marketstall-backend/api/validators"
	"github.com/avaloza-dev/marketstall-backend/internal/stores"
	pkgerrors "github.com/avaloza-dev/marketstall-backend/pkg/errors"
	"github.com/avaloza-dev/marketstall-backend/pkg/logger"
)

// StoreCreate opens a fresh store account and returns the minted
// capability token. The token is shown exactly once.
func StoreCreate(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}

		out, err := svc.CreateStore(r.Context())
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, out)
	}
}

// StoreGet returns the public account view of a store.
func StoreGet(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}

		storeID, err := validators.UUIDParam(r, "storeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		store, err := svc.GetStore(r.Context(), storeID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, store)
	}
}

type withdrawalRequest struct {
	AmountCents int64  `json:"amount_cents" validate:"required"`
	Recipient   string `json:"recipient" validate:"required,min=1"`
}

// StoreWithdraw moves escrowed funds out of the store balance to the
// named recipient. Requires the store's capability token.
func StoreWithdraw(svc stores.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "store service unavailable"))
			return
		}

		storeID, err := validators.UUIDParam(r, "storeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		capabilityID, err := capabilityFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload withdrawalRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		out, err := svc.WithdrawFromStore(r.Context(), stores.WithdrawInput{
			StoreID:      storeID,
			CapabilityID: capabilityID,
			AmountCents:  payload.AmountCents,
			Recipient:    payload.Recipient,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, out)
	}
}

func capabilityFromContext(r *http.Request) (uuid.UUID, error) {
	raw := middleware.CapabilityIDFromContext(r.Context())
	if raw == "" {
		return uuid.Nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "capability context missing")
	}
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, pkgerrors.Wrap(pkgerrors.CodeUnauthorized, err, "invalid capability id")
	}
	return id, nil
}
