package controllers

import (
	"net/http"

	"github.com/avaloza-dev/marketstall-backend/api/responses"
	"github.com/avaloza-dev/marketstall-backend/api/validators"
	"github.com/avaloza-dev/marketstall-backend/internal/inventory"
	pkgerrors "github.com/avaloza-dev/marketstall-backend/pkg/errors"
	"github.com/avaloza-dev/marketstall-backend/pkg/logger"
)

type addItemRequest struct {
	Title       string `json:"title" validate:"required,min=1"`
	Description string `json:"description"`
	URL         string `json:"url" validate:"omitempty,url"`
	PriceCents  int64  `json:"price_cents" validate:"required"`
	Supply      int    `json:"supply" validate:"required"`
	Category    int    `json:"category" validate:"min=0"`
}

// ItemAdd lists a new item in the store's inventory. Requires the
// store's capability token.
func ItemAdd(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
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

		var payload addItemRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.AddItem(r.Context(), inventory.AddItemInput{
			StoreID:      storeID,
			CapabilityID: capabilityID,
			Title:        payload.Title,
			Description:  payload.Description,
			URL:          payload.URL,
			PriceCents:   payload.PriceCents,
			Supply:       payload.Supply,
			Category:     payload.Category,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, item)
	}
}

// ItemUnlist pulls an item off the shelf. Already-unlisted items are
// accepted again without complaint.
func ItemUnlist(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		storeID, err := validators.UUIDParam(r, "storeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := validators.UUIDParam(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		capabilityID, err := capabilityFromContext(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.UnlistItem(r.Context(), storeID, capabilityID, itemID); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "unlisted"})
	}
}

// ItemGet returns one item's public listing state.
func ItemGet(svc inventory.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "inventory service unavailable"))
			return
		}

		storeID, err := validators.UUIDParam(r, "storeID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		itemID, err := validators.UUIDParam(r, "itemID")
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		item, err := svc.GetItem(r.Context(), storeID, itemID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, item)
	}
}
