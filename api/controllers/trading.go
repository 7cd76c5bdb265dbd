package controllers

import (
	"net/http"

	"github.com/google/uuid"

	"github.com/avaloza-dev/marketstall-backend/api/responses"
	"github.com/avaloza-dev/marketstall-backend/api/validators"
	"github.com/avaloza-dev/marketstall-backend/internal/trading"
	pkgerrors "github.com/avaloza-dev/marketstall-backend/pkg/errors"
	"github.com/avaloza-dev/marketstall-backend/pkg/escrow"
	"github.com/avaloza-dev/marketstall-backend/pkg/logger"
)

type purchaseRequest struct {
	Quantity     int    `json:"quantity" validate:"required"`
	Recipient    string `json:"recipient" validate:"required,min=1"`
	PaymentCents int64  `json:"payment_cents" validate:"required"`
}

type purchaseResponse struct {
	Holdings    []trading.HoldingDTO `json:"holdings"`
	ChangeCents int64                `json:"change_cents"`
	Change      string               `json:"change"`
}

// Purchase buys quantity copies of an item. The presented payment is
// split: the owed amount lands in the store's escrow balance and the
// change comes back in the response.
func Purchase(svc trading.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "trading service unavailable"))
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

		var payload purchaseRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		payment, err := escrow.NewPayment(payload.PaymentCents)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid payment"))
			return
		}

		holdings, err := svc.PurchaseItem(r.Context(), trading.PurchaseInput{
			StoreID:   storeID,
			ItemID:    itemID,
			Quantity:  payload.Quantity,
			Recipient: payload.Recipient,
			Payment:   payment,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, purchaseResponse{
			Holdings:    holdings,
			ChangeCents: payment.Value(),
			Change:      escrow.FormatCents(payment.Value()),
		})
	}
}

type deliveryRequest struct {
	Buyer string `json:"buyer" validate:"required,min=1"`
}

// DeliveryInitiate records that delivery of an item has started.
func DeliveryInitiate(svc trading.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "trading service unavailable"))
			return
		}

		storeID, itemID, payload, err := deliveryParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.InitiateDelivery(r.Context(), storeID, itemID, payload.Buyer); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "delivery_initiated"})
	}
}

// DeliveryConfirm settles a delivery by crediting the store.
func DeliveryConfirm(svc trading.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "trading service unavailable"))
			return
		}

		storeID, itemID, payload, err := deliveryParams(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.ConfirmDelivery(r.Context(), storeID, itemID, payload.Buyer); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "delivery_confirmed"})
	}
}

type refundRequest struct {
	Quantity int    `json:"quantity" validate:"required"`
	Buyer    string `json:"buyer" validate:"required,min=1"`
}

// Refund returns quantity copies to the store's availability and
// credits the store's balance with the refunded value.
func Refund(svc trading.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "trading service unavailable"))
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

		var payload refundRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		if err := svc.RefundPurchase(r.Context(), storeID, itemID, payload.Quantity, payload.Buyer); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, map[string]string{"status": "refunded"})
	}
}

type ratingRequest struct {
	Rating int    `json:"rating" validate:"required"`
	Review string `json:"review"`
	Buyer  string `json:"buyer" validate:"required,min=1"`
}

// Rate records a buyer's rating of a transaction.
func Rate(svc trading.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "trading service unavailable"))
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

		var payload ratingRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		rating, err := svc.RateTransaction(r.Context(), trading.RateInput{
			StoreID: storeID,
			ItemID:  itemID,
			Rating:  payload.Rating,
			Review:  payload.Review,
			Buyer:   payload.Buyer,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccessStatus(w, http.StatusCreated, rating)
	}
}

// Holdings lists the transferable copies owned by a buyer.
func Holdings(svc trading.Service, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if svc == nil {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeInternal, "trading service unavailable"))
			return
		}

		owner := r.URL.Query().Get("owner")
		if owner == "" {
			responses.WriteError(r.Context(), logg, w, pkgerrors.New(pkgerrors.CodeValidation, "owner query parameter required"))
			return
		}

		holdings, err := svc.ListHoldings(r.Context(), owner)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		responses.WriteSuccess(w, holdings)
	}
}

func deliveryParams(r *http.Request) (uuid.UUID, uuid.UUID, deliveryRequest, error) {
	var payload deliveryRequest
	storeID, err := validators.UUIDParam(r, "storeID")
	if err != nil {
		return uuid.Nil, uuid.Nil, payload, err
	}
	itemID, err := validators.UUIDParam(r, "itemID")
	if err != nil {
		return uuid.Nil, uuid.Nil, payload, err
	}
	if err := validators.DecodeJSONBody(r, &payload); err != nil {
		return uuid.Nil, uuid.Nil, payload, err
	}
	return storeID, itemID, payload, nil
}
