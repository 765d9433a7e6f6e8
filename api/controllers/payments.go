package controllers

import (
	"net/http"

	"github.com/gebeyalink/storefront/api/responses"
	"github.com/gebeyalink/storefront/api/validators"
	"github.com/gebeyalink/storefront/internal/marketplace"
	paymentsvc "github.com/gebeyalink/storefront/internal/payments"
	"github.com/gebeyalink/storefront/pkg/logger"
)

type telebirrRequest struct {
	Phone string `json:"phone"`
}

// PaymentTelebirr initiates a mobile-money push for the placed order.
func PaymentTelebirr(d paymentsvc.Dispatcher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := sessionID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload telebirrRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		result, err := d.PayWithTelebirr(r.Context(), id, payload.Phone)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// PaymentGateway opens a redirect-gateway checkout session.
func PaymentGateway(d paymentsvc.Dispatcher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := sessionID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := d.PayWithGateway(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

type bankTransferRequest struct {
	BankName        string `json:"bank_name" validate:"required"`
	AccountNumber   string `json:"account_number" validate:"required"`
	TransferDate    string `json:"transfer_date" validate:"required"`
	ReferenceNumber string `json:"reference_number" validate:"required"`
}

// PaymentBankTransfer submits manual transfer evidence for verification.
func PaymentBankTransfer(d paymentsvc.Dispatcher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := sessionID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload bankTransferRequest
		if err := validators.DecodeJSONBody(r, &payload); err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		result, err := d.SubmitBankTransfer(r.Context(), id, marketplace.BankTransferProof{
			BankName:        payload.BankName,
			AccountNumber:   payload.AccountNumber,
			TransferDate:    payload.TransferDate,
			ReferenceNumber: payload.ReferenceNumber,
		})
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, result)
	}
}

// PaymentCashOnDelivery confirms COD and finishes the checkout.
func PaymentCashOnDelivery(d paymentsvc.Dispatcher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := sessionID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := d.ConfirmCashOnDelivery(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

type completeRequest struct {
	OrderID string `json:"order_id"`
}

// PaymentComplete moves the checkout into the success state and clears the
// cart.
func PaymentComplete(d paymentsvc.Dispatcher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := sessionID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		var payload completeRequest
		if r.ContentLength > 0 {
			if err := validators.DecodeJSONBody(r, &payload); err != nil {
				responses.WriteError(r.Context(), logg, w, err)
				return
			}
		}

		order, err := d.Complete(r.Context(), id, payload.OrderID)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}

// PaymentRefreshOrder re-reads the held order from the marketplace.
func PaymentRefreshOrder(d paymentsvc.Dispatcher, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := sessionID(r)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}

		order, err := d.RefreshOrder(r.Context(), id)
		if err != nil {
			responses.WriteError(r.Context(), logg, w, err)
			return
		}
		responses.WriteSuccess(w, order)
	}
}
