package handler

import (
	"errors"
	"io/ioutil"
	"net/http"
	"time"
	c "ventro-backend/context"
	"ventro-backend/factory"
	"ventro-backend/logger"
	"ventro-backend/payment"
	"ventro-backend/response"
)

const maxWebhookBody = 1 << 16

const confirmTimeout = 2 * time.Minute

// Webhook receives the gateway's signed confirmation callback. The signature
// is the only thing decided synchronously: a bad one gets 400, a good one
// gets 200 right away and the finalization runs in the background. The
// gateway already considers the payment settled, so downstream failures are
// logged and reconciled, never re-signaled.
func Webhook(processor *payment.Processor, f factory.Factory, secret string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		payload, err := ioutil.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
		if err != nil {
			logger.Errorf(ctx, "webhook: error reading payload: %+v", err)
			response.BadRequest("could not read payload", "").Send(ctx, w)
			return
		}

		confirmation, err := payment.ParseConfirmation(payload, r.Header.Get("Stripe-Signature"), secret)
		if err != nil {
			if errors.Is(err, payment.ErrInvalidSignature) {
				response.InvalidSignature(err.Error()).Send(ctx, w)
				return
			}
			// verified payload we cannot make sense of; acknowledge so the
			// gateway stops redelivering, and leave a trace for reconciliation
			logger.Errorf(ctx, "webhook: unusable confirmation payload: %+v", err)
			response.SuccessResponse{
				Data:       &response.Data{Received: true},
				StatusCode: http.StatusOK,
			}.Send(w)
			return
		}

		response.SuccessResponse{
			Data:       &response.Data{Received: true},
			StatusCode: http.StatusOK,
		}.Send(w)

		if confirmation == nil {
			// verified, but not an event type this workflow consumes
			return
		}

		// the request context dies with this response; processing continues
		// on a detached context carrying the same correlation id
		bgCtx := c.NewContext(c.GetContextValue(ctx, c.ContextKeyCorrelationID))
		db := f.DB(ctx)

		go func() {
			bgCtx, cancel := c.NewContextWithTimeOut(bgCtx, confirmTimeout)
			defer cancel()

			if err := processor.Confirm(bgCtx, db, confirmation); err != nil {
				logger.Errorf(bgCtx, "webhook: error finalizing confirmation for session: %s: %+v", confirmation.SessionID, err)
			}
		}()
	}
}
