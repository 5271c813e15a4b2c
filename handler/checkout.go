package handler

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"ventro-backend/auth"
	"ventro-backend/booking"
	"ventro-backend/factory"
	"ventro-backend/logger"
	"ventro-backend/model"
	"ventro-backend/response"
)

// Checkout books a seat for the authenticated user, returning the redirect
// URL: the success page for free events, the gateway's hosted page for paid
// ones.
func Checkout(service *booking.Booking, f factory.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		identity, ok := auth.Identity(ctx)
		if !ok {
			response.Unauthorized().Send(ctx, w)
			return
		}

		var req model.CheckoutRequest
		err := json.NewDecoder(r.Body).Decode(&req)
		if err != nil {
			logger.Errorf(ctx, "checkout: error unmarshalling request body: %+v", err)
			response.BadRequest("invalid request body", "").Send(ctx, w)
			return
		}

		if req.EventID <= 0 {
			response.InvalidData("checkout: event_id is required").Send(ctx, w)
			return
		}

		redirectURL, err := service.Checkout(ctx, f.DB(ctx), identity.UserID, identity.Email, req.EventID)
		if err != nil {
			sendBookingError(ctx, w, err)
			logger.Errorf(ctx, "checkout: unable to checkout user: %d, event: %d: %+v", identity.UserID, req.EventID, err)
			return
		}

		response.SuccessResponse{
			Data:       &response.Data{CheckoutURL: redirectURL},
			StatusCode: http.StatusOK,
		}.Send(w)
	}
}

func sendBookingError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, booking.ErrEventNotFound):
		response.EventNotFound().Send(ctx, w)
	case errors.Is(err, booking.ErrAlreadyRegistered):
		response.AlreadyRegistered().Send(ctx, w)
	case errors.Is(err, booking.ErrSoldOut):
		response.SoldOut().Send(ctx, w)
	case errors.Is(err, booking.ErrBookingNotFound):
		response.BookingNotFound().Send(ctx, w)
	case errors.Is(err, booking.ErrNotOwner):
		response.Forbidden("you can only cancel your own bookings").Send(ctx, w)
	case errors.Is(err, booking.ErrPaidBooking):
		response.CancelNotAllowed().Send(ctx, w)
	case errors.Is(err, booking.ErrNotAttendee):
		response.NotAttendee().Send(ctx, w)
	case errors.Is(err, booking.ErrInvalidRating):
		response.InvalidData("rating must be between 1 and 5").Send(ctx, w)
	default:
		response.SomethingWrong().Send(ctx, w)
	}
}
