package handler

import (
	"encoding/json"
	"net/http"
	"strconv"
	"ventro-backend/auth"
	"ventro-backend/booking"
	"ventro-backend/factory"
	"ventro-backend/logger"
	"ventro-backend/model"
	"ventro-backend/response"

	"github.com/gorilla/mux"
)

// CancelBooking removes the caller's active booking and voids its ticket.
func CancelBooking(service *booking.Booking, f factory.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		identity, ok := auth.Identity(ctx)
		if !ok {
			response.Unauthorized().Send(ctx, w)
			return
		}

		vars := mux.Vars(r)
		bookingID, err := strconv.ParseInt(vars["bookingID"], 10, 64)
		if err != nil {
			response.InvalidData("cancelBooking: invalid booking id").Send(ctx, w)
			return
		}

		if err := service.Cancel(ctx, f.DB(ctx), identity.UserID, bookingID); err != nil {
			sendBookingError(ctx, w, err)
			logger.Errorf(ctx, "cancelBooking: unable to cancel booking: %d for user: %d: %+v", bookingID, identity.UserID, err)
			return
		}

		response.SuccessResponse{
			Data:       &response.Data{Message: "Booking cancelled successfully"},
			StatusCode: http.StatusOK,
		}.Send(w)
	}
}

// RateEvent stores the caller's 1-5 rating for an event they attended.
func RateEvent(service *booking.Booking, f factory.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		identity, ok := auth.Identity(ctx)
		if !ok {
			response.Unauthorized().Send(ctx, w)
			return
		}

		var req model.RatingRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			logger.Errorf(ctx, "rateEvent: error unmarshalling request body: %+v", err)
			response.BadRequest("invalid request body", "").Send(ctx, w)
			return
		}

		if req.EventID <= 0 {
			response.InvalidData("rateEvent: event_id is required").Send(ctx, w)
			return
		}

		if err := service.Rate(ctx, f.DB(ctx), identity.UserID, req.EventID, req.Rating); err != nil {
			sendBookingError(ctx, w, err)
			logger.Errorf(ctx, "rateEvent: unable to rate event: %d for user: %d: %+v", req.EventID, identity.UserID, err)
			return
		}

		response.SuccessResponse{
			Data:       &response.Data{Message: "Rating updated successfully"},
			StatusCode: http.StatusOK,
		}.Send(w)
	}
}
