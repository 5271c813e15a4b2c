package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"ventro-backend/auth"
	"ventro-backend/factory"
	"ventro-backend/logger"
	"ventro-backend/response"
	"ventro-backend/ticket"

	"github.com/gorilla/mux"
)

// MyTicket returns the caller's ticket for the event in ?event_id=.
func MyTicket(service *ticket.Ticket, f factory.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		identity, ok := auth.Identity(ctx)
		if !ok {
			response.Unauthorized().Send(ctx, w)
			return
		}

		eventID, err := strconv.ParseInt(r.URL.Query().Get("event_id"), 10, 64)
		if err != nil || eventID <= 0 {
			response.InvalidData("myTicket: event_id is required").Send(ctx, w)
			return
		}

		tk, found, err := service.MyTicket(ctx, f.DB(ctx), identity.UserID, eventID)
		if err != nil {
			response.SomethingWrong().Send(ctx, w)
			logger.Errorf(ctx, "myTicket: unable to fetch ticket for user: %d, event: %d: %+v", identity.UserID, eventID, err)
			return
		}
		if !found {
			response.TicketNotFound().Send(ctx, w)
			return
		}

		response.SuccessResponse{
			Data:       &response.Data{Ticket: tk},
			StatusCode: http.StatusOK,
		}.Send(w)
	}
}

// ScanTicket redeems a presented token for the calling organizer's event.
func ScanTicket(service *ticket.Ticket, f factory.Factory) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx := r.Context()

		identity, ok := auth.Identity(ctx)
		if !ok {
			response.Unauthorized().Send(ctx, w)
			return
		}

		if identity.Role != auth.RoleOrganizer {
			response.Forbidden("only organizers can scan tickets").Send(ctx, w)
			return
		}

		vars := mux.Vars(r)
		eventID, err := strconv.ParseInt(vars["eventID"], 10, 64)
		if err != nil {
			response.InvalidData("scanTicket: invalid event id").Send(ctx, w)
			return
		}
		token := vars["token"]

		res, err := service.Scan(ctx, f.DB(ctx), identity.UserID, eventID, token)
		if err != nil {
			sendScanError(ctx, w, err)
			logger.Errorf(ctx, "scanTicket: unable to scan ticket for event: %d: %+v", eventID, err)
			return
		}

		response.SuccessResponse{
			Data:       &response.Data{Scan: res, Message: "Ticket scanned successfully"},
			StatusCode: http.StatusOK,
		}.Send(w)
	}
}

func sendScanError(ctx context.Context, w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, ticket.ErrTicketNotFound):
		response.TicketNotFound().Send(ctx, w)
	case errors.Is(err, ticket.ErrNotOrganizer):
		response.Forbidden("you cannot scan tickets for this event").Send(ctx, w)
	case errors.Is(err, ticket.ErrTicketUsed):
		response.TicketUsed().Send(ctx, w)
	default:
		response.SomethingWrong().Send(ctx, w)
	}
}
