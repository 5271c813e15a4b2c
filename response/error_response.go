package response

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"ventro-backend/logger"
)

type ErrorResponse struct {
	StatusCode  int
	Success     bool   `json:"success"`
	Message     string `json:"message"`
	Status      string `json:"status"`
	Description string
}

func (r ErrorResponse) Error() string {
	return fmt.Sprintf("StatusCode: %d, Success: %t, Message: %s, Status: %s, Description: %s", r.StatusCode, r.Success, r.Message, r.Status, r.Description)
}

func (r ErrorResponse) Send(ctx context.Context, w http.ResponseWriter) {
	logger.Errorf(ctx, r.Error())
	w.WriteHeader(r.StatusCode)
	json.NewEncoder(w).Encode(r)
}

func BadRequest(message, description string) ErrorResponse {
	return ErrorResponse{
		StatusCode:  http.StatusBadRequest,
		Success:     false,
		Message:     message,
		Status:      "BAD_REQUEST",
		Description: description,
	}
}

func ResourceNotFound(message, description string) ErrorResponse {
	return ErrorResponse{
		StatusCode:  http.StatusNotFound,
		Success:     false,
		Message:     message,
		Status:      "NOT_FOUND",
		Description: description,
	}
}

func Unauthorized() ErrorResponse {
	return ErrorResponse{
		StatusCode: http.StatusUnauthorized,
		Success:    false,
		Message:    "No valid Auth Token",
		Status:     "UNAUTHORISED",
	}
}

func Forbidden(description string) ErrorResponse {
	return ErrorResponse{
		StatusCode:  http.StatusForbidden,
		Success:     false,
		Message:     "You are not allowed to do this",
		Status:      "FORBIDDEN",
		Description: description,
	}
}

func SomethingWrong() ErrorResponse {
	return ErrorResponse{
		StatusCode: http.StatusInternalServerError,
		Success:    false,
		Message:    "Sorry, Something went wrong",
		Status:     "SOMETHING_WRONG",
	}
}

func InvalidData(description string) ErrorResponse {
	return ErrorResponse{
		StatusCode:  http.StatusBadRequest,
		Success:     false,
		Message:     "Invalid data passed",
		Status:      "INVALID_DATA",
		Description: description,
	}
}

func Unprocessable(description string) ErrorResponse {
	return ErrorResponse{
		StatusCode:  http.StatusUnprocessableEntity,
		Success:     false,
		Message:     "Could not process this request",
		Status:      "UNPROCESSABLE",
		Description: description,
	}
}

func EventNotFound() ErrorResponse {
	return ErrorResponse{
		StatusCode: http.StatusNotFound,
		Success:    false,
		Message:    "Event not found",
		Status:     "EVENT_NOT_FOUND",
	}
}

func AlreadyRegistered() ErrorResponse {
	return ErrorResponse{
		StatusCode: http.StatusConflict,
		Success:    false,
		Message:    "You are already registered for this event",
		Status:     "ALREADY_REGISTERED",
	}
}

func SoldOut() ErrorResponse {
	return ErrorResponse{
		StatusCode: http.StatusConflict,
		Success:    false,
		Message:    "Event is fully booked. No more seats available",
		Status:     "SOLD_OUT",
	}
}

func TicketNotFound() ErrorResponse {
	return ErrorResponse{
		StatusCode: http.StatusNotFound,
		Success:    false,
		Message:    "Ticket not found",
		Status:     "TICKET_NOT_FOUND",
	}
}

func TicketUsed() ErrorResponse {
	return ErrorResponse{
		StatusCode: http.StatusConflict,
		Success:    false,
		Message:    "Ticket already used",
		Status:     "TICKET_USED",
	}
}

func BookingNotFound() ErrorResponse {
	return ErrorResponse{
		StatusCode: http.StatusNotFound,
		Success:    false,
		Message:    "Booking not found",
		Status:     "BOOKING_NOT_FOUND",
	}
}

func CancelNotAllowed() ErrorResponse {
	return ErrorResponse{
		StatusCode: http.StatusConflict,
		Success:    false,
		Message:    "A paid booking cannot be cancelled here",
		Status:     "CANCEL_NOT_ALLOWED",
	}
}

func NotAttendee() ErrorResponse {
	return ErrorResponse{
		StatusCode: http.StatusNotFound,
		Success:    false,
		Message:    "You did not attend this event",
		Status:     "NOT_ATTENDEE",
	}
}

func InvalidSignature(description string) ErrorResponse {
	return ErrorResponse{
		StatusCode:  http.StatusBadRequest,
		Success:     false,
		Message:     "Webhook signature verification failed",
		Status:      "INVALID_SIGNATURE",
		Description: description,
	}
}
