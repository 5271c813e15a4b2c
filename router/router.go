package router

import (
	"context"
	"fmt"
	"net/http"
	"time"
	"ventro-backend/booking"
	"ventro-backend/config"
	"ventro-backend/factory"
	"ventro-backend/handler"
	"ventro-backend/healthcheck"
	"ventro-backend/mailer"
	"ventro-backend/middleware"
	"ventro-backend/payment"
	"ventro-backend/response"
	"ventro-backend/ticket"

	"github.com/gorilla/mux"
	"github.com/spf13/viper"
)

// Router returns the router for all the API handlers.
func Router(ctx context.Context) *mux.Router {
	r := mux.NewRouter()
	r.Use(middleware.SetCorrelationIDHeader)
	r.Use(middleware.PanicHandler)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		response.ResourceNotFound(fmt.Sprintf("The requested resource was not found: path: %s, method: %s", req.URL.Path, req.Method), "The requested resource was not found!").Send(req.Context(), w)
	})

	r.Use(middleware.ResponseTimeLogging)
	r.Use(middleware.RequestLogging)
	r.Use(middleware.SetContentTypeHeader)

	f := factory.NewFactory()

	gateway := payment.NewGateway(
		viper.GetString(config.StripeSecretKey),
		viper.GetString(config.Currency),
		viper.GetString(config.SuccessURL),
		viper.GetString(config.CancelURL),
	)

	var mail mailer.Sender
	if viper.GetString(config.MailerAPIKey) != "" {
		mail = mailer.NewSender(
			viper.GetString(config.MailerAPIKey),
			viper.GetString(config.MailerURL),
			viper.GetString(config.MailerFrom),
		)
	}

	ticketService := ticket.NewTicket()
	bookingService := booking.NewBooking(gateway, ticketService, mail, viper.GetString(config.SuccessURL))
	processor := payment.NewProcessor(ticketService, mail)

	r.HandleFunc("/healthcheck", healthcheck.Self).Methods(http.MethodGet)
	baseRouter := r.PathPrefix("/v1").Subrouter()

	// gateway callback authenticates with its signature, not a bearer token
	baseRouter.HandleFunc("/webhook", handler.Webhook(processor, f, viper.GetString(config.StripeWebhookKey))).Methods(http.MethodPost)

	securedRouter := baseRouter.PathPrefix("").Subrouter()
	securedRouter.Use(middleware.RateLimit(
		f.Redis(ctx),
		time.Duration(viper.GetInt(config.RateLimitWindow))*time.Second,
		viper.GetInt64(config.RateLimitMax),
	))
	securedRouter.Use(middleware.Authenticate(viper.GetString(config.Secret)))

	securedRouter.HandleFunc("/checkout", handler.Checkout(bookingService, f)).Methods(http.MethodPost)
	securedRouter.HandleFunc("/ticket", handler.MyTicket(ticketService, f)).Methods(http.MethodGet)
	securedRouter.HandleFunc("/ticket/scan/{eventID}/{token}", handler.ScanTicket(ticketService, f)).Methods(http.MethodGet)
	securedRouter.HandleFunc("/booking/{bookingID}", handler.CancelBooking(bookingService, f)).Methods(http.MethodDelete)
	securedRouter.HandleFunc("/booking/rating", handler.RateEvent(bookingService, f)).Methods(http.MethodPut)

	return r
}
