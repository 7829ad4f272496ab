package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	apperrors "github.com/jeffrin-samuel/RoyalRetreats-FullStack/errors"
	application "github.com/jeffrin-samuel/RoyalRetreats-FullStack/service"
)

type BookingHandler struct {
	service *application.BookingService
	tracer  trace.Tracer
}

func NewBookingHandler(service *application.BookingService, tracer trace.Tracer) *BookingHandler {
	return &BookingHandler{
		service: service,
		tracer:  tracer,
	}
}

func (handler *BookingHandler) Init(router *mux.Router, guards *Guards) {
	// verify-payment must be registered before the parameterized book route
	// so mux never tries to read "verify-payment" as a listing id.
	router.Handle("/listings/verify-payment", guards.RequireLogin(http.HandlerFunc(handler.VerifyPayment))).Methods("POST")
	router.Handle("/listings/{id}/book", guards.RequireLogin(guards.RequireNotListingOwner(http.HandlerFunc(handler.CreateOrder)))).Methods("POST")
}

func (handler *BookingHandler) CreateOrder(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "BookingHandler.CreateOrder")
	defer span.End()

	listingID, err := primitive.ObjectIDFromHex(mux.Vars(req)["id"])
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		badRequest(writer, apperrors.InvalidRequestFormat)
		return
	}

	var orderReq application.OrderRequest
	if err := json.NewDecoder(req.Body).Decode(&orderReq); err != nil {
		span.SetStatus(codes.Error, err.Error())
		badRequest(writer, apperrors.InvalidRequestFormat)
		return
	}

	order, err := handler.service.CreateOrder(ctx, listingID, orderReq)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		errorResponse(writer, err)
		return
	}

	jsonResponse(order, writer)
}

func (handler *BookingHandler) VerifyPayment(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "BookingHandler.VerifyPayment")
	defer span.End()

	userID, ok := callerID(writer, req)
	if !ok {
		return
	}

	var verifyReq application.VerifyPaymentRequest
	if err := json.NewDecoder(req.Body).Decode(&verifyReq); err != nil {
		span.SetStatus(codes.Error, err.Error())
		badRequest(writer, apperrors.InvalidRequestFormat)
		return
	}

	result, err := handler.service.VerifyPayment(ctx, userID, verifyReq)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		errorResponse(writer, err)
		return
	}

	if !result.Success {
		writer.WriteHeader(http.StatusBadRequest)
	}
	jsonResponse(result, writer)
}
