package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jeffrin-samuel/RoyalRetreats-FullStack/domain"
	apperrors "github.com/jeffrin-samuel/RoyalRetreats-FullStack/errors"
	application "github.com/jeffrin-samuel/RoyalRetreats-FullStack/service"
)

type ReviewHandler struct {
	service *application.ReviewService
	tracer  trace.Tracer
}

func NewReviewHandler(service *application.ReviewService, tracer trace.Tracer) *ReviewHandler {
	return &ReviewHandler{
		service: service,
		tracer:  tracer,
	}
}

func (handler *ReviewHandler) Init(router *mux.Router, guards *Guards) {
	router.Handle("/listings/{id}/reviews", guards.RequireLogin(http.HandlerFunc(handler.Create))).Methods("POST")
	router.Handle("/listings/{id}/reviews/{reviewId}", guards.RequireLogin(guards.RequireReviewAuthor(http.HandlerFunc(handler.Delete)))).Methods("DELETE")
}

func (handler *ReviewHandler) Create(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ReviewHandler.Create")
	defer span.End()

	author, ok := callerID(writer, req)
	if !ok {
		return
	}

	listingID, err := primitive.ObjectIDFromHex(mux.Vars(req)["id"])
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		badRequest(writer, apperrors.InvalidRequestFormat)
		return
	}

	var payload domain.ReviewPayload
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		span.SetStatus(codes.Error, err.Error())
		badRequest(writer, apperrors.InvalidRequestFormat)
		return
	}

	review, err := handler.service.Create(ctx, listingID, author, payload)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		errorResponse(writer, err)
		return
	}

	writer.WriteHeader(http.StatusCreated)
	jsonResponse(review, writer)
}

func (handler *ReviewHandler) Delete(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ReviewHandler.Delete")
	defer span.End()

	vars := mux.Vars(req)
	listingID, err := primitive.ObjectIDFromHex(vars["id"])
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		badRequest(writer, apperrors.InvalidRequestFormat)
		return
	}
	reviewID, err := primitive.ObjectIDFromHex(vars["reviewId"])
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		badRequest(writer, apperrors.InvalidRequestFormat)
		return
	}

	if err := handler.service.Delete(ctx, listingID, reviewID); err != nil {
		span.SetStatus(codes.Error, err.Error())
		errorResponse(writer, err)
		return
	}

	jsonResponse(map[string]string{"message": "Review Deleted!"}, writer)
}
