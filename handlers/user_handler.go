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

type UserHandler struct {
	service *application.UserService
	tracer  trace.Tracer
}

func NewUserHandler(service *application.UserService, tracer trace.Tracer) *UserHandler {
	return &UserHandler{
		service: service,
		tracer:  tracer,
	}
}

func (handler *UserHandler) Init(router *mux.Router, guards *Guards) {
	router.Handle("/listings/{id}/wishlists", guards.RequireLogin(guards.RequireNotListingOwner(http.HandlerFunc(handler.ToggleWishlist)))).Methods("POST")
	router.Handle("/wishlists", guards.RequireLogin(http.HandlerFunc(handler.GetWishlist))).Methods("GET")
	router.Handle("/booked-trips", guards.RequireLogin(http.HandlerFunc(handler.GetTrips))).Methods("GET")
	router.Handle("/profile", guards.RequireLogin(http.HandlerFunc(handler.UpdateProfile))).Methods("PUT")
}

func (handler *UserHandler) ToggleWishlist(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "UserHandler.ToggleWishlist")
	defer span.End()

	userID, ok := callerID(writer, req)
	if !ok {
		return
	}

	listingID, err := primitive.ObjectIDFromHex(mux.Vars(req)["id"])
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		badRequest(writer, apperrors.InvalidRequestFormat)
		return
	}

	added, err := handler.service.ToggleWishlist(ctx, userID, listingID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		errorResponse(writer, err)
		return
	}

	message := "Removed from your wishlist!"
	if added {
		message = "Added to your wishlist!"
	}
	jsonResponse(map[string]interface{}{"added": added, "message": message}, writer)
}

func (handler *UserHandler) GetWishlist(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "UserHandler.GetWishlist")
	defer span.End()

	userID, ok := callerID(writer, req)
	if !ok {
		return
	}

	listings, err := handler.service.GetWishlist(ctx, userID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		errorResponse(writer, err)
		return
	}

	jsonResponse(listings, writer)
}

func (handler *UserHandler) GetTrips(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "UserHandler.GetTrips")
	defer span.End()

	userID, ok := callerID(writer, req)
	if !ok {
		return
	}

	trips, err := handler.service.GetTrips(ctx, userID)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		errorResponse(writer, err)
		return
	}

	jsonResponse(trips, writer)
}

func (handler *UserHandler) UpdateProfile(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "UserHandler.UpdateProfile")
	defer span.End()

	userID, ok := callerID(writer, req)
	if !ok {
		return
	}

	var payload domain.ProfilePayload
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		span.SetStatus(codes.Error, err.Error())
		badRequest(writer, apperrors.InvalidRequestFormat)
		return
	}

	if err := handler.service.UpdateProfile(ctx, userID, payload); err != nil {
		span.SetStatus(codes.Error, err.Error())
		errorResponse(writer, err)
		return
	}

	jsonResponse(map[string]string{"message": "Profile updated!"}, writer)
}

// callerID pulls the authenticated user's ObjectID out of the request. The
// bool reports whether the caller can proceed; a response is written when
// it cannot.
func callerID(writer http.ResponseWriter, req *http.Request) (primitive.ObjectID, bool) {
	claims, ok := ClaimsFromContext(req.Context())
	if !ok {
		errorResponse(writer, apperrors.New(apperrors.ErrUnauthorized, apperrors.LoginRequired))
		return primitive.NilObjectID, false
	}

	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		badRequest(writer, apperrors.InvalidRequestFormat)
		return primitive.NilObjectID, false
	}
	return userID, true
}
