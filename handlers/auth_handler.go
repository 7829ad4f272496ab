package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/gorilla/mux"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jeffrin-samuel/RoyalRetreats-FullStack/authorization"
	"github.com/jeffrin-samuel/RoyalRetreats-FullStack/domain"
	apperrors "github.com/jeffrin-samuel/RoyalRetreats-FullStack/errors"
	application "github.com/jeffrin-samuel/RoyalRetreats-FullStack/service"
)

type AuthHandler struct {
	service *application.AuthService
	tracer  trace.Tracer
}

func NewAuthHandler(service *application.AuthService, tracer trace.Tracer) *AuthHandler {
	return &AuthHandler{
		service: service,
		tracer:  tracer,
	}
}

func (handler *AuthHandler) Init(router *mux.Router) {
	router.HandleFunc("/signup", handler.Signup).Methods("POST")
	router.HandleFunc("/login", handler.Login).Methods("POST")
	router.HandleFunc("/logout", handler.Logout).Methods("GET")
	router.HandleFunc("/login/reset", handler.SendResetCode).Methods("POST")
	router.HandleFunc("/login/reset/verify", handler.VerifyResetCode).Methods("POST")
	router.HandleFunc("/login/reset/new", handler.ResetPassword).Methods("POST")
}

func (handler *AuthHandler) Signup(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "AuthHandler.Signup")
	defer span.End()

	var payload domain.SignupPayload
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		span.SetStatus(codes.Error, err.Error())
		badRequest(writer, apperrors.InvalidRequestFormat)
		return
	}

	user, err := handler.service.Signup(ctx, payload)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		errorResponse(writer, err)
		return
	}

	writer.WriteHeader(http.StatusCreated)
	jsonResponse(user, writer)
}

func (handler *AuthHandler) Login(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "AuthHandler.Login")
	defer span.End()

	var payload domain.LoginPayload
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		span.SetStatus(codes.Error, err.Error())
		badRequest(writer, apperrors.InvalidRequestFormat)
		return
	}

	token, err := handler.service.Login(ctx, payload)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		errorResponse(writer, err)
		return
	}

	jsonResponse(map[string]string{"token": token}, writer)
}

// Logout blocklists the presented token. A request without a token has
// nothing to invalidate and still gets a clean 200.
func (handler *AuthHandler) Logout(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "AuthHandler.Logout")
	defer span.End()

	raw, ok := authorization.ExtractBearer(req.Header.Get("Authorization"))
	if ok {
		if err := handler.service.Logout(ctx, raw); err != nil {
			span.SetStatus(codes.Error, err.Error())
			errorResponse(writer, err)
			return
		}
	}

	jsonResponse(map[string]string{"message": "Logged you out!"}, writer)
}

func (handler *AuthHandler) SendResetCode(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "AuthHandler.SendResetCode")
	defer span.End()

	var payload domain.ResetRequestPayload
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		span.SetStatus(codes.Error, err.Error())
		badRequest(writer, apperrors.InvalidRequestFormat)
		return
	}

	if err := handler.service.SendResetCode(ctx, payload); err != nil {
		span.SetStatus(codes.Error, err.Error())
		errorResponse(writer, err)
		return
	}

	jsonResponse(map[string]string{"message": "OTP sent to your email!"}, writer)
}

func (handler *AuthHandler) VerifyResetCode(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "AuthHandler.VerifyResetCode")
	defer span.End()

	var payload domain.ResetVerifyPayload
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		span.SetStatus(codes.Error, err.Error())
		badRequest(writer, apperrors.InvalidRequestFormat)
		return
	}

	if err := handler.service.VerifyResetCode(ctx, payload); err != nil {
		span.SetStatus(codes.Error, err.Error())
		errorResponse(writer, err)
		return
	}

	jsonResponse(map[string]string{"message": "OTP verified!"}, writer)
}

func (handler *AuthHandler) ResetPassword(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "AuthHandler.ResetPassword")
	defer span.End()

	var payload domain.ResetPasswordPayload
	if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
		span.SetStatus(codes.Error, err.Error())
		badRequest(writer, apperrors.InvalidRequestFormat)
		return
	}

	if err := handler.service.ResetPassword(ctx, payload); err != nil {
		span.SetStatus(codes.Error, err.Error())
		errorResponse(writer, err)
		return
	}

	jsonResponse(map[string]string{"message": "Password reset successful! Please log in."}, writer)
}
