package handlers

import (
	"io"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/jeffrin-samuel/RoyalRetreats-FullStack/authorization"
	"github.com/jeffrin-samuel/RoyalRetreats-FullStack/domain"
	apperrors "github.com/jeffrin-samuel/RoyalRetreats-FullStack/errors"
	application "github.com/jeffrin-samuel/RoyalRetreats-FullStack/service"
	"github.com/jeffrin-samuel/RoyalRetreats-FullStack/storage"
)

const maxImageFormSize = 10 << 20

type ListingHandler struct {
	service  *application.ListingService
	uploader storage.Uploader
	tokens   *authorization.TokenManager
	tracer   trace.Tracer
}

func NewListingHandler(service *application.ListingService, uploader storage.Uploader, tokens *authorization.TokenManager, tracer trace.Tracer) *ListingHandler {
	return &ListingHandler{
		service:  service,
		uploader: uploader,
		tokens:   tokens,
		tracer:   tracer,
	}
}

func (handler *ListingHandler) Init(router *mux.Router, guards *Guards) {
	router.HandleFunc("/listings", handler.Search).Methods("GET")
	router.Handle("/listings", guards.RequireLogin(http.HandlerFunc(handler.Create))).Methods("POST")
	router.HandleFunc("/listings/{id}", handler.Get).Methods("GET")
	router.Handle("/listings/{id}", guards.RequireLogin(guards.RequireListingOwner(http.HandlerFunc(handler.Update)))).Methods("PUT")
	router.Handle("/listings/{id}", guards.RequireLogin(guards.RequireListingOwner(http.HandlerFunc(handler.Delete)))).Methods("DELETE")
}

func (handler *ListingHandler) Search(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ListingHandler.Search")
	defer span.End()

	query := req.URL.Query()
	listings, err := handler.service.Search(ctx, query.Get("query"), query.Get("category"), query.Get("price"))
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		errorResponse(writer, err)
		return
	}

	jsonResponse(listings, writer)
}

// Get is public, but a valid bearer token upgrades the response with the
// caller's booking state for this listing.
func (handler *ListingHandler) Get(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ListingHandler.Get")
	defer span.End()

	id, err := primitive.ObjectIDFromHex(mux.Vars(req)["id"])
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		badRequest(writer, apperrors.InvalidRequestFormat)
		return
	}

	var currentUser *primitive.ObjectID
	if raw, ok := authorization.ExtractBearer(req.Header.Get("Authorization")); ok {
		if claims, err := handler.tokens.Verify(raw); err == nil {
			if userID, err := primitive.ObjectIDFromHex(claims.UserID); err == nil {
				currentUser = &userID
			}
		}
	}

	listing, err := handler.service.Get(ctx, id, currentUser)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		errorResponse(writer, err)
		return
	}

	jsonResponse(listing, writer)
}

func (handler *ListingHandler) Create(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ListingHandler.Create")
	defer span.End()

	owner, ok := callerID(writer, req)
	if !ok {
		return
	}

	payload, file, err := parseListingForm(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		errorResponse(writer, err)
		return
	}
	if file == nil {
		errorResponse(writer, &domain.ValidationError{Fields: []domain.FieldError{{
			Field:   "image",
			Message: "image is required",
		}}})
		return
	}

	image, err := handler.uploader.UploadImage(ctx, file.name, file.content)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		errorResponse(writer, err)
		return
	}

	listing, err := handler.service.Create(ctx, owner, payload, *image)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		errorResponse(writer, err)
		return
	}

	writer.WriteHeader(http.StatusCreated)
	jsonResponse(listing, writer)
}

// Update goes through the owner guard; a request without a new image keeps
// the stored one.
func (handler *ListingHandler) Update(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ListingHandler.Update")
	defer span.End()

	id, err := primitive.ObjectIDFromHex(mux.Vars(req)["id"])
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		badRequest(writer, apperrors.InvalidRequestFormat)
		return
	}

	payload, file, err := parseListingForm(req)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		errorResponse(writer, err)
		return
	}

	var image *domain.Image
	if file != nil {
		image, err = handler.uploader.UploadImage(ctx, file.name, file.content)
		if err != nil {
			span.SetStatus(codes.Error, err.Error())
			errorResponse(writer, err)
			return
		}
	}

	listing, err := handler.service.Update(ctx, id, payload, image)
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		errorResponse(writer, err)
		return
	}

	jsonResponse(listing, writer)
}

func (handler *ListingHandler) Delete(writer http.ResponseWriter, req *http.Request) {
	ctx, span := handler.tracer.Start(req.Context(), "ListingHandler.Delete")
	defer span.End()

	id, err := primitive.ObjectIDFromHex(mux.Vars(req)["id"])
	if err != nil {
		span.SetStatus(codes.Error, err.Error())
		badRequest(writer, apperrors.InvalidRequestFormat)
		return
	}

	if err := handler.service.Delete(ctx, id); err != nil {
		span.SetStatus(codes.Error, err.Error())
		errorResponse(writer, err)
		return
	}

	jsonResponse(map[string]string{"message": "Listing Deleted!"}, writer)
}

type formFile struct {
	name    string
	content []byte
}

// parseListingForm reads the multipart listing form. The image part is
// optional at this level; Create enforces its presence, Update does not.
func parseListingForm(req *http.Request) (domain.ListingPayload, *formFile, error) {
	if err := req.ParseMultipartForm(maxImageFormSize); err != nil {
		return domain.ListingPayload{}, nil, &domain.ValidationError{Fields: []domain.FieldError{{
			Field:   "form",
			Message: apperrors.InvalidRequestFormat,
		}}}
	}

	payload := domain.ListingPayload{
		Title:       req.FormValue("title"),
		Description: req.FormValue("description"),
		Location:    req.FormValue("location"),
		Country:     req.FormValue("country"),
		Category:    req.FormValue("category"),
	}

	if rawPrice := req.FormValue("price"); rawPrice != "" {
		price, err := strconv.ParseFloat(rawPrice, 64)
		if err != nil {
			return domain.ListingPayload{}, nil, &domain.ValidationError{Fields: []domain.FieldError{{
				Field:   "price",
				Message: "price must be a number",
			}}}
		}
		payload.Price = price
	}

	part, header, err := req.FormFile("image")
	if err == http.ErrMissingFile {
		return payload, nil, nil
	}
	if err != nil {
		return domain.ListingPayload{}, nil, err
	}
	defer part.Close()

	content, err := io.ReadAll(part)
	if err != nil {
		return domain.ListingPayload{}, nil, err
	}

	return payload, &formFile{name: header.Filename, content: content}, nil
}
