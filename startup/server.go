package startup

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/casbin/casbin"
	"github.com/gorilla/mux"
	"github.com/sirupsen/logrus"
	"go.mongodb.org/mongo-driver/mongo"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/jaeger"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.12.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/jeffrin-samuel/RoyalRetreats-FullStack/authorization"
	"github.com/jeffrin-samuel/RoyalRetreats-FullStack/casbinAuthorization"
	"github.com/jeffrin-samuel/RoyalRetreats-FullStack/domain"
	"github.com/jeffrin-samuel/RoyalRetreats-FullStack/handlers"
	"github.com/jeffrin-samuel/RoyalRetreats-FullStack/mail"
	"github.com/jeffrin-samuel/RoyalRetreats-FullStack/payments"
	application "github.com/jeffrin-samuel/RoyalRetreats-FullStack/service"
	"github.com/jeffrin-samuel/RoyalRetreats-FullStack/startup/config"
	"github.com/jeffrin-samuel/RoyalRetreats-FullStack/storage"
	"github.com/jeffrin-samuel/RoyalRetreats-FullStack/store"
)

const tokenLifetime = 24 * time.Hour

type Server struct {
	config *config.Config
	logger *logrus.Logger
}

func NewServer(config *config.Config) *Server {
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})

	return &Server{
		config: config,
		logger: logger,
	}
}

func (server *Server) initMongoClient(httpClient *http.Client) *mongo.Client {
	client, err := store.GetClientWithHTTPConfig(server.config.DBHost, server.config.DBPort, httpClient)
	if err != nil {
		log.Fatal(err)
	}
	return client
}

func (server *Server) initTokenCache(tracer trace.Tracer) domain.TokenCache {
	client, err := store.GetRedisClient(server.config.RedisHost, server.config.RedisPort)
	if err != nil {
		log.Fatal(err)
	}
	return store.NewTokenRedisCache(client, tracer)
}

func (server *Server) Start() {
	httpClient := &http.Client{
		Transport: &http.Transport{
			MaxIdleConns:        10,
			MaxIdleConnsPerHost: 10,
			MaxConnsPerHost:     10,
		},
	}

	ctx := context.Background()
	exp, err := newExporter(server.config.JaegerAddress)
	if err != nil {
		log.Fatalf("Failed to Initialize Exporter: %v", err)
	}

	tp := newTraceProvider(exp)
	defer func() { _ = tp.Shutdown(ctx) }()
	otel.SetTracerProvider(tp)
	tracer := tp.Tracer("royalretreats")

	mongoClient := server.initMongoClient(httpClient)
	defer func(mongoClient *mongo.Client, ctx context.Context) {
		if err := mongoClient.Disconnect(ctx); err != nil {
			server.logger.WithError(err).Error("Error disconnecting mongo client")
		}
	}(mongoClient, ctx)

	userStore, err := store.NewUserMongoDBStore(ctx, mongoClient, tracer)
	if err != nil {
		log.Fatalf("Failed to prepare user collection: %v", err)
	}
	listingStore := store.NewListingMongoDBStore(mongoClient, tracer)
	reviewStore := store.NewReviewMongoDBStore(mongoClient, tracer)
	tokenCache := server.initTokenCache(tracer)

	tokens, err := authorization.NewTokenManager(server.config.SecretKey, tokenLifetime)
	if err != nil {
		log.Fatal(err)
	}

	mailer := mail.NewMailer(server.config.SMTPHost, server.config.SMTPPort, server.config.SenderEmail, server.config.SenderPassword, server.logger)
	gateway := payments.NewRazorpayGateway(server.config.RazorpayKeyID, server.config.RazorpaySecret, server.logger, tracer)
	uploader := storage.New(server.config.CloudinaryCloud, server.config.CloudinaryKey, server.config.CloudinarySecret, server.config.CloudinaryFolder, server.logger, tracer)

	authService := application.NewAuthService(userStore, tokens, tokenCache, mailer, server.logger, tracer)
	listingService := application.NewListingService(listingStore, reviewStore, userStore, server.logger, tracer)
	reviewService := application.NewReviewService(reviewStore, listingStore, server.logger, tracer)
	userService := application.NewUserService(userStore, listingStore, server.logger, tracer)
	bookingService := application.NewBookingService(userStore, listingStore, gateway, mailer, server.config.RazorpaySecret, server.logger, tracer)

	guards := handlers.NewGuards(tokens, tokenCache, listingStore, reviewStore, server.logger)

	authHandler := handlers.NewAuthHandler(authService, tracer)
	listingHandler := handlers.NewListingHandler(listingService, uploader, tokens, tracer)
	reviewHandler := handlers.NewReviewHandler(reviewService, tracer)
	userHandler := handlers.NewUserHandler(userService, tracer)
	bookingHandler := handlers.NewBookingHandler(bookingService, tracer)

	enforcer, err := casbin.NewEnforcerSafe("./rbac_model.conf", "./policy.csv")
	if err != nil {
		log.Fatal(err)
	}

	router := mux.NewRouter()
	router.Use(MiddlewareContentTypeSet)
	router.Use(handlers.ExtractTraceInfoMiddleware)

	authHandler.Init(router)
	bookingHandler.Init(router, guards)
	userHandler.Init(router, guards)
	reviewHandler.Init(router, guards)
	listingHandler.Init(router, guards)

	server.start(casbinAuthorization.CasbinMiddleware(enforcer)(router))
}

func (server *Server) start(handler http.Handler) {
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%s", server.config.Port),
		Handler: handler,
	}

	wait := time.Second * 15
	go func() {
		if err := srv.ListenAndServe(); err != nil {
			log.Println(err)
		}
	}()

	c := make(chan os.Signal, 1)

	signal.Notify(c, os.Interrupt)
	signal.Notify(c, syscall.SIGTERM)

	<-c

	ctx, cancel := context.WithTimeout(context.Background(), wait)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Error Shutting Down Server %s", err)
	}
	log.Println("Server Gracefully Stopped")
}

func newExporter(address string) (*jaeger.Exporter, error) {
	exp, err := jaeger.New(jaeger.WithCollectorEndpoint(jaeger.WithEndpoint(address)))
	if err != nil {
		return nil, err
	}
	return exp, nil
}

func newTraceProvider(exp sdktrace.SpanExporter) *sdktrace.TracerProvider {
	r, err := resource.Merge(
		resource.Default(),
		resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceNameKey.String("royalretreats"),
		),
	)

	if err != nil {
		panic(err)
	}

	return sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(r),
	)
}

func MiddlewareContentTypeSet(next http.Handler) http.Handler {
	return http.HandlerFunc(func(rw http.ResponseWriter, h *http.Request) {
		rw.Header().Add("Content-Type", "application/json")
		rw.Header().Set("X-Content-Type-Options", "nosniff")
		rw.Header().Set("X-Frame-Options", "DENY")

		next.ServeHTTP(rw, h)
	})
}
