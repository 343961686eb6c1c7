package handlers

import (
	"Stockpile/internal/auth"
	"Stockpile/internal/config"
	"Stockpile/internal/metrics"
	"Stockpile/internal/middleware"
	"Stockpile/internal/service"
	"Stockpile/internal/upload"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/cors"
	"go.uber.org/zap"
)

type Handler struct {
	Router chi.Router
}

// NewHandler разводящий для хендлеров
func NewHandler(
	userService *service.UserService,
	itemService *service.ItemService,
	tokens *auth.TokenManager,
	m *metrics.Metrics,
	logger *zap.SugaredLogger,
	config *config.Config,
) *Handler {
	r := chi.NewRouter()

	r.Use(cors.New(cors.Options{
		AllowedOrigins: config.CORSOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"Content-Type", "Authorization"},
	}).Handler)
	r.Use(middleware.WithMetrics(m))
	r.Use(middleware.WithGzip)
	r.Use(middleware.WithLogging)

	// Handlers
	userHandler := NewUserHandler(userService, tokens, logger)
	itemHandler := NewItemHandler(itemService, upload.NewValidator(config.ImageMaxBytes()), logger)

	// User routes
	r.Post("/user/register", userHandler.Register)
	r.Post("/user/login", userHandler.Login)

	// Item routes — только с bearer-токеном
	r.Route("/item", func(r chi.Router) {
		r.Use(middleware.RequireAuth(tokens))
		r.Post("/", itemHandler.Create)
		r.Get("/", itemHandler.List)
		r.Put("/{id}", itemHandler.Update)
		r.Delete("/{id}", itemHandler.Delete)
	})

	if m != nil {
		r.Handle("/metrics", m.Handler())
	}

	return &Handler{Router: r}
}
