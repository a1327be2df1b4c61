package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"

	"github.com/pribylovaa/blog-service/internal/service"
	"github.com/pribylovaa/blog-service/internal/transport/http/handlers"
	"github.com/pribylovaa/blog-service/internal/transport/http/middleware"
)

// Options — параметры сборки HTTP-роутера.
type Options struct {
	Logger         *slog.Logger
	Timeout        time.Duration
	AllowedOrigins []string
	// Metrics — сбор метрик запросов; nil отключает.
	Metrics *middleware.Metrics
}

// NewRouter собирает http.Handler с chi и подключёнными middleware/роутами.
func NewRouter(svc *service.Service, opts Options) http.Handler {
	root := chi.NewRouter()

	// Middleware (внешний -> внутренний).
	root.Use(
		middleware.Recover(),
		middleware.RequestID(),
		middleware.Logging(opts.Logger),
	)
	if opts.Metrics != nil {
		root.Use(opts.Metrics.Handler())
	}
	root.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodOptions},
		AllowedHeaders: []string{"Authorization", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"X-Request-Id"},
		MaxAge:         300,
	}))
	if opts.Timeout > 0 {
		root.Use(middleware.Timeout(opts.Timeout))
	}

	registerRoutes(root, handlers.New(svc), svc)

	return root
}

// registerRoutes — единая точка регистрации всех REST-эндпойнтов.
func registerRoutes(r chi.Router, h *handlers.Handlers, v middleware.TokenValidator) {
	// auth
	r.Post("/signup", h.SignUp)
	r.Post("/signin", h.SignIn)
	r.Post("/google-auth", h.GoogleAuth)

	// uploads
	r.Get("/get-upload-url", h.UploadURL)

	// blogs
	r.Post("/latest-blogs", h.LatestBlogs)
	r.Post("/all-latest-blogs-count", h.LatestBlogsCount)
	r.Get("/trending-blogs", h.TrendingBlogs)
	r.Post("/search-blogs", h.SearchBlogs)
	r.Post("/search-blogs-count", h.SearchBlogsCount)
	r.With(middleware.OptionalAuth(v)).Post("/get-blog", h.GetBlog)

	// users
	r.Post("/search-users", h.SearchUsers)
	r.Post("/get-profile", h.Profile)

	// comments
	r.Post("/get-blog-comments", h.BlogComments)
	r.Post("/get-replies", h.Replies)

	r.Group(func(r chi.Router) {
		r.Use(middleware.RequireAuth(v))

		r.Post("/change-password", h.ChangePassword)
		r.Post("/update-profile-img", h.UpdateProfileImg)
		r.Post("/update-profile", h.UpdateProfile)

		r.Post("/create-blog", h.CreateBlog)
		r.Post("/like-blog", h.LikeBlog)
		r.Post("/isliked-by-user", h.IsLikedByUser)
		r.Post("/user-written-blogs", h.UserWrittenBlogs)
		r.Post("/user-written-blogs-count", h.UserWrittenBlogsCount)
		r.Post("/delete-blog", h.DeleteBlog)

		r.Post("/add-comment", h.AddComment)
		r.Post("/delete-comment", h.DeleteComment)

		r.Get("/new-notification", h.NewNotification)
		r.Post("/notifications", h.Notifications)
		r.Post("/all-notifications-count", h.NotificationsCount)
	})
}
