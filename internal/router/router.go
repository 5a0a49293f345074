package router

import (
	"net/http"

	"goldrush-game-api/internal/handler"
	"goldrush-game-api/internal/middleware"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
)

// Config holds the configuration for creating a router.
type Config struct {
	Handler            *handler.Handler
	PlayerHandler      *handler.PlayerHandler
	ClickHandler       *handler.ClickHandler
	ShopHandler        *handler.ShopHandler
	AuctionHandler     *handler.AuctionHandler
	LeaderboardHandler *handler.LeaderboardHandler
	AdminHandler       *handler.AdminHandler
	WSHandler          http.HandlerFunc
	AdminMiddleware    func(http.Handler) http.Handler
}

// New creates and configures the HTTP router.
func New(cfg Config) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware stack (applies to ALL routes)
	r.Use(middleware.Recovery)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logging)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID", "X-Admin-Pass"},
		ExposedHeaders:   []string{"X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health and monitoring
	if cfg.Handler != nil {
		r.Get("/api/status", cfg.Handler.Status)
		r.Get("/api/v1/health", cfg.Handler.Health)
		r.Get("/api/v1/ready", cfg.Handler.Ready)
	}

	// Static files (game page and admin dashboard)
	fileServer := http.FileServer(http.Dir("./static"))
	r.Handle("/static/*", http.StripPrefix("/static/", fileServer))
	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		http.Redirect(w, r, "/static/index.html", http.StatusMovedPermanently)
	})
	// Notification socket
	if cfg.WSHandler != nil {
		r.Get("/ws", cfg.WSHandler)
	}

	// Game API
	r.Route("/api", func(r chi.Router) {
		if cfg.PlayerHandler != nil {
			r.Route("/player", func(r chi.Router) {
				r.Post("/login", cfg.PlayerHandler.Login)
				r.Post("/logout", cfg.PlayerHandler.Logout)
				r.Get("/{player_id}", cfg.PlayerHandler.Profile)
			})
		}

		if cfg.ClickHandler != nil {
			r.Post("/click/{player_id}", cfg.ClickHandler.Click)
		}

		if cfg.ShopHandler != nil {
			r.Route("/shop", func(r chi.Router) {
				r.Get("/items", cfg.ShopHandler.ListItems)
				r.Post("/buy", cfg.ShopHandler.Buy)
			})
		}

		if cfg.AuctionHandler != nil {
			r.Route("/auction", func(r chi.Router) {
				r.Post("/create", cfg.AuctionHandler.Create)
				r.Get("/list", cfg.AuctionHandler.List)
				r.Post("/bid", cfg.AuctionHandler.Bid)
				r.Post("/buy/{auction_id}", cfg.AuctionHandler.Buyout)
			})
		}

		if cfg.LeaderboardHandler != nil {
			r.Get("/leaderboard/{board}", cfg.LeaderboardHandler.TopN)
		}
	})

	// Admin endpoints (X-Admin-Pass required)
	if cfg.AdminHandler != nil {
		r.Group(func(r chi.Router) {
			if cfg.AdminMiddleware != nil {
				r.Use(cfg.AdminMiddleware)
			}

			r.Route("/admin", func(r chi.Router) {
				r.Get("/config", cfg.AdminHandler.GetConfig)
				r.Post("/set_cooldown", cfg.AdminHandler.SetCooldown)
				r.Post("/set_rate_limit", cfg.AdminHandler.SetRateLimit)
				r.Get("/stats", cfg.AdminHandler.GetStats)
			})
		})
	}

	return r
}
