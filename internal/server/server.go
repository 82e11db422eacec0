// Package server provides HTTP server initialization and lifecycle management
// for the Kinfolk web API.
package server

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net"
	"net/http"
	"time"

	"github.com/scrypster/kinfolk/internal/config"
	"github.com/scrypster/kinfolk/internal/notify"
	"github.com/scrypster/kinfolk/internal/storage"
	"github.com/scrypster/kinfolk/web/handlers"
)

// dbGetter interface for stores that expose their database connection
type dbGetter interface {
	GetDB() *sql.DB
}

// securityHeadersMiddleware adds security headers to all HTTP responses.
func securityHeadersMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		next.ServeHTTP(w, r)
	})
}

// Start initializes and starts the HTTP server.
// Returns the actual address being listened on (useful for testing with port 0)
// and the WebSocketHub for wiring event broadcasts.
func Start(ctx context.Context, cfg *config.Config, store storage.Store) (string, *handlers.WebSocketHub) {
	mux := http.NewServeMux()

	// Create WebSocket hub
	wsHub := handlers.NewWebSocketHub()
	go wsHub.Run()

	// Create rate limiter (10 req/sec, burst of 20)
	rateLimiter := handlers.NewRateLimiter(10.0, 20)

	// Webhook notifier; a nil notifier (no URL configured) drops events.
	webhookTimeout, err := time.ParseDuration(cfg.Notify.WebhookTimeout)
	if err != nil {
		webhookTimeout = 10 * time.Second
	}
	notifier := notify.NewNotifier(cfg.Notify.WebhookURL, webhookTimeout)

	// Create API handlers. The settings-backed user config endpoints need a
	// database connection; only the SQLite store exposes one.
	var apiHandlers *handlers.APIHandlers
	if dbStore, ok := store.(dbGetter); ok {
		apiHandlers = handlers.NewAPIHandlersWithDB(store, cfg, dbStore.GetDB())
	} else {
		apiHandlers = handlers.NewAPIHandlers(store, cfg)
	}
	apiHandlers.SetHub(wsHub)

	kinshipHandlers := handlers.NewKinshipHandlers(store, cfg, wsHub, notifier)
	importHandlers := handlers.NewImportHandlers(store, wsHub, notifier)

	// API routes (require auth in production mode)
	apiMux := http.NewServeMux()
	apiMux.HandleFunc("/api/people", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			apiHandlers.ListPeople(w, r)
		case http.MethodPost:
			apiHandlers.CreatePerson(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("/api/people/{id}", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			apiHandlers.GetPerson(w, r)
		case http.MethodPatch:
			apiHandlers.UpdatePerson(w, r)
		case http.MethodDelete:
			apiHandlers.DeletePerson(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("/api/relationships", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			apiHandlers.ListRelationships(w, r)
		case http.MethodPost:
			apiHandlers.CreateRelationship(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("/api/relationships/{id}", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodDelete {
			apiHandlers.DeleteRelationship(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Kinship query engine routes
	apiMux.HandleFunc("/api/paths", kinshipHandlers.FindPaths)
	apiMux.HandleFunc("/api/relatives", kinshipHandlers.QueryRelatives)
	apiMux.HandleFunc("/api/infer", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			kinshipHandlers.RunInference(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("/api/validate", kinshipHandlers.RunValidation)

	// Import and export routes
	apiMux.HandleFunc("/api/import/csv", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			importHandlers.PostCSVImport(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("/api/import/notes", func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			importHandlers.PostNotesImport(w, r)
		} else {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})
	apiMux.HandleFunc("/api/export/csv", importHandlers.GetCSVExport)

	// User configuration routes
	apiMux.HandleFunc("/api/config/user", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			apiHandlers.GetUserConfig(w, r)
		case http.MethodPost:
			apiHandlers.PostUserConfig(w, r)
		default:
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		}
	})

	// Health endpoint — no auth required, used by monitoring
	mux.HandleFunc("/api/health", func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodGet {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		fmt.Fprintf(w, `{"status":"healthy","version":"1.0.0","webhook_breaker":%q}`,
			notifier.BreakerState())
	})

	// Wrap API routes with auth middleware
	mux.Handle("/api/", handlers.RequireAuth(apiMux, cfg))

	// WebSocket endpoint (no auth required - origin validation handles security)
	mux.Handle("/ws", wsHub)

	// Wrap entire server with rate limiting, then security headers
	handler := handlers.RateLimitMiddleware(mux, rateLimiter)
	handler = securityHeadersMiddleware(handler)

	// Create server with security timeouts
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	server := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		log.Fatalf("Failed to listen on %s: %v", addr, err)
	}

	actualAddr := listener.Addr().String()

	go func() {
		if err := server.Serve(listener); err != nil && err != http.ErrServerClosed {
			log.Printf("Server error: %v", err)
		}
	}()

	// Handle graceful shutdown
	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Printf("Server shutdown error: %v", err)
		}
		wsHub.Stop()
	}()

	return actualAddr, wsHub
}
