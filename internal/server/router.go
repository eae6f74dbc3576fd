package server

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/mfsit/stunden/internal/auth"
	"github.com/mfsit/stunden/internal/handlers"
	"github.com/mfsit/stunden/internal/httpx"
	"github.com/mfsit/stunden/internal/models"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB) http.Handler {
	mux := http.NewServeMux()

	// Configure a user verifier so RequireAuth can ensure the user still exists.
	auth.SetUserVerifier(func(_ context.Context, uid uint) bool {
		var count int64
		if err := db.Model(&models.User{}).Where("id = ?", uid).Limit(1).Count(&count).Error; err != nil {
			return false
		}
		return count > 0
	})

	mux.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		if err := db.Exec("SELECT 1").Error; err != nil {
			httpx.JSON(w, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
			return
		}
		httpx.JSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	ah := handlers.NewAuthHandler(db)
	mux.HandleFunc("/login", ah.Login)
	mux.HandleFunc("/logout", ah.Logout)

	protected := func(h http.HandlerFunc) http.Handler {
		return auth.RequireAuth(h)
	}
	listCreate := func(list, create http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				list(w, r)
			case http.MethodPost:
				create(w, r)
			default:
				w.Header().Set("Allow", "GET,POST")
				httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
			}
		}
	}

	eh := handlers.NewEntryHandler(db)
	mux.Handle("/entries", protected(listCreate(eh.List, eh.Create)))
	mux.Handle("/entries/update", protected(eh.Update))
	mux.Handle("/entries/delete", protected(eh.Delete))
	mux.Handle("/entries/mark-paid", protected(eh.MarkPaid))

	ch := handlers.NewClientHandler(db)
	mux.Handle("/clients", protected(listCreate(ch.List, ch.Create)))
	mux.Handle("/clients/update", protected(ch.Update))
	mux.Handle("/clients/delete", protected(ch.Delete))

	emh := handlers.NewEmployeeHandler(db)
	mux.Handle("/employees", protected(listCreate(emh.List, emh.Create)))
	mux.Handle("/employees/update", protected(emh.Update))
	mux.Handle("/employees/delete", protected(emh.Delete))

	sh := handlers.NewSettingsHandler(db)
	mux.Handle("/settings/tax", protected(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			sh.GetTax(w, r)
			return
		}
		sh.PutTax(w, r)
	}))

	ih := handlers.NewInvoiceHandler(db)
	mux.Handle("/invoice", protected(ih.Generate))
	mux.Handle("/invoice/summary", protected(ih.GenerateSummary))
	mux.Handle("/invoice/form", protected(ih.Form))
	mux.Handle("/invoice/numbers", protected(ih.Numbers))

	xh := handlers.NewExportHandler(db)
	mux.Handle("/export", protected(xh.Export))
	mux.Handle("/import", protected(xh.Import))

	return auth.Middleware(withRecover(withLogging(mux)))
}

func withLogging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		log.Debug().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Dur("duration", time.Since(start)).
			Msg("request")
	})
}

func withRecover(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer func() {
			if rec := recover(); rec != nil {
				log.Error().Interface("panic", rec).Str("path", r.URL.Path).Msg("handler panic")
				httpx.JSONError(w, http.StatusInternalServerError, "internal_error", nil)
			}
		}()
		next.ServeHTTP(w, r)
	})
}
