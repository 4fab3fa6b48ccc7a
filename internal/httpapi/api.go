// Package httpapi is the HTTP surface: routing, auth extraction, request
// envelopes and the mapping from domain errors to statuses. All data
// semantics live in the service layer.
package httpapi

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"skillbridge.org/internal/audit"
	"skillbridge.org/internal/auth"
	"skillbridge.org/internal/obs"
	"skillbridge.org/internal/service"
)

// Options tunes the middleware stack.
type Options struct {
	Version            string
	RateLimitPerSecond int
	RateLimitBurst     int
	// ReadyProbe reports backend health for /readyz. Nil means always ready.
	ReadyProbe func(context.Context) error
}

// API is the HTTP layer.
type API struct {
	router  chi.Router
	svc     *service.Services
	tokens  *auth.TokenService
	version string
	ready   func(context.Context) error
}

func New(svc *service.Services, tokens *auth.TokenService, opts Options) *API {
	a := &API{
		router:  chi.NewRouter(),
		svc:     svc,
		tokens:  tokens,
		version: opts.Version,
		ready:   opts.ReadyProbe,
	}

	r := a.router
	r.Use(RequestID)
	r.Use(Logging)
	r.Use(SecurityHeaders)
	r.Use(CORS)
	if opts.RateLimitPerSecond > 0 {
		r.Use(func(next http.Handler) http.Handler {
			return RateLimit(next, opts.RateLimitPerSecond, opts.RateLimitBurst)
		})
	}
	r.Use(func(next http.Handler) http.Handler {
		return MaxBodyBytes(next, 1<<20)
	})
	r.Use(a.withAuth)

	r.Get("/healthz", a.healthz)
	r.Get("/readyz", a.readyz)
	r.Handle("/metrics", obs.Handler())

	r.Route("/v1", func(r chi.Router) {
		r.Get("/info", a.info)
		r.Post("/auth/login", a.login)

		r.Route("/organizations", func(r chi.Router) {
			r.Post("/", a.registerOrganization)
			r.Get("/", a.listOrganizations)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", a.getOrganization)
				r.Patch("/", a.updateOrganization)
				r.Delete("/", a.deleteOrganization)
				r.Post("/approve", a.organizationTransition(lifecycleApprove))
				r.Post("/reject", a.organizationTransition(lifecycleReject))
				r.Post("/suspend", a.organizationTransition(lifecycleSuspend))
			})
		})

		r.Route("/batches", func(r chi.Router) {
			r.Post("/", a.createBatch)
			r.Get("/", a.listBatches)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", a.getBatch)
				r.Patch("/", a.updateBatch)
				r.Delete("/", a.deleteBatch)
				r.Post("/enroll", a.enrollStudent)
				r.Post("/start", a.batchTransition(lifecycleStart))
				r.Post("/complete", a.batchTransition(lifecycleComplete))
				r.Post("/cancel", a.batchTransition(lifecycleCancel))
			})
		})

		r.Route("/payments", func(r chi.Router) {
			r.Post("/", a.createPayment)
			r.Get("/", a.listPayments)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", a.getPayment)
				r.Delete("/", a.deletePayment)
				r.Post("/approve", a.paymentTransition(lifecycleApprove))
				r.Post("/reject", a.paymentTransition(lifecycleReject))
				r.Post("/mark-paid", a.paymentTransition(lifecycleMarkPaid))
			})
		})

		r.Route("/placements", func(r chi.Router) {
			r.Post("/", a.offerPlacement)
			r.Get("/", a.listPlacements)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", a.getPlacement)
				r.Delete("/", a.deletePlacement)
				r.Post("/accept", a.placementTransition(lifecycleAccept))
				r.Post("/reject", a.placementTransition(lifecycleReject))
				r.Post("/complete", a.placementTransition(lifecycleComplete))
				r.Post("/verify", a.placementVerification(lifecycleVerify))
				r.Post("/reject-verification", a.placementVerification(lifecycleReject))
			})
		})

		r.Route("/students", func(r chi.Router) {
			r.Post("/", a.createStudent)
			r.Get("/", a.listStudents)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", a.getStudent)
				r.Patch("/", a.updateStudent)
				r.Delete("/", a.deleteStudent)
			})
		})

		r.Route("/accounts", func(r chi.Router) {
			r.Post("/", a.createAccount)
			r.Get("/", a.listAccounts)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", a.getAccount)
				r.Delete("/", a.deleteAccount)
				r.Post("/activate", a.setAccountActive(true))
				r.Post("/deactivate", a.setAccountActive(false))
			})
		})
	})

	return a
}

// Handler returns the routable handler with metrics instrumentation on the
// outside so middleware time is measured too.
func (a *API) Handler() http.Handler {
	return obs.Instrument(a.router)
}

func (a *API) healthz(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":  "ok",
		"service": "skillbridge-api",
		"version": a.version,
	})
}

func (a *API) readyz(w http.ResponseWriter, r *http.Request) {
	if a.ready != nil {
		if err := a.ready(r.Context()); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]any{
				"status": "not_ready",
				"error":  err.Error(),
			})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": "ready"})
}

func (a *API) info(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"name":    "skillbridge-api",
		"time":    time.Now().UTC().Format(time.RFC3339),
		"version": a.version,
	})
}

// audit records a successful mutation.
func (a *API) audit(ctx context.Context, event, resourceType, resourceID string, fields map[string]string) {
	audit.LogEvent(ctx, event, resourceType, resourceID, fields)
}
