package http

import (
	"net/http"
	"time"

	"horizonx-machine/internal/adapters/http/middleware"
	"horizonx-machine/internal/config"
	"horizonx-machine/internal/domain"
)

type RouterDeps struct {
	Auth    *AuthHandler
	Machine *MachineHandler
	Ws      http.HandlerFunc
	Metrics http.Handler

	AuthService domain.AuthService
}

func NewRouter(cfg *config.Config, deps *RouterDeps) http.Handler {
	mux := http.NewServeMux()

	globalMw := middleware.New()
	globalMw.Use(middleware.CORS(cfg.AllowedOrigins))

	authMw := middleware.New()
	authMw.Use(middleware.JWT(deps.AuthService))

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("OK"))
	})

	mux.HandleFunc("POST /auth/login", deps.Auth.Login)
	mux.HandleFunc("POST /auth/logout", deps.Auth.Logout)

	mux.Handle("GET /machine/info", authMw.Then(deps.Machine.Info))
	mux.Handle("GET /machine/graphics", authMw.Then(deps.Machine.Graphics))
	mux.Handle("GET /machine/status", authMw.Then(deps.Machine.Status))
	mux.Handle("GET /machine/history", authMw.Then(deps.Machine.History))

	mux.Handle("GET /processes", authMw.Then(deps.Machine.Processes))
	mux.Handle("POST /processes", authMw.Then(deps.Machine.TrackProcess))
	mux.Handle("DELETE /processes/{pid}", authMw.Then(deps.Machine.UntrackProcess))

	if deps.Metrics != nil {
		mux.Handle("GET /metrics", deps.Metrics)
	}

	if deps.Ws != nil {
		mux.HandleFunc("/ws", deps.Ws)
	}

	return globalMw.Apply(mux)
}

func NewServer(handler http.Handler, addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
}
