package http

import (
	"net/http"

	"github.com/rs/cors"

	"quiz-rest-service/internal/app"
	"quiz-rest-service/internal/infra/authapi"
)

// NewRouter wires the quiz endpoints. Every /api/quiz route sits behind the
// bearer-auth middleware; each request gets a fresh store handle scoped to the
// authenticated caller.
func NewRouter(service *app.QuizService, stores app.StoreProvider, verifier authapi.TokenVerifier) http.Handler {
	h := &Handler{service: service, stores: stores, verifier: verifier}

	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", handleRoot)
	mux.HandleFunc("GET /healthz", handleHealthz)
	mux.HandleFunc("GET /api/version", handleVersion)

	mux.Handle("GET /api/quiz", h.authenticated(h.handleQuestions))
	mux.Handle("POST /api/quiz/submit", h.authenticated(h.handleSubmit))
	mux.Handle("GET /api/quiz/history", h.authenticated(h.handleHistory))
	mux.Handle("GET /api/quiz/history/{attemptID}", h.authenticated(h.handleAttemptDetail))
	mux.Handle("GET /api/quiz/download/{attemptID}", h.authenticated(h.handleDownload))

	return cors.AllowAll().Handler(mux)
}

// Handler holds the per-process collaborators. Per-caller state (the scoped
// store handle) is built inside the middleware, never shared across requests.
type Handler struct {
	service  *app.QuizService
	stores   app.StoreProvider
	verifier authapi.TokenVerifier
}

func handleRoot(w http.ResponseWriter, _ *http.Request) {
	w.Write([]byte("Quiz App Backend is running"))
}

func handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Write([]byte("ok"))
}

func handleVersion(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, versionResponse{
		Version:  "1.0.1",
		Features: []string{"download"},
	})
}
