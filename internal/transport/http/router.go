// Package http wires the quiz services onto the HTTP surface: JSON endpoints
// for the session lifecycle, a leaderboard with SSE and websocket streams,
// and the token-gated admin surface.
package http

import "net/http"

// RouterConfig carries the transport-level knobs from the config file.
type RouterConfig struct {
	AllowedOrigins     []string
	MaxBodyBytes       int64
	RateLimitPerMinute int
}

// NewRouter assembles the full route table. The rate limiter guards the
// quiz-taking endpoints only; leaderboard reads and streams stay unmetered.
func NewRouter(quiz *QuizHandler, leaderboard *LeaderboardHandler, ws *WSHandler, admin *AdminHandler, cfg RouterConfig) http.Handler {
	mux := http.NewServeMux()
	limiter := newIPRateLimiter(cfg.RateLimitPerMinute)

	quizEndpoint := func(h http.HandlerFunc) http.HandlerFunc {
		return withLogging(limiter.wrap(maxBody(cfg.MaxBodyBytes, h)))
	}

	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("ok"))
	})

	mux.HandleFunc("POST /quiz/start", quizEndpoint(quiz.Start))
	mux.HandleFunc("GET /quiz/session/{sessionId}", quizEndpoint(quiz.GetSession))
	mux.HandleFunc("POST /quiz/submit", quizEndpoint(quiz.Submit))

	mux.HandleFunc("GET /leaderboard", withLogging(leaderboard.List))
	mux.HandleFunc("GET /leaderboard/stream", leaderboard.Stream)
	mux.HandleFunc("GET /leaderboard/ws", ws.ServeWS)

	adminEndpoint := func(h http.HandlerFunc) http.HandlerFunc {
		return withLogging(admin.requireAdmin(maxBody(cfg.MaxBodyBytes, h)))
	}
	mux.HandleFunc("POST /quiz/admin/questions", adminEndpoint(admin.CreateQuestion))
	mux.HandleFunc("GET /quiz/admin/questions", adminEndpoint(admin.ListQuestions))
	mux.HandleFunc("DELETE /quiz/admin/questions/{id}", adminEndpoint(admin.DeleteQuestion))
	mux.HandleFunc("PUT /quiz/admin/settings", adminEndpoint(admin.UpdateSettings))

	return securityHeaders(corsMiddleware(cfg.AllowedOrigins, mux))
}
