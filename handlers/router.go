package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"skillswap-server/middleware"
	apperrors "skillswap-server/utils/errors"
)

// NewRouter registers every route and wraps them in the middleware chain.
func NewRouter(userHandler *UserHandler, swapHandler *SwapHandler, logger *slog.Logger, allowedOrigins []string) http.Handler {
	r := mux.NewRouter()
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		middleware.WriteError(w, logger, apperrors.NotFound("No route for %s %s", req.Method, req.URL.Path))
	})
	r.MethodNotAllowedHandler = http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		middleware.WriteError(w, logger, apperrors.NewAPIError("METHOD_NOT_ALLOWED", "Method not allowed", http.StatusMethodNotAllowed))
	})

	r.HandleFunc("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeSuccess(w, http.StatusOK, map[string]string{"status": "ok"}, "")
	}).Methods(http.MethodGet)

	// Fixed paths go before /{id} so they are not captured as ids.
	users := r.PathPrefix("/users").Subrouter()
	users.HandleFunc("", userHandler.CreateUser).Methods(http.MethodPost)
	users.HandleFunc("", userHandler.ListUsers).Methods(http.MethodGet)
	users.HandleFunc("/search", userHandler.SearchUsers).Methods(http.MethodGet)
	users.HandleFunc("/skills/offered", userHandler.UsersBySkillOffered).Methods(http.MethodGet)
	users.HandleFunc("/skills/wanted", userHandler.UsersBySkillWanted).Methods(http.MethodGet)
	users.HandleFunc("/availability", userHandler.UsersByAvailability).Methods(http.MethodGet)
	users.HandleFunc("/{id}", userHandler.GetUser).Methods(http.MethodGet)
	users.HandleFunc("/{id}", userHandler.UpdateUser).Methods(http.MethodPut)
	users.HandleFunc("/{id}", userHandler.DeleteUser).Methods(http.MethodDelete)
	users.HandleFunc("/{id}/visibility", userHandler.ToggleVisibility).Methods(http.MethodPatch)

	swaps := r.PathPrefix("/swaps").Subrouter()
	swaps.HandleFunc("", swapHandler.CreateSwap).Methods(http.MethodPost)
	swaps.HandleFunc("/from/{fromUserId}", swapHandler.SwapsFromUser).Methods(http.MethodGet)
	swaps.HandleFunc("/to/{toUserId}", swapHandler.SwapsToUser).Methods(http.MethodGet)
	swaps.HandleFunc("/user/{userId}/status/{status}", swapHandler.SwapsByStatus).Methods(http.MethodGet)
	swaps.HandleFunc("/{id}", swapHandler.GetSwap).Methods(http.MethodGet)
	swaps.HandleFunc("/{id}", swapHandler.DeleteSwap).Methods(http.MethodDelete)
	swaps.HandleFunc("/{id}/accept", swapHandler.AcceptSwap).Methods(http.MethodPatch)
	swaps.HandleFunc("/{id}/reject", swapHandler.RejectSwap).Methods(http.MethodPatch)
	swaps.HandleFunc("/{id}/complete", swapHandler.CompleteSwap).Methods(http.MethodPatch)
	swaps.HandleFunc("/{id}/rating", swapHandler.RateSwap).Methods(http.MethodPatch)

	return chain(r, logger, allowedOrigins)
}

// chain wraps h in request logging, panic recovery and CORS, outermost first.
// Recovery sits inside the logger so a recovered panic is logged as a 500.
func chain(h http.Handler, logger *slog.Logger, allowedOrigins []string) http.Handler {
	h = middleware.CORSMiddleware(allowedOrigins)(h)
	h = middleware.ErrorMiddleware(logger)(h)
	h = middleware.RequestLogger(logger)(h)
	return h
}
