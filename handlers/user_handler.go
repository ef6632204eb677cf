package handlers

import (
	"log/slog"
	"net/http"

	"github.com/gorilla/mux"
	"skillswap-server/middleware"
	"skillswap-server/services"
)

type UserHandler struct {
	userService *services.UserService
	logger      *slog.Logger
}

func NewUserHandler(userService *services.UserService, logger *slog.Logger) *UserHandler {
	return &UserHandler{userService: userService, logger: logger}
}

func (h *UserHandler) CreateUser(w http.ResponseWriter, r *http.Request) {
	var input services.UserInput
	if err := decodeJSON(r, &input); err != nil {
		middleware.WriteError(w, h.logger, err)
		return
	}
	user, err := h.userService.Register(r.Context(), input)
	if err != nil {
		middleware.WriteError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusCreated, user, "User created successfully")
}

func (h *UserHandler) UpdateUser(w http.ResponseWriter, r *http.Request) {
	var input services.UserInput
	if err := decodeJSON(r, &input); err != nil {
		middleware.WriteError(w, h.logger, err)
		return
	}
	user, err := h.userService.Update(r.Context(), mux.Vars(r)["id"], input)
	if err != nil {
		middleware.WriteError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, user, "User updated successfully")
}

func (h *UserHandler) GetUser(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.GetByID(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		middleware.WriteError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, user, "User retrieved successfully")
}

func (h *UserHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	users, err := h.userService.ListPublic(r.Context())
	if err != nil {
		middleware.WriteError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, listOf(users), "")
}

func (h *UserHandler) SearchUsers(w http.ResponseWriter, r *http.Request) {
	term, err := requiredQuery(r, "searchTerm")
	if err != nil {
		middleware.WriteError(w, h.logger, err)
		return
	}
	users, err := h.userService.Search(r.Context(), term)
	if err != nil {
		middleware.WriteError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, listOf(users), "Users found successfully")
}

func (h *UserHandler) UsersBySkillOffered(w http.ResponseWriter, r *http.Request) {
	skill, err := requiredQuery(r, "skill")
	if err != nil {
		middleware.WriteError(w, h.logger, err)
		return
	}
	users, err := h.userService.FindBySkillOffered(r.Context(), skill)
	if err != nil {
		middleware.WriteError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, listOf(users), "Users found successfully")
}

func (h *UserHandler) UsersBySkillWanted(w http.ResponseWriter, r *http.Request) {
	skill, err := requiredQuery(r, "skill")
	if err != nil {
		middleware.WriteError(w, h.logger, err)
		return
	}
	users, err := h.userService.FindBySkillWanted(r.Context(), skill)
	if err != nil {
		middleware.WriteError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, listOf(users), "Users found successfully")
}

func (h *UserHandler) UsersByAvailability(w http.ResponseWriter, r *http.Request) {
	availability, err := requiredQuery(r, "availability")
	if err != nil {
		middleware.WriteError(w, h.logger, err)
		return
	}
	users, err := h.userService.FindByAvailability(r.Context(), availability)
	if err != nil {
		middleware.WriteError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, listOf(users), "Users found successfully")
}

func (h *UserHandler) DeleteUser(w http.ResponseWriter, r *http.Request) {
	if err := h.userService.Delete(r.Context(), mux.Vars(r)["id"]); err != nil {
		middleware.WriteError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, nil, "User deleted successfully")
}

func (h *UserHandler) ToggleVisibility(w http.ResponseWriter, r *http.Request) {
	user, err := h.userService.ToggleVisibility(r.Context(), mux.Vars(r)["id"])
	if err != nil {
		middleware.WriteError(w, h.logger, err)
		return
	}
	writeSuccess(w, http.StatusOK, user, "Profile visibility toggled successfully")
}
