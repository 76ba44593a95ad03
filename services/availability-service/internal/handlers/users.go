package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/md-rashed-zaman/meetslots/libs/httpx"
	"github.com/md-rashed-zaman/meetslots/services/availability-service/internal/model"
	"github.com/md-rashed-zaman/meetslots/services/availability-service/internal/storage"
)

type UserStore interface {
	ListUsers(ctx context.Context) ([]model.User, error)
	GetUser(ctx context.Context, id int) (model.User, error)
	SaveUser(ctx context.Context, u model.User) (bool, error)
	DeleteAllUsers(ctx context.Context) (int64, error)
}

type UserHandler struct {
	store  UserStore
	logger *slog.Logger
}

func NewUserHandler(store UserStore, logger *slog.Logger) *UserHandler {
	return &UserHandler{store: store, logger: logger}
}

type listUsersResponse struct {
	Users []model.User `json:"users"`
}

type upsertUserResponse struct {
	Message string     `json:"message"`
	User    model.User `json:"user"`
}

type deleteUsersResponse struct {
	Message string `json:"message"`
	Deleted int64  `json:"deleted"`
}

func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.store.ListUsers(r.Context())
	if err != nil {
		h.internalError(w, r, "list users failed", err)
		return
	}
	if users == nil {
		users = []model.User{}
	}
	httpx.WriteJSON(w, http.StatusOK, listUsersResponse{Users: users})
}

func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := userIDFromPath(w, r)
	if !ok {
		return
	}
	u, err := h.store.GetUser(r.Context(), id)
	if errors.Is(err, storage.ErrNotFound) {
		httpx.WriteMessage(w, http.StatusNotFound, "User not found.")
		return
	}
	if err != nil {
		h.internalError(w, r, "get user failed", err)
		return
	}
	httpx.WriteJSON(w, http.StatusOK, u)
}

// Upsert replaces the user named in the path. The path id wins over any user_id in the body.
func (h *UserHandler) Upsert(w http.ResponseWriter, r *http.Request) {
	id, ok := userIDFromPath(w, r)
	if !ok {
		return
	}

	var u model.User
	if err := json.NewDecoder(r.Body).Decode(&u); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, "invalid json body")
		return
	}
	u.ID = id
	if err := u.Validate(); err != nil {
		httpx.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	u = u.Normalize()

	created, err := h.store.SaveUser(r.Context(), u)
	if errors.Is(err, model.ErrInvalidUser) {
		httpx.WriteMessage(w, http.StatusBadRequest, err.Error())
		return
	}
	if err != nil {
		h.internalError(w, r, "upsert user failed", err)
		return
	}
	if u.Events == nil {
		u.Events = []model.Event{}
	}
	h.logger.Info("user upserted", "user_id", u.ID, "created", created, "events", len(u.Events))
	httpx.WriteJSON(w, http.StatusOK, upsertUserResponse{Message: "User upserted.", User: u})
}

func (h *UserHandler) DeleteAll(w http.ResponseWriter, r *http.Request) {
	n, err := h.store.DeleteAllUsers(r.Context())
	if err != nil {
		h.internalError(w, r, "delete users failed", err)
		return
	}
	h.logger.Info("users deleted", "count", n)
	httpx.WriteJSON(w, http.StatusOK, deleteUsersResponse{Message: "All users deleted.", Deleted: n})
}

func (h *UserHandler) internalError(w http.ResponseWriter, r *http.Request, msg string, err error) {
	h.logger.Error(msg, "err", err, "request_id", httpx.RequestIDFromContext(r.Context()))
	httpx.WriteMessage(w, http.StatusInternalServerError, "internal error")
}

func userIDFromPath(w http.ResponseWriter, r *http.Request) (int, bool) {
	id, err := strconv.Atoi(r.PathValue("userId"))
	if err != nil || id <= 0 {
		httpx.WriteMessage(w, http.StatusBadRequest, "userId must be a positive integer")
		return 0, false
	}
	return id, true
}
