package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/google/uuid"

	"canvasbot/internal/domain"
	"canvasbot/internal/middleware"
)

type registerUserRequest struct {
	ChatID int64 `json:"chat_id"`
}

type userResponse struct {
	ID            string       `json:"id"`
	ChatID        int64        `json:"chat_id"`
	Role          string       `json:"role"`
	SupportedGeos []domain.Geo `json:"supported_geos"`
}

// UserRegister upserts a chat user. The market resolved for the request is
// recorded so the catalogue can be filtered per user later.
func (a *App) UserRegister(w http.ResponseWriter, r *http.Request) {
	var req registerUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.ChatID == 0 {
		a.error(w, http.StatusBadRequest, "bad_request", "chat_id is required")
		return
	}

	geo := middleware.GeoFromContext(r.Context())
	user, err := a.Users.UpsertByChatID(r.Context(), &domain.User{
		ID:            uuid.NewString(),
		ChatID:        req.ChatID,
		Role:          domain.RoleUser,
		SupportedGeos: []domain.Geo{geo},
	})
	if err != nil {
		a.fail(w, err)
		return
	}
	a.json(w, http.StatusOK, userResponse{
		ID:            user.ID,
		ChatID:        user.ChatID,
		Role:          string(user.Role),
		SupportedGeos: user.SupportedGeos,
	})
}
