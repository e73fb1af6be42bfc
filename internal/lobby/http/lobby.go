package http

import (
	"net/http"

	"github.com/aussiebroadwan/breakroom/internal/lobby/service"
	"github.com/aussiebroadwan/breakroom/pkg/httpx"
	"github.com/aussiebroadwan/breakroom/pkg/lobbysdk"
)

type LobbyHandler struct {
	Coordinator *service.Coordinator
}

// ServeHTTP godoc
//
//	@Summary		Lobby Snapshot
//	@Description	Current lobby members in join order. Same shape as the lobbyState websocket event.
//	@Tags			Lobby
//	@Produce		json
//	@Success		200	{object}	lobbysdk.LobbyStateEvent	"users"
//	@Failure		429	{object}	lobbysdk.ErrorResponse		"rate limited"
//	@Router			/v1/lobby [get].
func (h *LobbyHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	users := h.Coordinator.Snapshot(r.Context())
	httpx.WriteJSON(w, http.StatusOK, lobbysdk.LobbyStateEvent{Users: service.PublicUsers(users)})
}
