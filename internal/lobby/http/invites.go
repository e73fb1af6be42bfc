package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/aussiebroadwan/breakroom/internal/lobby/domain"
	"github.com/aussiebroadwan/breakroom/internal/lobby/service"
	"github.com/aussiebroadwan/breakroom/pkg/httpx"
	"github.com/aussiebroadwan/breakroom/pkg/lobbysdk"
	"github.com/aussiebroadwan/breakroom/pkg/slogx"
)

type InviteHandler struct {
	Coordinator *service.Coordinator
}

// ServeHTTP godoc
//
//	@Summary		Invitation Lookup
//	@Description	Audit view of one invitation. Resolved invitations are evicted after the retention period.
//	@Tags			Invitations
//	@Produce		json
//	@Param			id	path		string					true	"Invite ID"
//	@Success		200	{object}	lobbysdk.InviteInfo		"invite record"
//	@Failure		404	{object}	lobbysdk.ErrorResponse	"unknown or evicted invite"
//	@Failure		500	{object}	lobbysdk.ErrorResponse	"ledger failure"
//	@Router			/v1/invites/{id} [get].
func (h *InviteHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	inv, err := h.Coordinator.Invite(ctx, r.PathValue("id"))
	switch {
	case errors.Is(err, service.ErrInviteNotFound):
		httpx.WriteJSON(w, http.StatusNotFound, lobbysdk.ErrorResponse{
			Error:            lobbysdk.ErrorCodeNotFound,
			ErrorDescription: "invite not found",
		})
		return
	case err != nil:
		slogx.FromContext(ctx).Error("failed to load invite", slog.Any("error", err))
		httpx.WriteJSON(w, http.StatusInternalServerError, lobbysdk.ErrorResponse{
			Error:            lobbysdk.ErrorCodeServerError,
			ErrorDescription: "failed to load invite",
		})
		return
	}

	httpx.WriteJSON(w, http.StatusOK, inviteInfo(inv))
}

func inviteInfo(inv domain.Invite) lobbysdk.InviteInfo {
	return lobbysdk.InviteInfo{
		InviteID:   inv.ID,
		FromUserID: inv.FromUserID,
		ToUserID:   inv.ToUserID,
		Status:     string(inv.Status),
		CreatedAt:  inv.CreatedAt,
		ResolvedAt: inv.ResolvedAt,
	}
}
