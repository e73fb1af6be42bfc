package lobbysdk

import (
	"context"
	"net/http"
	"net/url"
)

// GetLobby returns the current lobby snapshot.
func (c *SDKClient) GetLobby(ctx context.Context) (*LobbyStateEvent, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/lobby")
	if err != nil {
		return nil, err
	}

	var state LobbyStateEvent
	if err := decodeJSON(resp, &state, http.StatusOK); err != nil {
		return nil, err
	}

	return &state, nil
}

// GetInvite looks up an invitation by id. Unknown ids yield a 404 *APIError.
func (c *SDKClient) GetInvite(ctx context.Context, inviteID string) (*InviteInfo, error) {
	resp, err := c.doRequest(ctx, http.MethodGet, "/v1/invites/"+url.PathEscape(inviteID))
	if err != nil {
		return nil, err
	}

	var info InviteInfo
	if err := decodeJSON(resp, &info, http.StatusOK); err != nil {
		return nil, err
	}

	return &info, nil
}
