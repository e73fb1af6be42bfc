/*
Package lobbysdk provides a client SDK for the Breakroom lobby service.

# Overview

The lobby service keeps a live list of connected participants and lets any
participant invite another one. Presence and invitations travel over a single
websocket per participant; a small HTTP API exposes health probes and
read-only views of the lobby and the invitation ledger.

The package is organized around two main types:

  - SDKClient: HTTP operations and websocket dialing
  - Session: one websocket connection, i.e. one lobby participant

Create an SDKClient and dial a Session:

	client := lobbysdk.NewSDKClient("http://localhost:3001")

	// Check service health
	health, err := client.GetLiveness(ctx)

	// Join the lobby
	session, err := client.Dial(ctx)
	defer session.Close()

	userID, err := session.Identify(ctx, "Alice")

# Wire Protocol

Every websocket message is a JSON text frame:

	{"type": "<event>", "payload": {...}}

Client to server events:

  - identify{displayName}: join the lobby; answered with identified{userId}
  - inviteSend{toUserId}: invite another member
  - inviteAccept{inviteId}: accept a received invite
  - inviteDecline{inviteId}: decline a received invite

Server to client events:

  - identified{userId}: identify acknowledgement
  - lobbyState{users}: full snapshot, sent to everyone on every join and leave
  - inviteReceived{inviteId, fromUserId, fromDisplayName}: new invite for you
  - inviteResult{inviteId, result}: "success" or "failed" for an invite you sent

The server never answers a rejected event. Identifying twice, inviting an
unknown user, or accepting an invite twice are all dropped without a reply,
so callers wait for the event they expect with a context deadline:

	f, err := session.WaitFor(ctx, lobbysdk.EventInviteReceived)
	inv, err := lobbysdk.DecodeFrame[lobbysdk.InviteReceivedEvent](f)
	err = session.AcceptInvite(inv.InviteID)

# Identity

A user id is assigned per websocket session and is discarded when the socket
closes. Reconnecting and identifying again yields a new user id; display names
are not unique.

# Error Handling

HTTP methods return *APIError for non-2xx responses:

	info, err := client.GetInvite(ctx, id)
	if lobbysdk.IsNotFound(err) {
		// unknown or already evicted
	}

Session methods return ErrSessionClosed once the socket is gone.
*/
package lobbysdk
