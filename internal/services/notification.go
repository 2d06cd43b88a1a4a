package services

import (
	"context"
	"fmt"

	"food-network-backend/internal/models"

	"github.com/rs/zerolog/log"
)

// Pusher delivers a push notification to a device
type Pusher interface {
	Send(ctx context.Context, deviceToken, alert string, data map[string]any) error
}

// FollowNotifications tells users about new and removed followers over the websocket hub
// and, for new followers, through APNs when the user registered a device token.
type FollowNotifications struct {
	hub    *WSHub
	pusher Pusher
	users  UserStore
}

// NewFollowNotifications creates a notifier. pusher may be nil when push is disabled.
func NewFollowNotifications(hub *WSHub, pusher Pusher, users UserStore) *FollowNotifications {
	return &FollowNotifications{hub: hub, pusher: pusher, users: users}
}

// FollowCreated notifies the followed user
func (n *FollowNotifications) FollowCreated(ctx context.Context, edge *models.FollowEdge) {
	follower, err := n.users.GetByID(ctx, edge.FollowerID)
	if err != nil {
		log.Warn().Err(err).Str("follower_id", edge.FollowerID).Msg("Failed to load follower for notification")
		return
	}
	profile := follower.Public()

	if n.hub != nil && n.hub.IsOnline(edge.FollowingID) {
		msg := WSMessage{
			Type: MsgFollowerAdded,
			Data: map[string]any{
				"follow_id":  edge.ID,
				"follower":   profile,
				"created_at": edge.CreatedAt,
			},
		}
		if err := n.hub.SendToUser(edge.FollowingID, msg); err != nil {
			log.Warn().Err(err).Str("user_id", edge.FollowingID).Msg("Failed to send follower_added")
		}
	}

	if n.pusher == nil {
		return
	}
	followed, err := n.users.GetByID(ctx, edge.FollowingID)
	if err != nil {
		log.Warn().Err(err).Str("user_id", edge.FollowingID).Msg("Failed to load followed user for push")
		return
	}
	if followed.PushToken == nil {
		return
	}
	alert := fmt.Sprintf("%s %s started following you", profile.FirstName, profile.LastName)
	data := map[string]any{"type": MsgFollowerAdded, "follower_id": profile.ID}
	if err := n.pusher.Send(ctx, *followed.PushToken, alert, data); err != nil {
		log.Warn().Err(err).Str("user_id", edge.FollowingID).Msg("Failed to push follower notification")
	}
}

// FollowRemoved notifies the formerly followed user if they are online
func (n *FollowNotifications) FollowRemoved(ctx context.Context, followerID, followingID string) {
	if n.hub == nil || !n.hub.IsOnline(followingID) {
		return
	}
	msg := WSMessage{
		Type: MsgFollowerRemoved,
		Data: map[string]any{"follower_id": followerID},
	}
	if err := n.hub.SendToUser(followingID, msg); err != nil {
		log.Warn().Err(err).Str("user_id", followingID).Msg("Failed to send follower_removed")
	}
}
