package workspace

import (
	"context"
	"fmt"
	"slices"
	"unicode/utf8"

	"github.com/lalith-99/huddle/internal/models"
)

const maxChannelNameLength = 20

type ChannelSummary struct {
	ChannelID int    `json:"channel_id"`
	Name      string `json:"name"`
}

type ChannelDetails struct {
	Name         string    `json:"name"`
	IsPublic     bool      `json:"is_public"`
	OwnerMembers []Profile `json:"owner_members"`
	AllMembers   []Profile `json:"all_members"`
}

func (e *Engine) CreateChannel(ctx context.Context, uid int, name string, isPublic bool) (int, error) {
	var id int
	err := e.update(ctx, func(tx *txn) error {
		if _, err := tx.actor(uid); err != nil {
			return err
		}
		if n := utf8.RuneCountInString(name); n < 1 || n > maxChannelNameLength {
			return invalid("channel name must be 1 to %d characters", maxChannelNameLength)
		}
		tx.ws.LastChannelID++
		ch := &models.Channel{
			ID:        tx.ws.LastChannelID,
			Name:      name,
			IsPublic:  isPublic,
			OwnerIDs:  []int{uid},
			MemberIDs: []int{uid},
			Messages:  []*models.Message{},
		}
		tx.ws.Channels = append(tx.ws.Channels, ch)
		tx.channels[ch.ID] = ch
		id = ch.ID
		return nil
	})
	return id, err
}

// JoinChannel adds the caller to a channel. Private channels admit only
// global owners this way; everyone else needs an invite.
func (e *Engine) JoinChannel(ctx context.Context, uid, channelID int) error {
	return e.update(ctx, func(tx *txn) error {
		if _, err := tx.actor(uid); err != nil {
			return err
		}
		ch, ok := tx.channels[channelID]
		if !ok {
			return notFound("channel %d does not exist", channelID)
		}
		if slices.Contains(ch.MemberIDs, uid) {
			return conflict("already a member of channel %d", channelID)
		}
		if !ch.IsPublic && !tx.isGlobalOwner(uid) {
			return forbidden("channel %d is private", channelID)
		}
		ch.MemberIDs = append(ch.MemberIDs, uid)
		return nil
	})
}

func (e *Engine) InviteToChannel(ctx context.Context, actorID, channelID, targetID int) error {
	return e.update(ctx, func(tx *txn) error {
		actor, err := tx.actor(actorID)
		if err != nil {
			return err
		}
		c, err := tx.memberContainer(actorID, models.ChannelRef(channelID))
		if err != nil {
			return err
		}
		if _, err := tx.target(targetID); err != nil {
			return err
		}
		if slices.Contains(c.channel.MemberIDs, targetID) {
			return conflict("user %d is already a member", targetID)
		}
		c.channel.MemberIDs = append(c.channel.MemberIDs, targetID)
		tx.notify(targetID, models.Notification{
			ChannelID: channelID,
			DmID:      -1,
			Text:      fmt.Sprintf("%s added you to %s", actor.HandleStr, c.channel.Name),
		})
		return nil
	})
}

// LeaveChannel removes the caller, along with any ownership. The starter
// of an active standup has to stay until it flushes.
func (e *Engine) LeaveChannel(ctx context.Context, uid, channelID int) error {
	return e.update(ctx, func(tx *txn) error {
		if _, err := tx.actor(uid); err != nil {
			return err
		}
		c, err := tx.memberContainer(uid, models.ChannelRef(channelID))
		if err != nil {
			return err
		}
		if su := c.channel.Standup; su != nil && su.StarterID == uid {
			return conflict("cannot leave while your standup is active")
		}
		drop := func(id int) bool { return id == uid }
		c.channel.MemberIDs = slices.DeleteFunc(c.channel.MemberIDs, drop)
		c.channel.OwnerIDs = slices.DeleteFunc(c.channel.OwnerIDs, drop)
		return nil
	})
}

func (e *Engine) AddChannelOwner(ctx context.Context, actorID, channelID, targetID int) error {
	return e.update(ctx, func(tx *txn) error {
		c, err := tx.ownedChannel(actorID, channelID)
		if err != nil {
			return err
		}
		if _, err := tx.target(targetID); err != nil {
			return err
		}
		if !slices.Contains(c.channel.MemberIDs, targetID) {
			return invalid("user %d is not a member of channel %d", targetID, channelID)
		}
		if slices.Contains(c.channel.OwnerIDs, targetID) {
			return conflict("user %d is already an owner", targetID)
		}
		c.channel.OwnerIDs = append(c.channel.OwnerIDs, targetID)
		return nil
	})
}

func (e *Engine) RemoveChannelOwner(ctx context.Context, actorID, channelID, targetID int) error {
	return e.update(ctx, func(tx *txn) error {
		c, err := tx.ownedChannel(actorID, channelID)
		if err != nil {
			return err
		}
		if _, err := tx.target(targetID); err != nil {
			return err
		}
		if !slices.Contains(c.channel.OwnerIDs, targetID) {
			return invalid("user %d is not an owner of channel %d", targetID, channelID)
		}
		if len(c.channel.OwnerIDs) == 1 {
			return conflict("cannot remove the only owner of channel %d", channelID)
		}
		c.channel.OwnerIDs = slices.DeleteFunc(c.channel.OwnerIDs, func(id int) bool { return id == targetID })
		return nil
	})
}

func (tx *txn) ownedChannel(actorID, channelID int) (container, error) {
	if _, err := tx.actor(actorID); err != nil {
		return container{}, err
	}
	c, err := tx.memberContainer(actorID, models.ChannelRef(channelID))
	if err != nil {
		return container{}, err
	}
	if !tx.hasOwnerRights(actorID, c.ref) {
		return container{}, forbidden("owner rights required in channel %d", channelID)
	}
	return c, nil
}

func (e *Engine) ChannelDetails(ctx context.Context, uid, channelID int) (ChannelDetails, error) {
	var details ChannelDetails
	err := e.view(ctx, func(tx *txn) error {
		if _, err := tx.actor(uid); err != nil {
			return err
		}
		c, err := tx.memberContainer(uid, models.ChannelRef(channelID))
		if err != nil {
			return err
		}
		details = ChannelDetails{
			Name:         c.channel.Name,
			IsPublic:     c.channel.IsPublic,
			OwnerMembers: tx.profiles(c.channel.OwnerIDs),
			AllMembers:   tx.profiles(c.channel.MemberIDs),
		}
		return nil
	})
	return details, err
}

// ListChannels returns the channels the caller belongs to, or every
// channel when all is set.
func (e *Engine) ListChannels(ctx context.Context, uid int, all bool) ([]ChannelSummary, error) {
	var out []ChannelSummary
	err := e.view(ctx, func(tx *txn) error {
		if _, err := tx.actor(uid); err != nil {
			return err
		}
		out = make([]ChannelSummary, 0)
		for _, ch := range tx.ws.Channels {
			if all || slices.Contains(ch.MemberIDs, uid) {
				out = append(out, ChannelSummary{ChannelID: ch.ID, Name: ch.Name})
			}
		}
		return nil
	})
	return out, err
}

func (tx *txn) profiles(ids []int) []Profile {
	out := make([]Profile, 0, len(ids))
	for _, id := range ids {
		if u, ok := tx.users[id]; ok {
			out = append(out, profileOf(u))
		}
	}
	return out
}
