package workspace

import (
	"context"
	"fmt"
	"slices"

	"github.com/lalith-99/huddle/internal/models"
)

// validReactIDs is the fixed set of reactions. Only "thumbs up" exists today.
var validReactIDs = []int{1}

func (e *Engine) React(ctx context.Context, uid, messageID, reactID int) error {
	return e.update(ctx, func(tx *txn) error {
		reactor, err := tx.actor(uid)
		if err != nil {
			return err
		}
		if !slices.Contains(validReactIDs, reactID) {
			return invalid("react id %d is not valid", reactID)
		}
		loc, c, err := tx.memberMessage(uid, messageID)
		if err != nil {
			return err
		}

		m := loc.msg
		i := slices.IndexFunc(m.Reacts, func(r models.React) bool { return r.ReactID == reactID })
		if i >= 0 {
			if slices.Contains(m.Reacts[i].UserIDs, uid) {
				return conflict("already reacted with %d", reactID)
			}
			m.Reacts[i].UserIDs = append(m.Reacts[i].UserIDs, uid)
			return nil
		}

		// First reaction of this kind: the sender hears about it once.
		// Co-reactions joining the entry above stay silent.
		m.Reacts = append(m.Reacts, models.React{ReactID: reactID, UserIDs: []int{uid}})
		if slices.Contains(c.memberIDs(), m.SenderID) {
			channelID, dmID := c.noteIDs()
			tx.notify(m.SenderID, models.Notification{
				ChannelID: channelID,
				DmID:      dmID,
				Text:      fmt.Sprintf("%s reacted to your message in %s", reactor.HandleStr, c.name()),
			})
		}
		return nil
	})
}

func (e *Engine) Unreact(ctx context.Context, uid, messageID, reactID int) error {
	return e.update(ctx, func(tx *txn) error {
		if _, err := tx.actor(uid); err != nil {
			return err
		}
		if !slices.Contains(validReactIDs, reactID) {
			return invalid("react id %d is not valid", reactID)
		}
		loc, _, err := tx.memberMessage(uid, messageID)
		if err != nil {
			return err
		}

		m := loc.msg
		i := slices.IndexFunc(m.Reacts, func(r models.React) bool { return r.ReactID == reactID })
		if i < 0 || !slices.Contains(m.Reacts[i].UserIDs, uid) {
			return conflict("no reaction %d to remove", reactID)
		}
		m.Reacts[i].UserIDs = slices.DeleteFunc(m.Reacts[i].UserIDs, func(id int) bool { return id == uid })
		if len(m.Reacts[i].UserIDs) == 0 {
			m.Reacts = slices.Delete(m.Reacts, i, i+1)
		}
		return nil
	})
}
