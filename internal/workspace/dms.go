package workspace

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/lalith-99/huddle/internal/models"
)

type DmSummary struct {
	DmID int    `json:"dm_id"`
	Name string `json:"name"`
}

type DmDetails struct {
	Name    string    `json:"name"`
	Members []Profile `json:"members"`
}

// CreateDm opens a DM between the creator and uids. Its name is the
// sorted member handles joined by ", ".
func (e *Engine) CreateDm(ctx context.Context, creatorID int, uids []int) (int, error) {
	var id int
	err := e.update(ctx, func(tx *txn) error {
		creator, err := tx.actor(creatorID)
		if err != nil {
			return err
		}
		members := append([]int{creatorID}, uids...)
		handles := make([]string, 0, len(members))
		for i, uid := range members {
			if slices.Contains(members[:i], uid) {
				return invalid("user %d listed more than once", uid)
			}
			u, ok := tx.users[uid]
			if !ok || u.Removed {
				return invalid("user %d does not exist", uid)
			}
			handles = append(handles, u.HandleStr)
		}
		slices.Sort(handles)

		tx.ws.LastDmID++
		dm := &models.Dm{
			ID:        tx.ws.LastDmID,
			Name:      strings.Join(handles, ", "),
			CreatorID: creatorID,
			MemberIDs: members,
			Messages:  []*models.Message{},
		}
		tx.ws.Dms = append(tx.ws.Dms, dm)
		tx.dms[dm.ID] = dm
		for _, uid := range uids {
			tx.notify(uid, models.Notification{
				ChannelID: -1,
				DmID:      dm.ID,
				Text:      fmt.Sprintf("%s added you to %s", creator.HandleStr, dm.Name),
			})
		}
		id = dm.ID
		return nil
	})
	return id, err
}

func (e *Engine) LeaveDm(ctx context.Context, uid, dmID int) error {
	return e.update(ctx, func(tx *txn) error {
		if _, err := tx.actor(uid); err != nil {
			return err
		}
		c, err := tx.memberContainer(uid, models.DmRef(dmID))
		if err != nil {
			return err
		}
		c.dm.MemberIDs = slices.DeleteFunc(c.dm.MemberIDs, func(id int) bool { return id == uid })
		return nil
	})
}

func (e *Engine) DmDetails(ctx context.Context, uid, dmID int) (DmDetails, error) {
	var details DmDetails
	err := e.view(ctx, func(tx *txn) error {
		if _, err := tx.actor(uid); err != nil {
			return err
		}
		c, err := tx.memberContainer(uid, models.DmRef(dmID))
		if err != nil {
			return err
		}
		details = DmDetails{Name: c.dm.Name, Members: tx.profiles(c.dm.MemberIDs)}
		return nil
	})
	return details, err
}

func (e *Engine) ListDms(ctx context.Context, uid int) ([]DmSummary, error) {
	var out []DmSummary
	err := e.view(ctx, func(tx *txn) error {
		if _, err := tx.actor(uid); err != nil {
			return err
		}
		out = make([]DmSummary, 0)
		for _, dm := range tx.ws.Dms {
			if slices.Contains(dm.MemberIDs, uid) {
				out = append(out, DmSummary{DmID: dm.ID, Name: dm.Name})
			}
		}
		return nil
	})
	return out, err
}
