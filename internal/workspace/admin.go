package workspace

import (
	"context"
	"slices"

	"github.com/lalith-99/huddle/internal/models"
	"go.uber.org/zap"
)

const removedUserBody = "Removed User"

func (tx *txn) activeGlobalOwners() int {
	count := 0
	for _, u := range tx.ws.Users {
		if !u.Removed && u.Role == models.RoleOwner {
			count++
		}
	}
	return count
}

// globalOwner resolves an actor that must hold the global owner role.
func (tx *txn) globalOwner(uid int) error {
	if _, err := tx.actor(uid); err != nil {
		return err
	}
	if !tx.isGlobalOwner(uid) {
		return forbidden("only global owners may do this")
	}
	return nil
}

func (tx *txn) target(uid int) (*models.User, error) {
	u, ok := tx.users[uid]
	if !ok || u.Removed {
		return nil, notFound("user %d does not exist", uid)
	}
	return u, nil
}

// RemoveUser anonymizes a user everywhere in one operation. Their
// messages keep ID, timestamp, reacts and pin but read "Removed User";
// they leave every channel and DM; their profile is blanked so the email
// and handle can be registered again. The ID stays resolvable.
func (e *Engine) RemoveUser(ctx context.Context, actorID, targetID int) error {
	var rewritten int
	err := e.update(ctx, func(tx *txn) error {
		if err := tx.globalOwner(actorID); err != nil {
			return err
		}
		target, err := tx.target(targetID)
		if err != nil {
			return err
		}
		if target.Role == models.RoleOwner && tx.activeGlobalOwners() == 1 {
			return conflict("cannot remove the only global owner")
		}

		for _, loc := range tx.index {
			if loc.msg.SenderID == targetID {
				loc.msg.Body = removedUserBody
				rewritten++
			}
		}
		drop := func(id int) bool { return id == targetID }
		for _, ch := range tx.ws.Channels {
			ch.MemberIDs = slices.DeleteFunc(ch.MemberIDs, drop)
			ch.OwnerIDs = slices.DeleteFunc(ch.OwnerIDs, drop)
		}
		for _, dm := range tx.ws.Dms {
			dm.MemberIDs = slices.DeleteFunc(dm.MemberIDs, drop)
		}

		target.NameFirst = "Removed"
		target.NameLast = "user"
		target.Email = ""
		target.HandleStr = ""
		target.PasswordHash = ""
		target.Removed = true
		return nil
	})
	if err != nil {
		return err
	}
	e.logger.Info("user removed",
		zap.Int("actor_id", actorID),
		zap.Int("target_id", targetID),
		zap.Int("messages_rewritten", rewritten),
	)
	return nil
}

// SetPermission changes a user's global role. The workspace always keeps
// at least one global owner.
func (e *Engine) SetPermission(ctx context.Context, actorID, targetID int, role models.GlobalRole) error {
	return e.update(ctx, func(tx *txn) error {
		if err := tx.globalOwner(actorID); err != nil {
			return err
		}
		target, err := tx.target(targetID)
		if err != nil {
			return err
		}
		if role != models.RoleOwner && role != models.RoleMember {
			return invalid("permission id %d is not valid", role)
		}
		if target.Role == role {
			return conflict("user %d already has permission %d", targetID, role)
		}
		if target.Role == models.RoleOwner && tx.activeGlobalOwners() == 1 {
			return conflict("cannot demote the only global owner")
		}
		target.Role = role
		return nil
	})
}
