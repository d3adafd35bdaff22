package workspace

import (
	"context"
	"slices"

	"github.com/lalith-99/huddle/internal/models"
)

// The resolver answers membership questions against the loaded snapshot.
// Unknown users and containers are simply "not a member"; each operation
// picks the error kind it reports.

func (tx *txn) isGlobalOwner(uid int) bool {
	u, ok := tx.users[uid]
	return ok && !u.Removed && u.Role == models.RoleOwner
}

func (tx *txn) isMember(uid int, ref models.ContainerRef) bool {
	c, ok := tx.container(ref)
	return ok && slices.Contains(c.memberIDs(), uid)
}

// isOwner reports channel ownership, or being the creator of a DM.
func (tx *txn) isOwner(uid int, ref models.ContainerRef) bool {
	c, ok := tx.container(ref)
	if !ok {
		return false
	}
	if c.channel != nil {
		return slices.Contains(c.channel.OwnerIDs, uid)
	}
	return c.dm.CreatorID == uid
}

// hasOwnerRights extends isOwner with global owners, who act as owners
// of any channel they are a member of. Global ownership grants nothing
// inside DMs.
func (tx *txn) hasOwnerRights(uid int, ref models.ContainerRef) bool {
	if tx.isOwner(uid, ref) {
		return true
	}
	return ref.Kind == models.KindChannel && tx.isGlobalOwner(uid) && tx.isMember(uid, ref)
}

// actor resolves the calling user. A removed or unknown caller is
// refused outright.
func (tx *txn) actor(uid int) (*models.User, error) {
	u, ok := tx.users[uid]
	if !ok || u.Removed {
		return nil, forbidden("user %d is not an active user", uid)
	}
	return u, nil
}

// IsMember reports whether uid belongs to the container.
func (e *Engine) IsMember(ctx context.Context, uid int, ref models.ContainerRef) (bool, error) {
	var member bool
	err := e.view(ctx, func(tx *txn) error {
		member = tx.isMember(uid, ref)
		return nil
	})
	return member, err
}

// IsOwner reports channel ownership or DM creatorship.
func (e *Engine) IsOwner(ctx context.Context, uid int, ref models.ContainerRef) (bool, error) {
	var owner bool
	err := e.view(ctx, func(tx *txn) error {
		owner = tx.isOwner(uid, ref)
		return nil
	})
	return owner, err
}

func (e *Engine) IsGlobalOwner(ctx context.Context, uid int) (bool, error) {
	var owner bool
	err := e.view(ctx, func(tx *txn) error {
		owner = tx.isGlobalOwner(uid)
		return nil
	})
	return owner, err
}
