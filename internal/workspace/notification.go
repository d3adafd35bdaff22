package workspace

import (
	"context"

	"github.com/lalith-99/huddle/internal/models"
)

// FeedCapacity bounds every user's notification feed.
const FeedCapacity = 20

// notify appends to the tail of uid's feed, evicting from the head past
// FeedCapacity, and queues the note for live delivery after the save.
func (tx *txn) notify(uid int, note models.Notification) {
	u, ok := tx.users[uid]
	if !ok || u.Removed {
		return
	}
	u.Notifications = append(u.Notifications, note)
	if over := len(u.Notifications) - FeedCapacity; over > 0 {
		u.Notifications = append([]models.Notification(nil), u.Notifications[over:]...)
	}
	tx.outbox = append(tx.outbox, delivery{userID: uid, note: note})
}

// Notifications returns the caller's feed, newest first. Reading does not
// clear the feed.
func (e *Engine) Notifications(ctx context.Context, uid int) ([]models.Notification, error) {
	var notes []models.Notification
	err := e.view(ctx, func(tx *txn) error {
		u, err := tx.actor(uid)
		if err != nil {
			return err
		}
		notes = make([]models.Notification, 0, len(u.Notifications))
		for i := len(u.Notifications) - 1; i >= 0; i-- {
			notes = append(notes, u.Notifications[i])
		}
		return nil
	})
	return notes, err
}
