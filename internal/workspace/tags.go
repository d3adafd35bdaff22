package workspace

import (
	"fmt"
	"slices"

	"github.com/lalith-99/huddle/internal/models"
)

// tagPreviewLength is how much of the message body a tag notification
// quotes.
const tagPreviewLength = 20

// handleSet snapshots the live handles before a scan, so the scan sees
// one consistent set even if the caller goes on to change users.
func (tx *txn) handleSet() map[string]int {
	handles := make(map[string]int, len(tx.users))
	for _, u := range tx.ws.Users {
		if !u.Removed && u.HandleStr != "" {
			handles[u.HandleStr] = u.ID
		}
	}
	return handles
}

// parseTags returns the distinct users tagged in body, in order of first
// mention. At each '@' the longest handle that matches wins, so with
// handles "ab" and "abc", "@abcd" tags abc. Text after '@' that matches
// no handle is not a tag.
func parseTags(body string, handles map[string]int) []int {
	longest := 0
	for h := range handles {
		longest = max(longest, len(h))
	}

	var tagged []int
	for i := 0; i < len(body); i++ {
		if body[i] != '@' {
			continue
		}
		for l := min(longest, len(body)-i-1); l >= 1; l-- {
			uid, ok := handles[body[i+1:i+1+l]]
			if !ok {
				continue
			}
			if !slices.Contains(tagged, uid) {
				tagged = append(tagged, uid)
			}
			i += l
			break
		}
	}
	return tagged
}

// scanTags notifies every member tagged in m who has not already been
// notified for this message. Each (message, user) pair notifies at most
// once over the message's lifetime, so an edit only reaches users it
// newly tags.
func (tx *txn) scanTags(c container, m *models.Message, sender *models.User) {
	for _, uid := range parseTags(m.Body, tx.handleSet()) {
		if slices.Contains(m.TaggedIDs, uid) {
			continue
		}
		if !slices.Contains(c.memberIDs(), uid) {
			continue
		}
		m.TaggedIDs = append(m.TaggedIDs, uid)
		channelID, dmID := c.noteIDs()
		tx.notify(uid, models.Notification{
			ChannelID: channelID,
			DmID:      dmID,
			Text:      fmt.Sprintf("%s tagged you in %s: %s", sender.HandleStr, c.name(), truncateRunes(m.Body, tagPreviewLength)),
		})
	}
}

func truncateRunes(s string, n int) string {
	count := 0
	for i := range s {
		if count == n {
			return s[:i]
		}
		count++
	}
	return s
}
