package workspace

import (
	"fmt"
	"slices"
	"time"

	"github.com/lalith-99/huddle/internal/models"
)

// txn is one loaded snapshot plus the lookup tables derived from it.
//
// The tables are rebuilt from scratch for every operation, so they can
// never drift from the snapshot across operations. Within an operation,
// insertMessage and deleteMessage keep the message index in step.
type txn struct {
	ws  *models.Workspace
	now time.Time

	users    map[int]*models.User
	channels map[int]*models.Channel
	dms      map[int]*models.Dm

	// index maps every live message ID to where it lives.
	index map[int]location

	outbox []delivery
	timers []standupTimer
}

type location struct {
	ref models.ContainerRef
	msg *models.Message
}

type delivery struct {
	userID int
	note   models.Notification
}

type standupTimer struct {
	channelID int
	finish    int64
}

func newTxn(ws *models.Workspace, now time.Time) *txn {
	tx := &txn{
		ws:       ws,
		now:      now,
		users:    make(map[int]*models.User, len(ws.Users)),
		channels: make(map[int]*models.Channel, len(ws.Channels)),
		dms:      make(map[int]*models.Dm, len(ws.Dms)),
		index:    make(map[int]location),
	}
	for _, u := range ws.Users {
		tx.users[u.ID] = u
	}
	for _, ch := range ws.Channels {
		tx.channels[ch.ID] = ch
		tx.indexMessages(models.ChannelRef(ch.ID), ch.Messages)
	}
	for _, dm := range ws.Dms {
		tx.dms[dm.ID] = dm
		tx.indexMessages(models.DmRef(dm.ID), dm.Messages)
	}
	return tx
}

func (tx *txn) indexMessages(ref models.ContainerRef, msgs []*models.Message) {
	for _, m := range msgs {
		if m.Container != ref {
			panic(fmt.Sprintf("workspace: message %d stored in %v but references %v", m.ID, ref, m.Container))
		}
		tx.indexMessage(m)
	}
}

func (tx *txn) indexMessage(m *models.Message) {
	if prev, ok := tx.index[m.ID]; ok {
		panic(fmt.Sprintf("workspace: message id %d collides (%v and %v)", m.ID, prev.ref, m.Container))
	}
	tx.index[m.ID] = location{ref: m.Container, msg: m}
}

func (tx *txn) nowUnix() int64 { return tx.now.Unix() }

// container is a resolved Channel or Dm.
type container struct {
	ref     models.ContainerRef
	channel *models.Channel
	dm      *models.Dm
}

func (tx *txn) container(ref models.ContainerRef) (container, bool) {
	switch ref.Kind {
	case models.KindChannel:
		if ch, ok := tx.channels[ref.ID]; ok {
			return container{ref: ref, channel: ch}, true
		}
	case models.KindDm:
		if dm, ok := tx.dms[ref.ID]; ok {
			return container{ref: ref, dm: dm}, true
		}
	}
	return container{}, false
}

func (c container) name() string {
	if c.channel != nil {
		return c.channel.Name
	}
	return c.dm.Name
}

func (c container) memberIDs() []int {
	if c.channel != nil {
		return c.channel.MemberIDs
	}
	return c.dm.MemberIDs
}

func (c container) messages() *[]*models.Message {
	if c.channel != nil {
		return &c.channel.Messages
	}
	return &c.dm.Messages
}

// noteIDs returns the (channel_id, dm_id) pair for a notification about
// this container.
func (c container) noteIDs() (int, int) {
	if c.channel != nil {
		return c.channel.ID, -1
	}
	return -1, c.dm.ID
}

// insertMessage allocates the next message ID and puts the message at
// the head of the container.
func (tx *txn) insertMessage(c container, senderID int, body string) *models.Message {
	tx.ws.LastMessageID++
	m := &models.Message{
		ID:        tx.ws.LastMessageID,
		Container: c.ref,
		SenderID:  senderID,
		Body:      body,
		TimeSent:  tx.nowUnix(),
		Reacts:    []models.React{},
	}
	tx.indexMessage(m)
	msgs := c.messages()
	*msgs = slices.Insert(*msgs, 0, m)
	return m
}

func (tx *txn) deleteMessage(loc location) {
	c, ok := tx.container(loc.ref)
	if !ok {
		panic(fmt.Sprintf("workspace: index points message %d at missing container %v", loc.msg.ID, loc.ref))
	}
	msgs := c.messages()
	i := slices.IndexFunc(*msgs, func(m *models.Message) bool { return m.ID == loc.msg.ID })
	if i < 0 {
		panic(fmt.Sprintf("workspace: message %d indexed in %v but not stored there", loc.msg.ID, loc.ref))
	}
	*msgs = slices.Delete(*msgs, i, i+1)
	delete(tx.index, loc.msg.ID)
}

// lookup resolves a message ID through the index.
func (tx *txn) lookup(messageID int) (location, container, bool) {
	loc, ok := tx.index[messageID]
	if !ok {
		return location{}, container{}, false
	}
	c, ok := tx.container(loc.ref)
	if !ok {
		panic(fmt.Sprintf("workspace: index points message %d at missing container %v", messageID, loc.ref))
	}
	return loc, c, true
}

func (tx *txn) handleOf(uid int) string {
	if u, ok := tx.users[uid]; ok {
		return u.HandleStr
	}
	return ""
}
