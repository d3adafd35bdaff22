package workspace

import (
	"context"
	"slices"
	"unicode/utf8"

	"github.com/lalith-99/huddle/internal/models"
)

const (
	MaxMessageLength = 1000
	PageSize         = 50
)

// MessageView is a message as returned to a particular caller: reacts
// carry whether that caller is among the reactors.
type MessageView struct {
	MessageID int         `json:"message_id"`
	UID       int         `json:"u_id"`
	Message   string      `json:"message"`
	TimeSent  int64       `json:"time_sent"`
	Reacts    []ReactView `json:"reacts"`
	IsPinned  bool        `json:"is_pinned"`
}

type ReactView struct {
	ReactID           int   `json:"react_id"`
	UIDs              []int `json:"u_ids"`
	IsThisUserReacted bool  `json:"is_this_user_reacted"`
}

// Page is one pagination window. End is -1 when no older messages
// remain past this page.
type Page struct {
	Messages []MessageView `json:"messages"`
	Start    int           `json:"start"`
	End      int           `json:"end"`
}

// Located is the result of a global message lookup.
type Located struct {
	Container models.ContainerRef `json:"container"`
	Message   MessageView         `json:"message"`
}

func viewMessage(m *models.Message, viewerID int) MessageView {
	reacts := make([]ReactView, 0, len(m.Reacts))
	for _, r := range m.Reacts {
		reacts = append(reacts, ReactView{
			ReactID:           r.ReactID,
			UIDs:              slices.Clone(r.UserIDs),
			IsThisUserReacted: slices.Contains(r.UserIDs, viewerID),
		})
	}
	return MessageView{
		MessageID: m.ID,
		UID:       m.SenderID,
		Message:   m.Body,
		TimeSent:  m.TimeSent,
		Reacts:    reacts,
		IsPinned:  m.IsPinned,
	}
}

// memberContainer resolves ref and checks the actor belongs to it.
func (tx *txn) memberContainer(actorID int, ref models.ContainerRef) (container, error) {
	c, ok := tx.container(ref)
	if !ok {
		return container{}, notFound("%s %d does not exist", ref.Kind, ref.ID)
	}
	if !slices.Contains(c.memberIDs(), actorID) {
		return container{}, forbidden("user is not a member of this %s", ref.Kind)
	}
	return c, nil
}

// memberMessage resolves a message the actor can see.
func (tx *txn) memberMessage(actorID, messageID int) (location, container, error) {
	loc, c, ok := tx.lookup(messageID)
	if !ok {
		return location{}, container{}, notFound("message %d does not exist", messageID)
	}
	if !tx.isMember(actorID, c.ref) {
		return location{}, container{}, forbidden("user is not a member of this %s", c.ref.Kind)
	}
	return loc, c, nil
}

// editableMessage resolves a message the actor may edit or remove: their
// own, or any message in a container where they have owner rights.
func (tx *txn) editableMessage(actorID, messageID int) (location, container, error) {
	loc, c, err := tx.memberMessage(actorID, messageID)
	if err != nil {
		return location{}, container{}, err
	}
	if loc.msg.SenderID != actorID && !tx.hasOwnerRights(actorID, c.ref) {
		return location{}, container{}, forbidden("user may not modify message %d", messageID)
	}
	return loc, c, nil
}

// SendMessage posts body to a channel or DM and returns the new message ID.
func (e *Engine) SendMessage(ctx context.Context, senderID int, ref models.ContainerRef, body string) (int, error) {
	var id int
	err := e.update(ctx, func(tx *txn) error {
		sender, err := tx.actor(senderID)
		if err != nil {
			return err
		}
		c, err := tx.memberContainer(senderID, ref)
		if err != nil {
			return err
		}
		if n := utf8.RuneCountInString(body); n < 1 || n > MaxMessageLength {
			return invalid("message must be 1 to %d characters, got %d", MaxMessageLength, n)
		}
		m := tx.insertMessage(c, senderID, body)
		tx.scanTags(c, m, sender)
		id = m.ID
		return nil
	})
	return id, err
}

// EditMessage replaces a message body in place. An empty body removes the
// message instead.
func (e *Engine) EditMessage(ctx context.Context, actorID, messageID int, body string) error {
	return e.update(ctx, func(tx *txn) error {
		actor, err := tx.actor(actorID)
		if err != nil {
			return err
		}
		if n := utf8.RuneCountInString(body); n > MaxMessageLength {
			return invalid("message must be at most %d characters, got %d", MaxMessageLength, n)
		}
		loc, c, err := tx.editableMessage(actorID, messageID)
		if err != nil {
			return err
		}
		if body == "" {
			tx.deleteMessage(loc)
			return nil
		}
		loc.msg.Body = body
		tx.scanTags(c, loc.msg, actor)
		return nil
	})
}

// RemoveMessage deletes a message. Its ID is never handed out again.
func (e *Engine) RemoveMessage(ctx context.Context, actorID, messageID int) error {
	return e.update(ctx, func(tx *txn) error {
		if _, err := tx.actor(actorID); err != nil {
			return err
		}
		loc, _, err := tx.editableMessage(actorID, messageID)
		if err != nil {
			return err
		}
		tx.deleteMessage(loc)
		return nil
	})
}

// Messages returns up to PageSize messages starting at index start,
// newest first.
func (e *Engine) Messages(ctx context.Context, actorID int, ref models.ContainerRef, start int) (Page, error) {
	var page Page
	err := e.view(ctx, func(tx *txn) error {
		if _, err := tx.actor(actorID); err != nil {
			return err
		}
		c, err := tx.memberContainer(actorID, ref)
		if err != nil {
			return err
		}
		msgs := *c.messages()
		if start < 0 || start > len(msgs) {
			return invalid("start %d is outside 0..%d", start, len(msgs))
		}

		end := start + PageSize
		stop := end
		if end >= len(msgs) {
			end = -1
			stop = len(msgs)
		}
		page = Page{Messages: make([]MessageView, 0, stop-start), Start: start, End: end}
		for _, m := range msgs[start:stop] {
			page.Messages = append(page.Messages, viewMessage(m, actorID))
		}
		return nil
	})
	return page, err
}

// LookupMessage resolves a message ID to its container through the
// global index. It performs no permission check; callers that expose it
// must check membership themselves.
func (e *Engine) LookupMessage(ctx context.Context, messageID int) (Located, error) {
	var found Located
	err := e.view(ctx, func(tx *txn) error {
		loc, _, ok := tx.lookup(messageID)
		if !ok {
			return notFound("message %d does not exist", messageID)
		}
		found = Located{Container: loc.ref, Message: viewMessage(loc.msg, 0)}
		return nil
	})
	return found, err
}

// ShareMessage copies a message the actor can see into another container
// they belong to, optionally followed by a comment. The copy is a new
// message in every respect, including tag notifications.
func (e *Engine) ShareMessage(ctx context.Context, actorID, messageID int, comment string, target models.ContainerRef) (int, error) {
	var id int
	err := e.update(ctx, func(tx *txn) error {
		actor, err := tx.actor(actorID)
		if err != nil {
			return err
		}
		if n := utf8.RuneCountInString(comment); n > MaxMessageLength {
			return invalid("comment must be at most %d characters, got %d", MaxMessageLength, n)
		}
		og, _, err := tx.memberMessage(actorID, messageID)
		if err != nil {
			return err
		}
		c, err := tx.memberContainer(actorID, target)
		if err != nil {
			return err
		}
		body := og.msg.Body
		if comment != "" {
			body += "\n" + comment
		}
		if n := utf8.RuneCountInString(body); n > MaxMessageLength {
			return invalid("shared message must be at most %d characters, got %d", MaxMessageLength, n)
		}
		m := tx.insertMessage(c, actorID, body)
		tx.scanTags(c, m, actor)
		id = m.ID
		return nil
	})
	return id, err
}

func (e *Engine) PinMessage(ctx context.Context, actorID, messageID int) error {
	return e.setPinned(ctx, actorID, messageID, true)
}

func (e *Engine) UnpinMessage(ctx context.Context, actorID, messageID int) error {
	return e.setPinned(ctx, actorID, messageID, false)
}

func (e *Engine) setPinned(ctx context.Context, actorID, messageID int, pinned bool) error {
	return e.update(ctx, func(tx *txn) error {
		if _, err := tx.actor(actorID); err != nil {
			return err
		}
		loc, c, err := tx.memberMessage(actorID, messageID)
		if err != nil {
			return err
		}
		if !tx.hasOwnerRights(actorID, c.ref) {
			return forbidden("only owners may pin messages")
		}
		if loc.msg.IsPinned == pinned {
			if pinned {
				return conflict("message %d is already pinned", messageID)
			}
			return conflict("message %d is not pinned", messageID)
		}
		loc.msg.IsPinned = pinned
		return nil
	})
}
