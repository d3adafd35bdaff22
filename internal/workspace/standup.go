package workspace

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/lalith-99/huddle/internal/models"
	"go.uber.org/zap"
)

const (
	flushRetryDelay = time.Second

	// MaxStandupLength bounds a standup, in seconds.
	MaxStandupLength = 24 * 60 * 60
)

// StandupStatus reports whether a channel has an active standup. TimeFinish
// is nil when none is active.
type StandupStatus struct {
	IsActive   bool   `json:"is_active"`
	TimeFinish *int64 `json:"time_finish"`
}

// StartStandup opens a standup on a channel for length seconds and
// returns its finish time. When it expires, everything sent to it is
// posted as one message from the starter. There is no way to end a
// standup early.
func (e *Engine) StartStandup(ctx context.Context, uid, channelID, length int) (int64, error) {
	var finish int64
	err := e.update(ctx, func(tx *txn) error {
		if _, err := tx.actor(uid); err != nil {
			return err
		}
		c, err := tx.memberContainer(uid, models.ChannelRef(channelID))
		if err != nil {
			return err
		}
		if length < 0 || length > MaxStandupLength {
			return invalid("standup length must be 0 to %d seconds, got %d", MaxStandupLength, length)
		}
		if c.channel.Standup != nil {
			return conflict("a standup is already active in channel %d", channelID)
		}

		finish = tx.nowUnix() + int64(length)
		c.channel.Standup = &models.Standup{
			StarterID:  uid,
			TimeFinish: finish,
			Buffer:     []models.StandupLine{},
		}
		tx.timers = append(tx.timers, standupTimer{channelID: channelID, finish: finish})
		return nil
	})
	return finish, err
}

func (e *Engine) StandupActive(ctx context.Context, uid, channelID int) (StandupStatus, error) {
	var status StandupStatus
	err := e.view(ctx, func(tx *txn) error {
		if _, err := tx.actor(uid); err != nil {
			return err
		}
		c, err := tx.memberContainer(uid, models.ChannelRef(channelID))
		if err != nil {
			return err
		}
		if su := c.channel.Standup; su != nil {
			finish := su.TimeFinish
			status = StandupStatus{IsActive: true, TimeFinish: &finish}
		}
		return nil
	})
	return status, err
}

// SendStandup buffers text in the active standup. It creates no message
// and is never scanned for tags.
func (e *Engine) SendStandup(ctx context.Context, uid, channelID int, text string) error {
	return e.update(ctx, func(tx *txn) error {
		sender, err := tx.actor(uid)
		if err != nil {
			return err
		}
		c, err := tx.memberContainer(uid, models.ChannelRef(channelID))
		if err != nil {
			return err
		}
		if n := utf8.RuneCountInString(text); n < 1 || n > MaxMessageLength {
			return invalid("standup message must be 1 to %d characters, got %d", MaxMessageLength, n)
		}
		su := c.channel.Standup
		if su == nil {
			return invalid("no standup is active in channel %d", channelID)
		}
		su.Buffer = append(su.Buffer, models.StandupLine{Handle: sender.HandleStr, Text: text})
		return nil
	})
}

// flushStandup is the scheduler's callback. It posts the buffer as one
// message from the starter and returns the channel to inactive. A flush
// that finds no standup (already flushed) does nothing.
func (e *Engine) flushStandup(channelID int) {
	var (
		posted  int
		lines   int
		flushed bool
	)
	err := e.update(context.Background(), func(tx *txn) error {
		ch, ok := tx.channels[channelID]
		if !ok || ch.Standup == nil {
			return nil
		}
		su := ch.Standup
		if su.TimeFinish > tx.nowUnix() {
			tx.timers = append(tx.timers, standupTimer{channelID: channelID, finish: su.TimeFinish})
			return nil
		}

		ch.Standup = nil
		flushed = true
		lines = len(su.Buffer)
		if lines == 0 {
			return nil
		}
		var body strings.Builder
		for _, line := range su.Buffer {
			fmt.Fprintf(&body, "%s: %s\n", line.Handle, line.Text)
		}
		m := tx.insertMessage(container{ref: models.ChannelRef(ch.ID), channel: ch}, su.StarterID, body.String())
		posted = m.ID
		return nil
	})
	if err != nil {
		e.logger.Error("failed to flush standup",
			zap.Int("channel_id", channelID),
			zap.Error(err),
		)
		// The standup is still active in storage; try again shortly.
		e.standups.schedule(e.clock.Now().Add(flushRetryDelay), channelID)
		return
	}
	if flushed {
		e.logger.Info("standup flushed",
			zap.Int("channel_id", channelID),
			zap.Int("lines", lines),
			zap.Int("message_id", posted),
		)
	}
}
