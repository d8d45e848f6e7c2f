package composer

import (
	"context"
	"time"

	"github.com/matheus3301/tides/internal/bus"
	"github.com/matheus3301/tides/internal/remote"
	"go.uber.org/zap"
)

// Sender delivers outbound messages.
type Sender interface {
	SendDirectMessage(ctx context.Context, input remote.MessageInput) error
	SendBroadcastMessage(ctx context.Context, groupID string, input remote.MessageInput) error
}

// Send resets the composer and delivers what was typed. Empty text sends
// nothing.
func (c *Composer) Send(ctx context.Context) error {
	input := c.PrepareSend()
	if input == nil {
		return nil
	}
	return c.Deliver(ctx, *input)
}

// SendReply delivers body directly without touching the typed text. Quick
// reply buttons use it.
func (c *Composer) SendReply(ctx context.Context, body string) error {
	if body == "" {
		return nil
	}
	return c.Deliver(ctx, remote.MessageInput{
		Body: body,
		Flow: remote.FlowOutbound,
		Type: remote.KindText,
	})
}

// Deliver sends input to the conversation. Contacts get a direct message
// addressed by receiver id; any other conversation is a group broadcast. A
// failure shows an error that clears itself after the error delay.
func (c *Composer) Deliver(ctx context.Context, input remote.MessageInput) error {
	c.setSending(1)
	defer c.setSending(-1)

	var err error
	if c.conversationType == remote.ConversationContact {
		input.ReceiverID = c.id
		err = c.sender.SendDirectMessage(ctx, input)
	} else {
		input.ReceiverID = ""
		err = c.sender.SendBroadcastMessage(ctx, c.id, input)
	}
	if err != nil {
		c.logger.Warn("send failed", zap.Error(err))
		c.ShowError(remote.UserMessage(err))
		return err
	}
	c.logger.Debug("message sent", zap.Int("body_len", len(input.Body)), zap.Bool("template", input.TemplateID != ""))
	return nil
}

// ShowError displays msg and arms its clear timer. A timer armed for an
// earlier error is stopped, so the latest error always stays for the full
// delay.
func (c *Composer) ShowError(msg string) {
	c.mu.Lock()
	if c.errTimer != nil {
		c.errTimer.Stop()
	}
	c.errSeq++
	seq := c.errSeq
	c.state.ErrorMessage = msg
	c.errTimer = time.AfterFunc(c.errorDelay, func() { c.clearError(seq) })
	c.mu.Unlock()
	c.publish(bus.KindComposerError, msg)
}

// ClearError dismisses the error now. It does nothing when no error shows.
func (c *Composer) ClearError() {
	c.mu.Lock()
	c.errSeq++
	if c.errTimer != nil {
		c.errTimer.Stop()
		c.errTimer = nil
	}
	had := c.state.ErrorMessage != ""
	c.state.ErrorMessage = ""
	c.mu.Unlock()
	if had {
		c.publish(bus.KindComposerErrCleared, nil)
	}
}

func (c *Composer) clearError(seq uint64) {
	c.mu.Lock()
	if seq != c.errSeq || c.state.ErrorMessage == "" {
		c.mu.Unlock()
		return
	}
	c.state.ErrorMessage = ""
	c.errTimer = nil
	c.mu.Unlock()
	c.publish(bus.KindComposerErrCleared, nil)
}

func (c *Composer) setSending(delta int) {
	c.mu.Lock()
	c.inFlight += delta
	c.state.Sending = c.inFlight > 0
	c.mu.Unlock()
	c.publish(bus.KindComposerChanged, nil)
}
