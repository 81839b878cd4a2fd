package bot

import (
	"context"
	"fmt"
	"runtime/debug"
	"sync"

	"cacamba_bot/internal/sheets"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

// Incoming is one inbound text message, already stripped of transport detail.
type Incoming struct {
	ID       string
	Chat     string // reply address
	Sender   string
	PushName string
	Text     string
}

// Sender delivers a text message to a chat.
type Sender interface {
	SendText(ctx context.Context, to, text string) error
}

// PriceSource supplies the neighbourhood price rows. Implementations must
// not fail: an unavailable sheet is reported as zero rows.
type PriceSource interface {
	Load(ctx context.Context) []sheets.PriceRow
}

// Handler answers every inbound message on its own, without conversation state.
type Handler struct {
	sender  Sender
	prices  PriceSource
	replies Replies

	mu       sync.Mutex
	draining bool
	wg       sync.WaitGroup
}

func NewHandler(sender Sender, prices PriceSource, replies Replies) *Handler {
	return &Handler{
		sender:  sender,
		prices:  prices,
		replies: replies,
	}
}

// Reply returns the text to send back for an inbound text.
func (h *Handler) Reply(ctx context.Context, text string) string {
	if !h.replies.Matches(text) {
		return h.replies.Prompt
	}

	var rows []sheets.PriceRow
	if h.prices != nil {
		rows = h.prices.Load(ctx)
	}
	return h.replies.Menu(len(rows))
}

func (h *Handler) Handle(ctx context.Context, msg Incoming) error {
	logger := log.With().
		Str("trace_id", uuid.NewString()).
		Str("message_id", msg.ID).
		Str("chat", msg.Chat).
		Logger()

	logger.Info().
		Str("push_name", msg.PushName).
		Int("text_len", len(msg.Text)).
		Msg("Received message")

	reply := h.Reply(ctx, msg.Text)
	if err := h.sender.SendText(ctx, msg.Chat, reply); err != nil {
		return fmt.Errorf("failed to send reply to %s: %w", msg.Chat, err)
	}

	logger.Debug().Int("reply_len", len(reply)).Msg("Reply sent")
	return nil
}

// HandleAsync handles msg on its own goroutine. Errors and panics are
// logged and never reach the caller. The message is handled to completion
// even if ctx is cancelled afterwards; messages arriving after Drain are dropped.
func (h *Handler) HandleAsync(ctx context.Context, msg Incoming) {
	h.mu.Lock()
	if h.draining {
		h.mu.Unlock()
		log.Warn().Str("message_id", msg.ID).Msg("Shutting down, dropping message")
		return
	}
	h.wg.Add(1)
	h.mu.Unlock()

	ctx = context.WithoutCancel(ctx)
	go func() {
		defer h.wg.Done()
		defer Recover(log.Logger, "message handler")

		if err := h.Handle(ctx, msg); err != nil {
			log.Error().Err(err).Str("message_id", msg.ID).Msg("Failed to handle message")
		}
	}()
}

// Wait blocks until every message started with HandleAsync has finished.
func (h *Handler) Wait() {
	h.wg.Wait()
}

// Drain stops accepting new messages and waits for the ones in flight.
func (h *Handler) Drain() {
	h.mu.Lock()
	h.draining = true
	h.mu.Unlock()
	h.wg.Wait()
}

// Recover logs a panic in progress instead of letting it crash the process.
// It must be deferred directly.
func Recover(logger zerolog.Logger, where string) {
	if r := recover(); r != nil {
		logger.Error().
			Str("where", where).
			Interface("panic", r).
			Bytes("stack", debug.Stack()).
			Msg("❌ Recovered from panic")
	}
}
