package whatsapp

import (
	"cacamba_bot/internal/bot"

	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
)

// TextOf returns the plain text of a message: the simple conversation body,
// or the text of an extended (quoted, link preview) message. Other message
// kinds yield "".
func TextOf(msg *waE2E.Message) string {
	if msg == nil {
		return ""
	}
	if text := msg.GetConversation(); text != "" {
		return text
	}
	return msg.GetExtendedTextMessage().GetText()
}

// toIncoming converts a message event into the bot's view of it. The second
// result is false for events the bot must not answer.
func toIncoming(evt *events.Message) (bot.Incoming, bool) {
	if evt == nil || evt.Message == nil {
		return bot.Incoming{}, false
	}
	if evt.Info.IsFromMe {
		return bot.Incoming{}, false
	}
	if evt.Info.Chat.Server == types.BroadcastServer {
		return bot.Incoming{}, false
	}
	// Deletes, edits, ephemeral-timer changes and reactions are not user text.
	if evt.Message.GetProtocolMessage() != nil || evt.Message.GetReactionMessage() != nil {
		return bot.Incoming{}, false
	}

	return bot.Incoming{
		ID:       string(evt.Info.ID),
		Chat:     evt.Info.Chat.String(),
		Sender:   evt.Info.Sender.String(),
		PushName: evt.Info.PushName,
		Text:     TextOf(evt.Message),
	}, true
}
