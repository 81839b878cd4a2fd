package whatsapp

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync/atomic"

	"cacamba_bot/internal/bot"
	"cacamba_bot/internal/notifications"

	"github.com/mdp/qrterminal/v3"
	"github.com/rs/zerolog/log"
	"go.mau.fi/whatsmeow"
	"go.mau.fi/whatsmeow/proto/waE2E"
	"go.mau.fi/whatsmeow/store/sqlstore"
	"go.mau.fi/whatsmeow/types"
	"go.mau.fi/whatsmeow/types/events"
	"google.golang.org/protobuf/proto"
	_ "modernc.org/sqlite"
)

// DefaultStoreAddress keeps the paired device credentials next to the binary.
const DefaultStoreAddress = "file:auth_info.db?_pragma=foreign_keys(1)&_pragma=busy_timeout(5000)"

// MessageHandler receives every message the bot should answer.
type MessageHandler interface {
	HandleAsync(ctx context.Context, msg bot.Incoming)
}

// Alerter is told about session changes an operator may need to act on.
type Alerter interface {
	NotifySessionEvent(ctx context.Context, event notifications.SessionEvent)
}

// Session owns the WhatsApp connection. It is the bot's Sender.
type Session struct {
	client  *whatsmeow.Client
	handler MessageHandler
	alerts  Alerter
	qrOut   io.Writer
	ctx     context.Context
	dropped atomic.Bool

	handlerID uint32
	attached  bool
}

// Open loads (or creates) the device store at storeAddress and prepares a
// client for it. Nothing is sent over the network until Start.
func Open(ctx context.Context, storeAddress string) (*Session, error) {
	if storeAddress == "" {
		storeAddress = DefaultStoreAddress
	}

	container, err := sqlstore.New(ctx, "sqlite", storeAddress, NewLogger("Database"))
	if err != nil {
		return nil, fmt.Errorf("failed to open session store: %w", err)
	}

	device, err := container.GetFirstDevice(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load device from session store: %w", err)
	}

	return &Session{
		client: whatsmeow.NewClient(device, NewLogger("Client")),
		qrOut:  os.Stdout,
		ctx:    context.Background(),
	}, nil
}

// Start registers the event dispatcher and connects. An unpaired device
// prints a pairing QR code to the terminal; pairing finishes in the background.
func (s *Session) Start(ctx context.Context, handler MessageHandler, alerts Alerter) error {
	s.ctx = ctx
	s.handler = handler
	s.alerts = alerts
	s.handlerID = s.client.AddEventHandler(s.dispatch)
	s.attached = true

	if s.client.Store.ID != nil {
		log.Info().Str("jid", s.client.Store.ID.String()).Msg("Connecting with stored WhatsApp session")
		if err := s.client.Connect(); err != nil {
			return fmt.Errorf("failed to connect to WhatsApp: %w", err)
		}
		return nil
	}

	qrChan, err := s.client.GetQRChannel(ctx)
	if err != nil {
		return fmt.Errorf("failed to open QR channel: %w", err)
	}
	if err := s.client.Connect(); err != nil {
		return fmt.Errorf("failed to connect to WhatsApp: %w", err)
	}

	s.notify(notifications.EventPairingRequired, "")
	go s.renderQR(qrChan)
	return nil
}

func (s *Session) renderQR(qrChan <-chan whatsmeow.QRChannelItem) {
	defer bot.Recover(log.Logger, "qr renderer")

	for item := range qrChan {
		switch item.Event {
		case "code":
			qrterminal.GenerateHalfBlock(item.Code, qrterminal.L, s.qrOut)
			log.Info().Dur("expires_in", item.Timeout).Msg("Scan the QR code with WhatsApp to pair this bot")
		case "success":
			log.Info().Msg("✅ WhatsApp pairing complete")
		case "timeout":
			log.Warn().Msg("QR pairing timed out; restart the bot to try again")
		default:
			log.Warn().Err(item.Error).Str("event", item.Event).Msg("QR pairing ended")
		}
	}
}

// SendText sends a plain text message to the chat addressed by the JID string to.
func (s *Session) SendText(ctx context.Context, to, text string) error {
	jid, err := types.ParseJID(to)
	if err != nil {
		return fmt.Errorf("invalid recipient %q: %w", to, err)
	}

	resp, err := s.client.SendMessage(ctx, jid, &waE2E.Message{
		Conversation: proto.String(text),
	})
	if err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}

	log.Debug().Str("to", to).Str("message_id", string(resp.ID)).Msg("Message sent")
	return nil
}

// Status reports whether the socket is up and whether a device is paired.
func (s *Session) Status() (connected, loggedIn bool) {
	if s == nil || s.client == nil {
		return false, false
	}
	return s.client.IsConnected(), s.client.IsLoggedIn()
}

// Detach stops delivering WhatsApp events to the handler. The connection
// stays up so replies already in flight can still be sent.
func (s *Session) Detach() {
	if s == nil || s.client == nil || !s.attached {
		return
	}
	s.client.RemoveEventHandler(s.handlerID)
	s.attached = false
	log.Info().Msg("Stopped receiving WhatsApp messages")
}

// Close disconnects from WhatsApp. The stored credentials are kept.
func (s *Session) Close() {
	if s == nil || s.client == nil {
		return
	}
	s.client.Disconnect()
	log.Info().Msg("Disconnected from WhatsApp")
}

func (s *Session) dispatch(evt interface{}) {
	defer bot.Recover(log.Logger, "whatsapp event")

	switch v := evt.(type) {
	case *events.Message:
		msg, ok := toIncoming(v)
		if !ok {
			log.Debug().Str("message_id", string(v.Info.ID)).Msg("Ignoring message")
			return
		}
		if s.handler != nil {
			s.handler.HandleAsync(s.ctx, msg)
		}
	case *events.Connected:
		log.Info().Msg("✅ Connected to WhatsApp")
		if s.dropped.Swap(false) {
			s.notify(notifications.EventReconnected, "")
		}
	case *events.Disconnected:
		s.dropped.Store(true)
		log.Warn().Msg("❌ WhatsApp connection closed; waiting for reconnect")
	case *events.KeepAliveTimeout:
		log.Warn().Int("error_count", v.ErrorCount).Msg("WhatsApp keepalive timed out")
	case *events.LoggedOut:
		log.Error().
			Bool("on_connect", v.OnConnect).
			Int("reason", int(v.Reason)).
			Msg("❌ WhatsApp session logged out; pair again to resume")
		s.notify(notifications.EventLoggedOut, fmt.Sprintf("reason: %d", int(v.Reason)))
	case *events.StreamReplaced:
		log.Error().Msg("❌ WhatsApp session was opened elsewhere")
		s.notify(notifications.EventStreamReplaced, "")
	case *events.PairSuccess:
		log.Info().
			Str("jid", v.ID.String()).
			Str("platform", v.Platform).
			Msg("Paired with WhatsApp")
	}
}

func (s *Session) notify(kind notifications.SessionEventKind, detail string) {
	if s.alerts == nil {
		return
	}
	s.alerts.NotifySessionEvent(s.ctx, notifications.SessionEvent{Kind: kind, Detail: detail})
}
