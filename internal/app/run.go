package app

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"text/tabwriter"
	"time"

	"cacamba_bot/internal/bot"
	"cacamba_bot/internal/health"
	"cacamba_bot/internal/notifications"
	"cacamba_bot/internal/sheets"
	"cacamba_bot/internal/whatsapp"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

const shutdownTimeout = 5 * time.Second

// Run starts the WhatsApp bot and the liveness server and blocks until ctx
// is cancelled. A bot that fails to start is logged; the web server keeps
// running regardless.
func Run(ctx context.Context, cfg Config) error {
	notifier := InitializeNotificationClient(cfg)
	loader := InitializeLoader(ctx, cfg)

	replies, err := bot.LoadReplies(cfg.RepliesFile)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to load replies file, using built-in replies")
	}

	session, handler := startBot(ctx, cfg, loader, replies, notifier)

	var status health.StatusProvider
	if session != nil {
		status = session
	}
	srv := health.NewServer(cfg.Port, health.NewRouter(status))

	serveErr := make(chan error, 1)
	go func() {
		log.Info().Str("port", cfg.Port).Msg("🌍 Web server listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
		close(serveErr)
	}()

	var runErr error
	select {
	case <-ctx.Done():
		log.Info().Msg("Shutting down")
	case err, ok := <-serveErr:
		if ok {
			runErr = fmt.Errorf("web server failed: %w", err)
		}
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("Web server did not shut down cleanly")
	}

	session.Detach()
	if handler != nil {
		handler.Drain()
	}
	session.Close()
	notifier.Wait()

	logNotificationTotals(log.Logger, notifier)

	log.Info().Msg("Done")
	return runErr
}

func startBot(ctx context.Context, cfg Config, loader *sheets.Loader, replies bot.Replies, notifier *notifications.Client) (*whatsapp.Session, *bot.Handler) {
	session, err := whatsapp.Open(ctx, cfg.SessionStore)
	if err != nil {
		log.Error().Err(err).Msg("❌ Failed to start bot")
		return nil, nil
	}

	handler := bot.NewHandler(session, loader, replies)
	if err := session.Start(ctx, handler, notifier); err != nil {
		log.Error().Err(err).Msg("❌ Failed to start bot")
	}
	return session, handler
}

func logNotificationTotals(logger zerolog.Logger, notifier *notifications.Client) {
	sent, failed, attempts := notifier.GetMetrics()
	logger.Info().
		Int64("sent", sent).
		Int64("failed", failed).
		Int64("attempts", attempts).
		Msg("Notification totals")
}

// PrintRows loads the price sheet once and writes it as a table to w.
func PrintRows(ctx context.Context, cfg Config, w io.Writer) error {
	rows := InitializeLoader(ctx, cfg).Load(ctx)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ENDEREÇO\tBAIRRO\tVALOR LIMPO\tVALOR SUJO")
	for _, row := range rows {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", row.Address, row.Neighborhood, row.CleanPrice, row.DirtyPrice)
	}
	if err := tw.Flush(); err != nil {
		return fmt.Errorf("failed to write rows: %w", err)
	}

	_, err := fmt.Fprintf(w, "%d neighborhoods\n", len(rows))
	return err
}
