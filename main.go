package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"jobchat-client/internal/config"
	"jobchat-client/internal/controller"
	"jobchat-client/internal/models"
	"jobchat-client/internal/ops"
	"jobchat-client/internal/presence"
	"jobchat-client/internal/rabbitmq"
	"jobchat-client/internal/realtime"
	"jobchat-client/internal/relay"
	"jobchat-client/internal/rest"
	"jobchat-client/internal/session"
	"jobchat-client/internal/telemetry"
)

func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	shutdownTracing, err := telemetry.InitTracing(ctx, "jobchat-client")
	if err != nil {
		log.Fatalf("failed to init tracing: %v", err)
	}
	defer func() {
		if err := shutdownTracing(context.Background()); err != nil {
			log.Printf("tracing shutdown: %v", err)
		}
	}()

	store, err := session.Open(cfg.SessionDBPath)
	if err != nil {
		log.Fatalf("failed to open session store: %v", err)
	}
	defer store.Close()

	userID, err := resolveUserID(ctx, store)
	if err != nil {
		log.Fatalf("no user identity: %v (set USER_ID or log in first)", err)
	}
	log.Printf("running as user=%d", userID)

	if err := storeDeviceToken(ctx, store); err != nil {
		log.Printf("device token: %v", err)
	}

	backend := rest.NewClient(cfg.BackendBaseURL, cfg.HTTPTimeout)
	notifier := relay.NewClient(cfg.RelayBaseURL, cfg.HTTPTimeout)
	channels := realtime.NewClient(realtime.Config{
		URL:     cfg.RealtimeURL,
		APIKey:  cfg.RealtimeAPIKey,
		Cluster: cfg.RealtimeCluster,
	})
	defer channels.Close()

	publisher := rabbitmq.NewPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	defer publisher.Close()
	emitter := telemetry.NewAuditEmitter(publisher, "client_events.chat", "jobchat-client", cfg.Environment)

	reporter := presence.NewReporter(backend, store)
	reporter.ReportCurrent(ctx)

	chatList := controller.NewChatList(backend, channels, userID, func(chats []models.Chat) {
		log.Printf("chat list updated: %d conversations", len(chats))
	})
	chatList.Focus(ctx)

	// Optionally watch one conversation the way the thread screen would.
	var thread *controller.Thread
	if chatID, otherUser, ok := watchTarget(); ok {
		deps := controller.ThreadDeps{
			Messages:     backend,
			Profiles:     backend,
			Presence:     backend,
			Notifier:     notifier,
			Channels:     channels,
			Audit:        emitter,
			PollInterval: cfg.PollInterval,
		}
		chat := models.Chat{ChatID: chatID, OtherUser: otherUser}
		thread = controller.NewThread(deps, chat, userID, func(msgs []models.Message) {
			if len(msgs) > 0 {
				latest := msgs[len(msgs)-1]
				log.Printf("thread %d: %d messages, latest from user=%d", chatID, len(msgs), latest.Sender)
			}
		})
		thread.Focus(ctx)
	}

	opsServer := ops.NewServer(channels, publisher, emitter, cfg.DebugRoutes)
	httpServer := &http.Server{
		Addr:    fmt.Sprintf(":%d", cfg.OpsPort),
		Handler: opsServer.Router(),
	}
	go func() {
		log.Printf("ops server listening on %s", httpServer.Addr)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("ops server error: %v", err)
		}
	}()

	<-ctx.Done()
	log.Printf("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if thread != nil {
		thread.Blur()
	}
	chatList.Blur()
	reporter.Transition(shutdownCtx, presence.Background)
	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Printf("ops server shutdown: %v", err)
	}
}

// watchTarget reads the optional conversation to follow in thread mode.
func watchTarget() (chatID, otherUser int, ok bool) {
	rawChat := os.Getenv("WATCH_CHAT_ID")
	rawUser := os.Getenv("WATCH_OTHER_USER")
	if rawChat == "" || rawUser == "" {
		return 0, 0, false
	}
	chatID, err := strconv.Atoi(rawChat)
	if err != nil {
		log.Printf("ignoring WATCH_CHAT_ID %q: not numeric", rawChat)
		return 0, 0, false
	}
	otherUser, err = strconv.Atoi(rawUser)
	if err != nil {
		log.Printf("ignoring WATCH_OTHER_USER %q: not numeric", rawUser)
		return 0, 0, false
	}
	return chatID, otherUser, true
}

// storeDeviceToken persists this device's push token when provided via the
// environment, mirroring how the user id is seeded. Counterpart devices are
// notified through the relay either way; without a token this device just
// receives no pushes itself.
func storeDeviceToken(ctx context.Context, store *session.Store) error {
	if token := os.Getenv("FCM_TOKEN"); token != "" {
		if err := store.SetFCMToken(ctx, token); err != nil {
			return err
		}
	}
	token, err := store.FCMToken(ctx)
	if err != nil {
		return err
	}
	if token == "" {
		log.Printf("no device push token registered")
	} else {
		log.Printf("device push token registered")
	}
	return nil
}

// resolveUserID reads the stored identity, seeding it from the environment
// on first run.
func resolveUserID(ctx context.Context, store *session.Store) (int, error) {
	if raw := os.Getenv("USER_ID"); raw != "" {
		id, err := strconv.Atoi(raw)
		if err != nil {
			return 0, fmt.Errorf("USER_ID %q is not numeric", raw)
		}
		if err := store.SetUserID(ctx, id); err != nil {
			return 0, err
		}
		return id, nil
	}
	return store.UserID(ctx)
}
