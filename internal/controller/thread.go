package controller

import (
	"context"
	"errors"
	"log"
	"sort"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"

	"jobchat-client/internal/models"
	"jobchat-client/internal/presence"
	"jobchat-client/internal/relay"
	"jobchat-client/internal/rest"
	"jobchat-client/internal/telemetry"
)

// Thread drives one conversation's screen: ordered message history, the
// input buffer, the counterpart's profile details and presence flag, and
// the send pipeline. The backend is authoritative; the controller never
// renders a message it has not read back.
type Thread struct {
	chat      models.Chat
	userID    int
	messages  rest.MessageAPI
	profiles  rest.ProfileAPI
	presAPI   rest.PresenceAPI
	notifier  relay.Notifier
	channels  ChannelClient
	audit     *telemetry.AuditEmitter
	pollEvery time.Duration
	onUpdate  func([]models.Message)

	mu         sync.Mutex
	msgs       []models.Message
	input      string
	senderName string
	profile    models.Profile
	poller     *presence.Poller
	focused    bool
	ctx        context.Context
	cancel     context.CancelFunc
	cancelSub  func()
}

// ThreadDeps bundles the collaborators a Thread needs. A zero PollInterval
// falls back to the presence poller's default.
type ThreadDeps struct {
	Messages     rest.MessageAPI
	Profiles     rest.ProfileAPI
	Presence     rest.PresenceAPI
	Notifier     relay.Notifier
	Channels     ChannelClient
	Audit        *telemetry.AuditEmitter
	PollInterval time.Duration
}

// NewThread builds the controller for one conversation. onUpdate fires with
// the full ordered history after every successful load, so the view can
// track the newest message; it may be nil.
func NewThread(deps ThreadDeps, chat models.Chat, userID int, onUpdate func([]models.Message)) *Thread {
	return &Thread{
		chat:      chat,
		userID:    userID,
		messages:  deps.Messages,
		profiles:  deps.Profiles,
		presAPI:   deps.Presence,
		notifier:  deps.Notifier,
		channels:  deps.Channels,
		audit:     deps.Audit,
		pollEvery: deps.PollInterval,
		onUpdate:  onUpdate,
	}
}

// Load fetches the full history for this conversation, ordered by creation
// time. On failure the previous view state is kept.
func (t *Thread) Load(ctx context.Context) error {
	msgs, err := t.messages.GetMessages(ctx, t.chat.ChatID)
	if err != nil {
		log.Printf("thread: load chat=%d failed: %v", t.chat.ChatID, err)
		return err
	}

	// The backend normally returns creation order, but the display
	// invariant is non-decreasing timestamps, so enforce it.
	sort.SliceStable(msgs, func(i, j int) bool {
		return msgs[i].CreatedAt.Before(msgs[j].CreatedAt)
	})

	t.mu.Lock()
	t.msgs = msgs
	t.mu.Unlock()

	if t.onUpdate != nil {
		t.onUpdate(msgs)
	}
	return nil
}

// Messages returns the last successfully loaded history.
func (t *Thread) Messages() []models.Message {
	t.mu.Lock()
	defer t.mu.Unlock()
	out := make([]models.Message, len(t.msgs))
	copy(out, t.msgs)
	return out
}

// SetInput replaces the input buffer.
func (t *Thread) SetInput(text string) {
	t.mu.Lock()
	t.input = text
	t.mu.Unlock()
}

// Input returns the current input buffer.
func (t *Thread) Input() string {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.input
}

// Send persists the input buffer as a message, then fans out: a realtime
// trigger so subscribed clients re-fetch, a local re-load so the sender
// sees their own message, and a best-effort push to the counterpart.
// Empty or whitespace-only input is rejected before any network call. The
// input buffer is cleared only after the backend confirms persistence;
// every step after that is independent and can fail without rolling the
// message back.
func (t *Thread) Send(ctx context.Context) error {
	t.mu.Lock()
	text := strings.TrimSpace(t.input)
	t.mu.Unlock()
	if text == "" {
		return nil
	}

	ctx, span := otel.Tracer("jobchat-client/controller").Start(ctx, "thread.send")
	defer span.End()

	if err := t.messages.PostMessage(ctx, t.chat.ChatID, t.userID, text); err != nil {
		log.Printf("thread: send chat=%d failed: %v", t.chat.ChatID, err)
		t.audit.Emit(ctx, "ERROR", "message send failed", &t.userID)
		return err
	}

	t.mu.Lock()
	t.input = ""
	t.mu.Unlock()

	if err := t.notifier.Trigger(ctx, t.chat.ChannelName()); err != nil {
		log.Printf("thread: trigger %s failed: %v", t.chat.ChannelName(), err)
	}

	if err := t.Load(ctx); err != nil {
		log.Printf("thread: reload after send failed: %v", err)
	}

	t.notifyCounterpart(ctx, text)
	return nil
}

// notifyCounterpart delivers the best-effort push. A missing token skips
// silently; any failure here never hides the already-sent message.
func (t *Thread) notifyCounterpart(ctx context.Context, text string) {
	token, err := t.profiles.FCMToken(ctx, t.chat.OtherUser)
	if err != nil {
		if !errors.Is(err, rest.ErrNoFCMToken) {
			log.Printf("thread: fcm token lookup user=%d failed: %v", t.chat.OtherUser, err)
		}
		return
	}

	t.mu.Lock()
	senderName := t.senderName
	t.mu.Unlock()

	notification := models.PushNotification{
		FCMToken:   token,
		SenderName: senderName,
		UserID:     t.chat.OtherUser,
		Message:    text,
		SenderID:   t.userID,
	}
	if err := t.notifier.NotifyMessage(ctx, notification); err != nil {
		log.Printf("thread: push notify user=%d failed: %v", t.chat.OtherUser, err)
	}
}

// Focus marks the screen visible: loads the history and profile details,
// subscribes this conversation's channel, and starts the counterpart
// presence poll. Everything started here is scoped to the focus lifetime.
func (t *Thread) Focus(ctx context.Context) {
	t.mu.Lock()
	if t.focused {
		t.mu.Unlock()
		return
	}
	t.focused = true
	t.ctx, t.cancel = context.WithCancel(ctx)
	focusCtx := t.ctx
	t.poller = presence.NewPoller(t.presAPI, t.chat.OtherUser, t.pollEvery, nil)
	poller := t.poller
	t.mu.Unlock()

	if err := t.Load(focusCtx); err != nil {
		log.Printf("thread: initial load failed: %v", err)
	}
	t.loadProfile(focusCtx)

	cancelSub := t.channels.Subscribe(t.chat.ChannelName(), func() {
		t.refresh(focusCtx)
	})
	t.mu.Lock()
	if t.focused {
		t.cancelSub = cancelSub
		t.mu.Unlock()
	} else {
		// Blurred while subscribing.
		t.mu.Unlock()
		cancelSub()
	}
	go poller.Run(focusCtx)
}

// Blur marks the screen hidden: cancels the poller and in-flight requests
// and releases the channel subscription.
func (t *Thread) Blur() {
	t.mu.Lock()
	if !t.focused {
		t.mu.Unlock()
		return
	}
	t.focused = false
	cancel := t.cancel
	t.cancel = nil
	cancelSub := t.cancelSub
	t.cancelSub = nil
	t.mu.Unlock()

	if cancel != nil {
		cancel()
	}
	if cancelSub != nil {
		cancelSub()
	}
}

// Presence returns the counterpart's last fetched flag, or "" before the
// first successful poll.
func (t *Thread) Presence() string {
	t.mu.Lock()
	poller := t.poller
	t.mu.Unlock()
	if poller == nil {
		return ""
	}
	return poller.Status()
}

// Profile returns the counterpart's display details.
func (t *Thread) Profile() models.Profile {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.profile
}

// loadProfile fetches display details: the counterpart's name and company
// logo for the header, and the local user's name for push payloads. Each
// fetch fails independently and leaves its field empty.
func (t *Thread) loadProfile(ctx context.Context) {
	profile, err := t.profiles.Introduction(ctx, t.chat.OtherUser)
	if err != nil {
		log.Printf("thread: profile user=%d failed: %v", t.chat.OtherUser, err)
	}
	company, err := t.profiles.CompanyDetail(ctx, t.chat.OtherUser)
	if err != nil {
		log.Printf("thread: company detail user=%d failed: %v", t.chat.OtherUser, err)
	} else {
		profile.CompanyLogo = company.CompanyLogo
	}

	self, err := t.profiles.Introduction(ctx, t.userID)
	if err != nil {
		log.Printf("thread: sender name user=%d failed: %v", t.userID, err)
	}

	t.mu.Lock()
	t.profile = profile
	t.senderName = self.FullName
	t.mu.Unlock()
}

// refresh re-loads the history in response to a realtime event.
func (t *Thread) refresh(ctx context.Context) {
	t.mu.Lock()
	focused := t.focused
	t.mu.Unlock()
	if !focused || ctx.Err() != nil {
		return
	}
	if err := t.Load(ctx); err != nil {
		log.Printf("thread: refresh failed: %v", err)
	}
}
