package telegram

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gammazero/workerpool"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kbukum/voicescribe/component"
	"github.com/kbukum/voicescribe/logger"
	"github.com/kbukum/voicescribe/voice"
)

// API is the subset of *tgbotapi.BotAPI the bot uses.
type API interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	GetFileDirectURL(fileID string) (string, error)
}

// Processor runs the pipeline for one voice message.
type Processor interface {
	Process(ctx context.Context, msg voice.Message, sink voice.Sink) *voice.Run
}

// Option configures a Bot.
type Option func(*Bot)

// WithAPI uses api instead of connecting to the Bot API on Start.
func WithAPI(api API) Option {
	return func(b *Bot) { b.api = api }
}

// Bot receives Telegram updates and runs voice messages through a Processor.
type Bot struct {
	cfg Config
	log *logger.Logger

	mu        sync.RWMutex
	api       API
	username  string
	started   bool
	listening bool

	pool     *workerpool.WorkerPool
	runCtx   context.Context
	cancel   context.CancelFunc
	loopDone chan struct{}
}

var (
	_ component.Component = (*Bot)(nil)
	_ voice.Source        = (*Bot)(nil)
)

// New creates a Bot. It does not contact Telegram until Start.
func New(cfg Config, log *logger.Logger, opts ...Option) (*Bot, error) {
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	b := &Bot{cfg: cfg, log: log.WithComponent("telegram")}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Name returns the component name.
func (b *Bot) Name() string { return "telegram" }

// Start authenticates against the Bot API.
func (b *Bot) Start(ctx context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.started {
		return nil
	}

	if b.api == nil {
		if err := tgbotapi.SetLogger(&botLogger{log: b.log, token: b.cfg.Token}); err != nil {
			return fmt.Errorf("telegram: %w", err)
		}
		client := &http.Client{Timeout: b.cfg.RequestTimeout}
		api, err := tgbotapi.NewBotAPIWithClient(b.cfg.Token, b.cfg.Endpoint, client)
		if err != nil {
			return fmt.Errorf("telegram: connect: %w", b.scrub(err))
		}
		api.Debug = b.cfg.Debug
		b.api = api
		b.username = api.Self.UserName
	}

	b.started = true
	b.log.Info("telegram bot connected", map[string]interface{}{
		"username": b.username,
	})
	return nil
}

// Listen starts long polling and dispatching updates to proc. It returns
// immediately; Stop ends it.
func (b *Bot) Listen(proc Processor) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.started {
		return errors.New("telegram: bot not started")
	}
	if b.listening {
		return errors.New("telegram: already listening")
	}

	b.runCtx, b.cancel = context.WithCancel(context.Background())
	b.pool = workerpool.New(b.cfg.MaxConcurrentRuns)
	b.loopDone = make(chan struct{})

	u := tgbotapi.NewUpdate(0)
	u.Timeout = int(b.cfg.PollTimeout / time.Second)
	u.AllowedUpdates = []string{"message"}
	updates := b.api.GetUpdatesChan(u)

	b.listening = true
	go b.loop(updates, proc)

	b.log.Info("listening for messages", map[string]interface{}{
		"workers": b.cfg.MaxConcurrentRuns,
	})
	return nil
}

// Stop stops receiving updates and waits for in-flight runs. When ctx
// expires first, in-flight runs are canceled.
func (b *Bot) Stop(ctx context.Context) error {
	b.mu.Lock()
	wasListening := b.listening
	b.started = false
	b.listening = false
	b.mu.Unlock()
	if !wasListening {
		return nil
	}

	b.api.StopReceivingUpdates()
	<-b.loopDone

	drained := make(chan struct{})
	go func() {
		b.pool.StopWait()
		close(drained)
	}()

	var err error
	select {
	case <-drained:
	case <-ctx.Done():
		b.log.Warn("shutdown deadline reached, canceling in-flight runs")
		b.cancel()
		<-drained
		err = fmt.Errorf("telegram: drain: %w", ctx.Err())
	}
	b.cancel()
	b.log.Info("telegram bot stopped")
	return err
}

// Health reports whether the bot is connected.
func (b *Bot) Health(_ context.Context) component.Health {
	b.mu.RLock()
	defer b.mu.RUnlock()

	if !b.started {
		return component.Health{Name: b.Name(), Status: component.StatusUnhealthy, Message: "not connected"}
	}
	h := component.Health{Name: b.Name(), Status: component.StatusHealthy}
	if b.listening {
		h.Message = fmt.Sprintf("pending=%d", b.pool.WaitingQueueSize())
	}
	return h
}

// Describe returns infrastructure summary info for the bootstrap display.
func (b *Bot) Describe() component.Description {
	b.mu.RLock()
	defer b.mu.RUnlock()

	name := b.username
	if name == "" {
		name = "unknown"
	}
	return component.Description{
		Name:    "Telegram Bot",
		Type:    "bot",
		Details: fmt.Sprintf("@%s workers=%d", name, b.cfg.MaxConcurrentRuns),
	}
}

// ResolveURL turns a Telegram file id into its download URL. The URL
// embeds the bot token and must not be logged unredacted.
func (b *Bot) ResolveURL(ctx context.Context, fileID string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	b.mu.RLock()
	api := b.api
	b.mu.RUnlock()
	if api == nil {
		return "", errors.New("telegram: bot not started")
	}

	u, err := api.GetFileDirectURL(fileID)
	if err != nil {
		return "", fmt.Errorf("telegram: get file: %w", b.scrub(err))
	}
	return u, nil
}

func (b *Bot) loop(updates tgbotapi.UpdatesChannel, proc Processor) {
	defer close(b.loopDone)
	for update := range updates {
		if update.Message == nil || update.Message.Chat == nil {
			continue
		}
		b.dispatch(update.Message, proc)
	}
}

func (b *Bot) dispatch(msg *tgbotapi.Message, proc Processor) {
	switch {
	case msg.IsCommand() && msg.Command() == "start":
		b.log.Info("start command received", map[string]interface{}{
			logger.FieldUserID: senderID(msg),
		})
		b.reply(msg, b.cfg.Greeting)

	case msg.Voice != nil:
		if b.pool.WaitingQueueSize() >= b.cfg.MaxPendingRuns {
			b.log.Warn("run queue full, rejecting voice message", map[string]interface{}{
				logger.FieldUserID: senderID(msg),
				"pending":          b.pool.WaitingQueueSize(),
			})
			b.reply(msg, b.cfg.BusyReply)
			return
		}

		vm := voice.Message{
			ID:       strconv.Itoa(msg.MessageID),
			UserID:   senderID(msg),
			FileID:   msg.Voice.FileID,
			Duration: time.Duration(msg.Voice.Duration) * time.Second,
		}
		sink := &replySink{api: b.api, chatID: msg.Chat.ID, replyTo: msg.MessageID, scrub: b.scrub}
		ctx := b.runCtx
		b.pool.Submit(func() {
			proc.Process(ctx, vm, sink)
		})

	default:
		b.log.Debug("ignoring non-voice message", map[string]interface{}{
			"message_id": msg.MessageID,
		})
	}
}

func (b *Bot) reply(msg *tgbotapi.Message, text string) {
	out := tgbotapi.NewMessage(msg.Chat.ID, text)
	out.ReplyToMessageID = msg.MessageID
	if _, err := b.api.Send(out); err != nil {
		b.log.Warn("reply failed", logger.MergeWithError(map[string]interface{}{
			"message_id": msg.MessageID,
		}, b.scrub(err)))
	}
}

// scrub removes the bot token from transport errors, whose messages
// carry the request URL.
func (b *Bot) scrub(err error) error {
	if err == nil || b.cfg.Token == "" || !strings.Contains(err.Error(), b.cfg.Token) {
		return err
	}
	return errors.New(strings.ReplaceAll(err.Error(), b.cfg.Token, "***"))
}

func senderID(msg *tgbotapi.Message) string {
	if msg.From != nil {
		return strconv.FormatInt(msg.From.ID, 10)
	}
	if msg.Chat != nil {
		return strconv.FormatInt(msg.Chat.ID, 10)
	}
	return ""
}
