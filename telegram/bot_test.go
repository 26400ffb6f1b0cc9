package telegram

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/kbukum/voicescribe/component"
	"github.com/kbukum/voicescribe/logger"
	"github.com/kbukum/voicescribe/voice"
)

const testToken = "123:SECRET"

type fakeAPI struct {
	mu      sync.Mutex
	updates chan tgbotapi.Update
	closed  bool
	polled  tgbotapi.UpdateConfig
	sent    []tgbotapi.MessageConfig
	sendErr error
	urls    map[string]string
	fileErr error
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{updates: make(chan tgbotapi.Update, 16), urls: map[string]string{}}
}

func (f *fakeAPI) GetUpdatesChan(cfg tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.polled = cfg
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if !f.closed {
		f.closed = true
		close(f.updates)
	}
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.sendErr != nil {
		return tgbotapi.Message{}, f.sendErr
	}
	f.sent = append(f.sent, c.(tgbotapi.MessageConfig))
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) GetFileDirectURL(fileID string) (string, error) {
	if f.fileErr != nil {
		return "", f.fileErr
	}
	u, ok := f.urls[fileID]
	if !ok {
		return "", errors.New("Bad Request: invalid file_id")
	}
	return u, nil
}

func (f *fakeAPI) push(msg *tgbotapi.Message) {
	f.updates <- tgbotapi.Update{Message: msg}
}

func (f *fakeAPI) replies() []tgbotapi.MessageConfig {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]tgbotapi.MessageConfig(nil), f.sent...)
}

// fakeProcessor answers each message with its file id, or blocks when
// block is set until the run context ends or release is closed.
type fakeProcessor struct {
	mu       sync.Mutex
	messages []voice.Message
	started  chan struct{}
	block    bool
	release  chan struct{}
	ctxErr   error
}

func newFakeProcessor() *fakeProcessor {
	return &fakeProcessor{started: make(chan struct{}, 16), release: make(chan struct{})}
}

func (p *fakeProcessor) Process(ctx context.Context, msg voice.Message, sink voice.Sink) *voice.Run {
	p.mu.Lock()
	p.messages = append(p.messages, msg)
	p.mu.Unlock()
	p.started <- struct{}{}

	if p.block {
		select {
		case <-ctx.Done():
			p.mu.Lock()
			p.ctxErr = ctx.Err()
			p.mu.Unlock()
			return &voice.Run{State: voice.StateFailed, Err: ctx.Err()}
		case <-p.release:
		}
	}
	_ = sink.SendText(ctx, "heard "+msg.FileID)
	return &voice.Run{State: voice.StateDone}
}

func (p *fakeProcessor) received() []voice.Message {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]voice.Message(nil), p.messages...)
}

func newTestBot(t *testing.T, api API, mutate ...func(*Config)) *Bot {
	t.Helper()
	cfg := Config{Token: testToken}
	for _, m := range mutate {
		m(&cfg)
	}
	b, err := New(cfg, logger.NewNop(), WithAPI(api))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := b.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	return b
}

func voiceMessage(id int, fileID string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: id,
		From:      &tgbotapi.User{ID: 99},
		Chat:      &tgbotapi.Chat{ID: 500},
		Voice:     &tgbotapi.Voice{FileID: fileID, Duration: 3},
	}
}

func startCommand(id int) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: id,
		From:      &tgbotapi.User{ID: 99},
		Chat:      &tgbotapi.Chat{ID: 500},
		Text:      "/start",
		Entities:  []tgbotapi.MessageEntity{{Type: "bot_command", Offset: 0, Length: 6}},
	}
}

func hasReply(api *fakeAPI, text string) bool {
	for _, m := range api.replies() {
		if m.Text == text {
			return true
		}
	}
	return false
}

func waitStarted(t *testing.T, p *fakeProcessor) {
	t.Helper()
	select {
	case <-p.started:
	case <-time.After(2 * time.Second):
		t.Fatal("processor was not invoked")
	}
}

func TestBot_StartCommandGreets(t *testing.T) {
	api := newFakeAPI()
	b := newTestBot(t, api)
	proc := newFakeProcessor()
	if err := b.Listen(proc); err != nil {
		t.Fatal(err)
	}

	api.push(startCommand(1))
	if err := b.Stop(context.Background()); err != nil {
		t.Fatal(err)
	}

	sent := api.replies()
	if len(sent) != 1 {
		t.Fatalf("expected 1 reply, got %d", len(sent))
	}
	if sent[0].Text != DefaultGreeting || sent[0].ReplyToMessageID != 1 || sent[0].ChatID != 500 {
		t.Errorf("unexpected greeting %+v", sent[0])
	}
	if len(proc.received()) != 0 {
		t.Error("/start must not start a run")
	}
}

func TestBot_VoiceMessageRunsPipeline(t *testing.T) {
	api := newFakeAPI()
	b := newTestBot(t, api)
	proc := newFakeProcessor()
	if err := b.Listen(proc); err != nil {
		t.Fatal(err)
	}

	api.push(voiceMessage(7, "file-1"))
	if err := b.Stop(context.Background()); err != nil {
		t.Fatal(err)
	}

	got := proc.received()
	if len(got) != 1 {
		t.Fatalf("expected 1 run, got %d", len(got))
	}
	want := voice.Message{ID: "7", UserID: "99", FileID: "file-1", Duration: 3 * time.Second}
	if got[0] != want {
		t.Errorf("message = %+v, want %+v", got[0], want)
	}

	sent := api.replies()
	if len(sent) != 1 || sent[0].Text != "heard file-1" || sent[0].ReplyToMessageID != 7 {
		t.Errorf("unexpected replies %+v", sent)
	}
	if api.polled.Timeout != 60 || len(api.polled.AllowedUpdates) != 1 {
		t.Errorf("unexpected update config %+v", api.polled)
	}
}

func TestBot_IgnoresOtherMessages(t *testing.T) {
	api := newFakeAPI()
	b := newTestBot(t, api)
	proc := newFakeProcessor()
	_ = b.Listen(proc)

	api.push(&tgbotapi.Message{MessageID: 3, Chat: &tgbotapi.Chat{ID: 1}, Text: "hello"})
	api.updates <- tgbotapi.Update{}
	_ = b.Stop(context.Background())

	if len(api.replies()) != 0 || len(proc.received()) != 0 {
		t.Error("plain text must be ignored")
	}
}

func TestBot_StopDrainsInFlightRuns(t *testing.T) {
	api := newFakeAPI()
	b := newTestBot(t, api)
	proc := newFakeProcessor()
	proc.block = true
	_ = b.Listen(proc)

	api.push(voiceMessage(1, "slow"))
	waitStarted(t, proc)

	go func() {
		time.Sleep(20 * time.Millisecond)
		close(proc.release)
	}()
	if err := b.Stop(context.Background()); err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if sent := api.replies(); len(sent) != 1 || sent[0].Text != "heard slow" {
		t.Errorf("in-flight run was not drained: %+v", sent)
	}
}

func TestBot_StopDeadlineCancelsRuns(t *testing.T) {
	api := newFakeAPI()
	b := newTestBot(t, api)
	proc := newFakeProcessor()
	proc.block = true
	_ = b.Listen(proc)

	api.push(voiceMessage(1, "stuck"))
	waitStarted(t, proc)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := b.Stop(ctx)
	if !errors.Is(err, context.DeadlineExceeded) {
		t.Fatalf("expected deadline error, got %v", err)
	}

	proc.mu.Lock()
	defer proc.mu.Unlock()
	if !errors.Is(proc.ctxErr, context.Canceled) {
		t.Errorf("run context not canceled: %v", proc.ctxErr)
	}
}

func TestBot_BusyReplyWhenQueueFull(t *testing.T) {
	api := newFakeAPI()
	b := newTestBot(t, api, func(c *Config) {
		c.MaxConcurrentRuns = 1
		c.MaxPendingRuns = 1
	})
	proc := newFakeProcessor()
	proc.block = true
	_ = b.Listen(proc)

	api.push(voiceMessage(1, "a"))
	waitStarted(t, proc)
	api.push(voiceMessage(2, "b"))

	deadline := time.Now().Add(2 * time.Second)
	for b.pool.WaitingQueueSize() < 1 {
		if time.Now().After(deadline) {
			t.Fatal("second run never queued")
		}
		time.Sleep(time.Millisecond)
	}
	api.push(voiceMessage(3, "c"))
	for !hasReply(api, DefaultBusyReply) {
		if time.Now().After(deadline) {
			t.Fatal("no busy reply")
		}
		time.Sleep(time.Millisecond)
	}

	close(proc.release)
	if err := b.Stop(context.Background()); err != nil {
		t.Fatal(err)
	}

	if got := len(proc.received()); got != 2 {
		t.Errorf("expected 2 runs, got %d", got)
	}
	var busy int
	for _, m := range api.replies() {
		if m.Text == DefaultBusyReply {
			busy++
			if m.ReplyToMessageID != 3 {
				t.Errorf("busy reply to %d, want 3", m.ReplyToMessageID)
			}
		}
	}
	if busy != 1 {
		t.Errorf("expected 1 busy reply, got %d", busy)
	}
}

func TestBot_ResolveURL(t *testing.T) {
	api := newFakeAPI()
	api.urls["f1"] = "https://api.telegram.org/file/bot" + testToken + "/voice/f1.oga"
	b := newTestBot(t, api)

	u, err := b.ResolveURL(context.Background(), "f1")
	if err != nil || u != api.urls["f1"] {
		t.Fatalf("ResolveURL = %q, %v", u, err)
	}

	if _, err := b.ResolveURL(context.Background(), "missing"); err == nil {
		t.Error("expected error for unknown file id")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := b.ResolveURL(ctx, "f1"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestBot_ResolveURLScrubsToken(t *testing.T) {
	api := newFakeAPI()
	api.fileErr = errors.New(`Post "https://api.telegram.org/bot` + testToken + `/getFile": i/o timeout`)
	b := newTestBot(t, api)

	_, err := b.ResolveURL(context.Background(), "f1")
	if err == nil {
		t.Fatal("expected error")
	}
	if strings.Contains(err.Error(), "SECRET") {
		t.Errorf("token leaked: %v", err)
	}
	if !strings.Contains(err.Error(), "/bot***/getFile") {
		t.Errorf("unexpected error text: %v", err)
	}
}

func TestBot_Lifecycle(t *testing.T) {
	api := newFakeAPI()
	b, err := New(Config{Token: testToken}, logger.NewNop(), WithAPI(api))
	if err != nil {
		t.Fatal(err)
	}

	if h := b.Health(context.Background()); h.Status != component.StatusUnhealthy {
		t.Errorf("expected unhealthy before start, got %s", h.Status)
	}
	if err := b.Listen(newFakeProcessor()); err == nil {
		t.Error("Listen before Start must fail")
	}

	if err := b.Start(context.Background()); err != nil {
		t.Fatal(err)
	}
	if h := b.Health(context.Background()); h.Status != component.StatusHealthy {
		t.Errorf("expected healthy after start, got %s", h.Status)
	}
	if err := b.Listen(newFakeProcessor()); err != nil {
		t.Fatal(err)
	}
	if err := b.Listen(newFakeProcessor()); err == nil {
		t.Error("second Listen must fail")
	}
	if d := b.Describe(); d.Type != "bot" || !strings.Contains(d.Details, "workers=1") {
		t.Errorf("unexpected description %+v", d)
	}

	if err := b.Stop(context.Background()); err != nil {
		t.Fatal(err)
	}
	if err := b.Stop(context.Background()); err != nil {
		t.Errorf("second Stop: %v", err)
	}
}

func TestReplySink(t *testing.T) {
	api := newFakeAPI()
	s := &replySink{api: api, chatID: 10, replyTo: 4}

	if err := s.SendError(context.Background(), "Error: conversion error: timeout"); err != nil {
		t.Fatal(err)
	}
	long := strings.Repeat("a", maxMessageLength+5)
	if err := s.SendText(context.Background(), long); err != nil {
		t.Fatal(err)
	}
	sent := api.replies()
	if len(sent) != 3 {
		t.Fatalf("expected 3 messages, got %d", len(sent))
	}
	if len(sent[1].Text) != maxMessageLength || len(sent[2].Text) != 5 {
		t.Errorf("unexpected split %d/%d", len(sent[1].Text), len(sent[2].Text))
	}

	api.sendErr = errors.New("Forbidden: bot was blocked by the user")
	if err := s.SendText(context.Background(), "x"); err == nil {
		t.Error("expected send error")
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.SendText(ctx, "x"); !errors.Is(err, context.Canceled) {
		t.Errorf("expected context.Canceled, got %v", err)
	}
}

func TestSplitText(t *testing.T) {
	tests := []struct {
		name  string
		text  string
		limit int
		want  []string
	}{
		{"short", "hello", 10, []string{"hello"}},
		{"exact", "hello", 5, []string{"hello"}},
		{"split", "hello world", 5, []string{"hello", " worl", "d"}},
		{"runes", "привет", 4, []string{"прив", "ет"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := splitText(tt.text, tt.limit)
			if strings.Join(got, "|") != strings.Join(tt.want, "|") {
				t.Errorf("splitText() = %q, want %q", got, tt.want)
			}
		})
	}
}
