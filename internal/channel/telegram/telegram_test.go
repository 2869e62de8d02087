package telegram

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/MEKXH/achievebot/internal/bus"
	"github.com/MEKXH/achievebot/internal/config"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

type fakeBot struct {
	sent     []tgbotapi.MessageConfig
	requests []string
	params   []tgbotapi.Params
	sendErr  error
	stopped  bool
}

func (f *fakeBot) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	msg, ok := c.(tgbotapi.MessageConfig)
	if ok {
		f.sent = append(f.sent, msg)
	}
	if f.sendErr != nil && msg.ParseMode != "" {
		return tgbotapi.Message{}, f.sendErr
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeBot) MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error) {
	f.requests = append(f.requests, endpoint)
	f.params = append(f.params, params)
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (f *fakeBot) StopReceivingUpdates() { f.stopped = true }

func newTestChannel(allow ...string) (*Channel, *bus.MessageBus, *fakeBot) {
	msgBus := bus.NewMessageBus(4)
	ch := New(&config.TelegramConfig{AllowFrom: allow}, "achievebot", msgBus)
	bot := &fakeBot{}
	ch.setBot(bot)
	return ch, msgBus, bot
}

func groupMessage(text string) *tgbotapi.Message {
	return &tgbotapi.Message{
		MessageID: 7,
		From:      &tgbotapi.User{ID: 123, UserName: "alice"},
		Chat:      &tgbotapi.Chat{ID: -100, Type: "supergroup"},
		Text:      text,
	}
}

func TestHandleMessage_GroupRequiresBotName(t *testing.T) {
	ch, msgBus, _ := newTestChannel()

	ch.handleMessage(context.Background(), groupMessage("grant bob Speedrun"))
	select {
	case in := <-msgBus.Inbound():
		t.Fatalf("expected unaddressed message ignored, got %+v", in)
	default:
	}

	ch.handleMessage(context.Background(), groupMessage("AchieveBot: grant bob Speedrun"))
	select {
	case in := <-msgBus.Inbound():
		if in.Content != "grant bob Speedrun" {
			t.Fatalf("expected prefix stripped, got %q", in.Content)
		}
		if in.SenderID != "123" || in.ChatID != "-100" || in.Private {
			t.Fatalf("unexpected inbound addressing %+v", in)
		}
		if in.Metadata["username"] != "alice" {
			t.Fatalf("expected username metadata, got %+v", in.Metadata)
		}
		if in.RequestID == "" {
			t.Fatal("expected request id")
		}
	default:
		t.Fatal("expected inbound message")
	}
}

func TestHandleMessage_PrivateIsAlwaysAddressed(t *testing.T) {
	ch, msgBus, _ := newTestChannel()
	msg := groupMessage("listachieve")
	msg.Chat = &tgbotapi.Chat{ID: 123, Type: "private"}

	ch.handleMessage(context.Background(), msg)
	select {
	case in := <-msgBus.Inbound():
		if !in.Private || in.Content != "listachieve" {
			t.Fatalf("unexpected inbound %+v", in)
		}
	default:
		t.Fatal("expected inbound message")
	}
}

func TestHandleMessage_AllowListUsesUsername(t *testing.T) {
	ch, msgBus, _ := newTestChannel("@bob")

	ch.handleMessage(context.Background(), groupMessage("achievebot: help"))
	select {
	case in := <-msgBus.Inbound():
		t.Fatalf("expected alice denied, got %+v", in)
	default:
	}

	msg := groupMessage("achievebot: help")
	msg.From = &tgbotapi.User{ID: 456, UserName: "bob"}
	ch.handleMessage(context.Background(), msg)
	select {
	case <-msgBus.Inbound():
	default:
		t.Fatal("expected bob allowed")
	}
}

func TestHandleMessage_ControlVerbsNeverReachEngine(t *testing.T) {
	ch, msgBus, bot := newTestChannel()
	quits := 0
	ch.SetQuitHandler(func() { quits++ })

	ch.handleMessage(context.Background(), groupMessage("achievebot: leave -100"))
	ch.handleMessage(context.Background(), groupMessage("achievebot: join @games"))
	ch.handleMessage(context.Background(), groupMessage("achievebot: quit"))

	select {
	case in := <-msgBus.Inbound():
		t.Fatalf("expected control verbs handled by transport, got %+v", in)
	default:
	}
	if len(bot.requests) != 1 || bot.requests[0] != "leaveChat" || bot.params[0]["chat_id"] != "-100" {
		t.Fatalf("unexpected leave requests %v %v", bot.requests, bot.params)
	}
	if len(bot.sent) != 1 || bot.sent[0].ChatID != 123 || bot.sent[0].Text != joinUnsupportedText {
		t.Fatalf("expected join reply to sender, got %+v", bot.sent)
	}
	if !bot.stopped {
		t.Fatal("expected quit to stop receiving updates")
	}
	if quits != 1 {
		t.Fatalf("expected quit handler called once, got %d", quits)
	}
}

type countingBot struct {
	sends atomic.Int64
	stops atomic.Int64
}

func (b *countingBot) Send(tgbotapi.Chattable) (tgbotapi.Message, error) {
	b.sends.Add(1)
	return tgbotapi.Message{}, nil
}

func (b *countingBot) MakeRequest(string, tgbotapi.Params) (*tgbotapi.APIResponse, error) {
	return &tgbotapi.APIResponse{Ok: true}, nil
}

func (b *countingBot) StopReceivingUpdates() { b.stops.Add(1) }

func TestChannel_BotSwapDuringSendAndStop(t *testing.T) {
	ch := New(&config.TelegramConfig{}, "achievebot", bus.NewMessageBus(1))
	bot := &countingBot{}
	out := &bus.OutboundMessage{Channel: "telegram", ChatID: "42", Mode: bus.Direct, Content: "hi"}

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(3)
		go func() {
			defer wg.Done()
			ch.setBot(bot)
		}()
		go func() {
			defer wg.Done()
			_ = ch.Send(context.Background(), out)
		}()
		go func() {
			defer wg.Done()
			_ = ch.Stop(context.Background())
		}()
	}
	wg.Wait()

	if err := ch.Send(context.Background(), out); err != nil {
		t.Fatalf("Send after bot set: %v", err)
	}
	if bot.sends.Load() == 0 {
		t.Fatal("expected at least one send")
	}
}

func TestSend_BroadcastUsesHTMLAndFallsBackToPlain(t *testing.T) {
	ch, _, bot := newTestChannel()
	bot.sendErr = errors.New("bad markup")

	err := ch.Send(context.Background(), &bus.OutboundMessage{
		Channel: "telegram",
		ChatID:  "-100",
		Mode:    bus.Broadcast,
		Content: "Achievement unlocked! <bob> has earned the achievement A!",
	})
	if err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if len(bot.sent) != 2 {
		t.Fatalf("expected html attempt then plain retry, got %d sends", len(bot.sent))
	}
	if bot.sent[0].Text != "<b>Achievement unlocked! &lt;bob&gt; has earned the achievement A!</b>" {
		t.Fatalf("unexpected html text %q", bot.sent[0].Text)
	}
	if bot.sent[1].ParseMode != "" || bot.sent[1].Text != "Achievement unlocked! <bob> has earned the achievement A!" {
		t.Fatalf("unexpected plain retry %+v", bot.sent[1])
	}
}

func TestSend_DirectIsPlainText(t *testing.T) {
	ch, _, bot := newTestChannel()
	if err := ch.Send(context.Background(), &bus.OutboundMessage{ChatID: "123", Mode: bus.Direct, Content: "What?"}); err != nil {
		t.Fatalf("Send error: %v", err)
	}
	if len(bot.sent) != 1 || bot.sent[0].ParseMode != "" || bot.sent[0].ChatID != 123 {
		t.Fatalf("unexpected direct send %+v", bot.sent)
	}
}

func TestSend_RejectsInvalidChatID(t *testing.T) {
	ch, _, _ := newTestChannel()
	if err := ch.Send(context.Background(), &bus.OutboundMessage{ChatID: "not-a-number"}); err == nil {
		t.Fatal("expected error for invalid chat id")
	}
}

func TestParseInt64_Valid(t *testing.T) {
	got, err := parseInt64("12345")
	if err != nil {
		t.Fatalf("expected no error, got: %v", err)
	}
	if got != 12345 {
		t.Fatalf("expected 12345, got %d", got)
	}
}
