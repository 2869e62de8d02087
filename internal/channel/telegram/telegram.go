// Package telegram connects the command engine to a Telegram bot.
package telegram

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/MEKXH/achievebot/internal/bus"
	"github.com/MEKXH/achievebot/internal/channel"
	"github.com/MEKXH/achievebot/internal/config"
	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
)

const joinUnsupportedText = "I can't join chats by myself, add me to the group instead."

// botAPI is the part of tgbotapi.BotAPI the channel uses.
type botAPI interface {
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
	MakeRequest(endpoint string, params tgbotapi.Params) (*tgbotapi.APIResponse, error)
	StopReceivingUpdates()
}

// Channel implements Telegram bot
type Channel struct {
	channel.BaseChannel
	cfg    *config.TelegramConfig
	mu     sync.Mutex
	bot    botAPI
	cancel context.CancelFunc
	onQuit func()
}

// New creates a Telegram channel. botName is the prefix group members use
// to address the bot.
func New(cfg *config.TelegramConfig, botName string, msgBus *bus.MessageBus) *Channel {
	allowList := make(map[string]bool)
	for _, id := range cfg.AllowFrom {
		allowList[id] = true
	}
	return &Channel{
		BaseChannel: channel.BaseChannel{
			Bus:       msgBus,
			BotName:   botName,
			AllowList: allowList,
		},
		cfg: cfg,
	}
}

func (c *Channel) Name() string { return "telegram" }

func (c *Channel) Start(ctx context.Context) error {
	bot, err := tgbotapi.NewBotAPI(c.cfg.Token)
	if err != nil {
		return fmt.Errorf("telegram init failed: %w", err)
	}
	slog.Info("telegram bot connected", "username", bot.Self.UserName)

	ctx, cancel := context.WithCancel(ctx)
	c.mu.Lock()
	c.bot = bot
	c.cancel = cancel
	c.mu.Unlock()
	defer cancel()

	u := tgbotapi.NewUpdate(0)
	u.Timeout = 60
	updates := bot.GetUpdatesChan(u)

	for {
		select {
		case <-ctx.Done():
			return nil
		case update, ok := <-updates:
			if !ok {
				return nil
			}
			if update.Message == nil {
				continue
			}
			c.handleMessage(ctx, update.Message)
		}
	}
}

// SetQuitHandler registers fn to run after a quit control verb has stopped
// the receiver. run uses it to shut the whole bot down.
func (c *Channel) SetQuitHandler(fn func()) {
	c.mu.Lock()
	c.onQuit = fn
	c.mu.Unlock()
}

func (c *Channel) setBot(bot botAPI) {
	c.mu.Lock()
	c.bot = bot
	c.mu.Unlock()
}

func (c *Channel) api() botAPI {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.bot
}

func (c *Channel) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if msg.From == nil || msg.Chat == nil {
		return
	}
	senderID := strconv.FormatInt(msg.From.ID, 10)
	username := channel.BareUser(msg.From.UserName)

	allowID := senderID
	if username != "" {
		allowID = senderID + "|" + username
	}
	if !c.IsAllowed(allowID) {
		slog.Debug("unauthorized sender", "id", senderID, "username", username)
		return
	}

	private := msg.Chat.IsPrivate()
	content, ok := c.Accept(msg.Text, private)
	if !ok {
		return
	}
	chatID := strconv.FormatInt(msg.Chat.ID, 10)

	if ctl, isControl := channel.ParseControl(content); isControl {
		c.handleControl(ctx, ctl, senderID, chatID)
		return
	}

	if err := c.PublishInbound(ctx, &bus.InboundMessage{
		Channel:   c.Name(),
		SenderID:  senderID,
		ChatID:    chatID,
		Private:   private,
		Content:   content,
		Timestamp: time.Now(),
		Metadata: map[string]any{
			"message_id": msg.MessageID,
			"username":   username,
		},
	}); err != nil {
		slog.Warn("drop inbound message", "channel", c.Name(), "sender", senderID, "error", err)
	}
}

func (c *Channel) handleControl(ctx context.Context, ctl channel.Control, senderID, chatID string) {
	slog.Info("control request", "channel", c.Name(), "kind", ctl.Kind, "chat", ctl.Chat, "sender", senderID)

	switch ctl.Kind {
	case channel.ControlJoin:
		c.reply(senderID, joinUnsupportedText)
	case channel.ControlLeave:
		target := ctl.Chat
		if target == "." || target == "here" {
			target = chatID
		}
		if err := c.leave(target); err != nil {
			slog.Error("leave chat failed", "chat", target, "error", err)
			c.reply(senderID, "Could not leave "+ctl.Chat)
		}
	case channel.ControlQuit:
		_ = c.Stop(ctx)
		c.mu.Lock()
		onQuit := c.onQuit
		c.mu.Unlock()
		if onQuit != nil {
			onQuit()
		}
	}
}

func (c *Channel) leave(chat string) error {
	bot := c.api()
	if bot == nil {
		return fmt.Errorf("bot not initialized")
	}
	params := tgbotapi.Params{}
	if id, err := parseInt64(chat); err == nil {
		params.AddNonZero64("chat_id", id)
	} else {
		params["chat_id"] = "@" + strings.TrimPrefix(chat, "@")
	}
	_, err := bot.MakeRequest("leaveChat", params)
	return err
}

func (c *Channel) reply(chatID, text string) {
	if err := c.Send(context.Background(), &bus.OutboundMessage{Channel: c.Name(), ChatID: chatID, Mode: bus.Direct, Content: text}); err != nil {
		slog.Warn("control reply failed", "chat_id", chatID, "error", err)
	}
}

// Send delivers msg. Direct replies go to the sender's private chat and
// broadcast replies to the group the command came from.
func (c *Channel) Send(ctx context.Context, msg *bus.OutboundMessage) error {
	bot := c.api()
	if bot == nil {
		return fmt.Errorf("bot not initialized")
	}

	chatID, err := parseInt64(msg.ChatID)
	if err != nil {
		return fmt.Errorf("invalid chat id %q: %w", msg.ChatID, err)
	}

	tgMsg := tgbotapi.NewMessage(chatID, msg.Content)
	if msg.Mode == bus.Broadcast {
		tgMsg.Text = renderNoticeHTML(msg.Content)
		tgMsg.ParseMode = tgbotapi.ModeHTML
	}

	_, err = bot.Send(tgMsg)
	if err != nil && tgMsg.ParseMode != "" {
		tgMsg.ParseMode = ""
		tgMsg.Text = msg.Content
		_, err = bot.Send(tgMsg)
	}
	return err
}

func (c *Channel) Stop(ctx context.Context) error {
	c.mu.Lock()
	bot, cancel := c.bot, c.cancel
	c.mu.Unlock()
	if bot != nil {
		bot.StopReceivingUpdates()
	}
	if cancel != nil {
		cancel()
	}
	return nil
}

func parseInt64(s string) (int64, error) {
	return strconv.ParseInt(strings.TrimSpace(s), 10, 64)
}

// renderNoticeHTML makes a broadcast stand out in a busy group.
func renderNoticeHTML(text string) string {
	text = strings.ReplaceAll(text, "&", "&amp;")
	text = strings.ReplaceAll(text, "<", "&lt;")
	text = strings.ReplaceAll(text, ">", "&gt;")
	return "<b>" + text + "</b>"
}
