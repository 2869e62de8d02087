package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/MEKXH/achievebot/internal/bus"
	"github.com/MEKXH/achievebot/internal/channel"
	"github.com/MEKXH/achievebot/internal/engine"
	"github.com/spf13/cobra"
)

const consoleChannel = "console"

func NewChatCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "chat [command]",
		Short: "Run achievement commands from the terminal",
		RunE:  runChat,
	}
	cmd.Flags().String("as", "", "Sender name (defaults to $USER)")
	cmd.Flags().String("chat", "", "Pretend the commands come from this group chat")
	return cmd
}

type consoleSession struct {
	loop   *engine.Loop
	sender string
	chat   string
	out    io.Writer
}

func runChat(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	loop, backend, err := openEngine(ctx, cfg, nil)
	if err != nil {
		return err
	}
	defer backend.Close()

	sender, _ := cmd.Flags().GetString("as")
	chat, _ := cmd.Flags().GetString("chat")
	session := newConsoleSession(loop, sender, chat, os.Stdout)

	if len(args) > 0 {
		session.handle(ctx, strings.Join(args, " "))
		return nil
	}

	fmt.Printf("%s ready as %s. Type 'help' for commands, 'quit' to exit.\n", cfg.Bot.Name, session.sender)
	session.repl(ctx, os.Stdin)
	return nil
}

func newConsoleSession(loop *engine.Loop, sender, chat string, out io.Writer) *consoleSession {
	sender = channel.BareUser(sender)
	if sender == "" {
		sender = channel.BareUser(os.Getenv("USER"))
	}
	if sender == "" {
		sender = "console"
	}
	return &consoleSession{loop: loop, sender: sender, chat: strings.TrimSpace(chat), out: out}
}

func (s *consoleSession) repl(ctx context.Context, in io.Reader) {
	reader := bufio.NewReader(in)
	for {
		fmt.Fprint(s.out, "\n> ")
		line, err := reader.ReadString('\n')
		if strings.TrimSpace(line) != "" {
			if !s.handle(ctx, line) {
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// handle runs one line and reports whether the session should continue.
func (s *consoleSession) handle(ctx context.Context, line string) bool {
	line = strings.TrimSpace(line)
	if line == "exit" {
		return false
	}
	if ctl, ok := channel.ParseControl(line); ok {
		if ctl.Kind == channel.ControlQuit {
			return false
		}
		fmt.Fprintf(s.out, "%s is not supported on the console\n", ctl.Kind)
		return true
	}

	out := s.loop.Handle(ctx, &bus.InboundMessage{
		Channel:   consoleChannel,
		SenderID:  s.sender,
		ChatID:    s.chat,
		Private:   s.chat == "",
		Content:   line,
		Timestamp: time.Now(),
	})
	if out.Mode == bus.Broadcast {
		fmt.Fprintf(s.out, "[%s] %s\n", out.ChatID, out.Content)
	} else {
		fmt.Fprintln(s.out, out.Content)
	}
	return true
}
