package gateway

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path"
	"strings"
	"sync"
	"time"

	"github.com/chzyer/readline"
	"golang.org/x/term"

	pkgLogger "github.com/fpt/klein-relay/pkg/logger"
)

const imageCommand = "/image"

// ConsoleAdapter reads lines from stdin and prints replies to stdout, acting
// as a single local channel. Useful for trying personalities without Discord.
type ConsoleAdapter struct {
	bus    *MessageBus
	config ConsoleConfig
	out    io.Writer
	logger *pkgLogger.Logger

	mu     sync.Mutex
	rl     *readline.Instance
	nextID int
}

// NewConsoleAdapter creates a console adapter.
func NewConsoleAdapter(bus *MessageBus, cfg ConsoleConfig, logger *pkgLogger.Logger) *ConsoleAdapter {
	return &ConsoleAdapter{
		bus:    bus,
		config: cfg,
		out:    os.Stdout,
		logger: logger.WithComponent("console"),
	}
}

// Start runs the read loop. Blocks until ctx is cancelled or stdin closes.
func (c *ConsoleAdapter) Start(ctx context.Context) error {
	rl, err := readline.NewEx(&readline.Config{
		Prompt:          "> ",
		InterruptPrompt: "^C",
		EOFPrompt:       "exit",
		// Plain pipes get no line editing
		FuncIsTerminal: func() bool { return term.IsTerminal(int(os.Stdin.Fd())) },
	})
	if err != nil {
		return fmt.Errorf("failed to initialize console: %w", err)
	}

	c.mu.Lock()
	c.rl = rl
	c.out = rl.Stdout()
	c.mu.Unlock()

	go func() {
		<-ctx.Done()
		_ = rl.Close()
	}()

	fmt.Fprintf(c.out, "💬 Console channel %q. Type a message, or %s <url> to send an image.\n", c.config.ChannelID, imageCommand)

	for {
		line, err := rl.Readline()
		if err == readline.ErrInterrupt {
			if len(line) == 0 {
				return nil
			}
			continue
		}
		if err != nil {
			// io.EOF or closed by ctx
			return nil
		}

		msg, ok := c.parseLine(line)
		if !ok {
			continue
		}
		select {
		case c.bus.Inbound <- msg:
		case <-ctx.Done():
			return nil
		}
	}
}

// parseLine turns one input line into an inbound message. "/image <url>"
// becomes a message with a single attachment whose content type is guessed
// from the URL's extension.
func (c *ConsoleAdapter) parseLine(line string) (InboundMessage, bool) {
	line = strings.TrimSpace(line)
	if line == "" {
		return InboundMessage{}, false
	}

	c.mu.Lock()
	c.nextID++
	id := fmt.Sprintf("console-%d", c.nextID)
	c.mu.Unlock()

	msg := InboundMessage{
		ChannelType: "console",
		ChannelID:   c.config.ChannelID,
		MessageID:   id,
		AuthorID:    c.config.UserName,
		AuthorName:  c.config.UserName,
		Text:        line,
		Timestamp:   time.Now(),
	}

	if rest, ok := strings.CutPrefix(line, imageCommand); ok && (rest == "" || rest[0] == ' ') {
		url := strings.TrimSpace(rest)
		if url == "" {
			fmt.Fprintf(c.out, "usage: %s <url>\n", imageCommand)
			return InboundMessage{}, false
		}
		msg.Text = ""
		msg.Attachments = []Attachment{{URL: url, ContentType: contentTypeFromURL(url)}}
	}
	return msg, true
}

// contentTypeFromURL guesses a MIME type from the URL path's extension.
func contentTypeFromURL(rawURL string) string {
	p := rawURL
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	ct := mime.TypeByExtension(strings.ToLower(path.Ext(p)))
	if i := strings.Index(ct, ";"); i >= 0 {
		ct = ct[:i]
	}
	return ct
}

// Stop closes the readline instance.
func (c *ConsoleAdapter) Stop() error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.rl != nil {
		return c.rl.Close()
	}
	return nil
}

// Send prints the message.
func (c *ConsoleAdapter) Send(ctx context.Context, msg OutboundMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	prefix := "🤖"
	if msg.ReplyToID != "" {
		prefix = "🤖 ↪"
	}
	_, err := fmt.Fprintf(c.out, "%s %s\n", prefix, msg.Text)
	if c.rl != nil {
		c.rl.Refresh()
	}
	return err
}

// SendTyping prints nothing; the console has no typing indicator.
func (c *ConsoleAdapter) SendTyping(ctx context.Context, channelID string) error {
	return nil
}
