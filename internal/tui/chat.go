package tui

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"time"

	"taskflow-cli/internal/assist"
	"taskflow-cli/internal/command"
	"taskflow-cli/internal/store"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Stream messages carry the request sequence number so deltas from a
// canceled request are dropped instead of leaking into the next reply.
type chatDeltaMsg struct {
	seq   int
	delta string
}

type chatDoneMsg struct {
	seq  int
	full string
	err  error
}

type chatModel struct {
	vp    viewport.Model
	input textinput.Model
	spin  spinner.Model

	msgs    []assist.Message
	notices []int // indexes into msgs rendered as apply notices

	streaming bool
	pending   string
	seq       int
	ch        chan tea.Msg
	cancel    context.CancelFunc
	err       string

	width  int
	height int
}

func newChatModel(s store.Store) chatModel {
	c := chatModel{}

	c.input = textinput.New()
	c.input.Placeholder = "Ask the assistant..."
	c.input.Focus()

	c.spin = spinner.New(spinner.WithSpinner(spinner.Dot))
	c.vp = viewport.New(0, 0)

	msgs, err := assist.LoadHistory(s)
	if err != nil {
		c.err = err.Error()
		msgs = []assist.Message{assist.Greeting()}
	}
	c.msgs = msgs
	return c
}

func (c *chatModel) setSize(width, height int) {
	c.width = width
	c.height = height
	inputH := 3
	c.vp.Width = width
	c.vp.Height = height - inputH
	if c.vp.Height < 3 {
		c.vp.Height = 3
	}
	c.refreshViewport()
}

func (c *chatModel) refreshViewport() {
	var b strings.Builder
	noticeAt := map[int]bool{}
	for _, i := range c.notices {
		noticeAt[i] = true
	}
	for i, m := range c.msgs {
		if noticeAt[i] {
			b.WriteString(lipgloss.NewStyle().Foreground(colorDone).Render("✓ " + m.Content))
			b.WriteString("\n\n")
			continue
		}
		switch m.Role {
		case assist.RoleUser:
			b.WriteString(lipgloss.NewStyle().Foreground(colorAccent).Bold(true).Render("You"))
			b.WriteString("\n" + m.Content + "\n\n")
		default:
			b.WriteString(styleHeader().Render("Assistant"))
			b.WriteString("\n" + renderMarkdown(m.Content, c.vp.Width-2) + "\n\n")
		}
	}
	if c.streaming {
		b.WriteString(styleHeader().Render("Assistant"))
		if c.pending == "" {
			b.WriteString("\n" + c.spin.View() + styleMuted().Render("thinking..."))
		} else {
			b.WriteString("\n" + renderMarkdown(command.Strip(c.pending), c.vp.Width-2))
		}
		b.WriteString("\n")
	}
	if c.err != "" {
		b.WriteString(lipgloss.NewStyle().Foreground(colorOverdue).Render(c.err) + "\n")
	}
	c.vp.SetContent(b.String())
	c.vp.GotoBottom()
}

// send starts a streaming request for the current input value.
func (c *chatModel) send(ss *store.Session) tea.Cmd {
	input := strings.TrimSpace(c.input.Value())
	if input == "" || c.streaming {
		return nil
	}
	c.input.SetValue("")
	c.err = ""
	c.msgs = append(c.msgs, assist.Message{Role: assist.RoleUser, Content: input})

	c.seq++
	c.streaming = true
	c.pending = ""
	c.ch = make(chan tea.Msg, 16)

	ctx, cancel := context.WithCancel(context.Background())
	c.cancel = cancel

	conv := assist.BuildConversation(ss.Snapshot(), c.msgs[:len(c.msgs)-1], input, time.Now())
	client := assist.NewClient(ss.Settings())

	seq := c.seq
	ch := c.ch
	go func() {
		// After a cancel nothing drains ch anymore, so every send races
		// against ctx to keep the goroutine from blocking forever.
		send := func(m tea.Msg) bool {
			select {
			case ch <- m:
				return true
			case <-ctx.Done():
				return false
			}
		}
		stream, err := client.Chat(ctx, conv)
		if err != nil {
			send(chatDoneMsg{seq: seq, err: err})
			return
		}
		defer stream.Close()
		var full strings.Builder
		for {
			delta, err := stream.Recv()
			if errors.Is(err, io.EOF) {
				send(chatDoneMsg{seq: seq, full: full.String()})
				return
			}
			if err != nil {
				send(chatDoneMsg{seq: seq, err: err})
				return
			}
			full.WriteString(delta)
			if !send(chatDeltaMsg{seq: seq, delta: delta}) {
				return
			}
		}
	}()

	c.refreshViewport()
	return tea.Batch(listenChat(ch), c.spin.Tick)
}

func listenChat(ch chan tea.Msg) tea.Cmd {
	return func() tea.Msg { return <-ch }
}

// abort cancels an in-flight request; late messages carry a stale seq and
// are ignored.
func (c *chatModel) abort() {
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}
	c.streaming = false
	c.pending = ""
	c.refreshViewport()
}

// finish applies any fenced command from the reply and persists history.
// A transport error means the reply is truncated, so the partial text is
// discarded and no command is dispatched from it.
func (c *chatModel) finish(ss *store.Session, msg chatDoneMsg) {
	c.streaming = false
	c.pending = ""
	if c.cancel != nil {
		c.cancel()
		c.cancel = nil
	}

	if msg.err != nil {
		c.err = msg.err.Error()
		c.refreshViewport()
		return
	}
	if msg.full != "" {
		c.msgs = append(c.msgs, assist.Message{Role: assist.RoleAssistant, Content: command.Strip(msg.full)})

		if parsed, found, perr := command.Extract(msg.full); found {
			switch {
			case perr != nil:
				c.err = fmt.Sprintf("assistant command ignored: %v", perr)
			default:
				if res, derr := command.Dispatch(ss, parsed); derr != nil {
					c.err = fmt.Sprintf("assistant command failed: %v", derr)
				} else {
					c.msgs = append(c.msgs, assist.Message{Role: assist.RoleAssistant, Content: res.Notice})
					c.notices = append(c.notices, len(c.msgs)-1)
				}
			}
		}

		if err := assist.SaveHistory(ss.Store(), c.msgs); err != nil && c.err == "" {
			c.err = err.Error()
		}
	}
	c.refreshViewport()
}

func (c *chatModel) clear(ss *store.Session) {
	c.abort()
	c.msgs = []assist.Message{assist.Greeting()}
	c.notices = nil
	c.err = ""
	if err := assist.ClearHistory(ss.Store()); err != nil {
		c.err = err.Error()
	}
	c.refreshViewport()
}

func (c chatModel) view() string {
	help := "enter: send  ctrl+l: clear  esc: back"
	if c.streaming {
		help = "esc: cancel request"
	}
	return c.vp.View() + "\n" + c.input.View() + "\n" + styleMuted().Render(help)
}
