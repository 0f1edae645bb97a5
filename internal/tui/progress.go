package tui

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/vvka-141/flywaysum/internal/search"
)

// SearchFunc runs a search and reports progress through onEvent.
type SearchFunc func(ctx context.Context, onEvent func(search.Event)) (comment string, found bool, err error)

type eventMsg search.Event

type searchDoneMsg struct {
	comment string
	found   bool
	err     error
}

// progressModel renders one finished line per exhausted length and a
// spinner for the length being searched.
type progressModel struct {
	spinner  spinner.Model
	title    string
	length   int
	finished []string
	done     bool
	result   searchDoneMsg
}

func newProgressModel(title string) progressModel {
	return progressModel{
		spinner: spinner.New(spinner.WithSpinner(spinner.Dot), spinner.WithStyle(SpinnerStyle)),
		title:   title,
	}
}

func (m progressModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m progressModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case eventMsg:
		switch msg.Kind {
		case search.EventLengthStarted:
			m.length = msg.Length
		case search.EventLengthExhausted:
			m.finished = append(m.finished, MutedStyle.Render(fmt.Sprintf("%s length %d: no match in %d candidates (%d ms)",
				SymbolCross, msg.Length, msg.Candidates, msg.Elapsed.Milliseconds())))
		case search.EventFound:
			m.finished = append(m.finished, SuccessStyle.Render(fmt.Sprintf("%s length %d: found %q (%d ms)",
				SymbolCheck, msg.Length, msg.Comment, msg.Elapsed.Milliseconds())))
		}
		return m, nil

	case searchDoneMsg:
		m.done = true
		m.result = msg
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m progressModel) View() string {
	var b strings.Builder
	b.WriteString(MessageStyle.Render(m.title))
	b.WriteString("\n")
	for _, line := range m.finished {
		b.WriteString(line)
		b.WriteString("\n")
	}

	switch {
	case !m.done:
		if m.length > 0 {
			fmt.Fprintf(&b, "%s Trying comment length %d\n", m.spinner.View(), m.length)
		}
	case m.result.err != nil:
		b.WriteString(ErrorStyle.Render(fmt.Sprintf("%s %v", SymbolCross, m.result.err)))
		b.WriteString("\n")
	case !m.result.found:
		b.WriteString(ErrorStyle.Render(SymbolCross + " no matching comment found"))
		b.WriteString("\n")
	}
	return b.String()
}

// RunSearch runs search while rendering its progress to out. The search
// result is returned unchanged; rendering problems do not affect it.
func RunSearch(ctx context.Context, out io.Writer, title string, run SearchFunc) (string, bool, error) {
	p := tea.NewProgram(newProgressModel(title),
		tea.WithOutput(out),
		tea.WithInput(nil),
		tea.WithContext(ctx),
		tea.WithoutSignalHandler(),
	)

	results := make(chan searchDoneMsg, 1)
	go func() {
		comment, found, err := run(ctx, func(e search.Event) { p.Send(eventMsg(e)) })
		res := searchDoneMsg{comment: comment, found: found, err: err}
		results <- res
		p.Send(res)
	}()

	_, _ = p.Run()
	res := <-results
	return res.comment, res.found, res.err
}
