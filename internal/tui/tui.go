// Package tui provides an interactive BubbleTea encode/decode playground for
// an already-trained model, adapted from sift's search TUI: the same
// text-input-plus-live-results shape, driving the tokenizer instead of the
// vector index.
//
// Layout:
//
//	┌─────────────────────────────────────┐
//	│  bpe  tokenizer playground          │  ← header
//	│  ❯ <text input>                     │  ← input bar
//	│  ─────────────────────────────────  │  ← divider
//	│  [12]"he" [34]"llo" [5]" "          │  ← token list
//	│  decoded: hello                     │  ← round trip
//	│  ─────────────────────────────────  │  ← divider
//	│  12 tokens  ^i info  esc clear  ^q  │  ← status bar
//	└─────────────────────────────────────┘
package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/screenager/bpego/internal/codec"
	"github.com/screenager/bpego/internal/model"
)

var (
	colorAccent = lipgloss.Color("#7C6AF7")
	colorDim    = lipgloss.Color("#555555")
	colorMuted  = lipgloss.Color("#888888")
	colorText   = lipgloss.Color("#DDDDDD")
	colorSub    = lipgloss.Color("#444444")
	colorIndex  = lipgloss.Color("#5ECEF5")
	colorErr    = lipgloss.Color("#FF6B6B")

	sTitle   = lipgloss.NewStyle().Bold(true).Foreground(colorText)
	sAccent  = lipgloss.NewStyle().Foreground(colorAccent)
	sDim     = lipgloss.NewStyle().Foreground(colorDim)
	sMuted   = lipgloss.NewStyle().Foreground(colorMuted)
	sIndex   = lipgloss.NewStyle().Foreground(colorIndex).Bold(true)
	sToken   = lipgloss.NewStyle().Foreground(colorText)
	sErr     = lipgloss.NewStyle().Foreground(colorErr)
	sDivider = lipgloss.NewStyle().Foreground(colorSub)
	sHint    = lipgloss.NewStyle().Foreground(colorDim).Background(lipgloss.Color("#111111"))
)

type mode int

const (
	modePlay mode = iota
	modeInfo
)

// Model is the BubbleTea application model for the playground.
type Model struct {
	m       *model.Model
	input   textinput.Model
	indices []int
	tokens  []string
	decoded string
	err     error
	mode    mode
	width   int
	height  int
}

// New creates a playground TUI model over an already-trained model.
func New(m *model.Model) Model {
	ti := textinput.New()
	ti.Placeholder = "type text to encode…"
	ti.Focus()
	ti.CharLimit = 512
	ti.Width = 60
	ti.PromptStyle = sAccent
	ti.Prompt = "❯ "
	ti.TextStyle = lipgloss.NewStyle().Foreground(colorText)

	return Model{m: m, input: ti, mode: modePlay}
}

// Init is the BubbleTea init hook.
func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update processes messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.input.Width = m.width - 8
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c", "ctrl+q":
			return m, tea.Quit
		case "ctrl+i":
			if m.mode == modeInfo {
				m.mode = modePlay
				m.input.Focus()
			} else {
				m.mode = modeInfo
				m.input.Blur()
			}
			return m, nil
		case "esc":
			m.mode = modePlay
			m.input.SetValue("")
			m.indices, m.tokens, m.decoded, m.err = nil, nil, "", nil
			m.input.Focus()
			return m, nil
		}
	}

	if m.mode == modePlay {
		prev := m.input.Value()
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		if m.input.Value() != prev {
			m.recompute()
		}
		return m, cmd
	}
	return m, nil
}

func (m *Model) recompute() {
	text := m.input.Value()
	if text == "" {
		m.indices, m.tokens, m.decoded, m.err = nil, nil, "", nil
		return
	}
	m.indices = codec.Encode(m.m, text)
	tokens, err := m.m.Vocab().TokensOf(m.indices)
	if err != nil {
		m.err = err
		m.tokens = nil
		m.decoded = ""
		return
	}
	m.tokens = tokens
	decoded, err := codec.Decode(m.m, m.indices)
	if err != nil {
		m.err = err
		m.decoded = ""
		return
	}
	m.err = nil
	m.decoded = decoded
}

// View renders the playground.
func (m Model) View() string {
	if m.width == 0 {
		return ""
	}
	if m.mode == modeInfo {
		return m.infoView()
	}
	return m.playView()
}

func (m Model) playView() string {
	var b strings.Builder
	w := m.width
	divider := sDivider.Render(strings.Repeat("─", clamp(w-2, 10, 200)))

	fmt.Fprintln(&b, "  "+sTitle.Render("bpe")+"  "+sMuted.Render("tokenizer playground"))
	fmt.Fprintln(&b, "  "+m.input.View())
	fmt.Fprintln(&b, "  "+divider)

	switch {
	case m.err != nil:
		fmt.Fprintln(&b, sErr.Render("  error: "+m.err.Error()))
	case len(m.tokens) == 0:
		fmt.Fprintln(&b, sMuted.Render("  type to see the token stream and its decode"))
	default:
		var toks strings.Builder
		for i, t := range m.tokens {
			toks.WriteString(sIndex.Render(fmt.Sprintf("[%d]", m.indices[i])))
			toks.WriteString(sToken.Render(fmt.Sprintf("%q ", t)))
		}
		fmt.Fprintln(&b, "  "+toks.String())
		fmt.Fprintln(&b, "")
		fmt.Fprintln(&b, "  "+sDim.Render("decoded: ")+sToken.Render(m.decoded))
	}

	fmt.Fprintln(&b, "  "+divider)
	status := fmt.Sprintf("%d tokens", len(m.tokens))
	fmt.Fprint(&b, sHint.Render("  "+status+"  ^i info  esc clear  ^q quit  "))
	return b.String()
}

func (m Model) infoView() string {
	var b strings.Builder
	w := clamp(m.width, 10, 200)
	divider := sDivider.Render(strings.Repeat("─", w-2))

	fmt.Fprintln(&b, "  "+sTitle.Render("bpe")+" "+sMuted.Render("— model info"))
	fmt.Fprintln(&b, "  "+divider)
	fmt.Fprintln(&b, "")
	row := func(label, value string) {
		fmt.Fprintf(&b, "  %-20s %s\n", sDim.Render(label), value)
	}
	row("vocabulary size", sAccent.Render(fmt.Sprintf("%d", m.m.VocabSize())))
	row("merge rules", sAccent.Render(fmt.Sprintf("%d", len(m.m.MergeRules()))))
	row("unknown token", sMuted.Render(m.m.Reserved().Unknown.Value))
	row("end of sentence", sMuted.Render(m.m.Reserved().EOS.Value))
	fmt.Fprintln(&b, "")
	fmt.Fprintln(&b, "  "+divider)
	fmt.Fprint(&b, sHint.Render("  esc back  ctrl+q quit"))
	return b.String()
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
