package cli

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/alexanderramin/attune/internal/classify"
	"github.com/alexanderramin/attune/internal/cli/formatter"
	"github.com/alexanderramin/attune/internal/domain"
	"github.com/alexanderramin/attune/internal/engine"
)

// coachModel is the bubbletea Model for the live coaching panel: the tone
// report updates on every keystroke, enter sends the draft to the learner
// and refreshes the advice list.
type coachModel struct {
	input textinput.Model
	width int

	app    *App
	userID string
	reqCtx domain.ContextID

	// prevBand feeds tone hysteresis so the band doesn't flicker while
	// typing.
	prevBand domain.Band

	classification domain.ToneClassification
	contextScores  map[domain.ContextID]float64
	advice         []domain.RankedAdvice
	estimate       domain.AttachmentEstimate

	status   string
	quitting bool
}

// adviceMsg carries a completed ranking back into the update loop.
type adviceMsg struct {
	advice []domain.RankedAdvice
}

// observedMsg carries the post-send estimate back into the update loop.
type observedMsg struct {
	estimate domain.AttachmentEstimate
	err      error
}

func newCoachModel(app *App, userID string, reqCtx domain.ContextID) coachModel {
	ti := textinput.New()
	ti.Focus()
	ti.Prompt = "> "
	ti.Placeholder = "type your message..."
	ti.CharLimit = 500

	return coachModel{
		input:  ti,
		app:    app,
		userID: userID,
		reqCtx: reqCtx,
		width:  80,
	}
}

func (m coachModel) Init() tea.Cmd {
	return tea.Batch(textinput.Blink, m.loadEstimate())
}

func (m coachModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			m.quitting = true
			return m, tea.Quit
		case tea.KeyEnter:
			text := strings.TrimSpace(m.input.Value())
			if text == "" {
				return m, nil
			}
			m.input.Reset()
			m.status = "observing..."
			return m, tea.Batch(m.observe(text), m.rank(text))
		}

	case adviceMsg:
		m.advice = msg.advice
		return m, nil

	case observedMsg:
		if msg.err != nil {
			m.status = fmt.Sprintf("observe failed: %v", msg.err)
			return m, nil
		}
		m.estimate = msg.estimate
		m.status = ""
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)

	// Reclassify the draft on every edit.
	text := m.input.Value()
	if strings.TrimSpace(text) == "" {
		m.classification = domain.ToneClassification{}
		m.contextScores = nil
	} else {
		res := m.app.Engine.ClassifyTone(context.Background(), classify.Request{
			Text:     text,
			Context:  m.reqCtx,
			PrevBand: m.prevBand,
		})
		m.classification = res.Classification
		m.contextScores = res.ContextScores
		m.prevBand = res.Classification.Band
	}

	return m, cmd
}

func (m coachModel) loadEstimate() tea.Cmd {
	return func() tea.Msg {
		est, err := m.app.Engine.GetAttachmentEstimate(context.Background(), m.userID)
		return observedMsg{estimate: est, err: err}
	}
}

func (m coachModel) observe(text string) tea.Cmd {
	return func() tea.Msg {
		est, err := m.app.Engine.Observe(context.Background(), engine.ObserveRequest{
			UserID:  m.userID,
			Text:    text,
			Context: m.reqCtx,
		})
		return observedMsg{estimate: est, err: err}
	}
}

func (m coachModel) rank(text string) tea.Cmd {
	return func() tea.Msg {
		res, err := m.app.Engine.RankAdvice(context.Background(), engine.RankRequest{
			Text:    text,
			Context: m.reqCtx,
			UserID:  m.userID,
			Limit:   3,
		})
		if err != nil {
			return adviceMsg{}
		}
		return adviceMsg{advice: res.Advice}
	}
}

func (m coachModel) View() string {
	if m.quitting {
		return ""
	}

	var b strings.Builder

	b.WriteString(formatter.StyleHeader.Render("ATTUNE COACH"))
	b.WriteString(formatter.Dim(fmt.Sprintf("  %s", m.userID)))
	b.WriteString("\n\n")

	b.WriteString(m.input.View())
	b.WriteString("\n\n")

	if m.classification.Primary != "" {
		b.WriteString(fmt.Sprintf("%s  %s  %s\n",
			formatter.ToneIndicator(m.classification.Primary),
			formatter.BandPill(m.classification.Band),
			formatter.Dim(fmt.Sprintf("confidence %.2f", m.classification.Confidence)),
		))
	} else {
		b.WriteString(formatter.Dim("start typing to see tone"))
		b.WriteString("\n")
	}

	panels := []string{m.advicePanel(), m.profilePanel()}
	b.WriteString("\n")
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, panels...))
	b.WriteString("\n")

	if m.status != "" {
		b.WriteString(formatter.Dim(m.status))
		b.WriteString("\n")
	}
	b.WriteString(formatter.Dim("enter sends · esc quits"))
	b.WriteString("\n")

	return b.String()
}

func (m coachModel) advicePanel() string {
	if len(m.advice) == 0 {
		return formatter.RenderBox("Advice", formatter.Dim("send a message to get suggestions"))
	}
	var lines []string
	for i, ra := range m.advice {
		lines = append(lines, fmt.Sprintf("%d. %s", i+1, ra.Item.Text))
	}
	return formatter.RenderBox("Advice", strings.Join(lines, "\n"))
}

func (m coachModel) profilePanel() string {
	if m.estimate.Primary == "" {
		return formatter.RenderBox("Profile", formatter.Dim("learning..."))
	}
	var lines []string
	lines = append(lines, formatter.StyleBadge(m.estimate.Primary))
	for _, ss := range m.estimate.Scores.Sorted() {
		lines = append(lines, fmt.Sprintf("%-13s %s",
			ss.Style, formatter.RenderMeter(ss.Score, 10, formatter.StyleFg)))
	}
	return formatter.RenderBox("Profile", strings.Join(lines, "\n"))
}
