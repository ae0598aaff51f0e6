// Package tui is the SSH-facing dashboard: pick a ticker, run the drop
// forecaster, and browse recent runs.
package tui

import (
	"context"
	"fmt"
	"strings"
	"time"

	"downcast/internal/domain"
	"downcast/internal/ml/forecast"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Forecaster is the service surface the dashboard needs.
type Forecaster interface {
	Forecast(ctx context.Context, ticker string) (*forecast.Result, error)
	History(ctx context.Context, ticker string, limit int) ([]domain.DropForecast, error)
}

type forecastMsg struct {
	result  *forecast.Result
	history []domain.DropForecast
	err     error
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	selectedStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("229")).Background(lipgloss.Color("57"))
	dropStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("196"))
	holdStyle     = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("42"))
	faintStyle    = lipgloss.NewStyle().Faint(true)
	errorStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
)

// AppModel is the root bubbletea model for one SSH session.
type AppModel struct {
	svc      Forecaster
	tickers  []string
	cursor   int
	loading  bool
	spinner  spinner.Model
	result   *forecast.Result
	history  []domain.DropForecast
	err      error
	width    int
	height   int
	username string
}

func NewAppModel(svc Forecaster, tickers []string, username string) *AppModel {
	if len(tickers) == 0 {
		tickers = domain.DefaultTickers
	}
	sp := spinner.New()
	sp.Spinner = spinner.Dot
	return &AppModel{
		svc:      svc,
		tickers:  tickers,
		spinner:  sp,
		username: username,
	}
}

func (m *AppModel) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *AppModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.SetSize(msg.Width, msg.Height)
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "q", "ctrl+c":
			return m, tea.Quit
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			}
			return m, nil
		case "down", "j":
			if m.cursor < len(m.tickers)-1 {
				m.cursor++
			}
			return m, nil
		case "enter":
			if m.loading {
				return m, nil
			}
			m.loading = true
			m.err = nil
			m.result = nil
			return m, tea.Batch(m.spinner.Tick, m.runForecast(m.tickers[m.cursor]))
		}
		return m, nil

	case forecastMsg:
		m.loading = false
		m.err = msg.err
		m.result = msg.result
		m.history = msg.history
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *AppModel) runForecast(ticker string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
		defer cancel()

		result, err := m.svc.Forecast(ctx, ticker)
		if err != nil {
			return forecastMsg{err: err}
		}
		history, err := m.svc.History(ctx, ticker, 5)
		if err != nil {
			history = nil
		}
		return forecastMsg{result: result, history: history}
	}
}

func (m *AppModel) View() string {
	var b strings.Builder

	header := "downcast"
	if m.username != "" {
		header += " — " + m.username
	}
	b.WriteString(titleStyle.Render(header) + "\n\n")

	for i, ticker := range m.tickers {
		line := "  " + ticker
		if i == m.cursor {
			line = selectedStyle.Render("> " + ticker)
		}
		b.WriteString(line + "\n")
	}
	b.WriteString("\n")

	switch {
	case m.loading:
		b.WriteString(m.spinner.View() + " running pipeline...\n")
	case m.err != nil:
		b.WriteString(errorStyle.Render("error: "+m.err.Error()) + "\n")
	case m.result != nil:
		b.WriteString(renderResult(m.result))
		if len(m.history) > 0 {
			b.WriteString("\n" + faintStyle.Render("recent runs") + "\n")
			for _, row := range m.history {
				b.WriteString(faintStyle.Render(fmt.Sprintf("  %s  next=%s week=%s month=%s",
					row.CreatedAt.Format("01-02 15:04"), row.Next, row.Week, row.Month)) + "\n")
			}
		}
	}

	b.WriteString("\n" + faintStyle.Render("up/down: select   enter: forecast   q: quit") + "\n")
	return b.String()
}

func renderResult(r *forecast.Result) string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(r.Ticker) + "\n")
	b.WriteString("  next day:  " + renderCall(r.Next) + "\n")
	b.WriteString("  two weeks: " + renderCall(r.Week) + "\n")
	b.WriteString("  one month: " + renderCall(r.Month) + "\n")
	return b.String()
}

func renderCall(v string) string {
	if v == "1.0" {
		return dropStyle.Render("DROP")
	}
	return holdStyle.Render("HOLD")
}
