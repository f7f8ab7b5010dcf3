// Package ui renders interactive run progress. It consumes the
// pipeline's event stream and draws per-period status while the run is
// in flight; logs keep going to stderr untouched.
package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/sppd-tools/sppdparquet/internal/pipeline"
	"github.com/sppd-tools/sppdparquet/internal/util"
)

var (
	titleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("62"))
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	periodStyles = map[pipeline.Status]lipgloss.Style{
		pipeline.StatusSucceeded:          lipgloss.NewStyle().Foreground(lipgloss.Color("46")),
		pipeline.StatusSucceededWithSkips: lipgloss.NewStyle().Foreground(lipgloss.Color("214")),
		pipeline.StatusFailedDownload:     lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		pipeline.StatusFailedExtraction:   lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
		pipeline.StatusFailedWrite:        lipgloss.NewStyle().Foreground(lipgloss.Color("196")),
	}
)

type eventMsg pipeline.Event

// streamClosedMsg arrives when the pipeline closed its event channel,
// i.e. the run is over.
type streamClosedMsg struct{}

// Model is the bubbletea model for one pipeline run.
type Model struct {
	title  string
	events <-chan pipeline.Event

	spinner spinner.Model
	bar     progress.Model

	totalPeriods  int
	currentPeriod string
	fileDone      int
	fileTotal     int
	results       []pipeline.PeriodResult

	width    int
	Quitting bool
}

// New builds a progress model fed by events. The caller must close the
// channel once the run returns.
func New(title string, events <-chan pipeline.Event) *Model {
	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	return &Model{
		title:   title,
		events:  events,
		spinner: s,
		bar:     progress.New(progress.WithDefaultGradient()),
	}
}

func (m *Model) Init() tea.Cmd {
	return tea.Batch(m.spinner.Tick, m.waitForEvent())
}

func (m *Model) waitForEvent() tea.Cmd {
	return func() tea.Msg {
		e, ok := <-m.events
		if !ok {
			return streamClosedMsg{}
		}
		return eventMsg(e)
	}
}

func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.String() == "q" {
			m.Quitting = true
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.bar.Width = msg.Width - 8
		return m, nil

	case eventMsg:
		m.apply(pipeline.Event(msg))
		return m, m.waitForEvent()

	case streamClosedMsg:
		m.Quitting = true
		return m, tea.Quit

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *Model) apply(e pipeline.Event) {
	switch e.Kind {
	case pipeline.EventPeriodsResolved:
		m.totalPeriods = e.Total
	case pipeline.EventFileParsed:
		m.currentPeriod = e.Period
		m.fileDone = e.Done
		m.fileTotal = e.Total
	case pipeline.EventPeriodDone:
		if e.Result != nil {
			m.results = append(m.results, *e.Result)
		}
		m.currentPeriod = ""
		m.fileDone, m.fileTotal = 0, 0
	}
}

func (m *Model) View() string {
	var b strings.Builder
	b.WriteString(titleStyle.Render(m.title))
	b.WriteString("\n\n")

	if m.totalPeriods > 0 {
		ratio := float64(len(m.results)) / float64(m.totalPeriods)
		b.WriteString(m.bar.ViewAs(ratio))
		b.WriteString(infoStyle.Render(fmt.Sprintf("  %d/%d periods", len(m.results), m.totalPeriods)))
		b.WriteString("\n\n")
	}

	for _, r := range m.results {
		style, ok := periodStyles[r.Status]
		if !ok {
			style = infoStyle
		}
		line := fmt.Sprintf("  %s  %s  %d records in %s",
			r.Period, r.Status, r.Records, util.FormatDuration(r.Elapsed))
		if r.FilesSkipped > 0 {
			line += fmt.Sprintf(" (%d files skipped)", r.FilesSkipped)
		}
		if r.Err != nil {
			line += "  " + errorStyle.Render(r.Err.Error())
		}
		b.WriteString(style.Render(line))
		b.WriteString("\n")
	}

	if !m.Quitting {
		if m.currentPeriod != "" && m.fileTotal > 0 {
			b.WriteString(fmt.Sprintf("\n%s parsing %s (%d/%d files)\n",
				m.spinner.View(), m.currentPeriod, m.fileDone, m.fileTotal))
		} else {
			b.WriteString(fmt.Sprintf("\n%s working...\n", m.spinner.View()))
		}
		b.WriteString(infoStyle.Render("\npress q to abort the display (the run keeps going)\n"))
	}
	return b.String()
}

// Run drives the model until the event stream closes.
func Run(title string, events <-chan pipeline.Event) error {
	_, err := tea.NewProgram(New(title, events)).Run()
	return err
}
