package tui

import (
	"fmt"
	"time"

	"coros-export/internal/store"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ActivitiesModel is the cached-activities list screen model
type ActivitiesModel struct {
	db          *store.DB
	records     []store.Record
	cursor      int
	offset      int
	total       int
	lastExtract time.Time
	pageSize    int
	loading     bool
	err         error
}

// NewActivitiesModel creates a new activities model
func NewActivitiesModel(db *store.DB) ActivitiesModel {
	return ActivitiesModel{
		db:       db,
		pageSize: 15,
		loading:  true,
	}
}

// Init initializes the activities screen
func (m ActivitiesModel) Init() tea.Cmd {
	return m.loadPage
}

type activitiesLoadedMsg struct {
	records     []store.Record
	total       int
	lastExtract time.Time
	err         error
}

func (m ActivitiesModel) loadPage() tea.Msg {
	records, err := m.db.ListRecords(m.pageSize, m.offset)
	if err != nil {
		return activitiesLoadedMsg{err: err}
	}

	total, err := m.db.CountActivities()
	if err != nil {
		return activitiesLoadedMsg{err: err}
	}

	msg := activitiesLoadedMsg{records: records, total: total}
	if at, ok, err := m.db.LastExtract(); err == nil && ok {
		msg.lastExtract = at
	}
	return msg
}

// Update handles messages
func (m ActivitiesModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case activitiesLoadedMsg:
		m.loading = false
		m.err = msg.err
		m.records = msg.records
		m.total = msg.total
		m.lastExtract = msg.lastExtract

	case tea.KeyMsg:
		switch msg.String() {
		case "up", "k":
			if m.cursor > 0 {
				m.cursor--
			} else if m.offset > 0 {
				m.offset -= m.pageSize
				m.cursor = m.pageSize - 1
				m.loading = true
				return m, m.loadPage
			}
		case "down", "j":
			if m.cursor < len(m.records)-1 {
				m.cursor++
			} else if m.offset+len(m.records) < m.total {
				m.offset += m.pageSize
				m.cursor = 0
				m.loading = true
				return m, m.loadPage
			}
		case "pgup":
			if m.offset > 0 {
				m.offset -= m.pageSize
				if m.offset < 0 {
					m.offset = 0
				}
				m.cursor = 0
				m.loading = true
				return m, m.loadPage
			}
		case "pgdown":
			if m.offset+m.pageSize < m.total {
				m.offset += m.pageSize
				m.cursor = 0
				m.loading = true
				return m, m.loadPage
			}
		case "r":
			m.loading = true
			return m, m.loadPage
		}
	}
	return m, nil
}

// View renders the activities list
func (m ActivitiesModel) View() string {
	if m.loading {
		return "\n  Loading activities..."
	}

	if m.err != nil {
		return errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err))
	}

	if len(m.records) == 0 {
		return "\n  No cached activities. Press 'e' on the extract screen first."
	}

	var sections []string

	startNum := m.offset + 1
	endNum := m.offset + len(m.records)
	title := cardTitleStyle.Render(fmt.Sprintf("Activities (%d-%d of %d)", startNum, endNum, m.total))
	sections = append(sections, title)

	header := tableHeaderStyle.Render(fmt.Sprintf("   %-11s  %-25s  %-14s  %8s  %6s  %5s",
		"Date", "Name", "Sport", "Distance", "Cals", "AvgHR"))
	sections = append(sections, header)

	for i, rec := range m.records {
		s := rec.Summary

		cursor := "  "
		if i == m.cursor {
			cursor = "> "
		}

		row := fmt.Sprintf("%s%-11s  %-25s  %-14s  %6.1fkm  %6d  %5d",
			cursor,
			s.StartTimestamp.Format("Jan 02 2006"),
			truncateName(s.Name, 25),
			s.SportType.String(),
			float64(s.Distance)/1000,
			s.Calories,
			s.AvgHr,
		)

		if i == m.cursor {
			sections = append(sections, tableSelectedStyle.Render(row))
		} else {
			sections = append(sections, tableRowStyle.Render(row))
		}
	}

	help := statusStyle.Render("\n  j/k: navigate  pgup/pgdn: page  r: refresh")
	sections = append(sections, help)

	if !m.lastExtract.IsZero() {
		sections = append(sections, statusStyle.Render(
			"  last extracted "+m.lastExtract.Local().Format("Jan 02 2006 15:04")))
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func truncateName(name string, max int) string {
	if len(name) <= max {
		return name
	}
	if max <= 3 {
		return name[:max]
	}
	return name[:max-3] + "..."
}
