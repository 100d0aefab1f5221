package tui

import (
	"context"
	"fmt"
	"strings"

	"coros-export/internal/coros"
	"coros-export/internal/service"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// ExtractModel is the extraction screen model
type ExtractModel struct {
	extractor *service.Extractor
	session   coros.Session
	options   service.Options
	fileType  coros.FileType
	exportDir string
	jsonPath  string

	running      bool
	downloading  bool
	done         bool
	result       *service.Result
	exportResult *service.ExportResult
	err          error
}

// NewExtractModel creates a new extraction model
func NewExtractModel(ex *service.Extractor, sess coros.Session, opts service.Options, ft coros.FileType, exportDir, jsonPath string) ExtractModel {
	return ExtractModel{
		extractor: ex,
		session:   sess,
		options:   opts,
		fileType:  ft,
		exportDir: exportDir,
		jsonPath:  jsonPath,
	}
}

// Init initializes the extraction screen
func (m ExtractModel) Init() tea.Cmd {
	return nil
}

// ExtractDoneMsg is sent when an extraction run finishes
type ExtractDoneMsg struct {
	Result *service.Result
	Err    error
}

// ExportDoneMsg is sent when a file-export run finishes
type ExportDoneMsg struct {
	Result *service.ExportResult
	Err    error
}

// Update handles messages
func (m ExtractModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case ExtractDoneMsg:
		m.running = false
		m.done = true
		m.result = msg.Result
		m.err = msg.Err
		return m, func() tea.Msg { return ExtractCompleteMsg{} }

	case ExportDoneMsg:
		m.downloading = false
		m.done = true
		m.exportResult = msg.Result
		m.err = msg.Err
		return m, nil

	case tea.KeyMsg:
		if !m.running && !m.downloading {
			switch msg.String() {
			case "enter", "e":
				m.running = true
				m.done = false
				m.err = nil
				m.result = nil
				m.exportResult = nil
				return m, m.runExtract
			case "d":
				m.downloading = true
				m.done = false
				m.err = nil
				m.result = nil
				m.exportResult = nil
				return m, m.runExport
			}
		}
	}
	return m, nil
}

func (m ExtractModel) runExtract() tea.Msg {
	ctx := context.Background()

	// Progress channel stays nil: screen redraws happen on completion
	collection, result, err := m.extractor.ExtractAll(ctx, m.session, m.options, nil)
	if err == nil {
		err = service.WriteJSON(collection, m.jsonPath)
	}

	return ExtractDoneMsg{Result: result, Err: err}
}

func (m ExtractModel) runExport() tea.Msg {
	ctx := context.Background()

	result, err := m.extractor.ExportFiles(ctx, m.session, m.options.Filter, m.fileType, m.exportDir, nil)
	return ExportDoneMsg{Result: result, Err: err}
}

// View renders the extraction screen
func (m ExtractModel) View() string {
	var sections []string

	title := cardTitleStyle.Render("COROS Extraction")
	sections = append(sections, title)

	if m.err != nil {
		sections = append(sections, errorStyle.Render(fmt.Sprintf("\n  Error: %v", m.err)))
		sections = append(sections, "\n"+statusStyle.Render("  Press 'e' or Enter to retry"))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	if m.done {
		sections = append(sections, m.renderSummary())
		sections = append(sections, "\n"+statusStyle.Render("  Press '1' to browse activities"))
		return lipgloss.JoinVertical(lipgloss.Left, sections...)
	}

	switch {
	case m.running:
		sections = append(sections, m.renderBusy("Extracting activities from the Training Hub..."))
	case m.downloading:
		sections = append(sections, m.renderBusy(fmt.Sprintf("Downloading %s files...", m.fileType)))
	default:
		sections = append(sections, m.renderStartPrompt())
	}

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (m ExtractModel) renderStartPrompt() string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, "  This will extract your COROS activity history:")
	lines = append(lines, "")
	lines = append(lines, "  1. List activities (paged)")
	lines = append(lines, "  2. Fetch per-activity detail with retry")
	lines = append(lines, fmt.Sprintf("  3. Write validated records to %s", m.jsonPath))
	lines = append(lines, "")
	lines = append(lines, statusStyle.Render("  Press 'e' or Enter to extract"))
	lines = append(lines, statusStyle.Render(fmt.Sprintf("  Press 'd' to download %s files to %s/", m.fileType, m.exportDir)))

	return strings.Join(lines, "\n")
}

func (m ExtractModel) renderBusy(what string) string {
	var lines []string

	lines = append(lines, "")
	lines = append(lines, "  "+what)
	lines = append(lines, "")
	lines = append(lines, statusStyle.Render("  This may take a moment..."))

	return strings.Join(lines, "\n")
}

func (m ExtractModel) renderSummary() string {
	var lines []string

	lines = append(lines, "")

	if r := m.result; r != nil {
		lines = append(lines, successStyle.Render("  Extraction complete!"))
		lines = append(lines, successStyle.Render(fmt.Sprintf("  %d listed, %d extracted, %d from cache", r.Listed, r.Extracted, r.Cached)))
		if r.Skipped > 0 {
			lines = append(lines, warningStyle.Render(fmt.Sprintf("  %d skipped (see log)", r.Skipped)))
		}
		if len(r.Errors) > 0 {
			lines = append(lines, warningStyle.Render(fmt.Sprintf("  %d errors occurred", len(r.Errors))))
		}
	}

	if r := m.exportResult; r != nil {
		lines = append(lines, successStyle.Render("  Download complete!"))
		lines = append(lines, successStyle.Render(fmt.Sprintf("  %d files written", r.Written)))
		if r.Skipped > 0 {
			lines = append(lines, statusStyle.Render(fmt.Sprintf("  %d unsupported for %s, skipped", r.Skipped, m.fileType)))
		}
		if len(r.Errors) > 0 {
			lines = append(lines, warningStyle.Render(fmt.Sprintf("  %d errors occurred", len(r.Errors))))
		}
	}

	return strings.Join(lines, "\n")
}
