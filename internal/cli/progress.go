package cli

import (
	"fmt"

	"charm.land/bubbles/v2/progress"
	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/lipgloss"
)

// Theme holds the color scheme for the progress display.
type Theme struct {
	Status     lipgloss.Color
	Success    lipgloss.Color
	Error      lipgloss.Color
	Hint       lipgloss.Color
	ProgressBg lipgloss.Color
}

// defaultTheme provides default colors.
var defaultTheme = Theme{
	Status:     lipgloss.Color("#5FAFD7"), // light blue
	Success:    lipgloss.Color("#00D787"), // green
	Error:      lipgloss.Color("#FF005F"), // red
	Hint:       lipgloss.Color("#6C6C6C"), // dim gray
	ProgressBg: lipgloss.Color("#3A3A3A"), // dark gray
}

// Style functions for dynamic theming
func (t Theme) statusStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Status)
}

func (t Theme) completedStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Success).Bold(true)
}

func (t Theme) errorStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Error).Bold(true)
}

func (t Theme) hintStyle() lipgloss.Style {
	return lipgloss.NewStyle().Foreground(t.Hint).Italic(true)
}

// progressMsg carries one backfill progress update.
type progressMsg struct {
	done  int
	total int
}

// backfillDoneMsg signals the backfill goroutine finished.
type backfillDoneMsg struct {
	embedded int
	err      error
}

// reindexModel is the bubbletea model for embedding backfill progress.
type reindexModel struct {
	updates  <-chan tea.Msg
	progress progress.Model
	theme    Theme
	done     int
	total    int
	embedded int
	finished bool
	quitting bool
	err      error
	cancel   func()
}

// newReindexModel creates a new reindex progress model. The updates
// channel carries progressMsg values followed by one backfillDoneMsg.
func newReindexModel(updates <-chan tea.Msg, cancel func()) reindexModel {
	prog := progress.New(
		progress.WithDefaultBlend(),
		progress.WithWidth(40),
	)

	return reindexModel{
		updates:  updates,
		progress: prog,
		theme:    defaultTheme,
		cancel:   cancel,
	}
}

// Init returns the initial command (start listening for updates).
func (m reindexModel) Init() tea.Cmd {
	return tea.Batch(
		m.waitForUpdate(),
		m.progress.Init(),
	)
}

// Update handles messages and returns the updated model.
func (m reindexModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyPressMsg:
		switch msg.String() {
		case "ctrl+c", "q":
			m.quitting = true
			if m.cancel != nil {
				m.cancel()
			}
			return m, tea.Quit
		}

	case progressMsg:
		m.done = msg.done
		m.total = msg.total
		return m, m.waitForUpdate()

	case backfillDoneMsg:
		m.finished = true
		m.embedded = msg.embedded
		m.err = msg.err
		return m, tea.Quit

	case progress.FrameMsg:
		var cmd tea.Cmd
		m.progress, cmd = m.progress.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View renders the progress display.
func (m reindexModel) View() tea.View {
	return tea.NewView(m.renderContent())
}

// renderContent builds the display string.
func (m reindexModel) renderContent() string {
	if m.finished || m.quitting {
		return m.finalView()
	}

	if m.total == 0 {
		return "Scanning for episodes without embeddings...\n"
	}

	var pct float64
	if m.total > 0 {
		pct = float64(m.done) / float64(m.total)
	}

	status := m.theme.statusStyle().Render("[embedding]")
	progressBar := m.progress.ViewAs(pct)
	counts := fmt.Sprintf("%d/%d episodes", m.done, m.total)
	hint := m.theme.hintStyle().Render("Press Ctrl+C to stop (progress is kept)")

	return fmt.Sprintf("%s %s %s\n%s\n", status, progressBar, counts, hint)
}

// finalView renders the completion message.
func (m reindexModel) finalView() string {
	if m.quitting {
		return m.theme.hintStyle().Render(
			fmt.Sprintf("\nStopped after %d/%d episodes. Run 'recall reindex' again to finish.\n",
				m.done, m.total))
	}

	if m.err != nil {
		return m.theme.errorStyle().Render(fmt.Sprintf("\n✗ Reindex failed: %s\n", m.err))
	}

	output := m.theme.completedStyle().Render("✓ Completed") + "\n\n"
	output += fmt.Sprintf("  Episodes embedded: %d\n", m.embedded)
	if m.embedded < m.total {
		output += m.theme.hintStyle().Render(
			fmt.Sprintf("  %d episodes still pending (provider errors; retry later)\n",
				m.total-m.embedded))
	}
	return output
}

// waitForUpdate waits for the next message from the backfill goroutine.
func (m reindexModel) waitForUpdate() tea.Cmd {
	return func() tea.Msg {
		return <-m.updates
	}
}

// RunReindexProgress runs the interactive progress UI over a backfill
// feeding the updates channel. Returns nil on success or Ctrl+C, the
// backfill error otherwise.
func RunReindexProgress(updates <-chan tea.Msg, cancel func()) error {
	model := newReindexModel(updates, cancel)
	p := tea.NewProgram(model)

	finalModel, err := p.Run()
	if err != nil {
		return fmt.Errorf("progress UI error: %w", err)
	}

	if m, ok := finalModel.(reindexModel); ok {
		if m.quitting {
			return nil
		}
		if m.err != nil {
			return m.err
		}
	}

	return nil
}
