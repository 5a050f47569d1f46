// Package tui renders the timer in the terminal with bubbletea.
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"kidtimer/internal/controller"
	"kidtimer/internal/model"
	"kidtimer/internal/timer"
)

const progressWidth = 40

type eventMsg timer.Event

type engineClosedMsg struct{}

// Model is the bubbletea model for one timer screen.
type Model struct {
	ctx      context.Context
	ctrl     *controller.Controller
	events   <-chan timer.Event
	keys     keyMap
	progress progress.Model

	state         timer.State
	picking       bool
	pickerMinutes int
	status        string
	width         int
}

// New builds a model over ctrl. events should come from Engine.Subscribe.
func New(ctx context.Context, ctrl *controller.Controller, events <-chan timer.Event) Model {
	bar := progress.New(progress.WithDefaultGradient(), progress.WithoutPercentage())
	bar.Width = progressWidth
	return Model{
		ctx:      ctx,
		ctrl:     ctrl,
		events:   events,
		keys:     defaultKeyMap(),
		progress: bar,
		state:    ctrl.State(),
	}
}

func (m Model) Init() tea.Cmd {
	return waitForEvent(m.events)
}

func waitForEvent(events <-chan timer.Event) tea.Cmd {
	if events == nil {
		return nil
	}
	return func() tea.Msg {
		event, ok := <-events
		if !ok {
			return engineClosedMsg{}
		}
		return eventMsg(event)
	}
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case eventMsg:
		// Events can be dropped under load; the snapshot is authoritative.
		m.state = m.ctrl.State()
		return m, waitForEvent(m.events)
	case engineClosedMsg:
		return m, tea.Quit
	case tea.KeyMsg:
		if m.picking {
			return m.updatePicker(msg)
		}
		return m.updateTimer(msg)
	}
	return m, nil
}

func (m Model) updateTimer(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.status = ""
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Primary):
		if err := m.ctrl.Primary(); err != nil {
			if errors.Is(err, timer.ErrNothingToRun) {
				m.status = "Time's up! Press r to go again."
			} else {
				m.status = err.Error()
			}
		}
	case key.Matches(msg, m.keys.Reset):
		m.ctrl.Reset()
	case key.Matches(msg, m.keys.Presets):
		m.selectPresetAt(int(msg.String()[0] - '1'))
	case key.Matches(msg, m.keys.Custom):
		m.openPicker()
	case key.Matches(msg, m.keys.Sound):
		next := nextSound(m.state.SoundID)
		if err := m.ctrl.SelectSound(m.ctx, next.ID); err != nil {
			m.status = err.Error()
		} else {
			m.status = "Sound: " + next.Label
		}
	}
	m.state = m.ctrl.State()
	return m, nil
}

func (m *Model) selectPresetAt(index int) {
	presets := model.Presets()
	if index < 0 || index >= len(presets) {
		return
	}
	err := m.ctrl.SelectPreset(m.ctx, presets[index].ID)
	switch {
	case errors.Is(err, controller.ErrCustomNeedsMinutes):
		m.openPicker()
	case err != nil:
		m.status = err.Error()
	}
}

func (m *Model) openPicker() {
	m.picking = true
	m.pickerMinutes = m.ctrl.CustomMinutes()
	if !model.IsValidCustomMinutes(m.pickerMinutes) {
		m.pickerMinutes = model.DefaultCustomDurationSeconds / 60
	}
}

func (m Model) updatePicker(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case msg.String() == "ctrl+c":
		return m, tea.Quit
	case key.Matches(msg, m.keys.Cancel), msg.String() == "q":
		m.picking = false
	case key.Matches(msg, m.keys.Up):
		if m.pickerMinutes < model.MaxCustomMinutes {
			m.pickerMinutes++
		}
	case key.Matches(msg, m.keys.Down):
		if m.pickerMinutes > model.MinCustomMinutes {
			m.pickerMinutes--
		}
	case key.Matches(msg, m.keys.Confirm):
		m.picking = false
		if err := m.ctrl.SelectCustom(m.ctx, m.pickerMinutes); err != nil {
			m.status = err.Error()
		}
		m.state = m.ctrl.State()
	}
	return m, nil
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(titleStyle.Render("Kid Timer"))
	b.WriteString("\n\n")
	b.WriteString(m.presetList())
	b.WriteString("\n\n")

	if m.picking {
		b.WriteString(clockStyle.Render(fmt.Sprintf("Custom: %d min", m.pickerMinutes)))
		b.WriteString("\n")
		b.WriteString(dimStyle.Render("up/down to change, enter to confirm, esc to cancel"))
		return boxStyle.Render(b.String())
	}

	b.WriteString(clockStyle.Render(m.state.Clock()))
	b.WriteString("\n")
	b.WriteString(m.progress.ViewAs(m.state.Progress()))
	b.WriteString("\n\n")
	b.WriteString(m.statusLine())
	b.WriteString("\n")
	b.WriteString(dimStyle.Render("Sound: " + soundLabel(m.state.SoundID)))
	b.WriteString("\n\n")
	if m.status != "" {
		b.WriteString(errorStyle.Render(m.status))
		b.WriteString("\n")
	}
	b.WriteString(m.helpLine())
	return boxStyle.Render(b.String())
}

func (m Model) presetList() string {
	items := make([]string, 0, len(model.Presets()))
	for i, preset := range model.Presets() {
		label := fmt.Sprintf("%d %s", i+1, preset.Label)
		if preset.ID == m.state.Preset.ID {
			items = append(items, selectedStyle.Render("["+label+"]"))
		} else {
			items = append(items, dimStyle.Render(" "+label+" "))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, strings.Join(items, "  "))
}

func (m Model) statusLine() string {
	switch {
	case m.state.Completing():
		return doneStyle.Render(fmt.Sprintf("Time's up! (%d/%d) press space to stop", m.state.LoopCount+1, timer.DefaultMaxPlays))
	case m.state.Running():
		return selectedStyle.Render("Running")
	case m.state.Remaining == 0:
		return doneStyle.Render("All done!")
	case m.state.Elapsed() > 0:
		return "Paused"
	default:
		return "Ready"
	}
}

func (m Model) helpLine() string {
	parts := make([]string, 0, len(m.keys.help()))
	for _, binding := range m.keys.help() {
		h := binding.Help()
		parts = append(parts, h.Key+" "+h.Desc)
	}
	return dimStyle.Render(strings.Join(parts, " • "))
}

func nextSound(current string) model.Sound {
	sounds := model.Sounds()
	for i, sound := range sounds {
		if sound.ID == current {
			return sounds[(i+1)%len(sounds)]
		}
	}
	return sounds[0]
}

func soundLabel(id string) string {
	for _, sound := range model.Sounds() {
		if sound.ID == id {
			return sound.Label
		}
	}
	return id
}
