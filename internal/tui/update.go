package tui

import (
	"errors"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mindmesh/console/internal/console"
)

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		vpWidth := msg.Width * 2 / 3
		vpHeight := msg.Height - 8
		if vpHeight < 5 {
			vpHeight = 5
		}
		if !m.ready {
			m.transcript = viewport.New(vpWidth, vpHeight)
			m.ready = true
		} else {
			m.transcript.Width = vpWidth
			m.transcript.Height = vpHeight
		}
		m.transcript.SetContent(m.renderTranscript())
		return m, nil

	case tea.KeyMsg:
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit
		}
		if m.view == viewLogin {
			return m.updateLogin(msg)
		}
		return m.updateDashboard(msg)

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spin, cmd = m.spin.Update(msg)
		return m, cmd

	case authCheckedMsg:
		if msg.user != nil {
			m.user = msg.user
			m.view = viewDashboard
			m.input.Focus()
			return m, m.loadGoalsCmd()
		}
		return m, nil

	case loginResultMsg:
		m.drainStatus()
		if msg.err != nil {
			m.password.SetValue("")
			return m, nil
		}
		m.user = msg.user
		m.view = viewDashboard
		m.email.Blur()
		m.password.Blur()
		m.input.Focus()
		return m, m.loadGoalsCmd()

	case goalsLoadedMsg:
		m.page = msg.page
		m.haveGoals = true
		return m, nil

	case goalsLoadErrMsg:
		// Keep the previously resolved page on screen; no flash-to-empty.
		m.logger.Debug("goals refresh failed")
		return m, nil

	case submitSettledMsg:
		m.drainStatus()
		m.transcript.SetContent(m.renderTranscript())
		m.transcript.GotoBottom()
		return m, m.loadGoalsCmd()

	case loggedOutMsg:
		m.drainStatus()
		m.user = nil
		m.haveGoals = false
		m.view = viewLogin
		m.loginFocus = 0
		m.email.Focus()
		return m, nil
	}

	return m, nil
}

func (m Model) updateLogin(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "tab", "shift+tab", "up", "down":
		m.loginFocus = 1 - m.loginFocus
		if m.loginFocus == 0 {
			m.email.Focus()
			m.password.Blur()
		} else {
			m.password.Focus()
			m.email.Blur()
		}
		return m, nil

	case "enter":
		email, password := m.email.Value(), m.password.Value()
		if email == "" || password == "" {
			m.statusLine, m.statusFail = "Email and password are required", true
			return m, nil
		}
		m.statusLine, m.statusFail = "Signing in...", false
		return m, m.loginCmd(email, password)
	}

	var cmd tea.Cmd
	if m.loginFocus == 0 {
		m.email, cmd = m.email.Update(msg)
	} else {
		m.password, cmd = m.password.Update(msg)
	}
	return m, cmd
}

func (m Model) updateDashboard(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "ctrl+l":
		return m, m.logoutCmd()

	case "ctrl+r":
		return m, m.loadGoalsCmd()

	case "pgup", "pgdown":
		var cmd tea.Cmd
		m.transcript, cmd = m.transcript.Update(msg)
		return m, cmd

	case "enter":
		return m.submit()
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// submit opens a transcript submission for the current input. The input is
// only cleared once the transcript accepted the text; an empty submission
// changes nothing and a busy console keeps the draft in place.
func (m Model) submit() (tea.Model, tea.Cmd) {
	text := m.input.Value()

	subID, err := m.submitter.Begin(text)
	switch {
	case errors.Is(err, console.ErrEmptySubmission):
		return m, nil
	case errors.Is(err, console.ErrBusy):
		m.statusLine, m.statusFail = "Still working on the previous request", true
		return m, nil
	case err != nil:
		m.statusLine, m.statusFail = err.Error(), true
		return m, nil
	}

	m.input.SetValue("")
	// The transcript grew: scrolling is an effect of that, not of the
	// submission lifecycle itself.
	m.transcript.SetContent(m.renderTranscript())
	m.transcript.GotoBottom()
	return m, m.submitCmd(subID, text)
}

// drainStatus pulls the latest service notification into the status line.
func (m *Model) drainStatus() {
	if msg, failed, ok := m.status.Take(); ok {
		m.statusLine, m.statusFail = msg, failed
	}
}
