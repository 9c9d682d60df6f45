package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/mindmesh/console/internal/auth"
	"github.com/mindmesh/console/internal/console"
	"github.com/mindmesh/console/internal/domain"
	"github.com/mindmesh/console/internal/goals"
)

type viewState int

const (
	viewLogin viewState = iota
	viewDashboard
)

// Options tunes the dashboard.
type Options struct {
	PageSize int // Goals overview page size
}

// Model is the bubbletea model for the dashboard.
type Model struct {
	auth      *auth.Service
	goals     *goals.Service
	submitter *console.Submitter
	status    *StatusBuffer
	opts      Options
	logger    *zap.Logger

	view  viewState
	ready bool
	width int

	// Dashboard widgets
	input      textinput.Model
	transcript viewport.Model
	spin       spinner.Model

	// Login form
	email      textinput.Model
	password   textinput.Model
	loginFocus int

	user       *domain.User
	page       domain.Page[domain.Goal]
	haveGoals  bool
	statusLine string
	statusFail bool
}

func New(a *auth.Service, g *goals.Service, sub *console.Submitter, status *StatusBuffer, opts Options, logger *zap.Logger) Model {
	if opts.PageSize <= 0 {
		opts.PageSize = 5
	}

	input := textinput.New()
	input.Placeholder = "Describe your goal or task..."
	input.CharLimit = 500

	email := textinput.New()
	email.Placeholder = "email"
	email.Focus()

	password := textinput.New()
	password.Placeholder = "password"
	password.EchoMode = textinput.EchoPassword

	sp := spinner.New()
	sp.Spinner = spinner.Dot

	return Model{
		auth:      a,
		goals:     g,
		submitter: sub,
		status:    status,
		opts:      opts,
		logger:    logger.Named("tui"),
		view:      viewLogin,
		input:     input,
		email:     email,
		password:  password,
		spin:      sp,
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(m.spin.Tick, m.checkAuthCmd())
}

// Messages produced by async commands. Anything the network touched arrives
// here; the update loop never blocks on I/O itself.

type authCheckedMsg struct{ user *domain.User }

type loginResultMsg struct {
	user *domain.User
	err  error
}

type goalsLoadedMsg struct{ page domain.Page[domain.Goal] }

type goalsLoadErrMsg struct{ err error }

type submitSettledMsg struct{}

type loggedOutMsg struct{}

func (m Model) checkAuthCmd() tea.Cmd {
	return func() tea.Msg {
		return authCheckedMsg{user: m.auth.CurrentUser(context.Background())}
	}
}

func (m Model) loginCmd(email, password string) tea.Cmd {
	return func() tea.Msg {
		user, err := m.auth.Login(context.Background(), domain.Credentials{
			Email:    email,
			Password: password,
		})
		return loginResultMsg{user: user, err: err}
	}
}

func (m Model) loadGoalsCmd() tea.Cmd {
	size := m.opts.PageSize
	return func() tea.Msg {
		page, err := m.goals.List(context.Background(), goals.ListFilter{Size: size})
		if err != nil {
			return goalsLoadErrMsg{err: err}
		}
		return goalsLoadedMsg{page: page}
	}
}

func (m Model) submitCmd(subID, text string) tea.Cmd {
	return func() tea.Msg {
		// Outcome reporting happens through the transcript and notifier;
		// the error only feeds logs.
		if err := m.submitter.Execute(context.Background(), subID, text); err != nil {
			m.logger.Debug("submission failed", zap.Error(err))
		}
		return submitSettledMsg{}
	}
}

func (m Model) logoutCmd() tea.Cmd {
	return func() tea.Msg {
		if err := m.auth.Logout(); err != nil {
			m.logger.Warn("logout failed", zap.Error(err))
		}
		return loggedOutMsg{}
	}
}
