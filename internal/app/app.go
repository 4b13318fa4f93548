package app

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/pshrestha/justsend/internal/accounts"
	"github.com/pshrestha/justsend/internal/composer"
	"github.com/pshrestha/justsend/internal/history"
	"github.com/pshrestha/justsend/internal/keys"
	"github.com/pshrestha/justsend/internal/model"
	"github.com/pshrestha/justsend/internal/ui"
	"github.com/pshrestha/justsend/internal/ui/accountmgr"
	"github.com/pshrestha/justsend/internal/ui/compose"
	helpview "github.com/pshrestha/justsend/internal/ui/help"
	"github.com/pshrestha/justsend/internal/ui/sentlist"
)

// startupMsg carries the initial account collection so the app can pick
// its first view.
type startupMsg struct {
	accounts []model.SenderAccount
}

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewCompose ViewState = iota
	ViewAccounts
	ViewSent
	ViewHelp
)

// Model is the root Bubble Tea model that manages view routing, layout,
// and the shared workflow services.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	manager      *accounts.Manager
	composer     *composer.Composer
	keys         *keys.KeyMap

	composeView  compose.Model
	accountsView accountmgr.Model
	sentView     sentlist.Model
	helpView     helpview.Model

	ready bool
}

// New creates a new root application model wired to the workflow services.
func New(mgr *accounts.Manager, c *composer.Composer, h *history.Service) Model {
	k := keys.DefaultKeyMap()

	return Model{
		currentView:  ViewCompose,
		manager:      mgr,
		composer:     c,
		keys:         k,
		composeView:  compose.New(c, 80, 24),
		accountsView: accountmgr.New(mgr, k, 80, 24),
		sentView:     sentlist.New(h, k, 80, 24),
		helpView:     helpview.New(k, 80, 24),
	}
}

// Init loads the accounts and decides the first view: the compose form
// when a sender exists, otherwise account setup.
func (m Model) Init() tea.Cmd {
	mgr := m.manager
	return func() tea.Msg {
		accts, err := mgr.Accounts(context.Background())
		if err != nil {
			return startupMsg{}
		}
		return startupMsg{accounts: accts}
	}
}

// Update handles messages and dispatches to the active view.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		contentWidth := m.layout.ContentWidth()
		contentHeight := m.layout.ContentHeight()
		m.composeView.SetSize(contentWidth, contentHeight)
		m.accountsView.SetSize(contentWidth, contentHeight)
		m.sentView.SetSize(contentWidth, contentHeight)
		m.helpView.SetSize(contentWidth, contentHeight)
		// Forward to active view so huh forms can calculate their layout.
		return m.updateActiveView(msg)

	case startupMsg:
		if len(msg.accounts) == 0 {
			m.currentView = ViewAccounts
			return m, m.accountsView.Init()
		}
		m.seedCompose(msg.accounts)
		m.currentView = ViewCompose
		return m, m.composeView.Start()

	case accountmgr.AccountsChangedMsg:
		// Accounts were added, edited, or removed; refresh the list and
		// the compose sender selector.
		return m, m.refreshAccounts()

	case accountsRefreshedMsg:
		m.seedCompose(msg.accounts)
		var cmd tea.Cmd
		m.accountsView, cmd = m.accountsView.Update(accountmgr.AccountsLoadedMsg{Accounts: msg.accounts})
		return m, cmd

	case compose.SendResultMsg:
		var cmd tea.Cmd
		m.composeView, cmd = m.composeView.Update(msg)
		return m, cmd

	case compose.CancelMsg:
		m.currentView = ViewSent
		return m, m.sentView.Reload()

	case tea.KeyMsg:
		// Global keys that work regardless of current view.
		switch msg.String() {
		case "ctrl+c":
			return m, tea.Quit

		case "?":
			if m.textEntryActive() {
				break
			}
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, nil
			}
			m.previousView = m.currentView
			m.currentView = ViewHelp
			return m, nil

		case "q":
			if !m.textEntryActive() {
				return m, tea.Quit
			}

		case "esc":
			if m.currentView == ViewHelp {
				m.currentView = m.previousView
				return m, nil
			}

		case "c":
			if !m.textEntryActive() && m.currentView != ViewCompose {
				m.previousView = m.currentView
				m.currentView = ViewCompose
				return m, m.composeView.Start()
			}

		case "a":
			if !m.textEntryActive() && m.currentView != ViewAccounts {
				m.previousView = m.currentView
				m.currentView = ViewAccounts
				return m, m.accountsView.Reload()
			}

		case "s":
			if !m.textEntryActive() && m.currentView != ViewSent {
				m.previousView = m.currentView
				m.currentView = ViewSent
				return m, m.sentView.Reload()
			}
		}
	}

	// Delegate to active sub-view.
	return m.updateActiveView(msg)
}

// accountsRefreshedMsg carries a reloaded account collection.
type accountsRefreshedMsg struct {
	accounts []model.SenderAccount
}

func (m Model) refreshAccounts() tea.Cmd {
	mgr := m.manager
	return func() tea.Msg {
		accts, err := mgr.Accounts(context.Background())
		if err != nil {
			return accountsRefreshedMsg{}
		}
		return accountsRefreshedMsg{accounts: accts}
	}
}

// seedCompose hands the account collection to the compose view and makes
// sure the composer has an active sender.
func (m *Model) seedCompose(accts []model.SenderAccount) {
	var active *model.SenderAccount
	for i := range accts {
		if accts[i].IsDefault {
			active = &accts[i]
			break
		}
	}
	if active == nil && len(accts) > 0 {
		active = &accts[0]
	}
	m.composeView.SetAccounts(accts, active)
}

// textEntryActive reports whether the focused view is capturing typed
// characters, in which case single-letter shortcuts must pass through.
func (m Model) textEntryActive() bool {
	switch m.currentView {
	case ViewCompose:
		return true
	case ViewAccounts:
		return m.accountsView.InForm()
	case ViewSent:
		return m.sentView.Searching()
	}
	return false
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewCompose:
		m.composeView, cmd = m.composeView.Update(msg)
	case ViewAccounts:
		m.accountsView, cmd = m.accountsView.Update(msg)
	case ViewSent:
		m.sentView, cmd = m.sentView.Update(msg)
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("JustSend", m.senderStatus())
	content := m.renderContent()
	statusBar := m.layout.RenderStatusBar(m.keyHints())

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewCompose:
		return m.composeView.View()
	case ViewAccounts:
		return m.accountsView.View()
	case ViewSent:
		return m.sentView.View()
	case ViewHelp:
		return m.helpView.View()
	default:
		return ""
	}
}

// senderStatus returns the active sender for the header.
func (m Model) senderStatus() string {
	if acct := m.composer.Account(); acct != nil {
		return acct.EmailAddress
	}
	return "no sender"
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewAccounts:
		if m.accountsView.InForm() {
			return "enter submit | esc cancel"
		}
		return "n new | e edit | d delete | * set default | c compose | esc back"
	case ViewSent:
		if m.sentView.InDetail() {
			return "esc back | j/k scroll"
		}
		return "enter open | / search | d delete | c compose | q quit"
	default:
		return "tab next field | enter submit | esc leave compose"
	}
}
