// Package accountmgr is the sender-account management screen.
package accountmgr

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/pshrestha/justsend/internal/accounts"
	"github.com/pshrestha/justsend/internal/keys"
	"github.com/pshrestha/justsend/internal/model"
	"github.com/pshrestha/justsend/internal/theme"
)

// AccountsLoadedMsg carries the refreshed account collection.
type AccountsLoadedMsg struct {
	Accounts []model.SenderAccount
}

// AccountsChangedMsg tells the parent that accounts were added, edited,
// or removed so dependent views can refresh.
type AccountsChangedMsg struct{}

// accountItem wraps a SenderAccount for use in a bubbles list.
type accountItem struct {
	account model.SenderAccount
}

func (i accountItem) FilterValue() string { return i.account.WebsiteName }

func (i accountItem) Title() string {
	title := i.account.WebsiteName
	if i.account.IsDefault {
		title += " " + theme.DefaultBadgeStyle.Render("★ default")
	}
	return title
}

func (i accountItem) Description() string {
	return i.account.EmailAddress
}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	websiteName string
	email       string
	apiKey      string
	signature   string
}

const (
	modeList = iota
	modeForm
)

// Model is the Bubble Tea model for the accounts screen.
type Model struct {
	manager *accounts.Manager
	list    list.Model
	keys    *keys.KeyMap
	form    *huh.Form
	fb      *formBindings
	mode    int
	editID  string
	errMsg  string
	width   int
	height  int
}

// New creates the accounts screen.
func New(m *accounts.Manager, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), width, height-2)
	l.Title = "Sender Accounts"
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	return Model{
		manager: m,
		list:    l,
		keys:    k,
		fb:      &formBindings{},
		width:   width,
		height:  height,
	}
}

// Init loads the accounts.
func (m Model) Init() tea.Cmd {
	return m.loadAccounts()
}

func (m Model) loadAccounts() tea.Cmd {
	mgr := m.manager
	return func() tea.Msg {
		accts, err := mgr.Accounts(context.Background())
		if err != nil {
			return AccountsLoadedMsg{}
		}
		return AccountsLoadedMsg{Accounts: accts}
	}
}

// Update handles messages for the accounts screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case AccountsLoadedMsg:
		items := make([]list.Item, len(msg.Accounts))
		for i, acct := range msg.Accounts {
			items[i] = accountItem{account: acct}
		}
		cmd := m.list.SetItems(items)
		return m, cmd

	case tea.KeyMsg:
		if m.mode == modeForm {
			return m.updateForm(msg)
		}
		return m.updateList(msg)
	}

	if m.mode == modeForm {
		return m.updateForm(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.New):
		m.startForm(nil)
		return m, m.form.Init()

	case key.Matches(msg, m.keys.Edit):
		if item, ok := m.list.SelectedItem().(accountItem); ok {
			m.startForm(&item.account)
			return m, m.form.Init()
		}

	case key.Matches(msg, m.keys.Delete):
		if item, ok := m.list.SelectedItem().(accountItem); ok {
			mgr := m.manager
			acct := item.account
			return m, func() tea.Msg {
				if err := mgr.DeleteAccount(context.Background(), acct); err != nil {
					return AccountsLoadedMsg{}
				}
				return AccountsChangedMsg{}
			}
		}

	case key.Matches(msg, m.keys.SetDefault):
		if item, ok := m.list.SelectedItem().(accountItem); ok {
			mgr := m.manager
			acct := item.account
			return m, func() tea.Msg {
				if err := mgr.SetDefault(context.Background(), acct); err != nil {
					return AccountsLoadedMsg{}
				}
				return AccountsChangedMsg{}
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateForm(msg tea.Msg) (Model, tea.Cmd) {
	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m.submitForm()
	}
	if m.form.State == huh.StateAborted {
		m.mode = modeList
		return m, nil
	}

	return m, cmd
}

func (m Model) submitForm() (Model, tea.Cmd) {
	mgr := m.manager
	fb := *m.fb
	editID := m.editID
	m.mode = modeList

	return m, func() tea.Msg {
		ctx := context.Background()
		if editID == "" {
			apiKey := fb.apiKey
			if apiKey == "" {
				// A blank key reuses the stored key of an account with
				// the same website name.
				apiKey, _ = mgr.ExistingAPIKey(ctx, fb.websiteName)
			}
			_, err := mgr.AddAccount(ctx, fb.websiteName, fb.email, apiKey, fb.signature)
			if err != nil {
				return AccountsLoadedMsg{}
			}
		} else {
			err := mgr.UpdateAccount(ctx, model.SenderAccount{
				ID:           editID,
				WebsiteName:  fb.websiteName,
				EmailAddress: fb.email,
				Signature:    fb.signature,
			}, fb.apiKey)
			if err != nil {
				return AccountsLoadedMsg{}
			}
		}
		return AccountsChangedMsg{}
	}
}

// startForm prepares the add/edit form. Editing pre-fills the stored
// key; a new account under an existing website name may leave the key
// blank to reuse that name's stored key, so multiple addresses can
// share one Resend key.
func (m *Model) startForm(editing *model.SenderAccount) {
	m.mode = modeForm
	m.editID = ""
	m.fb.websiteName = ""
	m.fb.email = ""
	m.fb.apiKey = ""
	m.fb.signature = ""

	if editing != nil {
		m.editID = editing.ID
		m.fb.websiteName = editing.WebsiteName
		m.fb.email = editing.EmailAddress
		m.fb.signature = editing.Signature
		if key, err := m.manager.APIKey(*editing); err == nil {
			m.fb.apiKey = key
		}
	}

	m.form = m.buildForm()
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Website name").
				Placeholder("My Website").
				Value(&m.fb.websiteName).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("website name is required")
					}
					return nil
				}),
			huh.NewInput().
				Title("Email address").
				Placeholder("hello@mywebsite.com").
				Value(&m.fb.email).
				Validate(func(s string) error {
					if !m.manager.ValidateEmailFormat(s) {
						return fmt.Errorf("must be a valid email address")
					}
					return nil
				}),
			huh.NewInput().
				Title("Resend API key").
				Placeholder("re_... (blank reuses this website's key)").
				EchoMode(huh.EchoModePassword).
				Value(&m.fb.apiKey).
				Validate(m.validateAPIKey),
			huh.NewText().
				Title("Signature").
				Placeholder("Optional, appended to composed emails").
				Value(&m.fb.signature),
		),
	).WithWidth(m.width - 4).WithHeight(m.height - 4)
}

// InForm reports whether the add/edit form is open, so the parent does
// not treat typed letters as global shortcuts.
func (m Model) InForm() bool {
	return m.mode == modeForm
}

// Reload refreshes the account list.
func (m Model) Reload() tea.Cmd {
	return m.loadAccounts()
}

// validateAPIKey checks the key format. On the new-account form a blank
// key is allowed when another account with the same website name already
// holds a key.
func (m *Model) validateAPIKey(s string) error {
	if s == "" && m.editID == "" {
		key, err := m.manager.ExistingAPIKey(context.Background(), m.fb.websiteName)
		if err == nil && key != "" {
			return nil
		}
	}
	if !m.manager.ValidateAPIKeyFormat(s) {
		return fmt.Errorf("API keys start with re_ and are longer than 10 characters")
	}
	return nil
}

// View renders the accounts screen.
func (m Model) View() string {
	if m.mode == modeForm && m.form != nil {
		title := "New Account"
		if m.editID != "" {
			title = "Edit Account"
		}
		titleStyle := lipgloss.NewStyle().
			Bold(true).
			Foreground(theme.ColorWhite).
			MarginBottom(1)
		return lipgloss.NewStyle().
			Padding(1, 2).
			Render(titleStyle.Render(title) + "\n" + m.form.View())
	}

	view := m.list.View()
	if m.errMsg != "" {
		view += "\n" + theme.ErrorStyle.Render(m.errMsg)
	}
	return view
}

// SetSize updates the accounts screen dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-2)
}
