// Package sentlist is the sent-email history screen: a searchable list
// of sent emails with a read-only detail view.
package sentlist

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/pshrestha/justsend/internal/history"
	"github.com/pshrestha/justsend/internal/keys"
	"github.com/pshrestha/justsend/internal/model"
	"github.com/pshrestha/justsend/internal/theme"
)

// EmailsLoadedMsg carries the refreshed history page.
type EmailsLoadedMsg struct {
	Emails      []model.SentEmail
	StorageUsed string
}

const (
	modeList = iota
	modeSearch
	modeDetail
)

// Model is the Bubble Tea model for the sent-emails screen.
type Model struct {
	service *history.Service
	list    list.Model
	search  textinput.Model
	detail  viewport.Model
	keys    *keys.KeyMap
	mode    int
	query   string
	storage string
	width   int
	height  int
}

// New creates the sent-emails screen.
func New(s *history.Service, k *keys.KeyMap, width, height int) Model {
	l := list.New([]list.Item{}, list.NewDefaultDelegate(), width, height-3)
	l.Title = "Sent Emails"
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	l.Styles.Title = theme.HeaderStyle

	search := textinput.New()
	search.Placeholder = "search subject or sender"
	search.Prompt = "/ "

	return Model{
		service: s,
		list:    l,
		search:  search,
		detail:  viewport.New(width, height-3),
		keys:    k,
		width:   width,
		height:  height,
	}
}

// Init loads the sent-email history.
func (m Model) Init() tea.Cmd {
	return m.loadEmails()
}

func (m Model) loadEmails() tea.Cmd {
	svc := m.service
	query := m.query
	return func() tea.Msg {
		ctx := context.Background()
		emails, err := svc.List(ctx, query)
		if err != nil {
			return EmailsLoadedMsg{}
		}
		return EmailsLoadedMsg{Emails: emails, StorageUsed: svc.FormattedStorageUsed()}
	}
}

// Update handles messages for the sent-emails screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case EmailsLoadedMsg:
		items := make([]list.Item, len(msg.Emails))
		for i, email := range msg.Emails {
			items[i] = emailItem{email: email}
		}
		m.storage = msg.StorageUsed
		cmd := m.list.SetItems(items)
		return m, cmd

	case tea.KeyMsg:
		switch m.mode {
		case modeSearch:
			return m.updateSearch(msg)
		case modeDetail:
			return m.updateDetail(msg)
		default:
			return m.updateList(msg)
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateList(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Search):
		m.mode = modeSearch
		m.search.SetValue(m.query)
		return m, m.search.Focus()

	case key.Matches(msg, m.keys.Select):
		if item, ok := m.list.SelectedItem().(emailItem); ok {
			m.mode = modeDetail
			m.detail.SetContent(renderDetail(item.email, m.width))
			m.detail.GotoTop()
		}
		return m, nil

	case key.Matches(msg, m.keys.Delete):
		if item, ok := m.list.SelectedItem().(emailItem); ok {
			svc := m.service
			email := item.email
			load := m.loadEmails()
			return m, func() tea.Msg {
				if err := svc.Delete(context.Background(), email); err != nil {
					return EmailsLoadedMsg{}
				}
				return load()
			}
		}
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func (m Model) updateSearch(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.mode = modeList
		m.query = m.search.Value()
		m.search.Blur()
		return m, m.loadEmails()
	case "esc":
		m.mode = modeList
		m.search.Blur()
		return m, nil
	}

	var cmd tea.Cmd
	m.search, cmd = m.search.Update(msg)
	return m, cmd
}

func (m Model) updateDetail(msg tea.KeyMsg) (Model, tea.Cmd) {
	if key.Matches(msg, m.keys.Back) {
		m.mode = modeList
		return m, nil
	}

	var cmd tea.Cmd
	m.detail, cmd = m.detail.Update(msg)
	return m, cmd
}

// InDetail reports whether the detail view is open, so the parent knows
// esc should close it rather than leave the screen.
func (m Model) InDetail() bool {
	return m.mode == modeDetail
}

// Searching reports whether the search input has focus.
func (m Model) Searching() bool {
	return m.mode == modeSearch
}

// Reload refreshes the history list.
func (m Model) Reload() tea.Cmd {
	return m.loadEmails()
}

func renderDetail(email model.SentEmail, width int) string {
	labelStyle := theme.DimmedStyle
	var b strings.Builder

	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("From:"), email.From)
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("To:"), strings.Join(email.To, ", "))
	if len(email.CC) > 0 {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Cc:"), strings.Join(email.CC, ", "))
	}
	if len(email.BCC) > 0 {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Bcc:"), strings.Join(email.BCC, ", "))
	}
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Subject:"), email.Subject)
	fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Sent:"), email.SentAt.Format("2006-01-02 15:04"))
	if email.ResendID != "" {
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Resend ID:"), email.ResendID)
	}

	if email.HasAttachments() {
		var names []string
		for _, att := range email.Attachments {
			names = append(names, att.Filename)
		}
		fmt.Fprintf(&b, "%s %s\n", labelStyle.Render("Attachments:"), strings.Join(names, ", "))
	}

	b.WriteString("\n")
	body := email.TextBody
	if body == "" {
		body = email.HTMLBody
	}
	b.WriteString(lipgloss.NewStyle().Width(width - 4).Render(body))

	return b.String()
}

// View renders the sent-emails screen.
func (m Model) View() string {
	if m.mode == modeDetail {
		return lipgloss.NewStyle().Padding(1, 2).Render(m.detail.View())
	}

	sections := []string{m.list.View()}
	if m.mode == modeSearch {
		sections = append(sections, m.search.View())
	} else if m.storage != "" {
		sections = append(sections, theme.DimmedStyle.Render("attachment storage: "+m.storage))
	}
	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

// SetSize updates the sent-emails screen dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.list.SetSize(width, height-3)
	m.detail.Width = width
	m.detail.Height = height - 3
}
