// Package compose is the email composition screen: a form bound to the
// composer workflow, a sender selector, and the send result display.
package compose

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/pshrestha/justsend/internal/composer"
	"github.com/pshrestha/justsend/internal/model"
	"github.com/pshrestha/justsend/internal/resend"
	"github.com/pshrestha/justsend/internal/theme"
)

// SendResultMsg is dispatched when a send attempt finishes.
type SendResultMsg struct {
	Err error
}

// CancelMsg is dispatched when the user abandons the compose form.
type CancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	accountID   string
	to          string
	subject     string
	cc          string
	bcc         string
	replyTo     string
	body        string
	attachPaths string
}

// Model is the Bubble Tea model for the compose screen.
type Model struct {
	composer *composer.Composer
	accounts []model.SenderAccount
	form     *huh.Form
	fb       *formBindings

	resultTitle string
	resultBody  string
	sending     bool

	width  int
	height int
}

// New creates a compose screen bound to the given composer.
func New(c *composer.Composer, width, height int) Model {
	return Model{
		composer: c,
		fb:       &formBindings{},
		width:    width,
		height:   height,
	}
}

// SetAccounts sets the selectable sender accounts and applies the active
// one to the composer if none is selected yet.
func (m *Model) SetAccounts(accounts []model.SenderAccount, active *model.SenderAccount) {
	m.accounts = accounts
	if m.composer.Account() == nil && active != nil {
		m.composer.SetAccount(active)
	}
}

// Start initializes the form from the composer's current state.
func (m *Model) Start() tea.Cmd {
	m.resultTitle = ""
	m.resultBody = ""
	m.fb.to = m.composer.To
	m.fb.subject = m.composer.Subject
	m.fb.cc = m.composer.CC
	m.fb.bcc = m.composer.BCC
	m.fb.replyTo = m.composer.ReplyTo
	m.fb.body = m.composer.HTMLBody
	m.fb.attachPaths = ""
	m.fb.accountID = ""
	if acct := m.composer.Account(); acct != nil {
		m.fb.accountID = acct.ID
	}
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the compose screen.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if result, ok := msg.(SendResultMsg); ok {
		m.sending = false
		// The composer left the fields intact on failure and cleared
		// them on success; rebuild the form either way.
		cmd := m.Start()
		if result.Err != nil {
			m.resultTitle = "Error"
			m.resultBody = result.Err.Error()
		} else {
			m.resultTitle = "Success"
			m.resultBody = "Your email has been sent successfully!"
		}
		return m, cmd
	}

	if m.form == nil || m.sending {
		return m, nil
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		return m.handleSubmit()
	}
	if m.form.State == huh.StateAborted {
		return m, func() tea.Msg { return CancelMsg{} }
	}

	return m, cmd
}

// handleSubmit copies the form state into the composer and dispatches
// the send as a background command.
func (m Model) handleSubmit() (Model, tea.Cmd) {
	m.applyToComposer()

	if !m.composer.IsValid() {
		cmd := m.Start()
		m.resultTitle = "Error"
		m.resultBody = "Please fill in To, Subject, and Body with valid addresses."
		return m, cmd
	}

	c := m.composer
	m.sending = true
	m.resultTitle = ""
	m.resultBody = ""
	return m, func() tea.Msg {
		return SendResultMsg{Err: c.Send(context.Background())}
	}
}

// applyToComposer pushes the bound form values into the composer,
// including the sender selection and any newly attached files.
func (m *Model) applyToComposer() {
	// Body goes in before the sender switch so signature handling sees
	// it as the user last left it.
	m.composer.HTMLBody = m.fb.body
	if m.fb.accountID != "" {
		current := m.composer.Account()
		if current == nil || current.ID != m.fb.accountID {
			for i := range m.accounts {
				if m.accounts[i].ID == m.fb.accountID {
					m.composer.SetAccount(&m.accounts[i])
					break
				}
			}
		}
	}

	m.composer.To = m.fb.to
	m.composer.Subject = m.fb.subject
	m.composer.CC = m.fb.cc
	m.composer.BCC = m.fb.bcc
	m.composer.ReplyTo = m.fb.replyTo

	for _, path := range composer.ParseRecipients(m.fb.attachPaths) {
		att, err := resend.AttachmentFromFile(path)
		if err != nil {
			m.resultTitle = "Attachment error"
			m.resultBody = err.Error()
			continue
		}
		m.composer.AddAttachment(att)
	}
	m.fb.attachPaths = ""
}

// View renders the compose screen.
func (m Model) View() string {
	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	var sections []string
	sections = append(sections, titleStyle.Render("Compose"))

	if m.sending {
		sections = append(sections, theme.DimmedStyle.Render("Sending..."))
	} else if m.form != nil {
		sections = append(sections, m.form.View())
	}

	if len(m.composer.Attachments()) > 0 {
		var names []string
		for _, att := range m.composer.Attachments() {
			names = append(names, att.Filename)
		}
		sections = append(sections, theme.AttachmentStyle.Render(
			fmt.Sprintf("Attachments: %s", strings.Join(names, ", ")),
		))
	}

	switch m.resultTitle {
	case "":
	case "Success":
		sections = append(sections, theme.SuccessStyle.Render(m.resultTitle)+"\n"+m.resultBody)
	default:
		sections = append(sections, theme.ErrorStyle.Render(m.resultTitle)+"\n"+m.resultBody)
	}

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

// SetSize updates the compose screen dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
}

func (m *Model) buildForm() *huh.Form {
	fields := []huh.Field{}

	if len(m.accounts) > 0 {
		opts := make([]huh.Option[string], len(m.accounts))
		for i, acct := range m.accounts {
			label := fmt.Sprintf("%s <%s>", acct.WebsiteName, acct.EmailAddress)
			opts[i] = huh.NewOption(label, acct.ID)
		}
		fields = append(fields, huh.NewSelect[string]().
			Title("From").
			Options(opts...).
			Value(&m.fb.accountID))
	}

	fields = append(fields,
		huh.NewInput().
			Title("To").
			Placeholder("recipient@example.com").
			Value(&m.fb.to).
			Validate(validateAddress("To")),
		huh.NewInput().
			Title("Subject").
			Value(&m.fb.subject).
			Validate(validateRequired("Subject")),
		huh.NewInput().
			Title("Cc").
			Placeholder("comma-separated (optional)").
			Value(&m.fb.cc),
		huh.NewInput().
			Title("Bcc").
			Placeholder("comma-separated (optional)").
			Value(&m.fb.bcc),
		huh.NewInput().
			Title("Reply-To").
			Placeholder("comma-separated (optional)").
			Value(&m.fb.replyTo),
		huh.NewText().
			Title("Body (HTML)").
			Value(&m.fb.body).
			Validate(validateRequired("Body")),
		huh.NewInput().
			Title("Attach files").
			Placeholder("paths, comma-separated (optional)").
			Value(&m.fb.attachPaths),
	)

	return huh.NewForm(
		huh.NewGroup(fields...),
	).WithWidth(m.width - 4).WithHeight(m.height - 4)
}

func validateRequired(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		return nil
	}
}

func validateAddress(name string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", name)
		}
		if !model.ValidEmailAddress(s) {
			return fmt.Errorf("%s must be a valid email address", name)
		}
		return nil
	}
}
