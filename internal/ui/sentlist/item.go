package sentlist

import (
	"fmt"

	"github.com/dustin/go-humanize"

	"github.com/pshrestha/justsend/internal/model"
)

// emailItem wraps a SentEmail for use in a bubbles list.
type emailItem struct {
	email model.SentEmail
}

func (i emailItem) FilterValue() string { return i.email.Subject }

func (i emailItem) Title() string {
	title := i.email.Subject
	if title == "" {
		title = "(no subject)"
	}
	if i.email.HasAttachments() {
		title += fmt.Sprintf(" 📎%d", i.email.AttachmentCount())
	}
	return title
}

func (i emailItem) Description() string {
	return fmt.Sprintf("to %s · %s", i.email.RecipientsSummary(), humanize.Time(i.email.SentAt))
}
