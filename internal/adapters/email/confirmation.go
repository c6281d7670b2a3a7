package email

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/yuin/goldmark"
	goldmarkHTML "github.com/yuin/goldmark/renderer/html"

	"regatta/internal/domain/practice"
)

// mdRenderer is a goldmark instance configured for safe HTML output. Raw
// HTML in markdown input is escaped (WithUnsafe is NOT set).
var mdRenderer = goldmark.New(
	goldmark.WithRendererOptions(
		goldmarkHTML.WithHardWraps(),
	),
)

// ConfirmationData feeds the registration confirmation email.
type ConfirmationData struct {
	ManagerName      string
	EventName        string
	EventVenue       string
	EventDescription string // Markdown from the event record
	Payloads         []practice.TeamPayload
	TeamNames        map[string]string // team key -> display name
}

// BuildConfirmation renders the confirmation email body. The body is
// authored as Markdown and converted to HTML; event descriptions pass
// through the same renderer so organizer-authored formatting survives.
// POST: Returns an HTML body, falling back to escaped text on render failure
func BuildConfirmation(data ConfirmationData) string {
	var md strings.Builder
	fmt.Fprintf(&md, "## Registration received\n\n")
	fmt.Fprintf(&md, "Kia ora %s,\n\n", data.ManagerName)
	fmt.Fprintf(&md, "Your registration for **%s** (%s) has been received.\n\n", data.EventName, data.EventVenue)

	for _, p := range data.Payloads {
		name := data.TeamNames[p.TeamKey]
		if name == "" {
			name = p.TeamKey
		}
		fmt.Fprintf(&md, "### %s\n\n", name)
		if len(p.Dates) == 0 {
			md.WriteString("No practice dates selected.\n\n")
		} else {
			for _, d := range p.Dates {
				fmt.Fprintf(&md, "- %s, %d hour(s), helper %s\n", d.Date, d.DurationHours, d.Helper)
			}
			md.WriteString("\n")
		}
		for _, r := range p.SlotRanks {
			fmt.Fprintf(&md, "- Preference %d: %s\n", r.Rank, r.SlotCode)
		}
		if len(p.SlotRanks) > 0 {
			md.WriteString("\n")
		}
	}

	if data.EventDescription != "" {
		md.WriteString("---\n\n")
		md.WriteString(data.EventDescription)
		md.WriteString("\n")
	}

	var buf bytes.Buffer
	if err := mdRenderer.Convert([]byte(md.String()), &buf); err != nil {
		return "<pre>" + htmlEscape(md.String()) + "</pre>"
	}
	return buf.String()
}

func htmlEscape(s string) string {
	r := strings.NewReplacer("&", "&amp;", "<", "&lt;", ">", "&gt;")
	return r.Replace(s)
}
