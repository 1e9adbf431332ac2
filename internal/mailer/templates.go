package mailer

import (
	"bytes"
	"fmt"
	"html/template"
	"time"

	"github.com/agriportal/agriportal-backend/pkg/enums"
)

var decisionTemplate = template.Must(template.New("decision").Parse(`<!DOCTYPE html>
<html>
<body style="font-family: Arial, Helvetica, sans-serif; color: #222; margin: 0; padding: 24px; background: #f6f8f5;">
  <div style="max-width: 560px; margin: 0 auto; background: #ffffff; border-radius: 8px; overflow: hidden;">
    <div style="background: {{.Color}}; color: #ffffff; padding: 20px 24px;">
      <h2 style="margin: 0;">{{.Heading}}</h2>
    </div>
    <div style="padding: 24px;">
      <p>Dear {{.Recipient}},</p>
      <p>{{.Lead}}</p>
      <table style="border-collapse: collapse; width: 100%; margin: 16px 0;">
        {{- range .Facts}}
        <tr>
          <td style="padding: 6px 8px; border-bottom: 1px solid #eee; color: #666;">{{.Label}}</td>
          <td style="padding: 6px 8px; border-bottom: 1px solid #eee;"><strong>{{.Value}}</strong></td>
        </tr>
        {{- end}}
        <tr>
          <td style="padding: 6px 8px; color: #666;">Status</td>
          <td style="padding: 6px 8px; color: {{.Color}};"><strong>{{.StatusLabel}}</strong></td>
        </tr>
      </table>
      {{- if .Closing}}
      <p>{{.Closing}}</p>
      {{- end}}
      <p style="color: #888; font-size: 12px;">This is an automated message from {{.Sender}}. Please do not reply.</p>
    </div>
  </div>
</body>
</html>`))

const (
	colorApproved = "#2e7d32"
	colorRejected = "#c62828"
	colorPending  = "#f9a825"
)

// Fact is one labelled row in the decision summary table.
type Fact struct {
	Label string
	Value string
}

// decisionView carries everything the decision template prints.
type decisionView struct {
	Heading     string
	Recipient   string
	Lead        string
	Facts       []Fact
	StatusLabel string
	Color       string
	Closing     string
	Sender      string
}

// styleFor returns the banner color and label for a status.
func styleFor(status enums.ApplicationStatus) (color, label string) {
	switch status {
	case enums.ApplicationStatusApproved:
		return colorApproved, "Approved"
	case enums.ApplicationStatusRejected:
		return colorRejected, "Rejected"
	default:
		return colorPending, "Pending review"
	}
}

func renderDecision(view decisionView) (string, error) {
	var buf bytes.Buffer
	if err := decisionTemplate.Execute(&buf, view); err != nil {
		return "", fmt.Errorf("rendering decision template: %w", err)
	}
	return buf.String(), nil
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format("January 2, 2006")
}
