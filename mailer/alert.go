// Copyright (c) 2025 Daniel Kuo.
// Source-available; no permission granted to use, copy, modify, or distribute. See LICENSE.

package mailer

import (
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/suppersafe/server/models"
)

var alertTemplate = template.Must(template.New("alert").Parse(`
<h2 style="color: #B45A3C;">SupperSafe Error Alert</h2>

<h3>Error Details</h3>
<table style="border-collapse: collapse; width: 100%;">
{{- range .Rows}}
  <tr>
    <td style="padding: 8px; border: 1px solid #ddd; font-weight: bold;">{{.Label}}</td>
    <td style="padding: 8px; border: 1px solid #ddd;">{{.Value}}</td>
  </tr>
{{- end}}
</table>
{{if .Stack}}
<h3>Stack Trace</h3>
<pre style="background: #f5f5f5; padding: 12px; overflow-x: auto; font-size: 12px;">{{.Stack}}</pre>
{{end}}
<hr style="margin: 20px 0; border: none; border-top: 1px solid #ddd;">
<p style="color: #666; font-size: 12px;">This is an automated alert from SupperSafe error monitoring.</p>
`))

type alertRow struct {
	Label string
	Value string
}

// AlertKey groups reports of the same error for rate limiting: the
// message (or "unknown") and the first 100 characters of the stack.
func AlertKey(e *models.ClientError) string {
	msg := e.Message
	if msg == "" {
		msg = "unknown"
	}
	return msg + "-" + truncate(e.Stack, 100)
}

// AlertSubject is "[SupperSafe Alert] <type>: <message>" with the message
// cut to 50 characters.
func AlertSubject(e *models.ClientError) string {
	typ := e.Type
	if typ == "" {
		typ = "Error"
	}
	msg := truncate(e.Message, 50)
	if msg == "" {
		msg = "Unknown error"
	}
	return fmt.Sprintf("[SupperSafe Alert] %s: %s", typ, msg)
}

// RenderAlert builds the HTML body for a client error report. All
// reported values are escaped.
func RenderAlert(req models.ErrorAlertRequest, now time.Time) (string, error) {
	e := req.Error
	if e == nil {
		e = &models.ClientError{}
	}

	data := struct {
		Rows  []alertRow
		Stack string
	}{
		Rows: []alertRow{
			{"Type", orDefault(e.Type, "JavaScript Error")},
			{"Message", orDefault(e.Message, "No message")},
			{"URL", orDefault(req.URL, "Unknown")},
			{"Timestamp", orDefault(req.Timestamp, now.UTC().Format(time.RFC3339))},
			{"Context", orDefault(req.Context, "None")},
			{"User Agent", orDefault(req.UserAgent, "Unknown")},
		},
		Stack: e.Stack,
	}

	var b strings.Builder
	if err := alertTemplate.Execute(&b, data); err != nil {
		return "", fmt.Errorf("render alert: %w", err)
	}
	return b.String(), nil
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// truncate cuts s to at most n runes
func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
