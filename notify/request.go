// Package notify delivers shop notifications by email, either directly or through the
// Redis stream outbox.
package notify

import (
	"bytes"
	"fmt"
	"html/template"
	"strings"
)

// Request is the payload of both the contact form and the new-listing notification.
// A request with ItemTitle set announces a new submission.
type Request struct {
	Name      string `json:"name" msgpack:"name" validate:"required,max=255"`
	Email     string `json:"email" msgpack:"email" validate:"required,email"`
	Phone     string `json:"phone" msgpack:"phone" validate:"max=32"`
	Message   string `json:"message" msgpack:"message" validate:"required,max=5000"`
	ItemTitle string `json:"itemTitle,omitempty" msgpack:"item_title"`
}

func (r Request) IsListing() bool {
	return strings.TrimSpace(r.ItemTitle) != ""
}

func (r Request) trimmed() Request {
	r.Name = strings.TrimSpace(r.Name)
	r.Email = strings.TrimSpace(r.Email)
	r.Phone = strings.TrimSpace(r.Phone)
	r.Message = strings.TrimSpace(r.Message)
	r.ItemTitle = strings.TrimSpace(r.ItemTitle)
	return r
}

var (
	contactTemplate = template.Must(template.New("contact").Parse(`<h2>New message from the contact form</h2>
<p><strong>Name:</strong> {{.Name}}</p>
<p><strong>Email:</strong> {{.Email}}</p>
{{if .Phone}}<p><strong>Phone:</strong> {{.Phone}}</p>
{{end}}<p><strong>Message:</strong></p>
<p>{{.Message}}</p>
`))

	listingTemplate = template.Must(template.New("listing").Parse(`<h2>New item submitted: {{.ItemTitle}}</h2>
<p><strong>Submitted by:</strong> {{.Name}} ({{.Email}})</p>
{{if .Phone}}<p><strong>Phone:</strong> {{.Phone}}</p>
{{end}}<p>{{.Message}}</p>
<p>Review it in the admin console.</p>
`))
)

// Compose renders the subject and HTML body for a request. User input is escaped.
func Compose(r Request) (subject, body string, err error) {
	const op = "Compose"

	r = r.trimmed()
	tmpl := contactTemplate
	subject = fmt.Sprintf("Contact form: %s", r.Name)
	if r.IsListing() {
		tmpl = listingTemplate
		subject = fmt.Sprintf("New listing: %s", r.ItemTitle)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, r); err != nil {
		return "", "", fmt.Errorf("[%s] Fail to render email, err=%w", op, err)
	}
	return headerSafe.Replace(subject), buf.String(), nil
}

var headerSafe = strings.NewReplacer("\r", " ", "\n", " ")
