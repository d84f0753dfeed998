package generate

import (
	"bytes"
	"fmt"
	"strings"
	"text/template"

	"github.com/shpitdev/outreach-mailer/internal/contact"
)

// SystemInstruction frames every request.
const SystemInstruction = "You are an assistant that generates personalized professional emails."

// DefaultTemplate is the outreach email the model personalizes. Bracketed placeholders
// are filled by the model from the instructions in the prompt.
const DefaultTemplate = `Subject: AI-Powered Deal Due Diligence Platform
Dear [Recipient's Name],
I know you're incredibly busy and get a lot of messages, so this will only take 60 seconds to read.
I'm developing a platform that uses AI to streamline and enhance deal due diligence for private credit firms, helping you save time, reduce risk, and identify opportunities faster. The insights we've gained from AI-driven data analysis could be incredibly valuable for your investment process.
Have you ever thought about how AI could transform due diligence for private credit deals? I think our platform could add significant value to your firm, and I'd love to discuss whether you'd be interested in exploring a partnership or pilot.
I totally understand if you're too busy to respond. Even a one or two-line reply will completely make my day.
Best regards,
[Your Full Name]
[Your Position/Title]
[Your Company/Startup Name, if applicable]
[Your Email Address]
[Your Phone Number, optional]`

const noNotes = "No specific notes"

var promptTmpl = template.Must(template.New("prompt").Parse(strings.TrimSpace(`
Generate a personalized email based on the following template and information:

Template:
{{.Template}}

Information:
- Recipient's Company: {{.Contact.Company}}
- Industry Focus: {{.Contact.Industry}}
- Recipient's Name: {{.Contact.Name}}
- Recipient's Position: {{.Contact.Position}}
- Notes about recipient: {{.Notes}}

Please personalize the email to make it relevant to their industry focus ({{.Contact.Industry}}) and position ({{.Contact.Position}}).
Replace [Recipient's Name] with {{.Contact.Name}}.
Replace [Your Full Name] with {{.Sender.Name}}.
Replace [Your Position/Title] with {{.Sender.Position}}.
Replace [Your Company/Startup Name, if applicable] with {{.Sender.Company}}.
Replace [Your Email Address] with {{.Sender.Email}}.
Replace [Your Phone Number, optional] with {{.Sender.Phone}}.

Make the email concise, professional, and personalized based on the recipient's information.
`)))

type promptData struct {
	Template string
	Contact  contact.Record
	Sender   contact.Sender
	Notes    string
}

// BuildPrompt renders the user instruction for one contact. An empty emailTemplate
// selects DefaultTemplate.
func BuildPrompt(emailTemplate string, sender contact.Sender, rec contact.Record) (string, error) {
	if strings.TrimSpace(emailTemplate) == "" {
		emailTemplate = DefaultTemplate
	}
	notes := strings.TrimSpace(rec.Notes)
	if notes == "" {
		notes = noNotes
	}

	var buf bytes.Buffer
	if err := promptTmpl.Execute(&buf, promptData{
		Template: strings.TrimSpace(emailTemplate),
		Contact:  rec,
		Sender:   sender,
		Notes:    notes,
	}); err != nil {
		return "", fmt.Errorf("render prompt: %w", err)
	}
	return buf.String(), nil
}
