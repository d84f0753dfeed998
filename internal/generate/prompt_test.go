package generate_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shpitdev/outreach-mailer/internal/contact"
	"github.com/shpitdev/outreach-mailer/internal/generate"
)

func TestBuildPrompt(t *testing.T) {
	sender := contact.Sender{
		Name:     "Sam Sender",
		Position: "Founder",
		Company:  "DiligenceAI",
		Email:    "sam@diligence.test",
		Phone:    "+1 555 0100",
	}

	t.Run("embeds contact and sender fields", func(t *testing.T) {
		got, err := generate.BuildPrompt("", sender, contact.Record{
			Company:  "Acme Credit",
			Industry: "Direct Lending",
			Name:     "Jane Doe",
			Position: "Partner",
			Notes:    "Met at SuperReturn",
		})
		require.NoError(t, err)

		for _, want := range []string{
			"Subject: AI-Powered Deal Due Diligence Platform",
			"- Recipient's Company: Acme Credit",
			"- Industry Focus: Direct Lending",
			"- Recipient's Name: Jane Doe",
			"- Recipient's Position: Partner",
			"- Notes about recipient: Met at SuperReturn",
			"relevant to their industry focus (Direct Lending) and position (Partner).",
			"Replace [Your Position/Title] with Founder.",
			"Replace [Your Company/Startup Name, if applicable] with DiligenceAI.",
			"Replace [Your Email Address] with sam@diligence.test.",
			"Replace [Your Phone Number, optional] with +1 555 0100.",
		} {
			assert.Contains(t, got, want)
		}
	})

	t.Run("notes placeholder", func(t *testing.T) {
		got, err := generate.BuildPrompt("", sender, contact.Record{Name: "Jane", Notes: "  "})
		require.NoError(t, err)
		assert.Contains(t, got, "- Notes about recipient: No specific notes")
	})

	t.Run("custom template", func(t *testing.T) {
		got, err := generate.BuildPrompt("Hi [Recipient's Name], quick note.", sender, contact.Record{Name: "Jane"})
		require.NoError(t, err)
		assert.Contains(t, got, "Hi [Recipient's Name], quick note.")
		assert.NotContains(t, got, "Deal Due Diligence")
	})

	t.Run("template text is not interpreted", func(t *testing.T) {
		got, err := generate.BuildPrompt("{{.Secret}}", sender, contact.Record{Name: "{{.Name}}"})
		require.NoError(t, err)
		assert.Contains(t, got, "{{.Secret}}")
		assert.Contains(t, got, "Recipient's Name: {{.Name}}")
	})
}

func TestMarker(t *testing.T) {
	got := generate.Marker(errors.New("rate limited"))
	assert.Equal(t, "Error generating email: rate limited", got)
	assert.Equal(t, generate.ErrorMarkerPrefix, generate.Marker(nil))
}

func TestIsSuccess(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want bool
	}{
		{name: "text", in: "Dear Jane", want: true},
		{name: "empty", in: "", want: false},
		{name: "marker", in: "Error generating email: boom", want: false},
		// Known sharp edge: legitimate output starting with the prefix is misclassified.
		{name: "model text with prefix", in: "Error generating emails is rare, Jane...", want: false},
		{name: "prefix later in text", in: "Dear Jane, Error generating email", want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, generate.IsSuccess(tt.in))
		})
	}
}
