package generate_test

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shpitdev/outreach-mailer/internal/contact"
	"github.com/shpitdev/outreach-mailer/internal/generate"
	"github.com/shpitdev/outreach-mailer/internal/retry"
)

type scriptedCompleter struct {
	failures int
	err      error
	text     string

	calls []generate.Request
}

func (s *scriptedCompleter) Complete(_ context.Context, req generate.Request) (string, error) {
	s.calls = append(s.calls, req)
	if s.failures < 0 || len(s.calls) <= s.failures {
		return "", s.err
	}
	return s.text, nil
}

type recordingSleep struct {
	waits []time.Duration
}

func (r *recordingSleep) Sleep(_ context.Context, d time.Duration) error {
	r.waits = append(r.waits, d)
	return nil
}

var jane = contact.Record{
	Company:  "Acme Credit",
	Industry: "Direct Lending",
	Name:     "Jane Doe",
	Position: "Partner",
}

func newClient(t *testing.T, c generate.Completer, sleeper *recordingSleep) *generate.Client {
	t.Helper()
	client, err := generate.New(c, generate.Config{
		Model:  "test-model",
		Sender: contact.Sender{Name: "Sam Sender"},
		Policy: retry.DefaultPolicy(),
		Sleep:  sleeper.Sleep,
	})
	require.NoError(t, err)
	return client
}

func TestGenerate_RetriesThenSucceeds(t *testing.T) {
	c := &scriptedCompleter{failures: 2, err: errors.New("503 unavailable"), text: "  Dear Jane,\nHello.  "}
	sleeper := &recordingSleep{}

	got := newClient(t, c, sleeper).Generate(context.Background(), jane)

	assert.Equal(t, "Dear Jane,\nHello.", got)
	assert.Len(t, c.calls, 3)
	assert.Equal(t, []time.Duration{5 * time.Second, 10 * time.Second}, sleeper.waits)
}

func TestGenerate_ExhaustedReturnsMarker(t *testing.T) {
	c := &scriptedCompleter{failures: -1, err: errors.New("quota exceeded")}
	sleeper := &recordingSleep{}

	got := newClient(t, c, sleeper).Generate(context.Background(), jane)

	assert.Len(t, c.calls, 3)
	assert.Len(t, sleeper.waits, 2)
	assert.True(t, strings.HasPrefix(got, generate.ErrorMarkerPrefix), got)
	assert.Contains(t, got, "quota exceeded")
	assert.False(t, generate.IsSuccess(got))
}

func TestGenerate_MarkerRedactsSecrets(t *testing.T) {
	c := &scriptedCompleter{failures: -1, err: errors.New(`Post "https://x.test/v1?key=AIzaSECRET": EOF`)}

	got := newClient(t, c, &recordingSleep{}).Generate(context.Background(), jane)

	assert.NotContains(t, got, "AIzaSECRET")
}

func TestGenerate_EmptyNameSkipsCall(t *testing.T) {
	for _, name := range []string{"", "   "} {
		c := &scriptedCompleter{text: "should not be used"}
		got := newClient(t, c, &recordingSleep{}).Generate(context.Background(), contact.Record{Company: "Acme", Name: name})
		assert.Empty(t, got)
		assert.Empty(t, c.calls)
	}
}

func TestGenerate_RequestShape(t *testing.T) {
	c := &scriptedCompleter{text: "ok"}

	got := newClient(t, c, &recordingSleep{}).Generate(context.Background(), jane)
	require.Equal(t, "ok", got)
	require.Len(t, c.calls, 1)

	req := c.calls[0]
	assert.Equal(t, "test-model", req.Model)
	assert.Equal(t, generate.SystemInstruction, req.System)
	assert.Equal(t, generate.DefaultMaxOutputTokens, req.MaxOutputTokens)
	assert.InDelta(t, 0.7, req.Temperature, 1e-6)
	assert.Contains(t, req.Prompt, "Replace [Recipient's Name] with Jane Doe.")
	assert.Contains(t, req.Prompt, "Replace [Your Full Name] with Sam Sender.")
}

func TestNew_TemperatureDefault(t *testing.T) {
	zero := float32(0)
	hot := float32(1.3)
	tests := []struct {
		name string
		in   *float32
		want float32
	}{
		{name: "unset", in: nil, want: generate.DefaultTemperature},
		{name: "explicit zero", in: &zero, want: 0},
		{name: "explicit value", in: &hot, want: 1.3},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := &scriptedCompleter{text: "ok"}
			client, err := generate.New(c, generate.Config{Model: "m", Temperature: tt.in})
			require.NoError(t, err)

			client.Generate(context.Background(), jane)
			require.Len(t, c.calls, 1)
			assert.InDelta(t, tt.want, c.calls[0].Temperature, 1e-6)
			assert.Equal(t, generate.DefaultMaxOutputTokens, c.calls[0].MaxOutputTokens)
		})
	}
}

func TestGenerate_RateLimitAppliesToRetries(t *testing.T) {
	c := &scriptedCompleter{failures: 2, err: errors.New("503 unavailable"), text: "ok"}
	var starts []time.Time
	sleeper := &recordingSleep{}
	client, err := generate.New(generate.CompleterFunc(func(ctx context.Context, req generate.Request) (string, error) {
		starts = append(starts, time.Now())
		return c.Complete(ctx, req)
	}), generate.Config{
		Model:        "m",
		Policy:       retry.DefaultPolicy(),
		Sleep:        sleeper.Sleep,
		RateLimitRPS: 20,
	})
	require.NoError(t, err)

	got := client.Generate(context.Background(), jane)

	assert.Equal(t, "ok", got)
	require.Len(t, starts, 3)
	for i := 1; i < len(starts); i++ {
		assert.GreaterOrEqual(t, starts[i].Sub(starts[i-1]), 45*time.Millisecond, "attempt %d", i+1)
	}
}

func TestGenerate_CancelledDuringBackoff(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	c := &scriptedCompleter{failures: -1, err: errors.New("boom")}
	client, err := generate.New(generate.CompleterFunc(func(ctx context.Context, req generate.Request) (string, error) {
		cancel()
		return c.Complete(ctx, req)
	}), generate.Config{Model: "m", Policy: retry.Policy{MaxAttempts: 3, BaseDelay: time.Hour}})
	require.NoError(t, err)

	got := client.Generate(ctx, jane)

	assert.Len(t, c.calls, 1)
	assert.Contains(t, got, context.Canceled.Error())
	assert.False(t, generate.IsSuccess(got))
}

func TestNew_Validation(t *testing.T) {
	_, err := generate.New(nil, generate.Config{Model: "m"})
	require.Error(t, err)

	_, err = generate.New(&scriptedCompleter{}, generate.Config{Model: " "})
	require.Error(t, err)

	client, err := generate.New(&scriptedCompleter{}, generate.Config{Model: " m "})
	require.NoError(t, err)
	assert.Equal(t, "m", client.Model())
}
