package email

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/ses"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"communityevents/internal/domain"
)

var testLogger = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestTemplateRenderer_Render(t *testing.T) {
	r := NewTemplateRenderer()

	t.Run("registration confirmed", func(t *testing.T) {
		data := &domain.RegistrationEmailData{
			Email:         "uma@example.com",
			Name:          "Uma",
			EventTitle:    "Go <meetup>",
			EventLocation: "Library",
			EventStart:    time.Date(2026, 5, 1, 20, 0, 0, 0, time.FixedZone("CEST", 2*60*60)),
			CheckinToken:  "tok-123",
		}
		subject, html, text, err := r.Render("registration_confirmed", data)
		require.NoError(t, err)
		assert.Equal(t, "You're registered: Go <meetup>", subject)
		assert.Contains(t, html, "Go &lt;meetup&gt;", "html body is escaped")
		assert.Contains(t, html, "tok-123")
		assert.Contains(t, text, "Fri, 01 May 2026 18:00 UTC", "start time is shown in UTC")
		assert.Contains(t, html, "Fri, 01 May 2026 18:00 UTC")
		assert.Contains(t, text, "tok-123")
	})

	t.Run("welcome", func(t *testing.T) {
		subject, _, text, err := r.Render("welcome", &domain.WelcomeEmailData{Email: "a@example.com", Name: "Ana"})
		require.NoError(t, err)
		assert.Equal(t, "Welcome to Community Events, Ana", subject)
		assert.Contains(t, text, "a@example.com")
	})

	t.Run("unknown template", func(t *testing.T) {
		_, _, _, err := r.Render("missing", nil)
		require.EqualError(t, err, `unknown email template "missing"`)
	})
}

type fakeSES struct {
	input *ses.SendEmailInput
	err   error
}

func (f *fakeSES) SendEmail(ctx context.Context, params *ses.SendEmailInput, optFns ...func(*ses.Options)) (*ses.SendEmailOutput, error) {
	f.input = params
	if f.err != nil {
		return nil, f.err
	}
	return &ses.SendEmailOutput{MessageId: aws.String("msg-1")}, nil
}

func TestSESMailer_Send(t *testing.T) {
	client := &fakeSES{}
	m := &sesMailer{client: client, fromAddress: "events@example.com", fromName: "Community Events", logger: testLogger}

	require.NoError(t, m.Send(context.Background(), "uma@example.com", "Hi", "<p>hi</p>", ""))
	require.NotNil(t, client.input)
	assert.Equal(t, "Community Events <events@example.com>", aws.ToString(client.input.Source))
	assert.Equal(t, []string{"uma@example.com"}, client.input.Destination.ToAddresses)
	assert.Equal(t, "<p>hi</p>", aws.ToString(client.input.Message.Body.Html.Data))
	assert.Nil(t, client.input.Message.Body.Text)

	client.err = errors.New("throttled")
	err := m.Send(context.Background(), "uma@example.com", "Hi", "", "hi")
	require.ErrorContains(t, err, "throttled")
}

func TestNewMailer(t *testing.T) {
	m, err := NewMailer(MailerConfig{Provider: "noop"}, testLogger)
	require.NoError(t, err)
	require.NoError(t, m.Send(context.Background(), "a@example.com", "s", "h", "t"))

	_, err = NewMailer(MailerConfig{Provider: "ses", FromAddress: "events@example.com"}, testLogger)
	require.Error(t, err, "region is required")

	m, err = NewMailer(MailerConfig{Provider: "ses", FromAddress: "events@example.com", SES: SESConfig{Region: "eu-west-1"}}, testLogger)
	require.NoError(t, err)
	assert.IsType(t, &sesMailer{}, m)

	m, err = NewMailer(MailerConfig{Provider: "carrier-pigeon"}, testLogger)
	require.NoError(t, err)
	assert.IsType(t, &noopMailer{}, m)
}
