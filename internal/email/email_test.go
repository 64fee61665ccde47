package email_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ekaraman/weather-reporter/internal/config"
	"github.com/ekaraman/weather-reporter/internal/email"
)

func TestValidateAddress(t *testing.T) {
	tests := []struct {
		name    string
		address string
		wantErr bool
	}{
		{"valid", "user@example.com", false},
		{"valid with plus tag", "user+tag@example.com", false},
		{"valid subdomain", "user@mail.example.com", false},
		{"empty", "", true},
		{"no at sign", "user.example.com", true},
		{"embedded newline", "user@example.com\nBcc: evil@example.com", true},
		{"embedded carriage return", "user\r@example.com", true},
		{"embedded space", "us er@example.com", true},
		{"embedded tab", "user\t@example.com", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := email.ValidateAddress(tt.address)
			if tt.wantErr {
				require.Error(t, err)
				var sendErr *email.SendError
				assert.True(t, errors.As(err, &sendErr))
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestSendRejectsBadAddressBeforeDialing(t *testing.T) {
	// Host is unroutable; if validation did not short-circuit, Send would
	// fail with a connection error instead of the validation error.
	sender := email.NewSender(&config.Config{
		SMTPHost:     "smtp.invalid",
		SMTPPort:     587,
		SMTPUser:     "user",
		SMTPPassword: "pass",
		FromEmail:    "reporter@example.com",
	})

	err := sender.Send("bad\naddress@example.com", "subject", "body")
	require.Error(t, err)

	var sendErr *email.SendError
	require.True(t, errors.As(err, &sendErr))
	assert.Contains(t, sendErr.Msg, "line breaks")
}

func TestSendConnectionFailure(t *testing.T) {
	sender := email.NewSender(&config.Config{
		SMTPHost:     "127.0.0.1",
		SMTPPort:     1, // nothing listens here
		SMTPUser:     "user",
		SMTPPassword: "pass",
		FromEmail:    "reporter@example.com",
	})

	err := sender.Send("user@example.com", "subject", "body")
	require.Error(t, err)

	var sendErr *email.SendError
	require.True(t, errors.As(err, &sendErr))
}
