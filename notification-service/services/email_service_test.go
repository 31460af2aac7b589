package services

import (
	"testing"

	"taskhive-backend/shared/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func devConfig() *config.Config {
	return &config.Config{
		EmailFrom:     "noreply@taskhive.app",
		EmailFromName: "TaskHive",
		FrontendURL:   "http://localhost:3000",
	}
}

func TestSendEmailDevelopmentModeNeverFails(t *testing.T) {
	es := NewEmailService(devConfig())
	require.True(t, es.DevelopmentMode())

	response, err := es.SendEmail(EmailRequest{
		To:      []string{"jane@example.com"},
		Subject: "Hello",
		Body:    "plain body",
	})
	require.NoError(t, err)
	assert.True(t, response.Success)
	assert.Equal(t, "development", response.Mode)
}

func TestSendEmailValidation(t *testing.T) {
	es := NewEmailService(devConfig())

	_, err := es.SendEmail(EmailRequest{Subject: "no recipients", Body: "x"})
	assert.Error(t, err)

	_, err = es.SendEmail(EmailRequest{To: []string{"a@b.com"}, Body: "x"})
	assert.Error(t, err)

	_, err = es.SendEmail(EmailRequest{To: []string{"a@b.com"}, Subject: "no body"})
	assert.Error(t, err)
}

func TestNormalizeKey(t *testing.T) {
	assert.Equal(t, "jane@example.com", NormalizeKey("  Jane@Example.COM "))
}
