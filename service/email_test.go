package service

import (
	"testing"

	"consec/config"

	"github.com/stretchr/testify/assert"
)

func newTestEmailService() *EmailService {
	return NewEmailService(&config.Config{})
}

func TestGenerateWelcomeBody(t *testing.T) {
	s := newTestEmailService()
	body := s.generateWelcomeBody("Maria Silva", "maria@empresa.com")
	assert.Contains(t, body, "Maria Silva")
	assert.Contains(t, body, "maria@empresa.com")
	assert.Contains(t, body, "ConSec")
}

func TestSendWelcomeDisabled(t *testing.T) {
	// 服务未启用时直接跳过，不报错
	s := newTestEmailService()
	err := s.SendWelcome("maria@empresa.com", "Maria Silva")
	assert.NoError(t, err)
}
