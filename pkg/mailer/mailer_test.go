package mailer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reclaimhq/reclaim-backend/pkg/config"
	pkgerrors "github.com/reclaimhq/reclaim-backend/pkg/errors"
)

func TestSendFailsWhenUnconfigured(t *testing.T) {
	sender := NewSMTPSender(config.SMTPConfig{})

	err := sender.Send(context.Background(), "owner@example.com", "subject", "<p>hi</p>")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeEmail))
}

func TestSendRejectsEmptyRecipient(t *testing.T) {
	sender := NewSMTPSender(config.SMTPConfig{
		Host: "smtp.example.com",
		Port: 587,
		From: "Reclaim <no-reply@example.com>",
	})

	err := sender.Send(context.Background(), "", "subject", "<p>hi</p>")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestSendRejectsBadPort(t *testing.T) {
	sender := NewSMTPSender(config.SMTPConfig{
		Host: "smtp.example.com",
		Port: -1,
		From: "no-reply@example.com",
	})

	err := sender.Send(context.Background(), "owner@example.com", "subject", "body")
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeEmail))
}
