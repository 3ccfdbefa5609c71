package main

import (
	"bytes"
	"strings"
	"testing"

	"placemap/config"
	"placemap/internal/infra/auth"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/fx"
)

func TestAppGraph(t *testing.T) {
	require.NoError(t, fx.ValidateApp(appOptions()...))
}

func TestTokenCommand(t *testing.T) {
	userID := uuid.New()

	var out bytes.Buffer
	cmd := newCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"token", "--secret", "dev-secret", "--user", userID.String(), "--ttl", "1h"})
	require.NoError(t, cmd.Execute())

	cfg := &config.Config{}
	cfg.SecretKey.Access = "dev-secret"
	tokens, err := auth.NewJWTService(cfg)
	require.NoError(t, err)

	claims, err := tokens.ValidateToken(strings.TrimSpace(out.String()))
	require.NoError(t, err)
	assert.Equal(t, userID, claims.UserID)
}

func TestTokenCommand_InvalidUser(t *testing.T) {
	cmd := newCommand()
	cmd.SetOut(&bytes.Buffer{})
	cmd.SetArgs([]string{"token", "--secret", "dev-secret", "--user", "nobody"})
	assert.Error(t, cmd.Execute())
}
