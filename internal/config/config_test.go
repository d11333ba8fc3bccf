package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadParsesAdminLists(t *testing.T) {
	t.Setenv("BOT_TOKEN", "token")
	t.Setenv("ADMIN_IDS", "1451992690, 42")
	t.Setenv("ADMIN_CHAT_IDS", "-100500")

	cfg, err := Load()
	require.NoError(t, err)
	require.NoError(t, cfg.Validate())
	assert.Equal(t, []int64{1451992690, 42}, cfg.AdminIDs)
	assert.Equal(t, []int64{-100500}, cfg.AdminChatIDs)
	assert.True(t, cfg.IsAdmin(42))
	assert.False(t, cfg.IsAdmin(7))
}

func TestLoadRejectsBadAdminID(t *testing.T) {
	t.Setenv("ADMIN_IDS", "1,abc")
	_, err := Load()
	require.Error(t, err)
}

func TestValidateRequiresTokenAndAdmins(t *testing.T) {
	t.Setenv("BOT_TOKEN", "")
	t.Setenv("ADMIN_IDS", "")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Error(t, cfg.Validate())

	t.Setenv("BOT_TOKEN", "token")
	cfg, err = Load()
	require.NoError(t, err)
	assert.Error(t, cfg.Validate(), "at least one admin is required")
}

func TestNotifyTargetsDeduplicates(t *testing.T) {
	t.Setenv("BOT_TOKEN", "token")
	t.Setenv("ADMIN_IDS", "1,2")
	t.Setenv("ADMIN_CHAT_IDS", "2,3")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []int64{1, 2, 3}, cfg.NotifyTargets())
}
