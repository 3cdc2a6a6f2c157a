package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setFullEnv(t *testing.T) {
	t.Helper()
	t.Setenv("CLIENT_EMAIL_1", "alice@example.com")
	t.Setenv("CLIENT_ID_1", "ID1")
	t.Setenv("CLIENT_SECRET_1", "SECRET1")
	t.Setenv("CLIENT_EMAIL_2", "bob@example.com")
	t.Setenv("CLIENT_ID_2", "ID2")
	t.Setenv("CLIENT_SECRET_2", "SECRET2")
	t.Setenv("REDIRECT_URI_1", "http://localhost:8000")
	t.Setenv("PORT", "8000")
}

func TestLoad(t *testing.T) {
	setFullEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	require.Len(t, cfg.Accounts, 2)
	assert.Equal(t, "alice@example.com", cfg.Accounts[0].Email)
	assert.Equal(t, "ID1", cfg.Accounts[0].ClientID)
	assert.Equal(t, "SECRET2", cfg.Accounts[1].ClientSecret)
	assert.Equal(t, "http://localhost:8000", cfg.Accounts[1].RedirectURI)
	assert.Equal(t, 8000, cfg.Port)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "records.log", cfg.LogFile)
}

func TestLoadMissingVariables(t *testing.T) {
	setFullEnv(t)
	t.Setenv("CLIENT_SECRET_2", "")
	t.Setenv("REDIRECT_URI_1", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "CLIENT_SECRET_2")
	assert.Contains(t, err.Error(), "REDIRECT_URI_1")
	assert.NotContains(t, err.Error(), "CLIENT_ID_1")
}

func TestLoadInvalidPort(t *testing.T) {
	tests := []struct {
		name string
		port string
	}{
		{"not a number", "eighty"},
		{"negative", "-1"},
		{"too large", "70000"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setFullEnv(t)
			t.Setenv("PORT", tt.port)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestLoadOverrides(t *testing.T) {
	setFullEnv(t)
	t.Setenv("DATA_DIR", "exports")
	t.Setenv("LOG_FILE", "other.log")
	t.Setenv("HISTORY_DB", "runs.db")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "exports", cfg.DataDir)
	assert.Equal(t, "other.log", cfg.LogFile)
	assert.Equal(t, "runs.db", cfg.HistoryDB)
}

func TestAccountDir(t *testing.T) {
	assert.Equal(t, "alice", Account{Email: "alice@example.com"}.Dir())
	assert.Equal(t, "no-at-sign", Account{Email: "no-at-sign"}.Dir())
}
