package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	_ "github.com/joho/godotenv/autoload"
)

// Account holds the Fitbit app credentials for one configured user.
type Account struct {
	Email        string
	ClientID     string
	ClientSecret string
	RedirectURI  string
}

// Dir returns the per-account directory name, the local part of the email.
func (a Account) Dir() string {
	if i := strings.Index(a.Email, "@"); i > 0 {
		return a.Email[:i]
	}
	return a.Email
}

type Config struct {
	Accounts  []Account
	Port      int
	DataDir   string
	LogFile   string
	HistoryDB string
}

// Load reads the environment (a .env file is picked up automatically) and
// validates that every required variable is present. It fails before any
// network activity so misconfiguration never burns an API request.
func Load() (Config, error) {
	var missing []string
	get := func(key string) string {
		v := os.Getenv(key)
		if v == "" {
			missing = append(missing, key)
		}
		return v
	}

	redirect := get("REDIRECT_URI_1")
	cfg := Config{
		Accounts: []Account{
			{
				Email:        get("CLIENT_EMAIL_1"),
				ClientID:     get("CLIENT_ID_1"),
				ClientSecret: get("CLIENT_SECRET_1"),
				RedirectURI:  redirect,
			},
			{
				Email:        get("CLIENT_EMAIL_2"),
				ClientID:     get("CLIENT_ID_2"),
				ClientSecret: get("CLIENT_SECRET_2"),
				RedirectURI:  redirect,
			},
		},
		DataDir:   getEnv("DATA_DIR", "data"),
		LogFile:   getEnv("LOG_FILE", "records.log"),
		HistoryDB: getEnv("HISTORY_DB", "history.db"),
	}

	portStr := get("PORT")
	if len(missing) > 0 {
		return Config{}, fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}

	port, err := strconv.Atoi(portStr)
	if err != nil || port <= 0 || port > 65535 {
		return Config{}, fmt.Errorf("invalid PORT %q: must be a port number", portStr)
	}
	cfg.Port = port

	return cfg, nil
}

// HistoryDB returns the history database path without requiring the full
// credential set, for commands that only read past runs.
func HistoryDB() string {
	return getEnv("HISTORY_DB", "history.db")
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return def
}
