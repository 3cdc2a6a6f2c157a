package auth

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/endpoints"

	"fitbitexport/internal/browser"
	"fitbitexport/internal/config"
)

const defaultIntrospectURL = "https://api.fitbit.com/1.1/oauth2/introspect"

var scopes = []string{
	"activity", "heartrate", "location", "nutrition", "profile",
	"settings", "sleep", "social", "weight", "oxygen_saturation",
}

// Session is the outcome of a successful authorization: an http.Client whose
// token source refreshes transparently, plus the Fitbit user id.
type Session struct {
	Client *http.Client
	UserID string
}

// Authorizer runs the OAuth2 authorization-code flow for one account,
// reusing a stored token when it is still active.
type Authorizer struct {
	conf          *oauth2.Config
	email         string
	port          int
	tokenPath     string
	introspectURL string
	logger        *log.Logger
}

func NewAuthorizer(acct config.Account, port int, tokenDir string, logger *log.Logger) *Authorizer {
	return &Authorizer{
		conf: &oauth2.Config{
			ClientID:     acct.ClientID,
			ClientSecret: acct.ClientSecret,
			RedirectURL:  acct.RedirectURI,
			Scopes:       scopes,
			Endpoint:     endpoints.Fitbit,
		},
		email:         acct.Email,
		port:          port,
		tokenPath:     filepath.Join(tokenDir, fmt.Sprintf("token_%s.json", acct.Email)),
		introspectURL: defaultIntrospectURL,
		logger:        logger,
	}
}

// Authorize works down the token ladder: stored token, refresh, full
// browser-driven consent flow. User-denied consent and network failures
// surface as errors without retry.
func (a *Authorizer) Authorize(ctx context.Context) (*Session, error) {
	token, userID, err := loadToken(a.tokenPath)
	if err == nil {
		if a.introspect(ctx, token.AccessToken) {
			a.logger.Info("using stored token", "email", a.email)
			return a.session(ctx, token, userID), nil
		}

		a.logger.Warn("stored token is invalid or expired, trying to refresh", "email", a.email)
		refreshed, rerr := a.conf.TokenSource(ctx, token).Token()
		if rerr == nil {
			if serr := saveToken(a.tokenPath, refreshed, userID); serr != nil {
				return nil, serr
			}
			a.logger.Info("token refreshed", "email", a.email)
			return a.session(ctx, refreshed, userID), nil
		}
		a.logger.Warn("token refresh failed, performing full authorization", "err", rerr)
	}

	token, err = a.authorizationCodeFlow(ctx)
	if err != nil {
		return nil, fmt.Errorf("authorization failed for %s: %w", a.email, err)
	}

	userID, _ = token.Extra("user_id").(string)
	if err := saveToken(a.tokenPath, token, userID); err != nil {
		return nil, err
	}
	return a.session(ctx, token, userID), nil
}

func (a *Authorizer) session(ctx context.Context, token *oauth2.Token, userID string) *Session {
	return &Session{Client: a.conf.Client(ctx, token), UserID: userID}
}

func (a *Authorizer) authorizationCodeFlow(ctx context.Context) (*oauth2.Token, error) {
	verifier := oauth2.GenerateVerifier()
	state := oauth2.GenerateVerifier()

	authURL := a.conf.AuthCodeURL(
		state,
		oauth2.AccessTypeOffline,
		oauth2.S256ChallengeOption(verifier),
		oauth2.SetAuthURLParam("prompt", "login consent"),
	)

	codeCh := make(chan string, 1)
	errCh := make(chan error, 1)
	srv := &http.Server{
		Addr:    fmt.Sprintf(":%d", a.port),
		Handler: callbackHandler(state, codeCh),
	}
	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()
	defer srv.Shutdown(context.Background())

	fmt.Printf("visit url for auth: %v\n", authURL)
	if err := browser.Open(authURL); err != nil {
		a.logger.Warn("could not open browser, use the printed url", "err", err)
	}
	a.logger.Info("waiting for authentication callback", "port", a.port)

	select {
	case code := <-codeCh:
		return a.conf.Exchange(ctx, code, oauth2.VerifierOption(verifier))
	case err := <-errCh:
		return nil, fmt.Errorf("callback listener failed: %w", err)
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// callbackHandler accepts the consent redirect, checks the state parameter
// and hands the authorization code to the waiting flow.
func callbackHandler(state string, codeCh chan<- string) http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		code := q.Get("code")
		if code == "" {
			http.Error(w, "Not Found.", http.StatusNotFound)
			return
		}
		if q.Get("state") != state {
			http.Error(w, "state mismatch", http.StatusBadRequest)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "Authentication successful. You can close this tab.")
		select {
		case codeCh <- code:
		default:
		}
	})
	return mux
}

// introspect asks Fitbit whether an access token is still active.
func (a *Authorizer) introspect(ctx context.Context, accessToken string) bool {
	body := url.Values{"token": {accessToken}}
	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, a.introspectURL, strings.NewReader(body.Encode()),
	)
	if err != nil {
		return false
	}
	req.Header.Set("Authorization", "Bearer "+accessToken)
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")

	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		a.logger.Error("token introspection failed", "err", err)
		return false
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return false
	}
	var info struct {
		Active bool `json:"active"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&info); err != nil {
		return false
	}
	return info.Active
}
