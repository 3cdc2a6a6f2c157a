package auth

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"golang.org/x/oauth2"
)

const expiryFmt = "2006-01-02T15:04:05Z07:00"

// tokenFile is the on-disk shape of a stored token, one file per account
// email so the two configured users never clobber each other.
type tokenFile struct {
	AccessToken  string `json:"access_token"`
	TokenType    string `json:"token_type"`
	RefreshToken string `json:"refresh_token"`
	Expiry       string `json:"expiry"`
	UserID       string `json:"user_id"`
}

func loadToken(path string) (*oauth2.Token, string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	var t tokenFile
	if err := json.NewDecoder(file).Decode(&t); err != nil {
		return nil, "", fmt.Errorf("error decoding token file %s: %w", path, err)
	}

	expiry, err := time.Parse(expiryFmt, t.Expiry)
	if err != nil {
		return nil, "", fmt.Errorf("error parsing token expiry: %w", err)
	}

	return &oauth2.Token{
		AccessToken:  t.AccessToken,
		TokenType:    t.TokenType,
		RefreshToken: t.RefreshToken,
		Expiry:       expiry,
	}, t.UserID, nil
}

func saveToken(path string, token *oauth2.Token, userID string) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("error creating token file %s: %w", path, err)
	}
	defer file.Close()

	t := tokenFile{
		AccessToken:  token.AccessToken,
		TokenType:    token.TokenType,
		RefreshToken: token.RefreshToken,
		Expiry:       token.Expiry.Format(expiryFmt),
		UserID:       userID,
	}
	if err := json.NewEncoder(file).Encode(t); err != nil {
		return fmt.Errorf("error encoding token file: %w", err)
	}
	return nil
}
