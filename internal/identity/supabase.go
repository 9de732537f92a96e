package identity

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"latch/internal/logs"
)

// SupabaseVerifier проверяет bearer-токен через GET /auth/v1/user.
type SupabaseVerifier struct {
	baseURL string
	anonKey string
	client  *http.Client
}

type supabaseUser struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

func NewSupabaseVerifier(baseURL, anonKey string, client *http.Client) *SupabaseVerifier {
	if client == nil {
		client = &http.Client{Timeout: 5 * time.Second}
	}
	return &SupabaseVerifier{
		baseURL: strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		anonKey: anonKey,
		client:  client,
	}
}

func (v *SupabaseVerifier) Verify(ctx context.Context, token string) (*Principal, error) {
	if strings.TrimSpace(token) == "" {
		return nil, ErrMissingToken
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, v.baseURL+"/auth/v1/user", nil)
	if err != nil {
		return nil, ErrInvalidSession
	}
	req.Header.Set("apikey", v.anonKey)
	req.Header.Set("Authorization", "Bearer "+token)

	resp, err := v.client.Do(req)
	if err != nil {
		logs.Logger.Debugf("identity: verify request failed: %v", err)
		return nil, ErrInvalidSession
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))
		return nil, ErrInvalidSession
	}

	var u supabaseUser
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&u); err != nil {
		logs.Logger.Debugf("identity: bad verify response: %v", err)
		return nil, ErrInvalidSession
	}
	if u.ID == "" {
		return nil, ErrInvalidSession
	}
	return &Principal{ID: u.ID, Email: u.Email}, nil
}
