package identity

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"go.uber.org/zap"
)

type httpProvider struct {
	baseURL string
	apiKey  string
	client  *http.Client
	logger  *zap.Logger
}

// NewHTTPProvider talks to the identity service's REST admin API.
func NewHTTPProvider(baseURL, apiKey string, logger ...*zap.Logger) Provider {
	l := zap.L().Named("identity.provider")
	if len(logger) > 0 && logger[0] != nil {
		l = logger[0].Named("identity.provider")
	}
	return &httpProvider{
		baseURL: baseURL,
		apiKey:  apiKey,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  l,
	}
}

func (p *httpProvider) InviteUser(ctx context.Context, email, name, role string) (InvitedUser, error) {
	body := map[string]string{"email": email, "name": name, "role": role}

	var out struct {
		ID string `json:"id"`
	}
	if err := p.do(ctx, http.MethodPost, "/admin/users/invite", body, &out); err != nil {
		return InvitedUser{}, err
	}

	p.logger.Info("identity invitation issued", zap.String("external_id", out.ID))
	return InvitedUser{ExternalID: out.ID, Email: email}, nil
}

func (p *httpProvider) RevokeInvitation(ctx context.Context, externalID string) error {
	return p.do(ctx, http.MethodDelete, "/admin/users/"+externalID, nil, nil)
}

func (p *httpProvider) SendPasswordReset(ctx context.Context, email string) error {
	body := map[string]string{"email": email}
	return p.do(ctx, http.MethodPost, "/admin/users/password-reset", body, nil)
}

func (p *httpProvider) DisableUser(ctx context.Context, externalID string) error {
	return p.do(ctx, http.MethodPost, "/admin/users/"+externalID+"/disable", nil, nil)
}

func (p *httpProvider) do(ctx context.Context, method, path string, body, out any) error {
	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req, err := http.NewRequestWithContext(ctx, method, p.baseURL+path, reader)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+p.apiKey)

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		return fmt.Errorf("identity provider returned status %d for %s %s", resp.StatusCode, method, path)
	}

	if out != nil {
		return json.NewDecoder(resp.Body).Decode(out)
	}
	return nil
}
