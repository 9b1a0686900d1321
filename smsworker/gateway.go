package smsworker

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"
)

// Gateway delivers one text message and returns the provider's message id.
type Gateway interface {
	Send(ctx context.Context, to, body string) (sid string, err error)
}

// HTTPGateway talks to a Twilio-style REST messaging API using the three
// account secrets: account identifier, auth token and sender number.
type HTTPGateway struct {
	baseURL    string
	accountSID string
	authToken  string
	from       string
	http       *http.Client
}

func NewHTTPGateway(baseURL, accountSID, authToken, from string) *HTTPGateway {
	return &HTTPGateway{
		baseURL:    strings.TrimRight(strings.TrimSpace(baseURL), "/"),
		accountSID: strings.TrimSpace(accountSID),
		authToken:  strings.TrimSpace(authToken),
		from:       strings.TrimSpace(from),
		http: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

func (g *HTTPGateway) Send(ctx context.Context, to, body string) (string, error) {
	if g.accountSID == "" || g.authToken == "" || g.from == "" {
		return "", errors.New("sms gateway credentials not configured")
	}

	form := url.Values{}
	form.Set("To", to)
	form.Set("From", g.from)
	form.Set("Body", body)

	endpoint := fmt.Sprintf("%s/Accounts/%s/Messages.json", g.baseURL, g.accountSID)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.SetBasicAuth(g.accountSID, g.authToken)

	resp, err := g.http.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("sms gateway returned %s", resp.Status)
	}

	var out struct {
		Sid string `json:"sid"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", err
	}
	return out.Sid, nil
}
