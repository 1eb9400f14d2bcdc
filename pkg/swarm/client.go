package swarm

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

const (
	defaultAPIBase   = "https://api.foursquare.com/v2"
	defaultOAuthBase = "https://foursquare.com/oauth2"

	// Foursquare versioning parameter, required on every API call.
	apiVersion = "20220722"
)

// APIError is a non-2xx answer from the Swarm API.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("swarm api: http %d: %s", e.StatusCode, e.Body)
}

// Client talks to the Foursquare/Swarm API on behalf of the registered
// application. Per-user calls go through UserClient.
type Client struct {
	apiBase      string
	oauthBase    string
	clientID     string
	clientSecret string
	redirectURI  string
	httpClient   *http.Client
}

func NewClient(clientID, clientSecret, redirectURI string) *Client {
	return &Client{
		apiBase:      defaultAPIBase,
		oauthBase:    defaultOAuthBase,
		clientID:     clientID,
		clientSecret: clientSecret,
		redirectURI:  redirectURI,
		httpClient:   &http.Client{Timeout: 15 * time.Second},
	}
}

// WithBaseURLs overrides the API endpoints, used by tests.
func (c *Client) WithBaseURLs(apiBase, oauthBase string) *Client {
	c.apiBase = apiBase
	c.oauthBase = oauthBase
	return c
}

// AuthenticateURL is where the user is sent to approve the link.
func (c *Client) AuthenticateURL() string {
	q := url.Values{}
	q.Set("client_id", c.clientID)
	q.Set("response_type", "code")
	q.Set("redirect_uri", c.redirectURI)
	return c.oauthBase + "/authenticate?" + q.Encode()
}

// ExchangeCode trades an authorization code for a user access token.
func (c *Client) ExchangeCode(ctx context.Context, code string) (string, error) {
	q := url.Values{}
	q.Set("client_id", c.clientID)
	q.Set("client_secret", c.clientSecret)
	q.Set("grant_type", "authorization_code")
	q.Set("redirect_uri", c.redirectURI)
	q.Set("code", code)

	var out struct {
		AccessToken string `json:"access_token"`
	}
	if err := c.getJSON(ctx, c.oauthBase+"/access_token?"+q.Encode(), &out); err != nil {
		return "", err
	}
	if out.AccessToken == "" {
		return "", fmt.Errorf("swarm oauth: empty access token")
	}
	return out.AccessToken, nil
}

// User returns a client bound to one user's access token.
func (c *Client) User(accessToken string) *UserClient {
	return &UserClient{client: c, accessToken: accessToken}
}

// UserClient performs API calls authorized by a single user's token.
type UserClient struct {
	client      *Client
	accessToken string
}

// GetSelf fetches the authenticated user's Swarm profile.
func (u *UserClient) GetSelf(ctx context.Context) (*User, error) {
	var out struct {
		User User `json:"user"`
	}
	if err := u.api(ctx, "/users/self", nil, &out); err != nil {
		return nil, err
	}
	if out.User.ID == "" {
		return nil, fmt.Errorf("swarm api: response carries no user")
	}
	return &out.User, nil
}

// RecentCheckins fetches the user's checkin history, newest first,
// bounded to limit items.
func (u *UserClient) RecentCheckins(ctx context.Context, limit int) ([]Checkin, error) {
	q := url.Values{}
	q.Set("limit", fmt.Sprintf("%d", limit))
	var out struct {
		Checkins struct {
			Items []Checkin `json:"items"`
		} `json:"checkins"`
	}
	if err := u.api(ctx, "/users/self/checkins", q, &out); err != nil {
		return nil, err
	}
	return out.Checkins.Items, nil
}

// CheckinDetail fetches the full record for one checkin, including the
// resolved short URL the feed summary lacks.
func (u *UserClient) CheckinDetail(ctx context.Context, checkinID string) (*CheckinDetail, error) {
	var out struct {
		Checkin CheckinDetail `json:"checkin"`
	}
	if err := u.api(ctx, "/checkins/"+url.PathEscape(checkinID), nil, &out); err != nil {
		return nil, err
	}
	if out.Checkin.ID == "" {
		return nil, fmt.Errorf("swarm api: response carries no checkin")
	}
	return &out.Checkin, nil
}

// api calls one v2 API method and decodes the "response" envelope into
// out.
func (u *UserClient) api(ctx context.Context, method string, q url.Values, out any) error {
	if q == nil {
		q = url.Values{}
	}
	q.Set("v", apiVersion)
	q.Set("oauth_token", u.accessToken)

	var envelope struct {
		Response json.RawMessage `json:"response"`
	}
	if err := u.client.getJSON(ctx, u.client.apiBase+method+"?"+q.Encode(), &envelope); err != nil {
		return err
	}
	if len(envelope.Response) == 0 {
		return fmt.Errorf("swarm api: missing response envelope for %s", method)
	}
	return json.Unmarshal(envelope.Response, out)
}

func (c *Client) getJSON(ctx context.Context, rawURL string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return err
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &APIError{StatusCode: resp.StatusCode, Body: string(body)}
	}
	return json.Unmarshal(body, out)
}
