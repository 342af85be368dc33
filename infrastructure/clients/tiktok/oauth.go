package tiktok

import (
	"bytes"
	"context"
	"errors"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"creator-contest/domain/model"

	"golang.org/x/oauth2"
)

type OAuthConfig struct {
	ClientKey    string
	ClientSecret string
	RedirectURL  string
	AuthURL      string
	TokenURL     string
	RevokeURL    string
	Scopes       []string
	Timeout      time.Duration
}

// OAuthClient runs the authorization-code, refresh-token and revoke calls.
// The platform names the client id "client_key", so every token request carries both.
type OAuthClient struct {
	config     *oauth2.Config
	clientKey  string
	secret     string
	revokeURL  string
	httpClient *http.Client
}

func NewOAuthClient(cfg OAuthConfig) *OAuthClient {
	return &OAuthClient{
		config: &oauth2.Config{
			ClientID:     cfg.ClientKey,
			ClientSecret: cfg.ClientSecret,
			RedirectURL:  cfg.RedirectURL,
			Scopes:       []string{strings.Join(cfg.Scopes, ",")},
			Endpoint: oauth2.Endpoint{
				AuthURL:   cfg.AuthURL,
				TokenURL:  cfg.TokenURL,
				AuthStyle: oauth2.AuthStyleInParams,
			},
		},
		clientKey: cfg.ClientKey,
		secret:    cfg.ClientSecret,
		revokeURL: cfg.RevokeURL,
		httpClient: &http.Client{
			Timeout:   cfg.Timeout,
			Transport: &clientKeyTransport{base: http.DefaultTransport},
		},
	}
}

func (o *OAuthClient) AuthCodeURL(state string) string {
	return o.config.AuthCodeURL(state, oauth2.SetAuthURLParam("client_key", o.clientKey))
}

func (o *OAuthClient) Exchange(ctx context.Context, code string) (*model.TokenGrant, error) {
	tok, err := o.config.Exchange(o.withClient(ctx), code)
	if err != nil {
		return nil, toAPIError(err)
	}
	return toGrant(tok, time.Now()), nil
}

// Refresh trades a refresh token for a new pair.
func (o *OAuthClient) Refresh(ctx context.Context, refreshToken string) (*model.TokenGrant, error) {
	expired := &oauth2.Token{RefreshToken: refreshToken, Expiry: time.Now().Add(-time.Minute)}
	tok, err := o.config.TokenSource(o.withClient(ctx), expired).Token()
	if err != nil {
		return nil, toAPIError(err)
	}
	grant := toGrant(tok, time.Now())
	if grant.RefreshToken == "" {
		grant.RefreshToken = refreshToken
	}
	return grant, nil
}

func (o *OAuthClient) Revoke(ctx context.Context, accessToken string) error {
	form := url.Values{
		"client_key":    {o.clientKey},
		"client_secret": {o.secret},
		"token":         {accessToken},
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, o.revokeURL, strings.NewReader(form.Encode()))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	resp, err := o.httpClient.Do(req)
	if err != nil {
		return &model.PlatformAPIError{Message: err.Error(), Code: "network_error", Transient: true}
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxBodyBytes))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &model.PlatformAPIError{
			Message:    "token revoke failed",
			Code:       "revoke_failed",
			HTTPStatus: resp.StatusCode,
			Transient:  isTransient(resp.StatusCode, ""),
		}
	}
	return nil
}

func (o *OAuthClient) withClient(ctx context.Context) context.Context {
	return context.WithValue(ctx, oauth2.HTTPClient, o.httpClient)
}

func toGrant(tok *oauth2.Token, now time.Time) *model.TokenGrant {
	grant := &model.TokenGrant{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
	}
	if !tok.Expiry.IsZero() {
		grant.ExpiresInSeconds = int64(tok.Expiry.Sub(now).Round(time.Second) / time.Second)
	}
	if openID, ok := tok.Extra("open_id").(string); ok {
		grant.OpenID = openID
	}
	return grant
}

func toAPIError(err error) error {
	var re *oauth2.RetrieveError
	if errors.As(err, &re) {
		status := 0
		if re.Response != nil {
			status = re.Response.StatusCode
		}
		code := re.ErrorCode
		if code == "" {
			code = "token_error"
		}
		msg := re.ErrorDescription
		if msg == "" {
			msg = strings.TrimSpace(string(re.Body))
		}
		return &model.PlatformAPIError{Message: msg, Code: code, HTTPStatus: status, Transient: isTransient(status, code)}
	}
	return &model.PlatformAPIError{Message: err.Error(), Code: "token_error", Transient: true}
}

// clientKeyTransport copies client_id into client_key on form-encoded token requests.
type clientKeyTransport struct {
	base http.RoundTripper
}

func (t *clientKeyTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodPost || req.Body == nil ||
		!strings.HasPrefix(req.Header.Get("Content-Type"), "application/x-www-form-urlencoded") {
		return t.base.RoundTrip(req)
	}
	raw, err := io.ReadAll(req.Body)
	_ = req.Body.Close()
	if err != nil {
		return nil, err
	}
	form, err := url.ParseQuery(string(raw))
	if err == nil && form.Get("client_key") == "" && form.Get("client_id") != "" {
		form.Set("client_key", form.Get("client_id"))
		raw = []byte(form.Encode())
	}
	clone := req.Clone(req.Context())
	clone.Body = io.NopCloser(bytes.NewReader(raw))
	clone.ContentLength = int64(len(raw))
	return t.base.RoundTrip(clone)
}
