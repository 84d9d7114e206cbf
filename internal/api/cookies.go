package api

import (
	"encoding/json"
	"fmt"
	"net/http"
)

// Cookie is the persisted form of a session cookie
type Cookie struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// SessionCookies returns the cookies the jar would send to the backend.
func (c *Client) SessionCookies() []Cookie {
	var out []Cookie
	for _, ck := range c.jar.Cookies(c.base) {
		out = append(out, Cookie{Name: ck.Name, Value: ck.Value})
	}
	return out
}

// SetSessionCookies loads previously exported cookies into the jar.
func (c *Client) SetSessionCookies(cookies []Cookie) {
	if len(cookies) == 0 {
		return
	}
	hc := make([]*http.Cookie, 0, len(cookies))
	for _, ck := range cookies {
		hc = append(hc, &http.Cookie{Name: ck.Name, Value: ck.Value, Path: "/"})
	}
	c.jar.SetCookies(c.base, hc)
}

// ClearCookies expires every cookie the client would send to the backend.
func (c *Client) ClearCookies() {
	current := c.jar.Cookies(c.base)
	if len(current) == 0 {
		return
	}
	expired := make([]*http.Cookie, 0, len(current))
	for _, ck := range current {
		expired = append(expired, &http.Cookie{Name: ck.Name, Value: "", Path: "/", MaxAge: -1})
	}
	c.jar.SetCookies(c.base, expired)
}

// EncodeCookies serializes cookies for storage in the OS keyring.
func EncodeCookies(cookies []Cookie) (string, error) {
	data, err := json.Marshal(cookies)
	if err != nil {
		return "", fmt.Errorf("failed to encode cookies: %w", err)
	}
	return string(data), nil
}

// DecodeCookies parses the output of EncodeCookies.
func DecodeCookies(s string) ([]Cookie, error) {
	var cookies []Cookie
	if err := json.Unmarshal([]byte(s), &cookies); err != nil {
		return nil, fmt.Errorf("failed to decode cookies: %w", err)
	}
	return cookies, nil
}
