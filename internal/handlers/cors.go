package handlers

import (
	"net/http"
	"net/url"
)

// OriginPolicy decides the Access-Control-Allow-Origin value of a response.
//
// An allowed origin is echoed back. Any other origin gets the production origin instead, so the
// response is still sent but the browser refuses to hand it to the page.
type OriginPolicy struct {
	allowedOrigin  string
	allowLocalhost bool
}

const (
	corsAllowMethods = "POST, OPTIONS"
	corsAllowHeaders = "Content-Type"
)

// NewOriginPolicy creates a policy allowing allowedOrigin and, if allowLocalhost is set, local
// development origins such as http://localhost:5173.
func NewOriginPolicy(allowedOrigin string, allowLocalhost bool) OriginPolicy {
	return OriginPolicy{
		allowedOrigin:  allowedOrigin,
		allowLocalhost: allowLocalhost,
	}
}

// Allowed reports whether origin may read responses.
func (p OriginPolicy) Allowed(origin string) bool {
	if origin == "" {
		return false
	}
	if origin == p.allowedOrigin {
		return true
	}
	return p.allowLocalhost && isLocalOrigin(origin)
}

// AllowOrigin returns the Access-Control-Allow-Origin value for a request from origin.
func (p OriginPolicy) AllowOrigin(origin string) string {
	if p.Allowed(origin) {
		return origin
	}
	return p.allowedOrigin
}

func (p OriginPolicy) apply(h http.Header, origin string) {
	h.Set("Access-Control-Allow-Origin", p.AllowOrigin(origin))
	h.Set("Access-Control-Allow-Methods", corsAllowMethods)
	h.Set("Access-Control-Allow-Headers", corsAllowHeaders)
	h.Add("Vary", "Origin")
}

// isLocalOrigin matches http(s) origins on localhost, 127.0.0.1 or [::1], with or without a port.
func isLocalOrigin(origin string) bool {
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	if u.User != nil || (u.Path != "" && u.Path != "/") || u.RawQuery != "" || u.Fragment != "" {
		return false
	}

	switch u.Hostname() {
	case "localhost", "127.0.0.1", "::1":
		return true
	}
	return false
}
