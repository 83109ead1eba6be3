package security

import (
	"fmt"

	"github.com/gin-gonic/gin"
)

// HeadersConfig holds security headers configuration
type HeadersConfig struct {
	// Content Security Policy
	CSP string

	// HSTS settings
	HSTSMaxAge            int
	HSTSIncludeSubdomains bool
	HSTSPreload           bool

	// Additional security headers
	XFrameOptions       string
	XContentTypeOptions string
	ReferrerPolicy      string
	PermissionsPolicy   string
	CrossOriginOpener   string
	CrossOriginResource string
	CacheControl        string
}

// DefaultHeadersConfig returns secure defaults for a JSON API. Responses are
// never rendered as documents, so the CSP denies everything.
func DefaultHeadersConfig() HeadersConfig {
	return HeadersConfig{
		CSP: "default-src 'none'; frame-ancestors 'none'",

		HSTSMaxAge:            31536000, // 1 year
		HSTSIncludeSubdomains: true,

		XFrameOptions:       "DENY",
		XContentTypeOptions: "nosniff",
		ReferrerPolicy:      "no-referrer",
		PermissionsPolicy:   "geolocation=(), microphone=(), camera=(), payment=()",
		CrossOriginOpener:   "same-origin",
		CrossOriginResource: "cross-origin",
		CacheControl:        "no-store",
	}
}

// Headers returns gin middleware applying cfg to every response
func Headers(cfg HeadersConfig) gin.HandlerFunc {
	hsts := ""
	if cfg.HSTSMaxAge > 0 {
		hsts = fmt.Sprintf("max-age=%d", cfg.HSTSMaxAge)
		if cfg.HSTSIncludeSubdomains {
			hsts += "; includeSubDomains"
		}
		if cfg.HSTSPreload {
			hsts += "; preload"
		}
	}

	return func(c *gin.Context) {
		h := c.Writer.Header()
		setIf := func(key, value string) {
			if value != "" {
				h.Set(key, value)
			}
		}

		setIf("X-Content-Type-Options", cfg.XContentTypeOptions)
		setIf("X-Frame-Options", cfg.XFrameOptions)
		setIf("Content-Security-Policy", cfg.CSP)
		setIf("Referrer-Policy", cfg.ReferrerPolicy)
		setIf("Permissions-Policy", cfg.PermissionsPolicy)
		setIf("Cross-Origin-Opener-Policy", cfg.CrossOriginOpener)
		setIf("Cross-Origin-Resource-Policy", cfg.CrossOriginResource)
		setIf("Cache-Control", cfg.CacheControl)

		// HSTS header (only for HTTPS)
		if c.Request.TLS != nil && hsts != "" {
			h.Set("Strict-Transport-Security", hsts)
		}

		c.Next()
	}
}
