package security

import (
	"fmt"
	"net"
	"net/http"
	"strings"
	"sync/atomic"

	"github.com/gin-gonic/gin"

	"budget/internal/log"
)

// maxURLLength bounds the request target.
const maxURLLength = 2048

var (
	// attackPatterns are fragments that never occur in a legitimate budget
	// API path or query.
	attackPatterns = []string{
		"../", "..\\", ".env", "wp-admin", "phpmyadmin",
		"admin.php", "config.php", ".git", ".ssh",
		"eval(", "javascript:", "<script", "union select",
		"etc/passwd", "cmd.exe",
	}

	scannerAgents = []string{
		"sqlmap", "nmap", "nikto", "gobuster", "dirb",
		"masscan", "zgrab", "scanner",
	}

	blockedMethods = map[string]bool{
		"TRACE": true, "TRACK": true, "DEBUG": true, "CONNECT": true,
	}
)

// DetectionMetrics tracks security detection events
type DetectionMetrics struct {
	SuspiciousRequests int64
	// InvalidIPAttempts counts forwarded headers from trusted proxies that
	// did not hold a valid IP.
	InvalidIPAttempts int64
}

// Detector flags hostile requests and resolves client addresses.
type Detector struct {
	metrics        *DetectionMetrics
	trustedProxies []*net.IPNet
}

// NewDetector creates a detector trusting loopback and private networks as
// proxies.
func NewDetector() *Detector {
	d := &Detector{metrics: &DetectionMetrics{}}
	for _, cidr := range []string{"127.0.0.0/8", "10.0.0.0/8", "172.16.0.0/12", "192.168.0.0/16"} {
		if err := d.AddTrustedProxy(cidr); err != nil {
			panic(err)
		}
	}
	return d
}

// inspect returns why r is suspicious, or "" when it is not.
func (d *Detector) inspect(r *http.Request) string {
	reason := suspicionReason(r)
	if reason != "" {
		atomic.AddInt64(&d.metrics.SuspiciousRequests, 1)
	}
	return reason
}

func suspicionReason(r *http.Request) string {
	if blockedMethods[r.Method] {
		return "method"
	}
	if len(r.URL.String()) > maxURLLength {
		return "url_length"
	}
	if containsAny(strings.ToLower(r.URL.Path), attackPatterns) {
		return "path"
	}
	if containsAny(strings.ToLower(r.URL.RawQuery), attackPatterns) {
		return "query"
	}
	if containsAny(strings.ToLower(r.Header.Get("User-Agent")), scannerAgents) {
		return "user_agent"
	}
	if strings.Count(r.Header.Get("X-Forwarded-For"), ",") > 5 {
		return "proxy_chain"
	}
	return ""
}

func containsAny(s string, patterns []string) bool {
	for _, p := range patterns {
		if strings.Contains(s, p) {
			return true
		}
	}
	return false
}

// ExtractClientIP returns the peer address, or the first forwarded address
// when the peer is a trusted proxy.
func (d *Detector) ExtractClientIP(r *http.Request) string {
	peer, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		peer = r.RemoteAddr
	}

	peerIP := net.ParseIP(peer)
	if peerIP == nil || !d.isTrustedProxy(peerIP) {
		return peer
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		first = strings.TrimSpace(first)
		if net.ParseIP(first) != nil {
			return first
		}
		atomic.AddInt64(&d.metrics.InvalidIPAttempts, 1)
	}

	if xri := strings.TrimSpace(r.Header.Get("X-Real-IP")); xri != "" {
		if net.ParseIP(xri) != nil {
			return xri
		}
		atomic.AddInt64(&d.metrics.InvalidIPAttempts, 1)
	}

	return peer
}

func (d *Detector) isTrustedProxy(ip net.IP) bool {
	for _, network := range d.trustedProxies {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}

// GetMetrics returns current security metrics
func (d *Detector) GetMetrics() DetectionMetrics {
	return DetectionMetrics{
		SuspiciousRequests: atomic.LoadInt64(&d.metrics.SuspiciousRequests),
		InvalidIPAttempts:  atomic.LoadInt64(&d.metrics.InvalidIPAttempts),
	}
}

// AddTrustedProxy adds a trusted proxy network. Not safe to call while
// requests are being served.
func (d *Detector) AddTrustedProxy(cidr string) error {
	_, network, err := net.ParseCIDR(cidr)
	if err != nil {
		return fmt.Errorf("invalid CIDR %s: %w", cidr, err)
	}

	d.trustedProxies = append(d.trustedProxies, network)
	return nil
}

// Middleware rejects suspicious requests with 400 and logs the reason.
func (d *Detector) Middleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		if reason := d.inspect(c.Request); reason != "" {
			ctx := c.Request.Context()
			log.FromContext(ctx).WithComponent(log.ComponentSecurity).WarnContext(ctx, "Suspicious request blocked",
				log.FieldClientIP, d.ExtractClientIP(c.Request),
				log.FieldMethod, c.Request.Method,
				log.FieldPath, c.Request.URL.Path,
				"reason", reason)
			c.AbortWithStatusJSON(http.StatusBadRequest, gin.H{"error": "bad request"})
			return
		}
		c.Next()
	}
}

// ClientKey returns the validated client IP of the request behind c, for use
// as a rate limit key.
func (d *Detector) ClientKey(c *gin.Context) string {
	return d.ExtractClientIP(c.Request)
}
