package security

import (
	"net"
	"net/http"
	"strings"
)

// pathPatterns are substrings that never appear in legitimate requests
// to this application: traversal attempts, credential files and common
// probe targets for other stacks.
var pathPatterns = []string{
	"../", "..\\", ".env", ".git", ".ssh",
	"wp-admin", "wp-login", "phpmyadmin", "admin.php", "config.php",
	"etc/passwd", "cmd.exe",
	"<script", "javascript:", "union select",
}

// scannerAgents covers vulnerability scanners. Plain HTTP clients
// (curl and friends) are left alone so the JSON endpoints stay usable.
var scannerAgents = []string{
	"sqlmap", "nmap", "nikto", "gobuster", "dirb", "masscan", "wpscan",
}

// Detector flags suspicious requests and resolves client addresses
// behind trusted proxies.
type Detector struct {
	trustedProxies []*net.IPNet
}

// NewDetector creates a detector trusting loopback and private-range
// proxies for forwarded-header resolution.
func NewDetector() *Detector {
	return &Detector{
		trustedProxies: mustCIDRs(
			"127.0.0.0/8",
			"10.0.0.0/8",
			"172.16.0.0/12",
			"192.168.0.0/16",
		),
	}
}

func mustCIDRs(cidrs ...string) []*net.IPNet {
	out := make([]*net.IPNet, 0, len(cidrs))
	for _, cidr := range cidrs {
		_, network, err := net.ParseCIDR(cidr)
		if err != nil {
			panic("invalid trusted proxy CIDR " + cidr)
		}
		out = append(out, network)
	}
	return out
}

// DetectSuspiciousRequest reports whether the request looks like a
// probe or injection attempt rather than normal application traffic.
func (d *Detector) DetectSuspiciousRequest(r *http.Request) bool {
	path := strings.ToLower(r.URL.Path)
	query := strings.ToLower(r.URL.RawQuery)
	for _, pattern := range pathPatterns {
		if strings.Contains(path, pattern) || strings.Contains(query, pattern) {
			return true
		}
	}

	agent := strings.ToLower(r.Header.Get("User-Agent"))
	for _, scanner := range scannerAgents {
		if strings.Contains(agent, scanner) {
			return true
		}
	}

	switch r.Method {
	case "TRACE", "TRACK", "CONNECT":
		return true
	}

	// Oversized URLs are a crude overflow / fuzzing signal.
	if len(r.URL.String()) > 2048 {
		return true
	}

	return false
}

// ExtractClientIP returns the real client address. Forwarded headers
// are only honored when the direct peer is a trusted proxy.
func (d *Detector) ExtractClientIP(r *http.Request) string {
	directIP, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		directIP = r.RemoteAddr
	}

	parsed := net.ParseIP(directIP)
	if parsed == nil || !d.isTrustedProxy(parsed) {
		return directIP
	}

	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		first := strings.TrimSpace(strings.Split(xff, ",")[0])
		if net.ParseIP(first) != nil {
			return first
		}
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		if net.ParseIP(xri) != nil {
			return xri
		}
	}

	return directIP
}

func (d *Detector) isTrustedProxy(ip net.IP) bool {
	for _, network := range d.trustedProxies {
		if network.Contains(ip) {
			return true
		}
	}
	return false
}
