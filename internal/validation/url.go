package validation

import (
	"fmt"
	"net"
	"net/url"
	"strings"
)

// URLValidator checks URLs handed to the HTTP client or to the external
// opener.
type URLValidator struct {
	// AllowLocalhost determines if loopback hosts are permitted
	AllowLocalhost bool
	// AllowPrivateIPs determines if private IP addresses are permitted
	AllowPrivateIPs bool
	// MaxLength is the maximum allowed URL length
	MaxLength int
}

// NewAPIURLValidator accepts self-hosted knowledge bases on loopback or
// private addresses.
func NewAPIURLValidator() *URLValidator {
	return &URLValidator{
		AllowLocalhost:  true,
		AllowPrivateIPs: true,
		MaxLength:       2048,
	}
}

// NewLinkValidator is used for links taken from article content before
// they are opened. Loopback and private targets are refused.
func NewLinkValidator() *URLValidator {
	return &URLValidator{
		AllowLocalhost:  false,
		AllowPrivateIPs: false,
		MaxLength:       2048,
	}
}

// ValidateBaseURL validates an API base URL and returns it without a
// trailing slash. A missing scheme defaults to https.
func (v *URLValidator) ValidateBaseURL(input string) (string, error) {
	input = strings.TrimSpace(input)
	if input != "" && !strings.Contains(input, "://") {
		input = "https://" + input
	}

	u, err := v.parse(input)
	if err != nil {
		return "", err
	}
	if u.User != nil {
		return "", fmt.Errorf("base URL must not carry credentials")
	}
	if u.RawQuery != "" || u.Fragment != "" {
		return "", fmt.Errorf("base URL must not have a query or fragment")
	}

	return strings.TrimRight(u.String(), "/"), nil
}

// ValidateLink validates a link before it is opened. Only absolute http and
// https links pass.
func (v *URLValidator) ValidateLink(input string) (string, error) {
	u, err := v.parse(strings.TrimSpace(input))
	if err != nil {
		return "", err
	}
	return u.String(), nil
}

func (v *URLValidator) parse(input string) (*url.URL, error) {
	if input == "" {
		return nil, fmt.Errorf("URL cannot be empty")
	}
	if v.MaxLength > 0 && len(input) > v.MaxLength {
		return nil, fmt.Errorf("URL too long (max %d characters)", v.MaxLength)
	}
	if strings.ContainsAny(input, "<>\"'` \t\n") {
		return nil, fmt.Errorf("URL contains invalid characters")
	}

	u, err := url.Parse(input)
	if err != nil {
		return nil, fmt.Errorf("invalid URL format: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("URL must use http or https protocol")
	}
	if u.Hostname() == "" {
		return nil, fmt.Errorf("URL must have a valid hostname")
	}
	if err := v.validateHost(u.Hostname()); err != nil {
		return nil, err
	}
	if strings.Contains(u.Path, "/../") || strings.HasSuffix(u.Path, "/..") {
		return nil, fmt.Errorf("directory traversal patterns not allowed in URL path")
	}
	return u, nil
}

func (v *URLValidator) validateHost(hostname string) error {
	if hostname == "0.0.0.0" || hostname == "255.255.255.255" || hostname == "::" {
		return fmt.Errorf("unroutable address %s", hostname)
	}
	if !v.AllowLocalhost && isLocalhost(hostname) {
		return fmt.Errorf("localhost URLs are not permitted")
	}
	if !v.AllowPrivateIPs {
		if ip := net.ParseIP(hostname); ip != nil && isPrivateIP(ip) {
			return fmt.Errorf("private IP addresses are not permitted")
		}
	}
	return nil
}

func isLocalhost(hostname string) bool {
	hostname = strings.ToLower(hostname)
	if hostname == "localhost" || strings.HasSuffix(hostname, ".localhost") {
		return true
	}
	ip := net.ParseIP(hostname)
	return ip != nil && ip.IsLoopback()
}

func isPrivateIP(ip net.IP) bool {
	return ip.IsPrivate() || ip.IsLoopback() || ip.IsLinkLocalUnicast()
}
