package utils

import (
	"net"
	"strings"
)

// IsLoopback reports whether ip is a loopback address such as 127.0.0.1 or ::1
func IsLoopback(ip string) bool {
	parsed := net.ParseIP(strings.TrimSpace(ip))
	return parsed != nil && parsed.IsLoopback()
}

// FirstForwardedFor returns the first address of an X-Forwarded-For value
func FirstForwardedFor(header string) string {
	first, _, _ := strings.Cut(header, ",")
	return strings.TrimSpace(first)
}
