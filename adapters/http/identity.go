package http

import (
	"net"
	"net/http"

	"github.com/seancfoley/ipaddress-go/ipaddr"
)

// clientIP returns the canonical form of the request's remote IP.
// RemoteAddr is expected to have been rewritten by middleware.RealIP.
func clientIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return canonicalIP(host)
}

func canonicalIP(host string) string {
	addr, err := ipaddr.NewIPAddressString(host).ToAddress()
	if err != nil || addr == nil {
		return host
	}
	return addr.ToCanonicalString()
}
