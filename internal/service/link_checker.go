package service

import (
	"context"
	"errors"
	"log/slog"
	"net"
	"net/url"
	"strings"
	"time"

	"boatlog/internal/middleware"
	"boatlog/internal/models"

	"github.com/gofiber/fiber/v2"
)

const linkCheckTimeout = 5 * time.Second

// LinkStatus is the outcome of probing an outbound URL.
type LinkStatus struct {
	URL       string `json:"url"`
	Reachable bool   `json:"reachable"`
	Status    int    `json:"status"`
}

var errNonPublicAddress = errors.New("address is not public")

// LinkChecker probes URLs pasted into posts with a HEAD request. Only public addresses are
// contacted; the check is repeated at dial time so a host cannot re-resolve to a private one.
type LinkChecker struct {
	timeout  time.Duration
	resolver *net.Resolver
	// allowPrivate turns off the public-address guard.
	allowPrivate bool
}

func NewLinkChecker() *LinkChecker {
	return &LinkChecker{timeout: linkCheckTimeout, resolver: net.DefaultResolver}
}

// CheckURL reports whether raw answers a HEAD request with a non-5xx status within the timeout.
func (l *LinkChecker) CheckURL(ctx context.Context, raw string) (*LinkStatus, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return nil, models.NewValidationError("url is required")
	}
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, models.NewValidationError("url must be an absolute http or https URL")
	}

	status := &LinkStatus{URL: u.String()}

	if _, err := l.resolvePublic(ctx, u.Hostname()); err != nil {
		if errors.Is(err, errNonPublicAddress) {
			return nil, models.NewValidationError("url must point to a public host")
		}
		middleware.Logger.DebugContext(ctx, "link check lookup failed",
			slog.String("url", status.URL),
			slog.String("error", err.Error()),
		)
		return status, nil
	}

	agent := fiber.Head(status.URL).Timeout(l.timeout)
	if err := agent.Parse(); err != nil {
		middleware.Logger.DebugContext(ctx, "link check parse failed", slog.String("error", err.Error()))
		return status, nil
	}
	agent.HostClient.Dial = l.dial
	code, _, errs := agent.Bytes()
	if len(errs) > 0 {
		middleware.Logger.DebugContext(ctx, "link check failed",
			slog.String("url", status.URL),
			slog.String("error", errs[0].Error()),
		)
		return status, nil
	}

	status.Status = code
	status.Reachable = code > 0 && code < fiber.StatusInternalServerError
	return status, nil
}

// dial connects to the first public address of addr's host.
func (l *LinkChecker) dial(addr string) (net.Conn, error) {
	host, port, err := net.SplitHostPort(addr)
	if err != nil {
		return nil, err
	}
	ctx, cancel := context.WithTimeout(context.Background(), l.timeout)
	defer cancel()

	ips, err := l.resolvePublic(ctx, host)
	if err != nil {
		return nil, err
	}
	d := net.Dialer{Timeout: l.timeout}
	return d.DialContext(ctx, "tcp", net.JoinHostPort(ips[0].String(), port))
}

// resolvePublic resolves host and fails with errNonPublicAddress if any address is internal.
func (l *LinkChecker) resolvePublic(ctx context.Context, host string) ([]net.IP, error) {
	var ips []net.IP
	if ip := net.ParseIP(host); ip != nil {
		ips = []net.IP{ip}
	} else {
		addrs, err := l.resolver.LookupIPAddr(ctx, host)
		if err != nil {
			return nil, err
		}
		for _, a := range addrs {
			ips = append(ips, a.IP)
		}
	}
	if len(ips) == 0 {
		return nil, &net.DNSError{Err: "no addresses", Name: host, IsNotFound: true}
	}
	if l.allowPrivate {
		return ips, nil
	}
	for _, ip := range ips {
		if !isPublicIP(ip) {
			return nil, errNonPublicAddress
		}
	}
	return ips, nil
}

func isPublicIP(ip net.IP) bool {
	return !(ip.IsLoopback() ||
		ip.IsPrivate() ||
		ip.IsUnspecified() ||
		ip.IsLinkLocalUnicast() ||
		ip.IsLinkLocalMulticast() ||
		ip.IsInterfaceLocalMulticast() ||
		ip.IsMulticast())
}
