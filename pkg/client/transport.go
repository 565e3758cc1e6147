package client

import (
	"crypto/tls"
	"net"
	"net/http"
	"time"

	"golang.org/x/net/http2"
)

// TransportConfig defines limits of the HTTP transport.
type TransportConfig struct {
	// DialTimeout is maximum connection initialization time.
	DialTimeout time.Duration
	// KeepAlive is interval between keep-alive probes.
	KeepAlive time.Duration
	// TLSHandshakeTimeout is timeout of TLS handshake.
	TLSHandshakeTimeout time.Duration
	// ResponseHeaderTimeout is amount of time to wait for a server's response headers.
	ResponseHeaderTimeout time.Duration
	// MaxConnectionsPerHost is maximum number of open connections to a host.
	MaxConnectionsPerHost int
	// HTTP2PingTimeout is used by HTTP2Transport for health checks of idle connections.
	HTTP2PingTimeout time.Duration
}

// DefaultTransportConfig returns reasonable limits for API calls.
func DefaultTransportConfig() TransportConfig {
	return TransportConfig{
		DialTimeout:           3 * time.Second,
		KeepAlive:             10 * time.Second,
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: 20 * time.Second,
		MaxConnectionsPerHost: 32,
		HTTP2PingTimeout:      3 * time.Second,
	}
}

// DefaultTransport returns the HTTP transport with the DefaultTransportConfig.
func DefaultTransport() http.RoundTripper {
	return NewTransport(DefaultTransportConfig())
}

// NewTransport returns the HTTP transport, HTTP2 is preferred if the server supports it.
func NewTransport(cfg TransportConfig) *http.Transport {
	return &http.Transport{
		Proxy:                 http.ProxyFromEnvironment,
		DialContext:           cfg.dialer().DialContext,
		ForceAttemptHTTP2:     true,
		TLSHandshakeTimeout:   cfg.TLSHandshakeTimeout,
		ResponseHeaderTimeout: cfg.ResponseHeaderTimeout,
		MaxConnsPerHost:       cfg.MaxConnectionsPerHost,
		MaxIdleConnsPerHost:   cfg.MaxConnectionsPerHost,
	}
}

// HTTP2Transport forces HTTP2 protocol, without the upgrade from HTTP1.
func HTTP2Transport(cfg TransportConfig) *http2.Transport {
	dialer := cfg.dialer()
	return &http2.Transport{
		DialTLS: func(network, addr string, tlsCfg *tls.Config) (net.Conn, error) {
			return tls.DialWithDialer(dialer, network, addr, tlsCfg)
		},
		ReadIdleTimeout:  cfg.HTTP2PingTimeout,
		PingTimeout:      cfg.HTTP2PingTimeout,
		WriteByteTimeout: cfg.HTTP2PingTimeout,
	}
}

func (cfg TransportConfig) dialer() *net.Dialer {
	return &net.Dialer{Timeout: cfg.DialTimeout, KeepAlive: cfg.KeepAlive}
}
