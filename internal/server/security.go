package server

import (
	"crypto/tls"
	"fmt"
	"net"
)

// TLSListener terminates TLS for the HTTP and websocket traffic. The
// certificate pair is loaded at listen time so a bad path fails startup, not
// the first connection.
type TLSListener struct {
	certFileName       string
	privateKeyFileName string
}

// NewTLSListener creates a security layer backed by the given certificate
// and private key files.
func NewTLSListener(certFileName, privateKeyFileName string) *TLSListener {
	return &TLSListener{
		certFileName:       certFileName,
		privateKeyFileName: privateKeyFileName,
	}
}

// Listen opens a TLS listener on addr.
func (l *TLSListener) Listen(protocol, addr string) (net.Listener, error) {
	cert, err := tls.LoadX509KeyPair(l.certFileName, l.privateKeyFileName)
	if err != nil {
		return nil, fmt.Errorf("failed to load TLS certificate: %w", err)
	}

	return tls.Listen(protocol, addr, &tls.Config{
		Certificates: []tls.Certificate{cert},
		MinVersion:   tls.VersionTLS12,
	})
}

// PlainListener accepts unencrypted connections. Meant for local development
// and for deployments where TLS terminates at a proxy in front.
type PlainListener struct{}

// NewPlainListener creates a plain security layer.
func NewPlainListener() *PlainListener {
	return &PlainListener{}
}

// Listen opens an unencrypted listener on addr.
func (l *PlainListener) Listen(protocol, addr string) (net.Listener, error) {
	return net.Listen(protocol, addr)
}
