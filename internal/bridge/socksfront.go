package bridge

import (
	"context"
	"fmt"
	"net"
	"strconv"
	"strings"

	"github.com/AdguardTeam/golibs/log"
)

// SOCKS5 reply codes used by the front-end, per spec.md §4.C step 4.
var (
	socksReplySuccess = []byte{0x05, 0x00, 0x00, 0x01, 0, 0, 0, 0, 0, 0}
	socksReplyFailure = []byte{0x05, 0x01, 0x00, 0x01, 0, 0, 0, 0, 0, 0}
)

// serveSOCKSConn speaks just enough SOCKS5 to accept a CONNECT request,
// then re-expresses it as an HTTP CONNECT against the local HTTP proxy,
// matching handle_socks_bridge_connection.
func (b *Bridge) serveSOCKSConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	if err := b.socksHandshake(conn); err != nil {
		log.Debug("socks front: handshake: %s", err)
		return
	}

	target, err := b.socksReadRequest(conn)
	if err != nil {
		log.Debug("socks front: request: %s", err)
		return
	}

	httpProxyAddr := net.JoinHostPort("127.0.0.1", strconv.Itoa(b.HTTPPort))
	upstream, err := net.Dial("tcp", httpProxyAddr)
	if err != nil {
		log.Error("socks front: dialing local HTTP proxy: %s", err)
		conn.Write(socksReplyFailure)
		return
	}
	defer upstream.Close()

	connectReq := fmt.Sprintf("CONNECT %s HTTP/1.1\r\nHost: %s\r\nProxy-Connection: Keep-Alive\r\n\r\n", target, target)
	if _, err := upstream.Write([]byte(connectReq)); err != nil {
		conn.Write(socksReplyFailure)
		return
	}

	buf := make([]byte, 1024)
	n, err := upstream.Read(buf)
	if err != nil {
		conn.Write(socksReplyFailure)
		return
	}
	response := string(buf[:n])

	if !strings.Contains(response, "200 Connection established") && !strings.Contains(response, "HTTP/1.1 200") {
		log.Error("socks front: local HTTP proxy rejected %s: %s", target, firstLine(response))
		conn.Write(socksReplyFailure)
		return
	}

	if _, err := conn.Write(socksReplySuccess); err != nil {
		return
	}

	splice(ctx, conn, upstream, &b.counters)
}

func (b *Bridge) socksHandshake(conn net.Conn) error {
	buf := make([]byte, 262)
	n, err := conn.Read(buf)
	if err != nil {
		return err
	}
	if n < 2 || buf[0] != 0x05 {
		return fmt.Errorf("invalid SOCKS5 greeting")
	}
	_, err = conn.Write([]byte{0x05, 0x00})
	return err
}

func (b *Bridge) socksReadRequest(conn net.Conn) (string, error) {
	buf := make([]byte, 262)
	n, err := conn.Read(buf)
	if err != nil {
		return "", err
	}
	if n < 7 || buf[0] != 0x05 || buf[1] != 0x01 {
		return "", fmt.Errorf("invalid SOCKS5 connection request")
	}

	atyp := buf[3]
	var host string
	var portOffset int

	switch atyp {
	case 0x01: // IPv4
		if n < 10 {
			return "", fmt.Errorf("truncated IPv4 request")
		}
		host = net.IPv4(buf[4], buf[5], buf[6], buf[7]).String()
		portOffset = 8
	case 0x03: // domain
		length := int(buf[4])
		if n < 5+length+2 {
			return "", fmt.Errorf("truncated domain request")
		}
		host = string(buf[5 : 5+length])
		portOffset = 5 + length
	default:
		return "", fmt.Errorf("unsupported SOCKS5 address type %d", atyp)
	}

	port := int(buf[portOffset])<<8 | int(buf[portOffset+1])
	return net.JoinHostPort(host, strconv.Itoa(port)), nil
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
