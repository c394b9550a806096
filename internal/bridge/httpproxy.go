package bridge

import (
	"bufio"
	"context"
	"io"
	"net"
	"net/http"
	"strconv"

	"github.com/AdguardTeam/golibs/log"
	"golang.org/x/net/proxy"
)

const copyBufSize = 8192

// serveHTTPConn parses one HTTP/1.1 request off conn and either upgrades it
// to a CONNECT tunnel or proxies it as a single non-CONNECT request,
// matching proxy_service.rs's handle_connection/handle_request split.
func (b *Bridge) serveHTTPConn(ctx context.Context, conn net.Conn) {
	defer conn.Close()

	reader := bufio.NewReader(conn)
	req, err := http.ReadRequest(reader)
	if err != nil {
		if err != io.EOF {
			log.Debug("http proxy: reading request: %s", err)
		}
		return
	}

	if req.Method == http.MethodConnect {
		b.handleConnect(ctx, conn, req)
		return
	}
	b.handleForward(conn, req)
}

func (b *Bridge) dialUpstream(targetAddr string) (net.Conn, error) {
	username, password := b.Auth()
	if username == "" {
		username, password = "anonymous", "anonymous"
	}

	upstreamAddr := net.JoinHostPort("127.0.0.1", strconv.Itoa(b.UpstreamPort))
	dialer, err := proxy.SOCKS5("tcp", upstreamAddr, &proxy.Auth{User: username, Password: password}, proxy.Direct)
	if err != nil {
		return nil, err
	}
	return dialer.Dial("tcp", targetAddr)
}

// handleConnect replies 200 Connection established, dials the SOCKS5
// upstream for host:port, and splices bytes bidirectionally.
func (b *Bridge) handleConnect(ctx context.Context, client net.Conn, req *http.Request) {
	targetAddr := hostPortOrDefault(req.Host, 443)

	upstream, err := b.dialUpstream(targetAddr)
	if err != nil {
		log.Error("http proxy: CONNECT %s: %s", targetAddr, err)
		client.Write([]byte("HTTP/1.1 502 Bad Gateway\r\n\r\n"))
		return
	}
	defer upstream.Close()

	if _, err := client.Write([]byte("HTTP/1.1 200 Connection established\r\n\r\n")); err != nil {
		return
	}

	splice(ctx, client, upstream, &b.counters)
}

// handleForward tunnels one non-CONNECT request over a fresh SOCKS5-wrapped
// stream to the resolved host/port, matching handle_http_request.
func (b *Bridge) handleForward(client net.Conn, req *http.Request) {
	defaultPort := 80
	if req.URL.Scheme == "https" {
		defaultPort = 443
	}
	host := req.URL.Host
	if host == "" {
		host = req.Host
	}
	targetAddr := hostPortOrDefault(host, defaultPort)

	upstream, err := b.dialUpstream(targetAddr)
	if err != nil {
		log.Error("http proxy: forward %s: %s", targetAddr, err)
		writeSimpleResponse(client, 502, "Bad Gateway")
		return
	}
	defer upstream.Close()

	req.RequestURI = ""
	if err := req.Write(upstream); err != nil {
		log.Debug("http proxy: writing request upstream: %s", err)
		return
	}

	resp, err := http.ReadResponse(bufio.NewReader(upstream), req)
	if err != nil {
		log.Debug("http proxy: reading upstream response: %s", err)
		writeSimpleResponse(client, 502, "Bad Gateway")
		return
	}
	defer resp.Body.Close()

	counted := countingReader{r: resp.Body, counter: &b.counters}
	resp.Body = io.NopCloser(&counted)
	_ = resp.Write(client)
}

func writeSimpleResponse(w io.Writer, code int, status string) {
	resp := &http.Response{
		StatusCode: code,
		Status:     status,
		Proto:      "HTTP/1.1",
		ProtoMajor: 1,
		ProtoMinor: 1,
		Header:     http.Header{},
		Body:       http.NoBody,
	}
	_ = resp.Write(w)
}

func hostPortOrDefault(hostport string, defaultPort int) string {
	if hostport == "" {
		return ""
	}
	if _, _, err := net.SplitHostPort(hostport); err == nil {
		return hostport
	}
	return net.JoinHostPort(hostport, strconv.Itoa(defaultPort))
}

// splice copies bytes in both directions until either half closes,
// counting uplink/downlink into counters. Half-close: each direction
// shuts down only its own write side on EOF, per spec.md §5.
func splice(ctx context.Context, client, upstream net.Conn, counters *Counters) {
	done := make(chan struct{}, 2)

	go func() {
		copyCounting(upstream, client, counters.addUp)
		closeWrite(upstream)
		done <- struct{}{}
	}()
	go func() {
		copyCounting(client, upstream, counters.addDown)
		closeWrite(client)
		done <- struct{}{}
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}
	<-done
}

func copyCounting(dst io.Writer, src io.Reader, count func(uint64)) {
	buf := make([]byte, copyBufSize)
	for {
		n, err := src.Read(buf)
		if n > 0 {
			count(uint64(n))
			if _, werr := dst.Write(buf[:n]); werr != nil {
				return
			}
		}
		if err != nil {
			return
		}
	}
}

type halfCloser interface {
	CloseWrite() error
}

func closeWrite(conn net.Conn) {
	if hc, ok := conn.(halfCloser); ok {
		_ = hc.CloseWrite()
		return
	}
	_ = conn.Close()
}

type countingReader struct {
	r       io.Reader
	counter *Counters
}

func (c *countingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	if n > 0 {
		c.counter.addDown(uint64(n))
	}
	return n, err
}

