// Command healthcheck queries the running server's health endpoint. It exits 0
// only when the endpoint answers 200 with status "ok".
package main

import (
	"context"
	"encoding/json"
	"io"
	"net"
	"net/http"
	"net/url"
	"os"
	"time"
)

const (
	defaultAddr = "127.0.0.1:8080"
	healthPath  = "/api/v1/health"
)

func main() {
	os.Exit(run(os.Getenv("AUTHORSITE_LISTEN_ADDR")))
}

func run(listenAddr string) int {
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	if err := checkHealth(ctx, http.DefaultClient, healthURL(listenAddr)); err != nil {
		return 1
	}
	return 0
}

type healthBody struct {
	Status string `json:"status"`
}

type healthError string

func (e healthError) Error() string { return string(e) }

func checkHealth(ctx context.Context, client *http.Client, target string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, target, nil)
	if err != nil {
		return err
	}

	resp, err := client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return healthError("unhealthy: " + resp.Status)
	}

	var body healthBody
	if err := json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&body); err != nil {
		return err
	}
	if body.Status != "ok" {
		return healthError("unhealthy: status " + body.Status)
	}
	return nil
}

// healthURL targets loopback when the server binds every interface, since
// the check runs inside the same container.
func healthURL(listenAddr string) string {
	host, port, err := net.SplitHostPort(listenAddr)
	if listenAddr == "" || err != nil {
		host, port, _ = net.SplitHostPort(defaultAddr)
	}
	if host == "" || host == "0.0.0.0" || host == "::" {
		host = "127.0.0.1"
	}
	u := url.URL{Scheme: "http", Host: net.JoinHostPort(host, port), Path: healthPath}
	return u.String()
}
