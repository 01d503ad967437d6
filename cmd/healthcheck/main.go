// Command healthcheck probes the local server for container health
// checks. It hits /healthz by default, or /ready when HEALTHCHECK_READY
// is set, and exits non-zero on any failure.
package main

import (
	"fmt"
	"net/http"
	"os"
	"time"
)

func main() {
	port := os.Getenv("PORT")
	if port == "" {
		port = "10000"
	}

	path := "/healthz"
	if os.Getenv("HEALTHCHECK_READY") != "" {
		path = "/ready"
	}

	client := &http.Client{Timeout: 8 * time.Second}
	resp, err := client.Get(fmt.Sprintf("http://localhost:%s%s", port, path))
	if err != nil {
		os.Exit(1)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		os.Exit(1)
	}
}
