// Command demoserver runs a local fixture server for exercising the client:
// redirect chains, HTML/JSON/plain pages, a slow endpoint and a canned search
// payload.
//
// Usage:
//
//	go run ./cmd/demoserver -port 8080
//	yomu -url localhost:8080/redirect/3 -trace
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
)

const indexHTML = `<!DOCTYPE html>
<html>
<head><title>yomu demo</title>
<style>body { font-family: monospace }</style>
</head>
<body>
<h1>yomu demo server</h1>
<ul>
<li><a href="/html">HTML page with style and script blocks</a></li>
<li><a href="/json">JSON document</a></li>
<li><a href="/plain">Plain text</a></li>
<li><a href="/redirect/3">Three-hop redirect chain</a></li>
<li><a href="/relative">Relative redirect</a></li>
<li><a href="/loop">Redirect loop (hop budget demo)</a></li>
<li><a href="/slow?ms=2000">Slow response (timeout demo)</a></li>
</ul>
</body>
</html>`

const samplePage = `<!DOCTYPE html>
<html>
<head>
<title>Sample</title>
<style>
body { color: #222; background: #fff }
.hidden { display: none }
</style>
<script>
console.log("this text must never reach the terminal");
</script>
</head>
<body>
<h1>Sample page</h1>
<p>Paragraph one with <b>bold</b> and <i>italic</i> text.</p>
<p>Paragraph   two   with   ragged   whitespace.</p>
</body>
</html>`

func main() {
	port := flag.Int("port", 8080, "Port to listen on")
	flag.Parse()

	r := chi.NewRouter()

	r.Get("/", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, indexHTML)
	})

	r.Get("/html", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, samplePage)
	})

	r.Get("/plain", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain")
		fmt.Fprintln(w, "plain text fixture")
	})

	r.Get("/json", func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"name":    "yomu demo",
			"numbers": []int{1, 2, 3},
			"nested":  map[string]string{"key": "value"},
		})
	})

	// /redirect/{n} bounces down to /redirect/0, which answers 200.
	r.Get("/redirect/{n}", func(w http.ResponseWriter, req *http.Request) {
		n, err := strconv.Atoi(chi.URLParam(req, "n"))
		if err != nil || n < 0 {
			http.Error(w, "bad hop count", http.StatusBadRequest)
			return
		}
		if n == 0 {
			w.Header().Set("Content-Type", "text/plain")
			fmt.Fprintln(w, "end of the chain")
			return
		}
		http.Redirect(w, req, fmt.Sprintf("/redirect/%d", n-1), http.StatusFound)
	})

	r.Get("/relative", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Location", "/html")
		w.WriteHeader(http.StatusFound)
	})

	r.Get("/loop", func(w http.ResponseWriter, req *http.Request) {
		http.Redirect(w, req, "/loop", http.StatusFound)
	})

	r.Get("/slow", func(w http.ResponseWriter, req *http.Request) {
		ms, _ := strconv.Atoi(req.URL.Query().Get("ms"))
		time.Sleep(time.Duration(ms) * time.Millisecond)
		fmt.Fprintln(w, "finally")
	})

	// Instant-answer-shaped payload for pointing the search resolver at
	// localhost.
	r.Get("/search", func(w http.ResponseWriter, req *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"RelatedTopics": []map[string]any{
				{"Text": "First topic - a canned result", "FirstURL": "https://example.com/first"},
				{"Text": "Second topic - another canned result", "FirstURL": "https://example.com/second"},
			},
		})
	})

	addr := fmt.Sprintf(":%d", *port)
	fmt.Printf("Demo server starting on http://localhost%s\n", addr)
	if err := http.ListenAndServe(addr, r); err != nil {
		fmt.Println(err)
	}
}
