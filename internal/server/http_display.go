package server

import (
	"fmt"
	"io"
	"os"
)

// endpoint describes one route for the startup banner
type endpoint struct {
	method, path, about string
	protected          bool
}

var endpoints = []endpoint{
	{"GET", "/health", "Health check and decoder state", false},
	{"GET", "/stats", "Server statistics", false},
	{"POST", "/parse", "Parse an uploaded resume (multipart field 'file')", true},
	{"POST", "/parse/text", `Parse plain resume text ({"text": "..."})`, true},
}

// displayServerInfo prints the startup banner to stdout
func (s *Server) displayServerInfo() {
	s.writeServerInfo(os.Stdout)
}

func (s *Server) writeServerInfo(w io.Writer) {
	authNote := ""
	if len(s.APIKeys) > 0 {
		authNote = " (API key)"
	}

	_, _ = fmt.Fprintln(w, "Available endpoints:")
	for _, e := range endpoints {
		note := ""
		if e.protected {
			note = authNote
		}
		_, _ = fmt.Fprintf(w, "  %-5s %-12s - %s%s\n", e.method, e.path, e.about, note)
	}

	if len(s.APIKeys) > 0 {
		_, _ = fmt.Fprintf(w, "API authentication: ENABLED (%d keys configured)\n", len(s.APIKeys))
	} else {
		_, _ = fmt.Fprintln(w, "API authentication: DISABLED (no API keys configured)")
		_, _ = fmt.Fprintln(w, "WARNING: /parse endpoints are publicly accessible!")
	}

	if s.MaxRequestSize > 0 {
		_, _ = fmt.Fprintf(w, "Upload size limit: %d bytes (%.1f MB)\n", s.MaxRequestSize, float64(s.MaxRequestSize)/(1024*1024))
	} else {
		_, _ = fmt.Fprintln(w, "Upload size limit: DISABLED")
	}

	if s.RateLimit == nil || !s.RateLimit.Enabled {
		_, _ = fmt.Fprintln(w, "Rate limiting: DISABLED")
		return
	}
	_, _ = fmt.Fprintf(w, "Rate limiting: ENABLED (%d requests/min, burst: %d)\n",
		s.RateLimit.RequestsPerMin, s.RateLimit.BurstCapacity)
	switch {
	case s.RateLimit.ByAPIKey && s.RateLimit.ByIP:
		_, _ = fmt.Fprintln(w, "  - keyed by API key, falling back to client IP")
	case s.RateLimit.ByAPIKey:
		_, _ = fmt.Fprintln(w, "  - keyed by API key")
	case s.RateLimit.ByIP:
		_, _ = fmt.Fprintln(w, "  - keyed by client IP")
	}
}
