package transport

import (
	"bufio"
	"fmt"
	"net"
	"net/http"
	"time"
)

// withCORS allows all origins, methods, and headers, matching the
// permissive cross-origin policy this server runs under.
func withCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "*")
		w.Header().Set("Access-Control-Allow-Headers", "*")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusNoContent)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// withTiming stamps every response with X-Process-Time-Ms, measured from
// request dispatch to the first byte written, and exposes http.Flusher so
// streaming handlers (SSE) keep working through the wrapper.
func withTiming(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		tw := &timingWriter{ResponseWriter: w, start: start}
		next.ServeHTTP(tw, r)
	})
}

// timingWriter injects X-Process-Time-Ms on the first WriteHeader/Write
// call, since headers can no longer be amended once the status line and
// header block have gone out.
type timingWriter struct {
	http.ResponseWriter
	start       time.Time
	headerDone  bool
}

func (tw *timingWriter) stamp() {
	if tw.headerDone {
		return
	}
	tw.headerDone = true
	tw.Header().Set("X-Process-Time-Ms", fmt.Sprintf("%.3f", time.Since(tw.start).Seconds()*1000))
}

func (tw *timingWriter) WriteHeader(status int) {
	tw.stamp()
	tw.ResponseWriter.WriteHeader(status)
}

func (tw *timingWriter) Write(b []byte) (int, error) {
	tw.stamp()
	return tw.ResponseWriter.Write(b)
}

func (tw *timingWriter) Flush() {
	if f, ok := tw.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

// Hijack forwards to the underlying ResponseWriter so the WebSocket
// upgrade (which needs direct access to the raw connection) still works
// when routed through this middleware.
func (tw *timingWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := tw.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, fmt.Errorf("underlying ResponseWriter does not support hijacking")
	}
	tw.stamp()
	return h.Hijack()
}
