package logger

import (
	"io"
	"log"
	"strconv"
	"strings"
	"sync"
)

var (
	payloadMu   sync.Mutex
	payloadLog  *log.Logger
	payloadDump bool
)

// SetPayloadWriter sets the sink for raw service request/response dumps.
// A nil writer disables the dump.
func SetPayloadWriter(w io.Writer) {
	payloadMu.Lock()
	defer payloadMu.Unlock()
	if w == nil {
		payloadLog = nil
		return
	}
	payloadLog = log.New(w, "", log.LstdFlags)
}

// EnablePayloadDump toggles whether request bodies are included in the dump.
func EnablePayloadDump(enabled bool) {
	payloadMu.Lock()
	payloadDump = enabled
	payloadMu.Unlock()
}

type payloadSection struct {
	Title string
	Body  string
}

func logPayload(kind, traceID, endpoint string, sections []payloadSection) {
	payloadMu.Lock()
	l := payloadLog
	payloadMu.Unlock()
	if l == nil {
		return
	}
	var b strings.Builder
	b.WriteString("[PREDICT]")
	for _, tag := range []string{kind, traceID, endpoint} {
		if tag == "" {
			continue
		}
		b.WriteString("[")
		b.WriteString(tag)
		b.WriteString("]")
	}
	b.WriteString("\n")
	for _, sec := range sections {
		t := strings.TrimSpace(sec.Title)
		if t == "" {
			t = "CONTENT"
		}
		b.WriteString("--- ")
		b.WriteString(t)
		b.WriteString(" ---\n")
		b.WriteString(sec.Body)
		if !strings.HasSuffix(sec.Body, "\n") {
			b.WriteString("\n")
		}
	}
	b.WriteString("=====\n")
	l.Print(b.String())
}

// LogPredictRequest records an outbound body when payload dumping is on.
func LogPredictRequest(traceID, endpoint, body string) {
	payloadMu.Lock()
	dump := payloadDump
	payloadMu.Unlock()
	if !dump || strings.TrimSpace(body) == "" {
		return
	}
	logPayload("request", traceID, endpoint, []payloadSection{{Title: "BODY", Body: body}})
}

// LogPredictResponse records the raw body returned by the service.
func LogPredictResponse(traceID, endpoint string, status int, raw string) {
	sections := []payloadSection{{Title: "STATUS", Body: strconv.Itoa(status)}, {Title: "RAW", Body: raw}}
	logPayload("response", traceID, endpoint, sections)
}
