package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"

	"github.com/rs/zerolog"
	openai "github.com/sashabaranov/go-openai"

	"github.com/lakshyaprep/lakshya-backend/internal/model"
)

// newStreamTutorService wires the chat client against a stub completions
// endpoint.
func newStreamTutorService(baseURL string) *TutorService {
	cfg := openai.DefaultConfig("test-key")
	cfg.BaseURL = baseURL + "/v1"
	return &TutorService{
		client: openai.NewClientWithConfig(cfg),
		model:  "gpt-test",
		log:    zerolog.Nop(),
	}
}

func streamChunk(content string) string {
	return `{"id":"1","object":"chat.completion.chunk","created":1,"model":"gpt-test",` +
		`"choices":[{"index":0,"delta":{"content":` + strconv.Quote(content) + `}}]}`
}

func chatTurn(content string) model.TutorChatRequest {
	return model.TutorChatRequest{Messages: []model.ChatMessage{{Role: "user", Content: content}}}
}

func TestChatStreamAccumulatesDeltas(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		fmt.Fprintf(w, "data: %s\n\n", streamChunk("Two plus two "))
		fmt.Fprintf(w, "data: %s\n\n", streamChunk("is four."))
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	svc := newStreamTutorService(srv.URL)
	var deltas []string
	reply, err := svc.ChatStream(context.Background(), chatTurn("2+2?"), func(delta string) error {
		deltas = append(deltas, delta)
		return nil
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if reply != "Two plus two is four." {
		t.Errorf("want the full reply, got %q", reply)
	}
	if len(deltas) != 2 {
		t.Errorf("want 2 deltas, got %d: %v", len(deltas), deltas)
	}
}

func TestChatStreamCutOffMidReply(t *testing.T) {
	// The stub hijacks the connection and closes it after two deltas,
	// before the terminating chunk or a [DONE] event. The client must
	// not report the partial reply as a finished answer.
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		conn, buf, err := w.(http.Hijacker).Hijack()
		if err != nil {
			t.Errorf("hijack failed: %v", err)
			return
		}
		defer conn.Close()

		buf.WriteString("HTTP/1.1 200 OK\r\nContent-Type: text/event-stream\r\nTransfer-Encoding: chunked\r\n\r\n")
		for _, c := range []string{streamChunk("partial "), streamChunk("answer")} {
			event := "data: " + c + "\n\n"
			fmt.Fprintf(buf, "%x\r\n%s\r\n", len(event), event)
		}
		buf.Flush()
	}))
	defer srv.Close()

	svc := newStreamTutorService(srv.URL)
	var got strings.Builder
	reply, err := svc.ChatStream(context.Background(), chatTurn("2+2?"), func(delta string) error {
		got.WriteString(delta)
		return nil
	})
	if err == nil {
		t.Fatalf("cut-off stream reported as success, reply %q", reply)
	}
	if errors.Is(err, io.EOF) {
		t.Fatalf("cut-off must not look like a normal stream end, got %v", err)
	}
	if got.String() != "partial answer" {
		t.Errorf("deltas before the cut should still be delivered, got %q", got.String())
	}
}

func TestChatStreamEmptyReply(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, "data: [DONE]\n\n")
	}))
	defer srv.Close()

	svc := newStreamTutorService(srv.URL)
	_, err := svc.ChatStream(context.Background(), chatTurn("hello"), func(string) error { return nil })
	if !errors.Is(err, ErrEmptyReply) {
		t.Fatalf("want ErrEmptyReply, got %v", err)
	}
}

func TestChatStreamDisabled(t *testing.T) {
	svc := &TutorService{log: zerolog.Nop()}
	_, err := svc.ChatStream(context.Background(), chatTurn("hello"), func(string) error { return nil })
	if !errors.Is(err, ErrTutorDisabled) {
		t.Fatalf("want ErrTutorDisabled, got %v", err)
	}
}
