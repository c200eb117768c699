package concierge

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sseEvent(w http.ResponseWriter, name, data string) {
	fmt.Fprintf(w, "event: %s\ndata: %s\n\n", name, data)
}

func TestAnthropicProvider_NoKeyMeansOffline(t *testing.T) {
	p := NewAnthropicProvider("  ", "")
	assert.Nil(t, p.StartChat("ctx"))
}

func TestAnthropicChat_StreamsTextDeltas(t *testing.T) {
	var bodies []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		b, _ := io.ReadAll(r.Body)
		bodies = append(bodies, string(b))

		w.Header().Set("Content-Type", "text/event-stream")
		sseEvent(w, "message_start", `{"type":"message_start","message":{"id":"msg_1","type":"message","role":"assistant","content":[],"model":"claude-sonnet-4-5","stop_reason":null,"stop_sequence":null,"usage":{"input_tokens":10,"output_tokens":1}}}`)
		sseEvent(w, "content_block_start", `{"type":"content_block_start","index":0,"content_block":{"type":"text","text":""}}`)
		sseEvent(w, "content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"Xin "}}`)
		sseEvent(w, "content_block_delta", `{"type":"content_block_delta","index":0,"delta":{"type":"text_delta","text":"chào"}}`)
		sseEvent(w, "content_block_stop", `{"type":"content_block_stop","index":0}`)
		sseEvent(w, "message_delta", `{"type":"message_delta","delta":{"stop_reason":"end_turn","stop_sequence":null},"usage":{"output_tokens":2}}`)
		sseEvent(w, "message_stop", `{"type":"message_stop"}`)
	}))
	defer srv.Close()

	p := NewAnthropicProvider("test-key", "", option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	chat := p.StartChat(ChatContext(nil))
	require.NotNil(t, chat)

	var chunks []string
	for chunk, err := range chat.SendMessageStream(context.Background(), "hello") {
		require.NoError(t, err)
		chunks = append(chunks, chunk)
	}
	assert.Equal(t, []string{"Xin ", "chào"}, chunks)

	for _, err := range chat.SendMessageStream(context.Background(), "again") {
		require.NoError(t, err)
	}
	require.Len(t, bodies, 2)
	assert.Contains(t, bodies[0], `"system"`)
	assert.NotContains(t, bodies[0], `"assistant"`)
	// the second request carries the first exchange as history
	assert.Contains(t, bodies[1], `"assistant"`)
	assert.Contains(t, bodies[1], "hello")
	assert.Contains(t, bodies[1], "again")
}

func TestAnthropicChat_ErrorIsYielded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		fmt.Fprint(w, `{"type":"error","error":{"type":"invalid_request_error","message":"bad"}}`)
	}))
	defer srv.Close()

	p := NewAnthropicProvider("test-key", "", option.WithBaseURL(srv.URL), option.WithMaxRetries(0))
	var gotErr error
	for _, err := range p.StartChat("ctx").SendMessageStream(context.Background(), "hello") {
		if err != nil {
			gotErr = err
		}
	}
	assert.Error(t, gotErr)
}
