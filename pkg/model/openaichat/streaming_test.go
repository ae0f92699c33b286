package openaichat

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/nimec77/tandem/pkg/model"
)

func newChunkServer(t *testing.T, chunks string) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/event-stream")
		_, _ = w.Write([]byte(chunks))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func collectEvents(t *testing.T, st *model.Stream) []model.StreamEvent {
	t.Helper()
	var got []model.StreamEvent
	for evt := range st.Events() {
		got = append(got, evt)
	}
	return got
}

func TestStreamTextDeltas(t *testing.T) {
	chunks := `data: {"id":"c1","choices":[{"index":0,"delta":{"role":"assistant","content":""}}]}` + "\n\n" +
		`data: {"id":"c1","choices":[{"index":0,"delta":{"content":"Hel"}}]}` + "\n\n" +
		`data: {"id":"c1","choices":[{"index":0,"delta":{"content":"lo"}}]}` + "\n\n" +
		`data: {"id":"c1","choices":[{"index":0,"delta":{},"finish_reason":"stop"}]}` + "\n\n" +
		"data: [DONE]\n\n"
	srv := newChunkServer(t, chunks)
	client := newTestClient(t, srv.URL)

	st, err := client.Stream(context.Background(), []model.Message{{Role: model.RoleUser, Content: "hi"}})
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	got := collectEvents(t, st)

	if len(got) != 3 {
		t.Fatalf("expected 2 deltas and a terminal, got %d: %+v", len(got), got)
	}
	if got[0].Text != "Hel" || got[1].Text != "lo" {
		t.Fatalf("unexpected deltas: %+v", got[:2])
	}
	if got[2].Type != model.EventDone {
		t.Fatalf("expected Done terminal, got %+v", got[2])
	}
}

func TestStreamSynthesizesDoneWithoutSentinel(t *testing.T) {
	chunks := `data: {"id":"c1","choices":[{"index":0,"delta":{"content":"partial"}}]}` + "\n\n"
	srv := newChunkServer(t, chunks)
	client := newTestClient(t, srv.URL)

	st, err := client.Stream(context.Background(), []model.Message{{Role: model.RoleUser, Content: "hi"}})
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	got := collectEvents(t, st)

	last := got[len(got)-1]
	if last.Type != model.EventDone {
		t.Fatalf("stream closed without sentinel must still yield Done, got %+v", last)
	}
}

func TestStreamReassemblesToolCallFragments(t *testing.T) {
	chunks := `data: {"id":"c1","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"id":"call_1","type":"function","function":{"name":"list_directory","arguments":""}}]}}]}` + "\n\n" +
		`data: {"id":"c1","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"function":{"arguments":"{\"pa"}}]}}]}` + "\n\n" +
		`data: {"id":"c1","choices":[{"index":0,"delta":{"tool_calls":[{"index":0,"function":{"arguments":"th\":\"/tmp\"}"}}]}}]}` + "\n\n" +
		`data: {"id":"c1","choices":[{"index":0,"delta":{"tool_calls":[{"index":1,"id":"call_2","type":"function","function":{"name":"read_file","arguments":"{}"}}]}}]}` + "\n\n" +
		`data: {"id":"c1","choices":[{"index":0,"delta":{},"finish_reason":"tool_calls"}]}` + "\n\n" +
		"data: [DONE]\n\n"
	srv := newChunkServer(t, chunks)
	client := newTestClient(t, srv.URL)

	st, err := client.StreamWithTools(context.Background(),
		[]model.Message{{Role: model.RoleUser, Content: "list /tmp"}},
		[]model.ToolDefinition{{Name: "list_directory", InputSchema: map[string]any{"type": "object"}}})
	if err != nil {
		t.Fatalf("StreamWithTools failed: %v", err)
	}
	got := collectEvents(t, st)

	if len(got) != 1 || got[0].Type != model.EventDone {
		t.Fatalf("expected a lone Done, got %+v", got)
	}
	calls := got[0].ToolCalls
	if len(calls) != 2 {
		t.Fatalf("expected two reassembled calls, got %+v", calls)
	}
	if calls[0].ID != "call_1" || calls[0].Name != "list_directory" {
		t.Fatalf("first call incomplete: %+v", calls[0])
	}
	if calls[0].Arguments["path"] != "/tmp" {
		t.Fatalf("fragmented arguments not reassembled: %+v", calls[0].Arguments)
	}
	if calls[1].ID != "call_2" || calls[1].Name != "read_file" {
		t.Fatalf("index order not preserved: %+v", calls[1])
	}
}

func TestStreamMalformedChunkIsProviderError(t *testing.T) {
	chunks := "data: {not json\n\n"
	srv := newChunkServer(t, chunks)
	client := newTestClient(t, srv.URL)

	st, err := client.Stream(context.Background(), []model.Message{{Role: model.RoleUser, Content: "hi"}})
	if err != nil {
		t.Fatalf("Stream failed: %v", err)
	}
	_, err = st.Collect()
	if !errors.Is(err, model.ErrProvider) {
		t.Fatalf("expected provider error for malformed chunk, got %v", err)
	}
}

func TestStreamErrorStatusBeforeBody(t *testing.T) {
	srv, _ := newTestServer(t, http.StatusUnauthorized,
		`{"error":{"message":"Incorrect API key","type":"invalid_request_error"}}`)
	client := newTestClient(t, srv.URL)

	_, err := client.Stream(context.Background(), []model.Message{{Role: model.RoleUser, Content: "hi"}})
	if !errors.Is(err, model.ErrAuthentication) {
		t.Fatalf("expected authentication error before any events, got %v", err)
	}
}
