package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"gemini-relay/internal/models"
	"gemini-relay/internal/services"
)

// fakeGenerator stands in for the Gemini provider.
type fakeGenerator struct {
	text    string
	err     error
	prompts []string
	ctxErr  error
}

func (f *fakeGenerator) Generate(ctx context.Context, prompt string) (string, error) {
	f.prompts = append(f.prompts, prompt)
	f.ctxErr = ctx.Err()
	return f.text, f.err
}

func newTestChatHandler(t *testing.T, gen *fakeGenerator) *ChatHandler {
	t.Helper()
	svc, err := services.NewChatService(gen)
	require.NoError(t, err)
	return NewChatHandler(svc)
}

func doChat(t *testing.T, h *ChatHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(http.MethodPost, "/chat", nil)
	} else {
		req = httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(body))
	}
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	h.Chat(rr, req)
	return rr
}

func decodeReply(t *testing.T, rr *httptest.ResponseRecorder) models.ChatResponse {
	t.Helper()
	var out models.ChatResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
	return out
}

func TestChatHandler_ReturnsProviderText(t *testing.T) {
	gen := &fakeGenerator{text: "Hi there!"}
	rr := doChat(t, newTestChatHandler(t, gen), `{"message": "Hello"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	require.JSONEq(t, `{"reply": "Hi there!"}`, rr.Body.String())
	require.Equal(t, []string{"Hello"}, gen.prompts)
}

func TestChatHandler_MissingMessageIsEmptyPrompt(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"empty object", `{}`},
		{"no body", ``},
		{"null body", `null`},
		{"other fields only", `{"history": []}`},
		{"unrelated field", `{"x": 1}`},
		{"null message", `{"message": null}`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gen := &fakeGenerator{text: "How can I help?"}
			rr := doChat(t, newTestChatHandler(t, gen), tc.body)

			require.Equal(t, http.StatusOK, rr.Code)
			require.Equal(t, "How can I help?", decodeReply(t, rr).Reply)
			require.Equal(t, []string{""}, gen.prompts)
		})
	}
}

func TestChatHandler_EmptyProviderTextUsesFallback(t *testing.T) {
	rr := doChat(t, newTestChatHandler(t, &fakeGenerator{}), `{"message": "???"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, "Sorry, I didn't understand that.", decodeReply(t, rr).Reply)
}

func TestChatHandler_ProviderErrorBecomesReply(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected string
	}{
		{"auth", &services.ProviderError{Err: errors.New("invalid API key")}, "Error: invalid API key"},
		{"quota", errors.New("quota exceeded"), "Error: quota exceeded"},
		{"network", errors.New("dial tcp: connection refused"), "Error: dial tcp: connection refused"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			rr := doChat(t, newTestChatHandler(t, &fakeGenerator{err: tc.err}), `{"message": "Hello"}`)

			require.Equal(t, http.StatusOK, rr.Code)
			require.Equal(t, tc.expected, decodeReply(t, rr).Reply)
		})
	}
}

func TestChatHandler_DoesNotValidateMessage(t *testing.T) {
	long := strings.Repeat("a", 100000)
	gen := &fakeGenerator{text: "ok"}
	rr := doChat(t, newTestChatHandler(t, gen), `{"message": "`+long+`"}`)

	require.Equal(t, http.StatusOK, rr.Code)
	require.Equal(t, []string{long}, gen.prompts)
}

func TestChatHandler_MalformedBody(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `not-json`},
		{"truncated", `{"message": "Hel`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gen := &fakeGenerator{text: "unused"}
			rr := doChat(t, newTestChatHandler(t, gen), tc.body)

			require.Equal(t, http.StatusBadRequest, rr.Code)
			var out models.ErrorResponse
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &out))
			require.Equal(t, "VALIDATION_ERROR", out.Error.Code)
			require.Empty(t, gen.prompts)
		})
	}
}

func TestChatHandler_WrongShapeBecomesErrorReply(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		expected string
	}{
		{"number message", `{"message": 42}`, "Error: message must be a string"},
		{"object message", `{"message": {"text": "Hello"}}`, "Error: message must be a string"},
		{"array message", `{"message": ["Hello"]}`, "Error: message must be a string"},
		{"array body", `["a"]`, "Error: request body must be a JSON object"},
		{"string body", `"Hello"`, "Error: request body must be a JSON object"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			gen := &fakeGenerator{text: "unused"}
			rr := doChat(t, newTestChatHandler(t, gen), tc.body)

			require.Equal(t, http.StatusOK, rr.Code)
			require.Equal(t, tc.expected, decodeReply(t, rr).Reply)
			require.Empty(t, gen.prompts)
		})
	}
}

func TestChatHandler_ClientCancelDoesNotCancelProvider(t *testing.T) {
	gen := &fakeGenerator{text: "still here"}
	h := newTestChatHandler(t, gen)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	req := httptest.NewRequest(http.MethodPost, "/chat", strings.NewReader(`{"message": "Hello"}`)).WithContext(ctx)
	rr := httptest.NewRecorder()
	h.Chat(rr, req)

	require.NoError(t, gen.ctxErr)
	require.Equal(t, "still here", decodeReply(t, rr).Reply)
}

func TestHealth(t *testing.T) {
	rr := httptest.NewRecorder()
	Health(rr, httptest.NewRequest(http.MethodGet, "/health", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	require.JSONEq(t, `{"status":"ok"}`, rr.Body.String())
}
