package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"log"
	"net/http"

	"gemini-relay/internal/models"
)

var (
	errMalformedBody    = errors.New("malformed JSON body")
	errBodyNotObject    = errors.New("request body must be a JSON object")
	errMessageNotString = errors.New("message must be a string")
)

type chatService interface {
	Reply(ctx context.Context, message string) models.ChatResult
}

type ChatHandler struct {
	chatService chatService
}

func NewChatHandler(chatService chatService) *ChatHandler {
	return &ChatHandler{chatService: chatService}
}

// Chat relays the message to the provider. Anything that parses as JSON gets
// a 200; provider and shape failures are reported inside the reply.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	message, err := decodeMessage(r.Body)
	if errors.Is(err, errMalformedBody) {
		writeJSON(w, http.StatusBadRequest, errorResp("VALIDATION_ERROR", "Invalid request body", r))
		return
	}

	var result models.ChatResult
	if err != nil {
		result = models.ChatResult{Kind: models.ChatResultFailed, Err: err}
	} else {
		// The provider call runs to completion even if the client goes away.
		ctx := context.WithoutCancel(r.Context())
		result = h.chatService.Reply(ctx, message)
	}
	if result.Kind == models.ChatResultFailed {
		log.Printf("chat: request failed (request_id=%s): %v", r.Header.Get("X-Request-ID"), result.Err)
	}

	writeJSON(w, http.StatusOK, models.ChatResponse{Reply: result.Reply()})
}

// decodeMessage reads the "message" field. An absent body, a null body and
// an absent or null field all yield "".
func decodeMessage(body io.Reader) (string, error) {
	var raw json.RawMessage
	if err := json.NewDecoder(body).Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return "", nil
		}
		return "", errMalformedBody
	}
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return "", nil
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(raw, &fields); err != nil {
		return "", errBodyNotObject
	}
	field, ok := fields["message"]
	if !ok || bytes.Equal(bytes.TrimSpace(field), []byte("null")) {
		return "", nil
	}

	var message string
	if err := json.Unmarshal(field, &message); err != nil {
		return "", errMessageNotString
	}
	return message, nil
}
