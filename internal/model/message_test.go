package model_test

import (
	"testing"

	"ai-chat-server/internal/model"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	original := []model.Message{
		{Sender: model.SenderUser, Text: "你好"},
		{Sender: model.SenderBot, Text: "Hello! How can I help?"},
		{Sender: model.SenderUser, Text: ""},
	}

	blob, err := model.EncodeMessages(original)
	if err != nil {
		t.Fatalf("EncodeMessages: %v", err)
	}

	decoded, err := model.DecodeMessages(blob)
	if err != nil {
		t.Fatalf("DecodeMessages: %v", err)
	}
	if len(decoded) != len(original) {
		t.Fatalf("got %d messages, want %d", len(decoded), len(original))
	}
	for i := range original {
		if decoded[i] != original[i] {
			t.Errorf("message %d: got %+v, want %+v", i, decoded[i], original[i])
		}
	}
}

func TestEncodeNilIsEmptyArray(t *testing.T) {
	blob, err := model.EncodeMessages(nil)
	if err != nil {
		t.Fatalf("EncodeMessages(nil): %v", err)
	}
	if blob != "[]" {
		t.Fatalf("got %q, want []", blob)
	}
}

func TestDecodeEmptyBlob(t *testing.T) {
	for _, blob := range []string{"", "[]", "null"} {
		messages, err := model.DecodeMessages(blob)
		if err != nil {
			t.Fatalf("DecodeMessages(%q): %v", blob, err)
		}
		if len(messages) != 0 {
			t.Fatalf("DecodeMessages(%q): got %d messages, want 0", blob, len(messages))
		}
	}
}

func TestDecodeCorruptBlob(t *testing.T) {
	for _, blob := range []string{"{", `{"sender":"user"}`, "not json"} {
		if _, err := model.DecodeMessages(blob); err == nil {
			t.Errorf("DecodeMessages(%q): expected error", blob)
		}
	}
}

func TestSenderValid(t *testing.T) {
	if !model.SenderUser.Valid() || !model.SenderBot.Valid() {
		t.Fatal("user/bot must be valid senders")
	}
	if model.Sender("system").Valid() {
		t.Fatal("unknown sender must be invalid")
	}
}
