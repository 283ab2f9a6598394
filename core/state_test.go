package core

import (
	"encoding/json"
	"testing"
	"time"
)

func TestStateMergeShallow(t *testing.T) {
	state := State{"a": 1, "b": "keep"}
	state.Merge(Delta{"a": 2, "c": true})

	if state["a"] != 2 {
		t.Errorf("a = %v, want 2", state["a"])
	}
	if state["b"] != "keep" {
		t.Errorf("b = %v, want keep", state["b"])
	}
	if state["c"] != true {
		t.Errorf("c = %v, want true", state["c"])
	}
}

func TestStateNilMeansAbsent(t *testing.T) {
	state := State{KeyError: "boom"}
	if !state.Has(KeyError) {
		t.Fatal("error key should be present")
	}

	// Shallow merge cannot delete a key; writing nil clears it instead.
	state.Merge(Delta{KeyError: nil})
	if state.Has(KeyError) {
		t.Error("error key should read as absent after nil write")
	}
	if _, ok := state[KeyError]; !ok {
		t.Error("key itself should still exist in the map")
	}
}

func TestStateClone(t *testing.T) {
	state := State{"a": 1}
	clone := state.Clone()
	clone["a"] = 2
	clone["b"] = 3

	if state["a"] != 1 {
		t.Errorf("original mutated: a = %v", state["a"])
	}
	if _, ok := state["b"]; ok {
		t.Error("original gained key from clone")
	}
}

func TestStateInt(t *testing.T) {
	tests := []struct {
		name  string
		value any
		want  int
	}{
		{"int", 3, 3},
		{"int64", int64(4), 4},
		{"float64 from json", float64(5), 5},
		{"absent", nil, 0},
		{"wrong type", "7", 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			state := State{}
			if tt.value != nil {
				state["k"] = tt.value
			}
			if got := state.Int("k"); got != tt.want {
				t.Errorf("Int() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestStateHistory(t *testing.T) {
	state := State{"h": []string{"a", "b"}}
	if got := state.History("h"); len(got) != 2 {
		t.Errorf("History() = %v", got)
	}

	// Checkpoints round-trip through JSON, turning []string into []any.
	state["h"] = []any{"a", "b"}
	if got := state.History("h"); len(got) != 2 || got[1] != "b" {
		t.Errorf("History() after json round-trip = %v", got)
	}

	if got := state.History("missing"); got != nil {
		t.Errorf("History() for missing key = %v", got)
	}
}

func TestAppendHistoryDoesNotMutate(t *testing.T) {
	original := []string{"first"}
	state := State{KeyModificationHistory: original}

	updated := AppendHistory(state, KeyModificationHistory, "second")
	if len(updated) != 2 {
		t.Fatalf("updated = %v", updated)
	}
	if len(original) != 1 {
		t.Errorf("original slice mutated: %v", original)
	}
}

func TestAppendMessage(t *testing.T) {
	state := State{}
	msgs := AppendMessage(state, Message{Role: RoleUser, Content: "hi"})
	if len(msgs) != 1 {
		t.Fatalf("msgs = %v", msgs)
	}

	state[KeyMessages] = msgs
	msgs2 := AppendMessage(state, Message{Role: RoleAssistant, Content: "hello"})
	if len(msgs2) != 2 {
		t.Fatalf("msgs2 = %v", msgs2)
	}
	if len(state.Messages()) != 1 {
		t.Error("state transcript mutated before merge")
	}
}

func TestMessagesSurviveCheckpointRoundTrip(t *testing.T) {
	stamp := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)
	state := State{KeyMessages: []Message{
		{Role: RoleAssistant, Content: "the query sums amounts", Node: NodeExplain, Timestamp: stamp},
	}}

	// A resumed run sees the transcript as []any of maps, the way JSON
	// decodes a checkpoint.
	payload, err := json.Marshal(map[string]any(state))
	if err != nil {
		t.Fatal(err)
	}
	var decoded map[string]any
	if err := json.Unmarshal(payload, &decoded); err != nil {
		t.Fatal(err)
	}
	resumed := State(decoded)

	msgs := resumed.Messages()
	if len(msgs) != 1 {
		t.Fatalf("Messages() after round-trip = %v, want 1 entry", msgs)
	}
	if msgs[0].Role != RoleAssistant || msgs[0].Content != "the query sums amounts" {
		t.Errorf("decoded message = %+v", msgs[0])
	}
	if msgs[0].Node != NodeExplain {
		t.Errorf("decoded node = %q", msgs[0].Node)
	}
	if !msgs[0].Timestamp.Equal(stamp) {
		t.Errorf("decoded timestamp = %v, want %v", msgs[0].Timestamp, stamp)
	}

	// Appending must keep the prior transcript, not start a new one.
	updated := AppendMessage(resumed, Message{Role: RoleAssistant, Content: "report ready"})
	if len(updated) != 2 {
		t.Fatalf("transcript after append = %d message(s), want 2", len(updated))
	}
	if updated[0].Content != "the query sums amounts" {
		t.Errorf("prior entry lost: %+v", updated[0])
	}
}
