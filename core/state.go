package core

import "time"

// State is the mutable, keyed record shared across all steps of one
// workflow run. A key holding nil is treated as absent: deltas cannot
// delete keys under shallow merge, so nodes clear a field by writing nil.
type State map[string]any

// Delta is a partial state update returned by a node. Only the keys it
// names are written back; everything else in the state persists unchanged.
type Delta map[string]any

// Clone returns a shallow copy of the state. Values are shared, which is
// fine for the engine's merge discipline: nodes return deltas instead of
// mutating values in place.
func (s State) Clone() State {
	out := make(State, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}

// Merge applies a delta using shallow-merge semantics.
func (s State) Merge(d Delta) {
	for k, v := range d {
		s[k] = v
	}
}

// Has reports whether the key is present with a non-nil value.
func (s State) Has(key string) bool {
	v, ok := s[key]
	return ok && v != nil
}

// String returns the value under key as a string, or "" when absent or of
// another type.
func (s State) String(key string) string {
	v, _ := s[key].(string)
	return v
}

// Int returns the value under key as an int. Float64 is accepted too since
// checkpointed states round-trip through JSON.
func (s State) Int(key string) int {
	switch v := s[key].(type) {
	case int:
		return v
	case int64:
		return int(v)
	case float64:
		return int(v)
	default:
		return 0
	}
}

// History returns the modification history slice under key, tolerating the
// []any form produced by JSON decoding.
func (s State) History(key string) []string {
	switch v := s[key].(type) {
	case []string:
		return v
	case []any:
		out := make([]string, 0, len(v))
		for _, e := range v {
			if str, ok := e.(string); ok {
				out = append(out, str)
			}
		}
		return out
	default:
		return nil
	}
}

// Messages returns the transcript under KeyMessages, tolerating the
// []any-of-maps form a checkpoint produces after a JSON round-trip.
func (s State) Messages() []Message {
	switch v := s[KeyMessages].(type) {
	case []Message:
		return v
	case []any:
		out := make([]Message, 0, len(v))
		for _, e := range v {
			entry, ok := e.(map[string]any)
			if !ok {
				continue
			}
			msg := Message{
				Role:    mapString(entry, "role"),
				Content: mapString(entry, "content"),
				Node:    NodeID(mapString(entry, "node")),
			}
			if ts, err := time.Parse(time.RFC3339Nano, mapString(entry, "timestamp")); err == nil {
				msg.Timestamp = ts
			}
			out = append(out, msg)
		}
		return out
	default:
		return nil
	}
}

func mapString(m map[string]any, key string) string {
	v, _ := m[key].(string)
	return v
}

// AppendHistory builds the new value for an append-only text field: a fresh
// slice holding the existing entries plus the new one. The existing slice
// is never modified, so prior checkpoints stay intact.
func AppendHistory(s State, key string, entry string) []string {
	prev := s.History(key)
	out := make([]string, 0, len(prev)+1)
	out = append(out, prev...)
	return append(out, entry)
}

// AppendMessage builds the new transcript value with msg appended.
func AppendMessage(s State, msg Message) []Message {
	prev := s.Messages()
	out := make([]Message, 0, len(prev)+1)
	out = append(out, prev...)
	return append(out, msg)
}
