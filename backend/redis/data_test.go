package redis

import (
	"encoding/binary"
	"math"
	"testing"
)

func TestBuildIDFilter(t *testing.T) {
	got := buildIDFilter([]string{"a", "b", "c"})
	want := "@doc_id:{a|b|c}"
	if got != want {
		t.Errorf("filter = %q, want %q", got, want)
	}
}

func TestBuildIDFilter_EscapesTagSyntax(t *testing.T) {
	tests := []struct {
		id   string
		want string
	}{
		{"user:42", "@doc_id:{user\\:42}"},
		{"a-b", "@doc_id:{a\\-b}"},
		{"x|y", "@doc_id:{x\\|y}"},
		{"doc.txt", "@doc_id:{doc\\.txt}"},
		{"has space", "@doc_id:{has\\ space}"},
	}

	for _, tc := range tests {
		if got := buildIDFilter([]string{tc.id}); got != tc.want {
			t.Errorf("buildIDFilter(%q) = %q, want %q", tc.id, got, tc.want)
		}
	}
}

func TestVectorToBytes(t *testing.T) {
	data := vectorToBytes([]float32{1.5, -2})

	if len(data) != 8 {
		t.Fatalf("len = %d, want 8", len(data))
	}

	first := math.Float32frombits(binary.LittleEndian.Uint32([]byte(data)[0:4]))
	second := math.Float32frombits(binary.LittleEndian.Uint32([]byte(data)[4:8]))
	if first != 1.5 || second != -2 {
		t.Errorf("decoded = %v, %v, want 1.5, -2", first, second)
	}
}

func TestVectorToBytes_Empty(t *testing.T) {
	if got := vectorToBytes(nil); got != "" {
		t.Errorf("empty vector = %q, want empty string", got)
	}
}
