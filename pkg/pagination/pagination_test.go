package pagination

import (
	"testing"
	"time"

	"github.com/google/uuid"
)

func TestNormalizeLimit(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{in: 0, want: DefaultLimit},
		{in: -5, want: DefaultLimit},
		{in: 10, want: 10},
		{in: MaxLimit, want: MaxLimit},
		{in: MaxLimit + 50, want: MaxLimit},
	}
	for _, tt := range tests {
		if got := NormalizeLimit(tt.in); got != tt.want {
			t.Fatalf("NormalizeLimit(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestLimitWithBuffer(t *testing.T) {
	tests := []struct {
		in   int
		want int
	}{
		{in: 0, want: DefaultLimit + 1},
		{in: 10, want: 11},
		{in: MaxLimit + 50, want: MaxLimit + 1},
	}
	for _, tt := range tests {
		if got := LimitWithBuffer(tt.in); got != tt.want {
			t.Fatalf("LimitWithBuffer(%d) = %d, want %d", tt.in, got, tt.want)
		}
	}
}

func TestCursorRoundTrip(t *testing.T) {
	cursor := Cursor{CreatedAt: time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC), ID: uuid.New()}

	parsed, err := ParseCursor(EncodeCursor(cursor))
	if err != nil {
		t.Fatalf("ParseCursor: %v", err)
	}
	if !parsed.CreatedAt.Equal(cursor.CreatedAt) || parsed.ID != cursor.ID {
		t.Fatalf("round trip = %+v, want %+v", parsed, cursor)
	}
}

func TestParseCursorRejectsGarbage(t *testing.T) {
	if _, err := ParseCursor("not-base64!!"); err == nil {
		t.Fatal("expected error for invalid base64")
	}
	if cursor, err := ParseCursor("  "); err != nil || cursor != nil {
		t.Fatalf("blank cursor = %v, %v, want nil, nil", cursor, err)
	}
}
