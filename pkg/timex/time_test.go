package timex

import (
	"encoding/json"
	"testing"
	"time"
)

func TestTime_UnixMethods(t *testing.T) {
	// 创建一个固定时间
	now := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	tt := Time(now)

	if tt.Unix() != now.Unix() {
		t.Errorf("Unix() = %v, want %v", tt.Unix(), now.Unix())
	}
	if tt.UnixMilli() != now.UnixMilli() {
		t.Errorf("UnixMilli() = %v, want %v", tt.UnixMilli(), now.UnixMilli())
	}
	if tt.UnixMicro() != now.UnixMicro() {
		t.Errorf("UnixMicro() = %v, want %v", tt.UnixMicro(), now.UnixMicro())
	}
	if tt.UnixNano() != now.UnixNano() {
		t.Errorf("UnixNano() = %v, want %v", tt.UnixNano(), now.UnixNano())
	}
}

func TestTime_JSONRoundTrip(t *testing.T) {
	tt := Time(time.Date(2024, 6, 1, 8, 30, 0, 0, time.Local))

	data, err := json.Marshal(tt)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(data) != `"2024-06-01 08:30:00"` {
		t.Errorf("Marshal = %s", data)
	}

	var parsed Time
	if err := json.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if parsed.Unix() != tt.Unix() {
		t.Errorf("round trip = %v, want %v", parsed.Unix(), tt.Unix())
	}
}

func TestTime_ScanNil(t *testing.T) {
	var tt Time
	if err := tt.Scan(nil); err != nil {
		t.Fatalf("Scan(nil): %v", err)
	}
	if !tt.IsZero() {
		t.Error("Scan(nil) should yield zero time")
	}
}
