package rooms

import (
	"encoding/json"
	"testing"
	"time"
)

func TestDate_JSONAndDays(t *testing.T) {
	var v struct {
		D Date `json:"d"`
	}
	if err := json.Unmarshal([]byte(`{"d":"2025-03-30"}`), &v); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	b, _ := json.Marshal(v)
	if string(b) != `{"d":"2025-03-30"}` {
		t.Fatalf("unexpected json %s", b)
	}
	end, _ := ParseDate("2025-04-06")
	if got := v.D.DaysUntil(end); got != 7 {
		t.Fatalf("expected 7 days across DST change, got %d", got)
	}
	if err := json.Unmarshal([]byte(`{"d":"30.03.2025"}`), &v); err == nil {
		t.Fatalf("expected error for non ISO date")
	}
}

func TestDate_Scan(t *testing.T) {
	var d Date
	if err := d.Scan(time.Date(2025, 1, 2, 0, 0, 0, 0, time.UTC)); err != nil || d.String() != "2025-01-02" {
		t.Fatalf("scan time: %s %v", d, err)
	}
	if err := d.Scan([]byte("2025-02-03")); err != nil || d.String() != "2025-02-03" {
		t.Fatalf("scan bytes: %s %v", d, err)
	}
	if err := d.Scan(42); err == nil {
		t.Fatalf("expected error for int")
	}
}

func TestRoomMix_Scan(t *testing.T) {
	var m RoomMix
	if err := m.Scan([]byte(`{"SINGLE":2,"DOUBLE":1}`)); err != nil || m.Total() != 3 {
		t.Fatalf("scan mix: %+v %v", m, err)
	}
	v, err := m.Value()
	if err != nil || v.(string) != `{"SINGLE":2,"DOUBLE":1}` {
		t.Fatalf("value: %v %v", v, err)
	}
}
