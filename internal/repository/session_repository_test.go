package repository

import (
	"testing"
	"time"
)

func TestBuildSessionWhereEmptyFilter(t *testing.T) {
	where, args := buildSessionWhere(SessionFilter{})
	if where != "" || args != nil {
		t.Fatalf("empty filter must build no clause, got %q with %v", where, args)
	}
}

func TestBuildSessionWhereCombinesWithAnd(t *testing.T) {
	f := SessionFilter{
		VehicleID: 4,
		SpotID:    2,
		From:      time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC),
		To:        time.Date(2026, 1, 31, 23, 59, 59, 0, time.UTC),
	}
	where, args := buildSessionWhere(f)
	want := " WHERE p.vehicle_id = ? AND p.spot_id = ? AND p.entered_at >= ? AND p.entered_at <= ?"
	if where != want {
		t.Fatalf("where = %q, want %q", where, want)
	}
	if len(args) != 4 {
		t.Fatalf("args = %v, want 4 values", args)
	}
	if args[0] != uint64(4) || args[1] != uint64(2) {
		t.Errorf("id args = %v, %v", args[0], args[1])
	}
	if args[2] != "2026-01-01 00:00:00" || args[3] != "2026-01-31 23:59:59" {
		t.Errorf("time args = %v, %v", args[2], args[3])
	}
}

func TestBuildSessionWhereSingleCriterion(t *testing.T) {
	where, args := buildSessionWhere(SessionFilter{VehicleID: 4})
	if where != " WHERE p.vehicle_id = ?" {
		t.Fatalf("where = %q", where)
	}
	if len(args) != 1 || args[0] != uint64(4) {
		t.Fatalf("args = %v", args)
	}
}

func TestBuildSessionWhereNormalizesToUTC(t *testing.T) {
	loc := time.FixedZone("UTC-3", -3*60*60)
	f := SessionFilter{From: time.Date(2026, 1, 10, 21, 0, 0, 0, loc)}
	_, args := buildSessionWhere(f)
	if len(args) != 1 || args[0] != "2026-01-11 00:00:00" {
		t.Fatalf("args = %v, want the UTC rendering", args)
	}
}
