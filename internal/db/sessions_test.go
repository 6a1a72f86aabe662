package db

import "testing"

func TestInsertSession_AssignsID(t *testing.T) {
	db := MustOpenTestDB(t)

	s := &Session{Date: "01.06.2025", MacAddress: "AA", AssetName: "Alice", StartMS: 1000}
	if err := db.InsertSession(s); err != nil {
		t.Fatalf("InsertSession failed: %v", err)
	}
	if s.ID == "" {
		t.Fatal("expected generated session id")
	}
	if s.TimeCounter != "00:00:00" {
		t.Errorf("expected zero counter, got %q", s.TimeCounter)
	}
}

func TestInsertSession_DuplicateStartRejected(t *testing.T) {
	db := MustOpenTestDB(t)

	s := Session{Date: "01.06.2025", MacAddress: "AA", StartMS: 1000}
	first := s
	if err := db.InsertSession(&first); err != nil {
		t.Fatalf("InsertSession failed: %v", err)
	}
	second := s
	if err := db.InsertSession(&second); err == nil {
		t.Fatal("expected unique constraint violation for same day/mac/start")
	}
}

func TestLatestSession_PicksNewestStart(t *testing.T) {
	db := MustOpenTestDB(t)

	older := &Session{Date: "01.06.2025", MacAddress: "AA", StartMS: 1000, StopMS: int64Ptr(5000)}
	newer := &Session{Date: "01.06.2025", MacAddress: "AA", StartMS: 9000}
	other := &Session{Date: "01.06.2025", MacAddress: "BB", StartMS: 20000}
	for _, s := range []*Session{older, newer, other} {
		if err := db.InsertSession(s); err != nil {
			t.Fatalf("InsertSession failed: %v", err)
		}
	}

	got, err := db.LatestSession("AA")
	if err != nil {
		t.Fatalf("LatestSession failed: %v", err)
	}
	if got == nil || got.StartMS != 9000 {
		t.Fatalf("expected session starting at 9000, got %+v", got)
	}
	if !got.Open() {
		t.Error("expected latest session to be open")
	}
}

func TestLatestSession_NoRows(t *testing.T) {
	db := MustOpenTestDB(t)

	got, err := db.LatestSession("AA")
	if err != nil {
		t.Fatalf("LatestSession failed: %v", err)
	}
	if got != nil {
		t.Errorf("expected nil, got %+v", got)
	}
}

func TestUpdateSession_ClosesAndCounts(t *testing.T) {
	db := MustOpenTestDB(t)

	s := &Session{Date: "01.06.2025", MacAddress: "AA", AssetName: "Alice", StartMS: 1000}
	if err := db.InsertSession(s); err != nil {
		t.Fatalf("InsertSession failed: %v", err)
	}

	s.StopMS = int64Ptr(3601000)
	s.TimeCounter = "01:00:00"
	if err := db.UpdateSession(s); err != nil {
		t.Fatalf("UpdateSession failed: %v", err)
	}

	got, err := db.LatestSession("AA")
	if err != nil {
		t.Fatalf("LatestSession failed: %v", err)
	}
	if got.Open() {
		t.Fatal("expected closed session")
	}
	if *got.StopMS != 3601000 || got.TimeCounter != "01:00:00" {
		t.Errorf("unexpected session after update: %+v", got)
	}
}

func TestUpdateSession_MissingRow(t *testing.T) {
	db := MustOpenTestDB(t)

	err := db.UpdateSession(&Session{ID: "no-such-id", Date: "01.06.2025"})
	if err == nil {
		t.Fatal("expected error for unknown session id")
	}
}

func TestOpenSessions_And_Count(t *testing.T) {
	db := MustOpenTestDB(t)

	db.InsertSession(&Session{Date: "01.06.2025", MacAddress: "AA", StartMS: 1000})
	db.InsertSession(&Session{Date: "01.06.2025", MacAddress: "BB", StartMS: 1000, StopMS: int64Ptr(2000)})

	open, err := db.OpenSessions()
	if err != nil {
		t.Fatalf("OpenSessions failed: %v", err)
	}
	if len(open) != 1 || open[0].MacAddress != "AA" {
		t.Fatalf("expected only AA open, got %+v", open)
	}

	n, err := db.CountOpenSessions("AA")
	if err != nil {
		t.Fatalf("CountOpenSessions failed: %v", err)
	}
	if n != 1 {
		t.Errorf("expected 1 open session for AA, got %d", n)
	}
}

func TestSessionsSince(t *testing.T) {
	db := MustOpenTestDB(t)

	db.InsertSession(&Session{Date: "25.05.2025", MacAddress: "AA", StartMS: 1000, StopMS: int64Ptr(2000)})
	db.InsertSession(&Session{Date: "01.06.2025", MacAddress: "AA", StartMS: 600000000})
	db.InsertSession(&Session{Date: "01.06.2025", MacAddress: "BB", StartMS: 600000001})

	got, err := db.SessionsSince(600000000)
	if err != nil {
		t.Fatalf("SessionsSince failed: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("expected 2 recent sessions, got %d", len(got))
	}
	if got[0].MacAddress != "AA" || got[1].MacAddress != "BB" {
		t.Errorf("expected mac ordering, got %+v", got)
	}
}
