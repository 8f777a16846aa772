package jt808

import "testing"

func TestPolygonAreaSetGetByIDReportsPresence(t *testing.T) {
	s := NewPolygonAreaSet()
	area := PolygonArea{ID: 7, Vertices: []Vertex{{Latitude: 1, Longitude: 2}}}
	s.Add(area)

	got, ok := s.GetByID(7)
	if !ok {
		t.Fatal("expected ok=true for a present ID")
	}
	if got.ID != 7 {
		t.Errorf("ID: got %d, want 7", got.ID)
	}

	if _, ok := s.GetByID(999); ok {
		t.Error("expected ok=false for an absent ID")
	}
}

func TestPolygonAreaSetUpdateFailsWhenAbsent(t *testing.T) {
	s := NewPolygonAreaSet()
	if s.Update(PolygonArea{ID: 1}) {
		t.Error("expected Update to fail for an area that was never Added")
	}
	s.Add(PolygonArea{ID: 1, MaxSpeed: 60})
	if !s.Update(PolygonArea{ID: 1, MaxSpeed: 80}) {
		t.Fatal("expected Update to succeed once ID 1 exists")
	}
	got, _ := s.GetByID(1)
	if got.MaxSpeed != 80 {
		t.Errorf("MaxSpeed after update: got %d, want 80", got.MaxSpeed)
	}
}

func TestPolygonAreaSetDeleteByIDsAndDeleteAll(t *testing.T) {
	s := NewPolygonAreaSet()
	s.Add(PolygonArea{ID: 1})
	s.Add(PolygonArea{ID: 2})
	s.Add(PolygonArea{ID: 3})

	s.DeleteByIDs([]uint32{1, 3, 999})
	if s.Len() != 1 {
		t.Fatalf("Len after DeleteByIDs: got %d, want 1", s.Len())
	}
	if _, ok := s.GetByID(2); !ok {
		t.Error("expected ID 2 to survive DeleteByIDs")
	}

	s.DeleteAll()
	if s.Len() != 0 {
		t.Errorf("Len after DeleteAll: got %d, want 0", s.Len())
	}
}

func TestPolygonAreaSetDeleteByIDReportsExistence(t *testing.T) {
	s := NewPolygonAreaSet()
	s.Add(PolygonArea{ID: 5})
	if !s.DeleteByID(5) {
		t.Error("expected DeleteByID(5) to report true")
	}
	if s.DeleteByID(5) {
		t.Error("expected second DeleteByID(5) to report false")
	}
}
