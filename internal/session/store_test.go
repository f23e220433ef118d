package session

import (
	"errors"
	"testing"
	"time"

	"github.com/KaramelBytes/cpkdash/internal/dataset"
	"github.com/KaramelBytes/cpkdash/internal/parser"
)

func table(t *testing.T) *dataset.Table {
	t.Helper()
	tbl, err := dataset.FromRecords(&parser.Records{
		Name:   "flota.csv",
		Header: []string{"Fecha", "Unidad", "Flota", "Tipo de Carga", "CPK total", "kmstotales"},
		Rows:   [][]string{{"2024-10-01", "101", "Norte", "Seca", "12", "100"}},
	}, dataset.DefaultOptions())
	if err != nil {
		t.Fatalf("FromRecords: %v", err)
	}
	return tbl
}

type clock struct{ t time.Time }

func (c *clock) now() time.Time          { return c.t }
func (c *clock) advance(d time.Duration) { c.t = c.t.Add(d) }

func TestPutGetDelete(t *testing.T) {
	s := NewStore(0, 0)
	sess := s.Put(table(t))
	if sess.ID == "" {
		t.Fatalf("empty id")
	}
	got, err := s.Get(sess.ID)
	if err != nil || got != sess {
		t.Fatalf("Get = %v, %v", got, err)
	}
	info := got.Info()
	if info.Name != "flota.csv" || info.Rows != 1 || len(info.Options.Fleets) != 1 {
		t.Fatalf("info = %+v", info)
	}
	if err := s.Delete(sess.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := s.Get(sess.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.Delete(sess.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("double delete: %v", err)
	}
}

func TestIdleExpiry(t *testing.T) {
	c := &clock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewStore(10*time.Minute, 0)
	s.now = c.now

	sess := s.Put(table(t))
	c.advance(9 * time.Minute)
	if _, err := s.Get(sess.ID); err != nil {
		t.Fatalf("Get before ttl: %v", err)
	}
	// access refreshed the idle timer
	c.advance(9 * time.Minute)
	if _, err := s.Get(sess.ID); err != nil {
		t.Fatalf("Get after refresh: %v", err)
	}
	c.advance(11 * time.Minute)
	if s.Len() != 0 {
		t.Fatalf("Len = %d, want 0", s.Len())
	}
	if _, err := s.Get(sess.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected expiry, got %v", err)
	}
}

func TestMaxSessionsEvictsLeastRecentlyUsed(t *testing.T) {
	c := &clock{t: time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)}
	s := NewStore(0, 2)
	s.now = c.now

	a := s.Put(table(t))
	c.advance(time.Second)
	b := s.Put(table(t))
	c.advance(time.Second)
	if _, err := s.Get(a.ID); err != nil {
		t.Fatalf("Get a: %v", err)
	}
	c.advance(time.Second)
	d := s.Put(table(t))

	if s.Len() != 2 {
		t.Fatalf("Len = %d, want 2", s.Len())
	}
	if _, err := s.Get(b.ID); !errors.Is(err, ErrNotFound) {
		t.Fatalf("b should have been evicted")
	}
	ids := s.IDs()
	if len(ids) != 2 || ids[0] != a.ID || ids[1] != d.ID {
		t.Fatalf("ids = %v", ids)
	}
}
