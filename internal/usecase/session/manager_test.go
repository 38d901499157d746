package session

import (
	"errors"
	"sync"
	"testing"

	"github.com/kailas-cloud/shopmate/internal/domain"
	"github.com/kailas-cloud/shopmate/internal/domain/conversation"
)

func TestManagerLifecycle(t *testing.T) {
	m := NewManager()

	s := m.Create()
	if s.ID == "" {
		t.Fatal("expected a non-empty session id")
	}

	got, err := m.Get(s.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != s {
		t.Error("Get returned a different session instance")
	}

	m.Delete(s.ID)
	if _, err := m.Get(s.ID); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("Get after Delete: err = %v, want ErrSessionNotFound", err)
	}
	if m.Len() != 0 {
		t.Errorf("Len = %d, want 0", m.Len())
	}
}

func TestGetUnknownID(t *testing.T) {
	m := NewManager()
	if _, err := m.Get("nope"); !errors.Is(err, domain.ErrSessionNotFound) {
		t.Errorf("err = %v, want ErrSessionNotFound", err)
	}
}

func TestSessionHoldsState(t *testing.T) {
	s := &Session{}
	s.Prefs.Brands = []string{"Guess"}
	s.History.Add(conversation.SpeakerUser, "hello")

	if !s.Prefs.HasActive() {
		t.Error("expected active preferences")
	}
	if s.History.Len() != 1 {
		t.Errorf("History.Len = %d, want 1", s.History.Len())
	}
}

func TestManagerConcurrentAccess(t *testing.T) {
	m := NewManager()
	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			s := m.Create()
			if _, err := m.Get(s.ID); err != nil {
				t.Errorf("Get: %v", err)
			}
		}()
	}
	wg.Wait()
	if m.Len() != 20 {
		t.Errorf("Len = %d, want 20", m.Len())
	}
}
