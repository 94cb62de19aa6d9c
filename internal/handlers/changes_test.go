package handlers

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"

	"moneybox/internal/store"
)

type fakeChangeLog struct {
	gotLimit int
	changes  []store.Change
}

func (f *fakeChangeLog) Recent(_ context.Context, limit int) ([]store.Change, error) {
	f.gotLimit = limit
	return f.changes, nil
}

func TestChangesList(t *testing.T) {
	log := &fakeChangeLog{changes: []store.Change{
		{ID: uuid.New(), EntityType: "product", EntityID: "cash-isa", Action: "update", Revision: 4, ChangedAt: time.Now()},
	}}
	h := NewChanges(log)

	tests := []struct {
		name      string
		query     string
		wantCode  int
		wantLimit int
	}{
		{"default limit", "", http.StatusOK, 50},
		{"explicit limit", "?limit=10", http.StatusOK, 10},
		{"zero", "?limit=0", http.StatusBadRequest, 0},
		{"too large", "?limit=501", http.StatusBadRequest, 0},
		{"not a number", "?limit=ten", http.StatusBadRequest, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			log.gotLimit = 0
			rr := httptest.NewRecorder()
			h.List(rr, httptest.NewRequest(http.MethodGet, "/api/changes"+tt.query, nil))
			expectStatus(t, rr, tt.wantCode)
			if log.gotLimit != tt.wantLimit {
				t.Errorf("limit = %d, want %d", log.gotLimit, tt.wantLimit)
			}
			if tt.wantCode == http.StatusOK {
				body := decode[struct {
					Changes []store.Change `json:"changes"`
				}](t, rr)
				if len(body.Changes) != 1 || body.Changes[0].EntityID != "cash-isa" {
					t.Errorf("changes = %+v", body.Changes)
				}
			}
		})
	}
}
