package concierge

import (
	"context"
	"errors"
	"strings"

	"github.com/wichananm65/xinchao-storefront/internal/apperr"
	"github.com/wichananm65/xinchao-storefront/internal/kvstore"
)

// LeadKey is the local-store key of a visitor's contact details.
const LeadKey = "xinChaoLead"

type Lead struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
}

// LeadStore keeps the lead form filled in across sessions.
type LeadStore struct {
	store kvstore.Store
	rec   apperr.Recorder
}

func NewLeadStore(store kvstore.Store, rec apperr.Recorder) *LeadStore {
	if rec == nil {
		rec = apperr.Nop{}
	}
	return &LeadStore{store: store, rec: rec}
}

func leadKey(visitor string) string {
	return LeadKey + ":" + visitor
}

// Get returns the stored lead, or an empty one.
func (s *LeadStore) Get(ctx context.Context, visitor string) Lead {
	var l Lead
	err := kvstore.GetJSON(ctx, s.store, leadKey(visitor), &l)
	if err != nil && !errors.Is(err, kvstore.ErrNotFound) {
		s.rec.Record(ctx, apperr.New(apperr.StorageUnavailable, "load", leadKey(visitor), err))
		return Lead{}
	}
	return l
}

func (s *LeadStore) Put(ctx context.Context, visitor string, l Lead) Lead {
	l.Name = strings.TrimSpace(l.Name)
	l.Contact = strings.TrimSpace(l.Contact)
	if err := kvstore.SetJSON(ctx, s.store, leadKey(visitor), l); err != nil {
		s.rec.Record(ctx, apperr.New(apperr.StorageUnavailable, "save", leadKey(visitor), err))
	}
	return l
}
