package store

import (
	"time"

	"github.com/jobscout-za/jobscout/internal/model"
)

// NopStore is a no-op store used for dry runs. It never marks listings as
// seen, so every listing appears new on each run.
type NopStore struct{}

func NewNopStore() *NopStore { return &NopStore{} }

func (s *NopStore) HasSeen(string) (bool, error) { return false, nil }
func (s *NopStore) MarkSeen(string) error { return nil }
func (s *NopStore) Cleanup(time.Duration) error { return nil }
func (s *NopStore) IsEmpty() (bool, error) { return false, nil }
func (s *NopStore) RecordRun(model.SearchRun) error { return nil }
