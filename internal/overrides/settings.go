package overrides

import (
	"context"
	"fmt"

	"github.com/listenupapp/mediatray/internal/domain"
	"github.com/listenupapp/mediatray/internal/store"
)

const settingsKey = "params"

// Settings persists the hide-spoilers display settings as one record.
type Settings struct {
	bucket *store.Bucket
}

// NewSettings binds the settings record to a bucket.
func NewSettings(bucket *store.Bucket) *Settings {
	return &Settings{bucket: bucket}
}

// Load reads the settings. A missing record yields every flag off.
func (s *Settings) Load(ctx context.Context) (domain.DisplaySettings, error) {
	var ds domain.DisplaySettings
	if _, err := s.bucket.Get(ctx, settingsKey, &ds); err != nil {
		return domain.DisplaySettings{}, fmt.Errorf("load display settings: %w", err)
	}
	return ds, nil
}

// Save replaces the settings record.
func (s *Settings) Save(ctx context.Context, ds domain.DisplaySettings) error {
	if err := s.bucket.Set(ctx, settingsKey, ds); err != nil {
		return fmt.Errorf("save display settings: %w", err)
	}
	return nil
}
