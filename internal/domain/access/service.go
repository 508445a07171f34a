// Package access holds the accessibility preferences. Each flag is persisted
// under its own key and read independently at startup.
package access

import (
	"io"
	"log/slog"
	"sync"

	"github.com/rpggio/storyverse/internal/persist"
)

// Settings are the accessibility flags.
type Settings struct {
	HighContrast bool `json:"high_contrast"`
	ReduceMotion bool `json:"reduce_motion"`
	LargeText    bool `json:"large_text"`
	ScreenReader bool `json:"screen_reader"`
}

// Service owns the accessibility flags.
type Service struct {
	adapter *persist.Adapter
	logger  *slog.Logger

	mu       sync.RWMutex
	settings Settings
}

// NewService loads each flag from adapter, defaulting to false. adapter may be nil.
func NewService(adapter *persist.Adapter, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	s := &Service{adapter: adapter, logger: logger}
	if adapter != nil {
		s.settings = Settings{
			HighContrast: persist.Load(adapter, persist.KeyHighContrast, false),
			ReduceMotion: persist.Load(adapter, persist.KeyReduceMotion, false),
			LargeText:    persist.Load(adapter, persist.KeyLargeText, false),
			ScreenReader: persist.Load(adapter, persist.KeyScreenReader, false),
		}
	}
	return s
}

// Settings returns the current flags.
func (s *Service) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.settings
}

func (s *Service) SetHighContrast(on bool) error {
	return s.set(persist.KeyHighContrast, on, func(st *Settings) { st.HighContrast = on })
}

func (s *Service) SetReduceMotion(on bool) error {
	return s.set(persist.KeyReduceMotion, on, func(st *Settings) { st.ReduceMotion = on })
}

func (s *Service) SetLargeText(on bool) error {
	return s.set(persist.KeyLargeText, on, func(st *Settings) { st.LargeText = on })
}

func (s *Service) SetScreenReader(on bool) error {
	return s.set(persist.KeyScreenReader, on, func(st *Settings) { st.ScreenReader = on })
}

// Reset turns every flag off and forgets the stored values.
func (s *Service) Reset() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.settings = Settings{}
	if s.adapter == nil {
		return nil
	}
	for _, key := range []string{persist.KeyHighContrast, persist.KeyReduceMotion, persist.KeyLargeText, persist.KeyScreenReader} {
		if err := s.adapter.Remove(key); err != nil {
			return err
		}
	}
	return nil
}

func (s *Service) set(key string, on bool, apply func(*Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	apply(&s.settings)
	if s.adapter == nil {
		return nil
	}
	if err := s.adapter.Save(key, on); err != nil {
		s.logger.Error("failed to persist accessibility flag", "key", key, "error", err)
		return err
	}
	return nil
}
