package application

import "time"

// SetNow replaces the service clock so tests can control expiry.
func (s *Service) SetNow(fn func() time.Time) {
	s.nowFn = fn
}
