// Package permission gates action execution on platform capabilities. The
// real dialog flow lives outside the core; this package defines the
// collaborator contract and the per-category permission requirements.
package permission

import (
	"sync"

	"suri/internal/types"
)

// Kind names a platform permission.
type Kind string

const (
	KindCalendarRead  Kind = "calendar.read"
	KindCalendarWrite Kind = "calendar.write"
	KindNotifyPost    Kind = "notification.post"
	KindNotifyVibrate Kind = "notification.vibrate"
	KindNotifyWake    Kind = "notification.wake"
	KindLocation      Kind = "location"
)

// Service is the consumed permission collaborator.
type Service interface {
	// Check reports whether a permission is currently granted.
	Check(kind Kind) bool
	// Request asks for a permission, optionally showing a rationale first.
	Request(kind Kind, showRationale bool) bool
}

// Required returns the permissions an action category needs before
// dispatch. Categories without platform side effects need none.
func Required(category types.ActionCategory) []Kind {
	switch category {
	case types.CategoryCalendar:
		return []Kind{KindCalendarRead, KindCalendarWrite}
	case types.CategoryNotification:
		return []Kind{KindNotifyPost, KindNotifyVibrate, KindNotifyWake}
	case types.CategoryNavigation:
		return []Kind{KindLocation}
	default:
		return nil
	}
}

// StaticService is an in-memory Service with a fixed grant table, used by
// the CLI front and tests. Request grants are recorded so repeated checks
// succeed.
type StaticService struct {
	mu      sync.RWMutex
	granted map[Kind]bool
	// DenyRequests makes Request always fail, simulating a user decline.
	DenyRequests bool
}

// NewStaticService creates a service with the given pre-granted kinds.
func NewStaticService(granted ...Kind) *StaticService {
	m := make(map[Kind]bool, len(granted))
	for _, k := range granted {
		m[k] = true
	}
	return &StaticService{granted: m}
}

// AllowAll returns a service granting every permission.
func AllowAll() *StaticService {
	return NewStaticService(
		KindCalendarRead, KindCalendarWrite,
		KindNotifyPost, KindNotifyVibrate, KindNotifyWake,
		KindLocation,
	)
}

// Check implements Service.
func (s *StaticService) Check(kind Kind) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.granted[kind]
}

// Request implements Service.
func (s *StaticService) Request(kind Kind, _ bool) bool {
	if s.DenyRequests {
		return false
	}
	s.mu.Lock()
	s.granted[kind] = true
	s.mu.Unlock()
	return true
}
