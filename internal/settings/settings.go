// Package settings tracks application state that outlives a single run.
package settings

import "fmt"

const hasLaunchedKey = "hasLaunchedBefore"

// Prefs is the preference storage the service needs.
type Prefs interface {
	Bool(key string) (bool, error)
	SetBool(key string, v bool) error
}

type Service struct {
	prefs Prefs
}

func New(prefs Prefs) *Service {
	return &Service{prefs: prefs}
}

// LaunchedBefore is the first-launch check. The first call returns false and
// records the launch; every later call returns true.
func (s *Service) LaunchedBefore() (bool, error) {
	launched, err := s.prefs.Bool(hasLaunchedKey)
	if err != nil {
		return false, fmt.Errorf("read launch flag: %w", err)
	}
	if launched {
		return true, nil
	}
	if err := s.prefs.SetBool(hasLaunchedKey, true); err != nil {
		return false, fmt.Errorf("write launch flag: %w", err)
	}
	return false, nil
}
