package sim

import "sync"

// TextSpeedometer is the headless speedometer: it keeps the last text shown.
type TextSpeedometer struct {
	mu   sync.Mutex
	text string
}

func (s *TextSpeedometer) SetText(text string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.text = text
}

func (s *TextSpeedometer) Text() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.text
}

type nopAudio struct{}

func (nopAudio) Update()  {}
func (nopAudio) MuteAll() {}
