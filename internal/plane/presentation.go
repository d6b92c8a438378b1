package plane

// Sounds is the audio attached to one plane.
type Sounds interface {
	SetEnginePitch(pitch float64)
	PlayEngine()
	PauseEngine()
	PlayGuns()
	StopGuns()
}

// Effects receives one-shot visual effects.
type Effects interface {
	ShotDown(p *Plane)
}

type nopSounds struct{}

func (nopSounds) SetEnginePitch(float64) {}
func (nopSounds) PlayEngine()            {}
func (nopSounds) PauseEngine()           {}
func (nopSounds) PlayGuns()              {}
func (nopSounds) StopGuns()              {}

type nopEffects struct{}

func (nopEffects) ShotDown(*Plane) {}
