package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const tpf = 1.0 / 30

func testEnv() Environment {
	return Environment{Gravity: DefaultGravity, Atmosphere: ConstantAtmosphere(1.225)}
}

func TestIntegrate_GravityOnlyFirstTick(t *testing.T) {
	p := NewPlanePhysics(mgl64.QuatIdent(), mgl64.Vec3{0, 3000, 0}, 1000, mgl64.Vec3{}, nil)

	p.Integrate(tpf, testEnv())

	v := p.Velocity()
	assert.InDelta(t, -DefaultGravity*tpf, v.Y(), 1e-12)
	assert.Zero(t, v.X())
	assert.Zero(t, v.Z())
	assert.Less(t, p.Pose().Position.Y(), 3000.0)
}

func TestIntegrate_MonotonicDescentWithoutLift(t *testing.T) {
	p := NewPlanePhysics(mgl64.QuatIdent(), mgl64.Vec3{0, 3000, 0}, 1000, mgl64.Vec3{}, nil)
	env := testEnv()

	last := p.Pose().Position.Y()
	for range 90 {
		p.Integrate(tpf, env)
		y := p.Pose().Position.Y()
		require.Less(t, y, last)
		last = y
	}
}

func TestIntegrate_ForwardFlightAdvancesOneTickOfDistance(t *testing.T) {
	engine := NewEngine(mgl64.Vec3{}, 17000)
	engine.SetThrottle(1)
	p := NewPlanePhysics(mgl64.QuatIdent(), mgl64.Vec3{0, 3000, 0}, 5500, mgl64.Vec3{}, []ForceProducer{engine})
	p.SetForwardSpeed(300)

	p.Integrate(tpf, testEnv())

	pos := p.Pose().Position
	assert.InDelta(t, 10.0, pos.Z(), 0.5)
	assert.InDelta(t, 300.0, p.Speed(), 1.0)
}

func TestIntegrate_ZeroOrNegativeDtIsNoop(t *testing.T) {
	p := NewPlanePhysics(mgl64.QuatIdent(), mgl64.Vec3{0, 100, 0}, 1000, mgl64.Vec3{}, nil)
	before := p.State()

	p.Integrate(0, testEnv())
	p.Integrate(-1, testEnv())

	assert.Equal(t, before, p.State())
}

type nanProducer struct{}

func (nanProducer) Contribution(_, _ mgl64.Vec3, _ float64, _ Environment) (mgl64.Vec3, mgl64.Vec3) {
	nan := math.NaN()
	return mgl64.Vec3{nan, nan, nan}, mgl64.Vec3{nan, 0, 0}
}

func TestIntegrate_SanitisesNaN(t *testing.T) {
	p := NewPlanePhysics(mgl64.QuatIdent(), mgl64.Vec3{}, 1000, mgl64.Vec3{}, []ForceProducer{nanProducer{}})

	p.Integrate(tpf, testEnv())

	s := p.State()
	for i := range 3 {
		assert.False(t, math.IsNaN(s.Velocity[i]))
		assert.False(t, math.IsNaN(s.Position[i]))
		assert.False(t, math.IsNaN(s.AngularVelocity[i]))
	}
	assert.False(t, math.IsNaN(s.Rotation.W))
}

func TestIntegrate_RotationStaysNormalised(t *testing.T) {
	torque := constantTorque{mgl64.Vec3{2000, 500, -300}}
	p := NewPlanePhysics(mgl64.QuatIdent(), mgl64.Vec3{}, 1000, mgl64.Vec3{}, []ForceProducer{torque})

	for range 300 {
		p.Integrate(tpf, testEnv())
	}

	assert.InDelta(t, 1.0, p.Pose().Rotation.Len(), 1e-9)
}

type constantTorque struct{ torque mgl64.Vec3 }

func (c constantTorque) Contribution(_, _ mgl64.Vec3, _ float64, _ Environment) (mgl64.Vec3, mgl64.Vec3) {
	return mgl64.Vec3{}, c.torque
}

type poseRecorder struct{ poses []Pose }

func (r *poseRecorder) SetPose(p Pose) { r.poses = append(r.poses, p) }

func TestPublishPose(t *testing.T) {
	p := NewPlanePhysics(mgl64.QuatIdent(), mgl64.Vec3{1, 2, 3}, 1000, mgl64.Vec3{}, nil)
	sink := &poseRecorder{}

	p.PublishPose(sink)

	require.Len(t, sink.poses, 1)
	assert.Equal(t, mgl64.Vec3{1, 2, 3}, sink.poses[0].Position)
	assert.InDelta(t, 1.0, sink.poses[0].Direction().Z(), 1e-12)
}

func TestSpeedKmH(t *testing.T) {
	p := NewPlanePhysics(mgl64.QuatIdent(), mgl64.Vec3{}, 1000, mgl64.Vec3{}, nil)
	p.SetForwardSpeed(100)
	assert.Equal(t, "360", p.SpeedKmH())
}

func TestSetForwardSpeed_FollowsHeading(t *testing.T) {
	heading := mgl64.QuatRotate(math.Pi/2, Up)
	p := NewPlanePhysics(heading, mgl64.Vec3{}, 1000, mgl64.Vec3{}, nil)

	p.SetForwardSpeed(300)

	v := p.Velocity()
	assert.InDelta(t, 300.0, v.X(), 1e-9)
	assert.InDelta(t, 0.0, v.Z(), 1e-9)
}

func TestEngine_DamageIsMonotoneAndSaturates(t *testing.T) {
	e := NewEngine(mgl64.Vec3{}, 1000)
	e.SetThrottle(1)

	e.Damage(0.5)
	e.Damage(0.2)
	assert.Equal(t, 0.5, e.Damaged())
	assert.InDelta(t, 500.0, e.Thrust(), 1e-9)

	e.Damage(3)
	assert.Equal(t, 1.0, e.Damaged())
	assert.Zero(t, e.Thrust())
}

func TestEngine_OffAxisThrustProducesTorque(t *testing.T) {
	e := NewEngine(mgl64.Vec3{2, 0, 0}, 1000)
	e.SetThrottle(1)

	force, torque := e.Contribution(mgl64.Vec3{}, mgl64.Vec3{}, 0, testEnv())

	assert.Equal(t, mgl64.Vec3{0, 0, 1000}, force)
	assert.InDelta(t, -2000.0, torque.Y(), 1e-9)
}

func TestAirfoil_Lift(t *testing.T) {
	env := testEnv()
	level := mgl64.Vec3{0, 0, 300}

	tests := []struct {
		name       string
		params     AirfoilParams
		deflection float64
		velocity   mgl64.Vec3
		check      func(t *testing.T, force mgl64.Vec3)
	}{
		{
			name:     "zero angle of attack gives drag only",
			params:   AirfoilParams{Area: 10, AspectRatio: 6},
			velocity: level,
			check: func(t *testing.T, f mgl64.Vec3) {
				assert.InDelta(t, 0.0, f.Y(), 1e-9)
				assert.Less(t, f.Z(), 0.0)
			},
		},
		{
			name:     "incidence gives positive lift",
			params:   AirfoilParams{Area: 10, AspectRatio: 6, Incidence: 2},
			velocity: level,
			check: func(t *testing.T, f mgl64.Vec3) {
				assert.Greater(t, f.Y(), 0.0)
			},
		},
		{
			name:       "trailing edge up deflection reduces lift",
			params:     AirfoilParams{Area: 10, AspectRatio: 6},
			deflection: 2,
			velocity:   level,
			check: func(t *testing.T, f mgl64.Vec3) {
				assert.Less(t, f.Y(), 0.0)
			},
		},
		{
			name:     "sinking flight raises angle of attack",
			params:   AirfoilParams{Area: 10, AspectRatio: 6},
			velocity: mgl64.Vec3{0, -10, 300},
			check: func(t *testing.T, f mgl64.Vec3) {
				assert.Greater(t, f.Y(), 0.0)
			},
		},
		{
			name:     "vertical stabiliser resists sideslip",
			params:   AirfoilParams{Area: 2, AspectRatio: 2, Dihedral: 90},
			velocity: mgl64.Vec3{5, 0, 300},
			check: func(t *testing.T, f mgl64.Vec3) {
				assert.Less(t, f.X(), 0.0)
				assert.InDelta(t, 0.0, f.Y(), 1e-6)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := NewSymmetricAirfoil(tt.params)
			a.ControlAileron(tt.deflection)
			force, _ := a.Contribution(tt.velocity, mgl64.Vec3{}, 0, env)
			tt.check(t, force)
		})
	}
}

func TestAirfoil_StallCapsLift(t *testing.T) {
	a := NewSymmetricAirfoil(AirfoilParams{Area: 10, AspectRatio: 6})
	env := testEnv()

	pre, _ := a.Contribution(mgl64.Vec3{0, -math.Tan(mgl64.DegToRad(14)) * 100, 100}, mgl64.Vec3{}, 0, env)
	post, _ := a.Contribution(mgl64.Vec3{0, -math.Tan(mgl64.DegToRad(30)) * 100, 100}, mgl64.Vec3{}, 0, env)

	assert.Greater(t, a.liftCoefficient(mgl64.DegToRad(14)), a.liftCoefficient(mgl64.DegToRad(30)))
	assert.Greater(t, pre.Len(), 0.0)
	assert.Greater(t, post.Len(), 0.0)
}

func TestAirfoil_StillAirProducesNothing(t *testing.T) {
	a := NewSymmetricAirfoil(AirfoilParams{Area: 10, AspectRatio: 6, Incidence: 5})

	force, torque := a.Contribution(mgl64.Vec3{}, mgl64.Vec3{}, 0, testEnv())

	assert.Equal(t, mgl64.Vec3{}, force)
	assert.Equal(t, mgl64.Vec3{}, torque)
}

func TestAirfoil_TailLiftPitchesNoseDown(t *testing.T) {
	tail := NewSymmetricAirfoil(AirfoilParams{Cog: mgl64.Vec3{0, 0, -5}, Area: 3, AspectRatio: 4, Incidence: 2})

	_, torque := tail.Contribution(mgl64.Vec3{0, 0, 200}, mgl64.Vec3{}, 0, testEnv())

	// positive rotation about +X tips the nose down
	assert.Greater(t, torque.X(), 0.0)
}

func TestAirfoil_DamperOpposesRotation(t *testing.T) {
	params := AirfoilParams{Cog: mgl64.Vec3{4, 0, 0}, Area: 10, AspectRatio: 6, Damper: true}
	damped := NewSymmetricAirfoil(params)
	params.Damper = false
	plain := NewSymmetricAirfoil(params)

	roll := mgl64.Vec3{0, 0, 1}
	_, dampedTorque := damped.Contribution(mgl64.Vec3{0, 0, 200}, roll, 0, testEnv())
	_, plainTorque := plain.Contribution(mgl64.Vec3{0, 0, 200}, roll, 0, testEnv())

	assert.InDelta(t, 0.0, plainTorque.Z(), 1e-9)
	assert.Less(t, dampedTorque.Z(), 0.0)
}

func TestParseRole(t *testing.T) {
	for _, r := range []Role{RoleLeftWing, RoleRightWing, RoleHorizontalStabilizer, RoleVerticalStabilizer} {
		got, err := ParseRole(r.String())
		require.NoError(t, err)
		assert.Equal(t, r, got)
	}

	got, err := ParseRole("LEFTWING")
	require.NoError(t, err)
	assert.Equal(t, RoleLeftWing, got)

	_, err = ParseRole("canard")
	assert.Error(t, err)
}

func TestOrientedBox_Contains(t *testing.T) {
	box := OrientedBox{
		Center:      mgl64.Vec3{0, 100, 0},
		HalfExtents: mgl64.Vec3{5, 1, 4},
		Rotation:    mgl64.QuatRotate(math.Pi/2, Up),
	}

	// rotated 90 degrees about Y, so the long local X axis lies along world Z
	assert.True(t, box.Contains(mgl64.Vec3{0, 100, 4.5}))
	assert.False(t, box.Contains(mgl64.Vec3{4.5, 100, 0}))
	assert.False(t, box.Contains(mgl64.Vec3{0, 102, 0}))

	var zero OrientedBox
	zero.HalfExtents = mgl64.Vec3{1, 1, 1}
	assert.True(t, zero.Contains(mgl64.Vec3{0.5, -0.5, 0}))
}

func TestOrientedBox_Lowest(t *testing.T) {
	box := OrientedBox{Center: mgl64.Vec3{0, 10, 0}, HalfExtents: mgl64.Vec3{1, 2, 3}, Rotation: mgl64.QuatIdent()}
	assert.InDelta(t, 8.0, box.Lowest().Y(), 1e-12)
}

func TestStandardAtmosphere(t *testing.T) {
	atm := StandardAtmosphere{}
	assert.InDelta(t, 1.225, atm.AirDensity(0), 0.01)
	assert.Less(t, atm.AirDensity(3000), atm.AirDensity(0))
	assert.Less(t, atm.AirDensity(15000), atm.AirDensity(11000))

	env := Environment{Gravity: 10}
	assert.Equal(t, 1.225, env.AirDensity(5000))
}
