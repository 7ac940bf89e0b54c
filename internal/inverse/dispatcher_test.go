package inverse

import (
	"errors"
	"fmt"
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/born-ml/holoprop/internal/backend/cpu"
	"github.com/born-ml/holoprop/internal/field"
	"github.com/born-ml/holoprop/internal/nn"
	"github.com/born-ml/holoprop/internal/optics"
	"github.com/born-ml/holoprop/internal/tensor"
)

// firstChannel returns channel 0 of its input: an identity-like image -> phase map.
type firstChannel struct {
	multiple int
	calls    int
}

func (f *firstChannel) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	f.calls++
	if m := f.StrideMultiple(); x.Shape()[2]%m != 0 || x.Shape()[3]%m != 0 {
		return nil, fmt.Errorf("size %v is not a multiple of %d", x.Shape(), m)
	}
	return x.Channel(0), nil
}

func (f *firstChannel) StrideMultiple() int {
	return max(f.multiple, 1)
}

// constAmpPhase returns a 2-channel map with constant amplitude and phase.
type constAmpPhase struct {
	amp, phase float32
	channels   int
}

func (c *constAmpPhase) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	shape := x.Shape().WithChannels(1)
	parts := []*tensor.Tensor{tensor.Full(shape, c.amp), tensor.Full(shape, c.phase)}
	if c.channels == 3 {
		parts = append(parts, tensor.Zeros(shape))
	}
	return tensor.Cat(parts, tensor.AxisChannel), nil
}

// recordingASM records the field it receives and returns it unchanged.
type recordingASM struct {
	seen *field.Field
}

func (r *recordingASM) Propagate(f *field.Field) (*field.Field, error) {
	r.seen = f.Clone()
	return f, nil
}

// recordingDPAC records its inputs and returns the phase as the SLM pattern.
type recordingDPAC struct {
	amp, phase *tensor.Tensor
}

func (r *recordingDPAC) Encode(amp, phase *tensor.Tensor) (*tensor.Tensor, *tensor.Tensor, error) {
	r.amp, r.phase = amp, phase
	return amp, phase.Clone(), nil
}

// secondChannel returns channel 1 (the phase) of an amplitude/phase input.
type secondChannel struct{}

func (secondChannel) Forward(x *tensor.Tensor) (*tensor.Tensor, error) {
	if err := tensor.CheckImage("slm", x, 2); err != nil {
		return nil, err
	}
	return x.Channel(1), nil
}

type failing struct{ err error }

func (f failing) Forward(*tensor.Tensor) (*tensor.Tensor, error) { return nil, f.err }

func allRoles() map[Role]any {
	return map[Role]any{
		RoleInverseCNN: &firstChannel{multiple: 8},
		RoleTargetCNN:  &constAmpPhase{amp: 2, phase: 0.5},
		RoleASMDPAC:    &recordingDPAC{},
		RoleInverseASM: &recordingASM{},
		RoleSLMCNN:     secondChannel{},
	}
}

func TestParseTag(t *testing.T) {
	for _, tag := range Tags() {
		got, err := ParseTag(string(tag))
		require.NoError(t, err)
		assert.Equal(t, tag, got)
	}

	_, err := ParseTag("cnn_asm")
	assert.ErrorIs(t, err, ErrConfig)
}

func TestComputePhase_PreservesSpatialShape(t *testing.T) {
	sizes := [][2]int{{8, 8}, {10, 13}, {1, 1}, {17, 32}}

	for _, tag := range Tags() {
		d, err := New(tag, allRoles())
		require.NoError(t, err)
		assert.Equal(t, tag, d.Tag())

		for _, hw := range sizes {
			x := tensor.Full(tensor.Shape{2, 3, hw[0], hw[1]}, 0.25)
			y, err := d.ComputePhase(x)
			require.NoError(t, err, "%s %v", tag, hw)
			assert.Equal(t, tensor.Shape{2, 1, hw[0], hw[1]}, y.Shape(), "%s %v", tag, hw)
		}
	}
}

func TestComputePhase_StrideMultipleIsPadded(t *testing.T) {
	inv := &firstChannel{multiple: 16}
	d := NewCNNOnly(inv)

	x := tensor.Full(tensor.Shape{1, 1, 20, 7}, 1)
	y, err := d.ComputePhase(x)
	require.NoError(t, err)
	assert.Equal(t, 1, inv.calls)
	assert.True(t, x.Equal(y), "padding must be cropped away")
}

func TestNew_MissingDPAC(t *testing.T) {
	roles := allRoles()
	delete(roles, RoleASMDPAC)

	d, err := New(CNNASMDPAC, roles)
	assert.Nil(t, d)

	var ce *ConfigError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, CNNASMDPAC, ce.Tag)
	assert.Equal(t, RoleASMDPAC, ce.Role)
	assert.ErrorIs(t, err, ErrConfig)
}

func TestNew_ConfigErrors(t *testing.T) {
	tests := []struct {
		name  string
		tag   Tag
		roles map[Role]any
		role  Role
	}{
		{"unknown tag", "gan_only", allRoles(), ""},
		{"nil collaborator", CNNOnly, map[Role]any{RoleInverseCNN: nil}, RoleInverseCNN},
		{"typed nil encoder", CNNASMDPAC, map[Role]any{RoleTargetCNN: secondChannel{}, RoleASMDPAC: (*optics.DPAC)(nil)}, RoleASMDPAC},
		{"typed nil propagator", CNNASMCNN, map[Role]any{RoleTargetCNN: secondChannel{}, RoleInverseASM: (*optics.ASM)(nil), RoleSLMCNN: secondChannel{}}, RoleInverseASM},
		{"missing slm", CNNASMCNN, map[Role]any{RoleTargetCNN: secondChannel{}, RoleInverseASM: &recordingASM{}}, RoleSLMCNN},
		{"missing asm", CNNASMCNN, map[Role]any{RoleTargetCNN: secondChannel{}, RoleSLMCNN: secondChannel{}}, RoleInverseASM},
		{"wrong capability", CNNASMCNN, map[Role]any{RoleTargetCNN: secondChannel{}, RoleInverseASM: secondChannel{}, RoleSLMCNN: secondChannel{}}, RoleInverseASM},
		{"dpac is not a transform", CNNOnly, map[Role]any{RoleInverseCNN: &recordingDPAC{}}, RoleInverseCNN},
		{"unknown role", CNNOnly, map[Role]any{RoleInverseCNN: secondChannel{}, "inverse_gan": secondChannel{}}, "inverse_gan"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.tag, tt.roles)
			var ce *ConfigError
			require.True(t, errors.As(err, &ce), "got %v", err)
			assert.Equal(t, tt.role, ce.Role)
		})
	}
}

func TestNew_IgnoresUnusedRoles(t *testing.T) {
	d, err := New(CNNOnly, allRoles())
	require.NoError(t, err)
	assert.Equal(t, CNNOnly, d.Tag())
}

func TestCNNASMCNN_ChannelSplit(t *testing.T) {
	asm := &recordingASM{}
	d := NewCNNASMCNN(&constAmpPhase{amp: 2, phase: 0.5}, asm, secondChannel{})

	y, err := d.ComputePhase(tensor.Zeros(tensor.Shape{2, 3, 4, 6}))
	require.NoError(t, err)

	require.NotNil(t, asm.seen)
	want := complex(2*math.Cos(0.5), 2*math.Sin(0.5))
	for _, v := range asm.seen.Data() {
		assert.InDelta(t, real(want), real(v), 1e-7)
		assert.InDelta(t, imag(want), imag(v), 1e-7)
	}

	// The SLM network sees amplitude then phase.
	for _, v := range y.Data() {
		assert.InDelta(t, 0.5, v, 1e-6)
	}
}

func TestCNNASMDPAC_ChannelSplit(t *testing.T) {
	dpac := &recordingDPAC{}
	d := NewCNNASMDPAC(&constAmpPhase{amp: 2, phase: 0.5}, dpac)

	y, err := d.ComputePhase(tensor.Zeros(tensor.Shape{1, 3, 3, 3}))
	require.NoError(t, err)

	assert.True(t, dpac.amp.Equal(tensor.Full(tensor.Shape{1, 1, 3, 3}, 2)))
	assert.True(t, dpac.phase.Equal(tensor.Full(tensor.Shape{1, 1, 3, 3}, 0.5)))
	assert.True(t, y.Equal(dpac.phase))
}

func TestCNNOnly_ZerosEndToEnd(t *testing.T) {
	d, err := New(CNNOnly, map[Role]any{RoleInverseCNN: &firstChannel{multiple: 256}})
	require.NoError(t, err)

	y, err := d.ComputePhase(tensor.Zeros(tensor.Shape{4, 3, 256, 256}))
	require.NoError(t, err)
	assert.Equal(t, tensor.Shape{4, 1, 256, 256}, y.Shape())
	for _, v := range y.Data() {
		require.Zero(t, v)
	}
}

func TestComputePhase_BitIdenticalRepeats(t *testing.T) {
	backend := cpu.New()
	rng := rand.New(rand.NewSource(7))

	target := nn.NewUNetNet(string(RoleTargetCNN), nn.NewUNet(nn.UNetConfig{
		InChannels: 3, OutChannels: 2, NumDowns: 2, MinFeatures: 4, MaxFeatures: 8,
		Norm: nn.NormInstance, OuterSkip: true,
	}, backend, rng))
	slm := nn.NewResNetNet(string(RoleSLMCNN), nn.NewResNet(nn.ResNetConfig{
		InChannels: 2, OutChannels: 1, Features: 4, Blocks: 1,
	}, backend, rng))

	params := optics.Params{Wavelength: 520e-9, PixelPitch: 8e-6, Distance: -0.02, BandLimit: true}
	asm, err := optics.NewASM(params)
	require.NoError(t, err)
	dpac := optics.NewDPAC(asm, optics.DPACOptions{MeanAdjust: true})

	x := nn.Normal(tensor.Shape{2, 3, 6, 10}, 0.5, 0.2, rand.New(rand.NewSource(8)))

	dispatchers := []*Dispatcher{
		NewCNNASMDPAC(target, dpac),
		NewCNNASMCNN(target, asm, slm),
	}
	for _, d := range dispatchers {
		a, err := d.ComputePhase(x)
		require.NoError(t, err)
		b, err := d.ComputePhase(x)
		require.NoError(t, err)
		assert.True(t, a.Equal(b), "%s", d.Tag())
		assert.Equal(t, tensor.Shape{2, 1, 6, 10}, a.Shape())
	}
}

func TestComputePhase_Errors(t *testing.T) {
	boom := errors.New("boom")

	_, err := NewCNNOnly(failing{boom}).ComputePhase(tensor.Zeros(tensor.Shape{1, 1, 2, 2}))
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), string(RoleInverseCNN))

	_, err = NewCNNOnly(secondChannel{}).ComputePhase(tensor.Zeros(tensor.Shape{2, 2}))
	assert.ErrorIs(t, err, tensor.ErrShape)

	// target_cnn must produce exactly amplitude and phase.
	_, err = NewCNNASMDPAC(&constAmpPhase{amp: 1, channels: 3}, &recordingDPAC{}).
		ComputePhase(tensor.Zeros(tensor.Shape{1, 1, 2, 2}))
	assert.ErrorIs(t, err, tensor.ErrShape)

	// A phase network returning two channels is rejected.
	_, err = NewCNNOnly(&constAmpPhase{amp: 1}).ComputePhase(tensor.Zeros(tensor.Shape{1, 1, 2, 2}))
	assert.ErrorIs(t, err, tensor.ErrShape)

	assert.Panics(t, func() { NewCNNASMCNN(secondChannel{}, nil, secondChannel{}) })
}

func TestConstructors_PanicWithConfigError(t *testing.T) {
	defer func() {
		r := recover()
		err, ok := r.(error)
		require.True(t, ok, "panic value %v is not an error", r)

		var ce *ConfigError
		require.True(t, errors.As(err, &ce))
		assert.Equal(t, RoleASMDPAC, ce.Role)
		assert.ErrorIs(t, err, ErrConfig)
	}()
	NewCNNASMDPAC(secondChannel{}, (*optics.DPAC)(nil))
}
