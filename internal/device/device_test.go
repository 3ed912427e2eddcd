package device

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/danielpatrickdp/multimodal-planner/internal/geometry"
	"github.com/danielpatrickdp/multimodal-planner/internal/modality"
)

type recordingBridge struct {
	sent []Command
	err  error
}

func (b *recordingBridge) Send(_ context.Context, cmd Command) error {
	b.sent = append(b.sent, cmd)
	return b.err
}

func at(x, y, z float64) *geometry.Position {
	return &geometry.Position{X: x, Y: y, Z: z}
}

func mustStatic(t *testing.T, name, mod string, pos *geometry.Position) *Static {
	t.Helper()
	d, err := NewStatic(Spec{Name: name, Modality: mod, Position: pos, Duration: 1}, nil)
	require.NoError(t, err)
	return d
}

func TestNewStatic_Validation(t *testing.T) {
	_, err := NewStatic(Spec{Modality: "speech"}, nil)
	assert.Error(t, err)
	_, err = NewStatic(Spec{Name: "x", Modality: "smell"}, nil)
	assert.Error(t, err)
}

func TestEstimateDuration(t *testing.T) {
	d, err := NewStatic(Spec{Name: "tts", Modality: "speech", SecondsPerWord: 0.4, Duration: 9}, nil)
	require.NoError(t, err)
	assert.InDelta(t, 1.2, d.EstimateDuration("this red vase"), 1e-9)
	assert.Equal(t, 9.0, d.EstimateDuration(42))
}

func TestAssign_NearestToObject(t *testing.T) {
	left := mustStatic(t, "left-arm", "pointing", at(-1, 0, 0))
	right := mustStatic(t, "right-arm", "pointing", at(1, 0, 0))
	req := Request{Modality: modality.Pointing, Object: at(2, 0, 0), Interlocutor: at(-2, 0, 0)}

	a, err := Assign(req, []Device{left, right})
	require.NoError(t, err)
	assert.Equal(t, "right-arm", a.Device.Name())

	hard, soft := Score([]Assignment{a})
	assert.Equal(t, 0, hard)
	assert.Equal(t, 0, soft)
}

func TestAssign_SpeechUsesInterlocutor(t *testing.T) {
	near := mustStatic(t, "speaker-a", "speech", at(-1, 0, 0))
	far := mustStatic(t, "speaker-b", "speech", at(1, 0, 0))
	req := Request{Modality: modality.Speech, Object: at(2, 0, 0), Interlocutor: at(-2, 0, 0)}

	a, err := Assign(req, []Device{far, near})
	require.NoError(t, err)
	assert.Equal(t, "speaker-a", a.Device.Name())
}

func TestAssign_TiesKeepPoolOrder(t *testing.T) {
	a := mustStatic(t, "a", "gaze", nil)
	b := mustStatic(t, "b", "gaze", nil)
	got, err := Assign(Request{Modality: modality.Gaze, Object: at(1, 1, 1)}, []Device{a, b})
	require.NoError(t, err)
	assert.Equal(t, "a", got.Device.Name())
}

func TestAssign_EmptyPool(t *testing.T) {
	_, err := Assign(Request{Modality: modality.Waving}, nil)
	if !errors.Is(err, ErrNoDevice) {
		t.Fatalf("expected ErrNoDevice, got %v", err)
	}
}

func TestScore_PenalizesFartherChoice(t *testing.T) {
	near := mustStatic(t, "near", "pointing", at(1, 0, 0))
	mid := mustStatic(t, "mid", "pointing", at(3, 0, 0))
	far := mustStatic(t, "far", "pointing", at(5, 0, 0))
	pool := []Device{near, mid, far}
	req := Request{Modality: modality.Pointing, Object: at(0, 0, 0)}

	hard, soft := Score([]Assignment{
		{Request: req, Device: far, Pool: pool},
		{Request: req, Pool: pool},
	})
	assert.Equal(t, -1, hard)
	assert.Equal(t, -2, soft)
}

func TestImageDisplay_TracksResources(t *testing.T) {
	bridge := &recordingBridge{}
	d, err := NewImageDisplay(Spec{Name: "screen", Position: at(0, 1, 0)}, bridge)
	require.NoError(t, err)

	require.NoError(t, d.Execute(context.Background(), "vase1.png"))
	assert.True(t, d.IsDisplaying("vase1.png"))
	assert.Len(t, bridge.sent, 1)
	assert.Equal(t, modality.Image, bridge.sent[0].Modality)

	require.NoError(t, d.Execute(context.Background(), "vase2.png"))
	assert.False(t, d.IsDisplaying("vase1.png"), "a new image replaces the previous one")
	assert.True(t, d.IsDisplaying("vase2.png"))
}

func TestImageDisplay_BridgeFailureNotRecorded(t *testing.T) {
	d, err := NewImageDisplay(Spec{Name: "screen"}, &recordingBridge{err: errors.New("offline")})
	require.NoError(t, err)
	assert.Error(t, d.Execute(context.Background(), "a.png"))
	assert.False(t, d.IsDisplaying("a.png"))
}

func TestNewPools(t *testing.T) {
	pools, err := NewPools([]Spec{
		{Name: "tts", Modality: "speech"},
		{Name: "screen", Modality: "image"},
		{Name: "arm", Modality: "pointing"},
		{Name: "arm2", Modality: "pointing"},
	}, nil)
	require.NoError(t, err)
	assert.Len(t, pools[modality.Pointing], 2)
	_, isDisplay := pools[modality.Image][0].(*ImageDisplay)
	assert.True(t, isDisplay)

	d, ok := pools.Find("arm2")
	require.True(t, ok)
	assert.Equal(t, modality.Pointing, d.Modality())
}

func TestStatic_ExecuteCancelled(t *testing.T) {
	d := mustStatic(t, "tts", "speech", nil)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, d.Execute(ctx, "hello"), context.Canceled)
}
