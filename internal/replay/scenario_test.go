package replay

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinScenarios(t *testing.T) {
	scenarios, err := Builtin()
	require.NoError(t, err)
	require.Len(t, scenarios, 2)

	assert.Equal(t, "craft_task", scenarios[0].Name)
	assert.Equal(t, "vase_selling", scenarios[1].Name)
	for _, sc := range scenarios {
		assert.NotEmpty(t, sc.Turns, sc.Name)
		assert.Equal(t, []string{"user1"}, sc.TalkingTo)
	}
	assert.Len(t, scenarios[1].Devices, 8)
}

func TestLoadScenario(t *testing.T) {
	p := filepath.Join(t.TempDir(), "shop.yaml")
	require.NoError(t, os.WriteFile(p, []byte(shopScenario), 0o644))

	sc, err := LoadScenario(p)
	require.NoError(t, err)
	assert.Equal(t, "shop", sc.Name)
	require.Len(t, sc.Turns, 3)
	assert.Equal(t, HistoryClearLast, sc.Turns[2].History)
	assert.Equal(t, "vase1:[speech,gaze]/it", sc.Turns[1].Expect.Candidate)
}

func TestLoadScenario_Missing(t *testing.T) {
	_, err := LoadScenario(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestParseScenario_Invalid(t *testing.T) {
	cases := map[string]string{
		"no name":        "turns: []",
		"missing type":   "name: x\nobjects: [{worldobjectid: a}]",
		"empty sentence": "name: x\nturns: [{id: t1, sentence: {name: s}}]",
		"duplicate turn": "name: x\nturns: [{id: t1, sentence: {elements: [{text: a}]}}, {id: t1, sentence: {elements: [{text: b}]}}]",
		"bad history":    "name: x\nturns: [{id: t1, history: forget, sentence: {elements: [{text: a}]}}]",
		"bad action":     "name: x\nturns: [{id: t1, sentence: {elements: [{text: a}]}, expect: {action: ship}}]",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := ParseScenario([]byte(doc))
			assert.Error(t, err)
		})
	}
}

func TestTurnSaliency(t *testing.T) {
	base := map[string]float64{"color": 1, "size": 0.8}
	got := turnSaliency(base, map[string]float64{"size": 0})
	assert.Equal(t, 0.0, got["size"])
	assert.Equal(t, 1.0, got["color"])
	assert.Equal(t, 0.8, base["size"])
}
