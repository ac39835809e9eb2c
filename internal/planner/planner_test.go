package planner

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/audiobench/internal/config"
	"github.com/backmassage/audiobench/internal/naming"
)

func TestPolicyLabels(t *testing.T) {
	assert.Equal(t, "CBR", PolicyCBR.String())
	assert.Equal(t, "VBR", PolicyVBR.String())
	assert.Equal(t, "_cbr", PolicyCBR.Suffix())
	assert.Equal(t, "_vbr", PolicyVBR.Suffix())
	assert.Equal(t, "unknown", Policy(42).String())
}

func TestBuildPlan_DefaultConfig(t *testing.T) {
	cfg := config.DefaultConfig()
	require.NoError(t, cfg.Validate())

	plan := BuildPlan(&cfg, "/music/Album/song.wav", nil)

	assert.Equal(t, "/music/Album/song.wav", plan.InputPath)
	assert.Equal(t, "song", plan.Stem)
	require.Len(t, plan.Outputs, 2)

	cbr := plan.Outputs[0]
	assert.Equal(t, PolicyCBR, cbr.Policy)
	assert.Equal(t, filepath.Join("output_test", "song_cbr.mp3"), cbr.Path)
	assert.Equal(t, []string{"-b:a", "320k"}, cbr.Args)

	vbr := plan.Outputs[1]
	assert.Equal(t, PolicyVBR, vbr.Policy)
	assert.Equal(t, filepath.Join("output_test", "song_vbr.mp3"), vbr.Path)
	assert.Equal(t, []string{"-q:a", "0"}, vbr.Args)
}

func TestBuildPlan_OutputContainerIgnoresInputExtension(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.OutputDir = "/out"
	for _, in := range []string{"a.flac", "a.M4A", "a.mp3", "a.WAV"} {
		plan := BuildPlan(&cfg, in, nil)
		o, ok := plan.Output(PolicyVBR)
		require.True(t, ok)
		assert.Equal(t, "/out/a_vbr.mp3", o.Path, in)
	}
}

func TestBuildPlan_CustomRates(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.CBRBitrate = "192k"
	cfg.VBRQuality = 2

	plan := BuildPlan(&cfg, "x.flac", nil)
	cbr, _ := plan.Output(PolicyCBR)
	vbr, _ := plan.Output(PolicyVBR)
	assert.Equal(t, []string{"-b:a", "192k"}, cbr.Args)
	assert.Equal(t, []string{"-q:a", "2"}, vbr.Args)
}

func TestBuildPlan_ResolvesStemCollisions(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.OutputDir = "/out"
	resolver := naming.NewCollisionResolver()

	first := BuildPlan(&cfg, "/in/song.wav", resolver)
	second := BuildPlan(&cfg, "/in/song.flac", resolver)

	assert.Equal(t, "song", first.Stem)
	assert.Equal(t, "song - dup1", second.Stem)
	cbr, _ := second.Output(PolicyCBR)
	assert.Equal(t, "/out/song - dup1_cbr.mp3", cbr.Path)
}

func TestFilePlan_OutputMissing(t *testing.T) {
	plan := &FilePlan{}
	_, ok := plan.Output(PolicyCBR)
	assert.False(t, ok)
}
