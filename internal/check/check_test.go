package check

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/backmassage/audiobench/internal/config"
	"github.com/backmassage/audiobench/internal/tool"
	"github.com/backmassage/audiobench/internal/tool/tooltest"
)

type recLogger struct {
	lines []string
}

func (l *recLogger) add(level, format string, args ...interface{}) {
	l.lines = append(l.lines, level+" "+fmt.Sprintf(format, args...))
}
func (l *recLogger) Info(f string, a ...interface{})    { l.add("INFO", f, a...) }
func (l *recLogger) Success(f string, a ...interface{}) { l.add("SUCCESS", f, a...) }
func (l *recLogger) Warn(f string, a ...interface{})    { l.add("WARN", f, a...) }
func (l *recLogger) Error(f string, a ...interface{})   { l.add("ERROR", f, a...) }

func (l *recLogger) has(prefix string) bool {
	return slices.ContainsFunc(l.lines, func(s string) bool { return strings.HasPrefix(s, prefix) })
}

const encodersOutput = `Encoders:
 A..... = Audio
 ------
 A....D aac                  AAC (Advanced Audio Coding)
 A....D libmp3lame           libmp3lame MP3 (MPEG audio layer 3) (codec mp3)
 A....D libopus              libopus Opus
`

// healthyFFmpeg answers -version, -encoders and test encodes.
func healthyFFmpeg(args []string) (tool.Result, error) {
	switch {
	case slices.Contains(args, "-version"):
		return tool.Result{Stdout: []byte("ffmpeg version 7.1 Copyright (c) 2000-2024\nbuilt with gcc")}, nil
	case slices.Contains(args, "-encoders"):
		return tool.Result{Stdout: []byte(encodersOutput)}, nil
	}
	return tool.Result{}, nil
}

func allFound(string) error { return nil }

func missing(names ...string) LookPathFunc {
	return func(name string) error {
		if slices.Contains(names, name) {
			return errors.New("executable file not found in $PATH")
		}
		return nil
	}
}

func TestCheckDeps_OK(t *testing.T) {
	cfg := config.DefaultConfig()
	fake := tooltest.NewFake().Handle("ffmpeg", healthyFFmpeg)
	c := &Checker{Runner: fake, LookPath: allFound}

	require.NoError(t, c.CheckDeps(context.Background(), &cfg))
	calls := fake.CallsTo("ffmpeg")
	require.Len(t, calls, 1)
	assert.Equal(t, TestEncodeArgs("libmp3lame"), calls[0].Args)
}

func TestCheckDeps_Sentinels(t *testing.T) {
	cases := []struct {
		name   string
		look   LookPathFunc
		ffmpeg tooltest.HandlerFunc
		want   error
	}{
		{"no ffmpeg", missing("ffmpeg"), healthyFFmpeg, ErrFfmpegNotFound},
		{"no ffprobe", missing("ffprobe"), healthyFFmpeg, ErrFfprobeNotFound},
		{"encoder broken", allFound, func([]string) (tool.Result, error) {
			return tooltest.Exit("ffmpeg", 1, "Unknown encoder 'libmp3lame'")
		}, ErrEncoderUnusable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.DefaultConfig()
			c := &Checker{Runner: tooltest.NewFake().Handle("ffmpeg", tc.ffmpeg), LookPath: tc.look}
			err := c.CheckDeps(context.Background(), &cfg)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestRunCheck_Healthy(t *testing.T) {
	cfg := config.DefaultConfig()
	log := &recLogger{}
	c := &Checker{Runner: tooltest.NewFake().Handle("ffmpeg", healthyFFmpeg), LookPath: allFound}

	require.NoError(t, c.RunCheck(context.Background(), &cfg, log))
	assert.True(t, log.has("SUCCESS ffmpeg: ffmpeg version 7.1"))
	assert.True(t, log.has("INFO   A....D libmp3lame"))
	assert.False(t, log.has("INFO   A....D libopus"))
	assert.True(t, log.has("SUCCESS libmp3lame -b:a 320k works"))
	assert.True(t, log.has("SUCCESS libmp3lame -q:a 0 works"))
	assert.False(t, log.has("WARN"))
}

func TestRunCheck_VBRUnsupported(t *testing.T) {
	cfg := config.DefaultConfig()
	log := &recLogger{}
	ffmpeg := func(args []string) (tool.Result, error) {
		if slices.Contains(args, "-q:a") {
			return tooltest.Exit("ffmpeg", 1, "Error setting option")
		}
		return healthyFFmpeg(args)
	}
	c := &Checker{Runner: tooltest.NewFake().Handle("ffmpeg", ffmpeg), LookPath: allFound}

	err := c.RunCheck(context.Background(), &cfg, log)
	assert.ErrorIs(t, err, ErrEncoderUnusable)
	assert.True(t, log.has("SUCCESS libmp3lame -b:a 320k works"))
	assert.True(t, log.has("ERROR libmp3lame -q:a 0 test encode failed"))
}

func TestRunCheck_MissingFfmpegStops(t *testing.T) {
	cfg := config.DefaultConfig()
	log := &recLogger{}
	fake := tooltest.NewFake()
	c := &Checker{Runner: fake, LookPath: missing("ffmpeg")}

	err := c.RunCheck(context.Background(), &cfg, log)
	assert.ErrorIs(t, err, ErrFfmpegNotFound)
	assert.Empty(t, fake.Calls())
}

func TestRunCheck_UnlistedEncoderWarns(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.AudioEncoder = "mp3_mf"
	log := &recLogger{}
	c := &Checker{Runner: tooltest.NewFake().Handle("ffmpeg", healthyFFmpeg), LookPath: allFound}

	require.NoError(t, c.RunCheck(context.Background(), &cfg, log))
	assert.True(t, log.has("WARN Configured encoder mp3_mf is not listed"))
}

func TestTestEncodeArgs(t *testing.T) {
	got := TestEncodeArgs("libmp3lame", "-q:a", "0")
	assert.Equal(t, []string{"-c:a", "libmp3lame", "-q:a", "0", "-f", "null", "-"}, got[len(got)-7:])
	assert.Contains(t, got, "sine=frequency=1000:duration=0.1")
}
