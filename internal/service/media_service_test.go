package service

import (
	"context"
	"coursegate/internal/util"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveDurationOrder(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, paidCourse())
	probes := 0
	media := &MediaService{
		Cache:        f.cache,
		ProbeEnabled: true,
		ProbeTimeout: time.Second,
		Probe: func(source string, timeout time.Duration) (*util.VideoInfo, error) {
			probes++
			assert.Equal(t, "https://cdn.example.com/c1-slug.m3u8", source)
			return &util.VideoInfo{Duration: 321}, nil
		},
	}
	ch := chapter("c1", true)

	d, err := media.ResolveDuration(ctx, f.sess, &ch, 100)
	require.NoError(t, err)
	assert.Equal(t, 100.0, d)

	ch.Duration = floatPtr(250)
	d, err = media.ResolveDuration(ctx, f.sess, &ch, 0)
	require.NoError(t, err)
	assert.Equal(t, 250.0, d)

	ch.Duration = nil
	d, err = media.ResolveDuration(ctx, f.sess, &ch, 0)
	require.NoError(t, err)
	assert.Equal(t, 321.0, d)

	d, err = media.ResolveDuration(ctx, f.sess, &ch, 0)
	require.NoError(t, err)
	assert.Equal(t, 321.0, d)
	assert.Equal(t, 1, probes, "probed duration is cached")
}

func TestResolveDurationProbeFailure(t *testing.T) {
	f := newFixture(t, paidCourse())
	media := &MediaService{
		Cache:        f.cache,
		ProbeEnabled: true,
		Probe: func(string, time.Duration) (*util.VideoInfo, error) {
			return nil, errors.New("ffprobe not found")
		},
	}
	ch := chapter("c1", true)

	_, err := media.ResolveDuration(context.Background(), f.sess, &ch, 0)
	assert.ErrorIs(t, err, util.ErrInvalidDuration)
}
