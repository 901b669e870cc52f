package writer

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestApplyOptionsInOrder(t *testing.T) {
	require := require.New(t)

	cfg := &config{}
	err := applyOptions(cfg, WithBigEndian(), WithInterleave(), WithAppendOptimization())
	require.NoError(err)
	require.True(cfg.bigEndian)
	require.True(cfg.interleave)
	require.True(cfg.appendOptimization)
}

func TestApplyOptionsStopsAtFirstError(t *testing.T) {
	require := require.New(t)

	boom := errors.New("boom")

	cfg := &config{}
	err := applyOptions(cfg,
		WithBigEndian(),
		func(*config) error { return boom },
		WithInterleave(),
	)
	require.ErrorIs(err, boom)
	require.True(cfg.bigEndian)
	require.False(cfg.interleave, "option after the failing one must not run")
}

func TestApplyOptionsEmpty(t *testing.T) {
	require := require.New(t)

	cfg := &config{}
	require.NoError(applyOptions(cfg))
	require.Equal(&config{}, cfg)
}
