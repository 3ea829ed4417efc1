package cmd

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/notargets/gomls/InputParameters"
)

func TestRunPeaks(t *testing.T) {
	fileInput := []byte(`
Title: Test Case
RadiusFactor: 2
BasisOrder: 2
Kernel: WendlandC2
NumProcs: 3
GridN: 40
NumFields: 2
`)
	ip := InputParameters.NewMLSParameters()
	require.NoError(t, ip.Parse(fileInput))
	res, err := RunPeaks(ip)
	require.NoError(t, err)
	assert.Equal(t, 39*39, res.Targets)
	assert.Equal(t, 0, res.Stats.ZeroRows)
	assert.Equal(t, 39*39, res.Stats.Targets)
	assert.Less(t, res.MaxError, 5.e-2)
	assert.Less(t, res.LinearError, 1.e-9)

	ip.NumFields = 1
	ip.NumProcs = 1
	single, err := RunPeaks(ip)
	require.NoError(t, err)
	assert.InDelta(t, res.L2Error, single.L2Error, 1.e-9)
	assert.Equal(t, 0., single.LinearError)
}

func TestRunPeaksRejectsBadInput(t *testing.T) {
	ip := InputParameters.NewMLSParameters()
	ip.Kernel = "Gaussian"
	_, err := RunPeaks(ip)
	assert.Error(t, err)

	ip = InputParameters.NewMLSParameters()
	ip.Dimension = 3
	_, err = RunPeaks(ip)
	assert.Error(t, err)
}
