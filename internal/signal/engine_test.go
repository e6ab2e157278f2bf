package signal

import (
	"testing"
	"time"

	"github.com/sawpanic/tradesignal/internal/model"
	"github.com/stretchr/testify/require"
)

func bullishTechnicals() model.Technicals {
	return model.Technicals{
		RSI:       75,
		MACD:      model.MACDValue{Histogram: 0.5},
		EMA9:      105,
		EMA20:     102,
		EMA50:     98,
		Bollinger: model.Bollinger{Position: 0.9},
		ADX:       model.ADXResult{ADX: 30, Strength: model.TrendStrong, Direction: model.Bullish},
	}
}

func TestBuildFeatures_BullishInputsYieldPositiveMomentumFeatures(t *testing.T) {
	in := Inputs{
		Quote:      model.Quote{Last: 106, Volume: 1_000_000, VWAP: 104},
		Technicals: bullishTechnicals(),
		AvgVolume20d: 500_000,
		Regime:     model.RegimeTrendingUp,
	}
	f := BuildFeatures(in)

	require.Greater(t, f[model.FeatRSI], 0.0)
	require.Greater(t, f[model.FeatEMAAlign], 0.0)
	require.Greater(t, f[model.FeatADX], 0.0)
}

func TestScore_BullishFeaturesProduceBullishDirection(t *testing.T) {
	in := Inputs{
		Quote:        model.Quote{Last: 106, Volume: 1_000_000, VWAP: 104},
		Technicals:   bullishTechnicals(),
		AvgVolume20d: 500_000,
		Regime:       model.RegimeTrendingUp,
	}
	f := BuildFeatures(in)

	result := Score("AAPL", f, model.RegimeTrendingUp, nil, time.Now())

	require.Equal(t, model.Bullish, result.Direction)
	require.GreaterOrEqual(t, result.Confidence, 50.0)
	require.LessOrEqual(t, result.Confidence, 95.0)
}

func TestScore_ConfidenceNeverExceedsNinetyFive(t *testing.T) {
	var f [model.FeatureVectorSize]float64
	for i := range f {
		f[i] = 1
	}
	result := Score("MEGA", f, model.RegimeTrendingUp, nil, time.Now())
	require.LessOrEqual(t, result.Confidence, 95.0)
}

func TestScore_EnsembleBlendRoundsToInteger(t *testing.T) {
	var f [model.FeatureVectorSize]float64
	ml := 80.0
	result := Score("BLEND", f, model.RegimeUnknown, &ml, time.Now())

	require.Equal(t, result.Confidence, float64(int(result.Confidence)))
}

func TestComputeSqueezeScore_AllFactorsYieldExtreme(t *testing.T) {
	got := ComputeSqueezeScore("GME", SqueezeInputs{
		ShortVolumeRatio:      0.62,
		FTDs:                  1_250_000,
		ShortInterestPctFloat: 24.5,
	})
	require.Equal(t, 6, got.Score)
	require.Equal(t, model.SqueezeExtreme, got.Label)
}

func TestComputeSqueezeScore_BadSIDataIsZeroed(t *testing.T) {
	got := ComputeSqueezeScore("BADDATA", SqueezeInputs{ShortInterestPctFloat: 150})
	require.Equal(t, 0, got.Score)
}

func TestComputeSqueezeScore_NoFactorsYieldLow(t *testing.T) {
	got := ComputeSqueezeScore("BORING", SqueezeInputs{})
	require.Equal(t, 0, got.Score)
	require.Equal(t, model.SqueezeLow, got.Label)
}

func TestGenerateSetup_LongHasCorrectOrdering(t *testing.T) {
	pivots := model.Pivots{R1: 112, R2: 120, S1: 95}
	setup := GenerateSetup(model.Bullish, 100, 3, pivots, 80, model.Midday)

	require.NotNil(t, setup)
	require.Equal(t, model.Long, setup.Direction)
	require.Less(t, setup.Stop, setup.Entry)
	require.Less(t, setup.Entry, setup.Target1)
	require.LessOrEqual(t, setup.Target1, setup.Target2)
}

func TestGenerateSetup_ShortHasCorrectOrdering(t *testing.T) {
	pivots := model.Pivots{S1: 90, S2: 80, R1: 108}
	setup := GenerateSetup(model.Bearish, 100, 3, pivots, 80, model.Midday)

	require.NotNil(t, setup)
	require.Equal(t, model.Short, setup.Direction)
	require.Greater(t, setup.Stop, setup.Entry)
	require.Greater(t, setup.Entry, setup.Target1)
	require.GreaterOrEqual(t, setup.Target1, setup.Target2)
}

func TestGenerateSetup_NeutralReturnsNil(t *testing.T) {
	setup := GenerateSetup(model.Neutral, 100, 3, model.Pivots{}, 50, model.Midday)
	require.Nil(t, setup)
}

func TestGenerateSetup_RiskRewardIsAlwaysTwo(t *testing.T) {
	setup := GenerateSetup(model.Bullish, 160, 5, model.Pivots{}, 60, model.Midday)
	require.NotNil(t, setup)
	require.InDelta(t, 2.0, setup.RiskReward, 1e-9)
}
