package strategy

import (
	"fmt"

	"github.com/moznion/go-optional"
	"github.com/rxtech-lab/argo-backtest/internal/indicator"
	"github.com/rxtech-lab/argo-backtest/internal/types"
)

const VolumeID = "volume"

const (
	volumeContractionRatio = 0.5
	volumeExtremeRatio     = 3.0
)

var VolumeDescriptor = Descriptor{
	ID:          VolumeID,
	DisplayName: "Volume",
	Description: "Buys on expanding volume with a rising bar; sells on shrinking volume with a falling bar or extreme volume",
	Params: []ParamSpec{
		{
			Name: "volume_factor", Type: ParamTypeFloat, Default: 1.5,
			Min: optional.Some(1.0), Max: optional.Some(3.0), Step: optional.Some(0.1),
			Description: "Volume to MA_V5 ratio that counts as expansion",
		},
	},
}

type VolumeStrategy struct {
	base
	factor   float64
	volumeMA indicator.Indicator
}

func NewVolumeStrategy(params Params) (Strategy, error) {
	vma := indicator.NewVolumeMA()
	if err := vma.Config(5, 10); err != nil {
		return nil, configError(VolumeID, err)
	}

	return &VolumeStrategy{
		base:     newBase(VolumeDescriptor, params),
		factor:   params.Float("volume_factor"),
		volumeMA: vma,
	}, nil
}

func (s *VolumeStrategy) ComputeIndicators(frame *types.Frame) error {
	if err := s.volumeMA.Compute(frame); err != nil {
		return indicatorError(VolumeID, err)
	}

	return nil
}

// GenerateSignals compares volume with its 5 and 10 bar averages. A ratio
// against an average still in warm-up never holds.
func (s *VolumeStrategy) GenerateSignals(frame *types.Frame) error {
	ma5, err := column(frame, indicator.VolumeColumn(5), s.ComputeIndicators)
	if err != nil {
		return err
	}

	ma10, err := column(frame, indicator.VolumeColumn(10), s.ComputeIndicators)
	if err != nil {
		return err
	}

	frame.InitSignals()

	for i := 1; i < len(frame.Bars); i++ {
		bar := frame.Bars[i]
		rising := bar.Close > bar.Open
		falling := bar.Close < bar.Open

		ratio5, ok5 := indicator.Ratio(bar.Volume, ma5[i])
		ratio10, ok10 := indicator.Ratio(bar.Volume, ma10[i])

		switch {
		case ok10 && ratio10 > volumeExtremeRatio:
			frame.SetSignal(i, types.SignalSell,
				fmt.Sprintf("Volume sell (%s): extreme volume ratio %.2f to MA_V10", s.paramString(), ratio10), VolumeID)
		case ok5 && ratio5 < volumeContractionRatio && falling:
			frame.SetSignal(i, types.SignalSell,
				fmt.Sprintf("Volume sell (%s): shrinking volume ratio %.2f on a falling bar", s.paramString(), ratio5), VolumeID)
		case ok5 && ratio5 > s.factor && rising:
			frame.SetSignal(i, types.SignalBuy,
				fmt.Sprintf("Volume buy (%s): volume ratio %.2f to MA_V5 on a rising bar", s.paramString(), ratio5), VolumeID)
		}
	}

	return nil
}
