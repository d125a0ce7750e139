package types

type IndicatorType string

const (
	IndicatorTypeMA       IndicatorType = "ma"
	IndicatorTypeEMA      IndicatorType = "ema"
	IndicatorTypeKDJ      IndicatorType = "kdj"
	IndicatorTypeMACD     IndicatorType = "macd"
	IndicatorTypeRSI      IndicatorType = "rsi"
	IndicatorTypeVolumeMA IndicatorType = "volume_ma"
)
