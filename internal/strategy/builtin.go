package strategy

// RegisterBuiltins registers every built-in strategy with r.
func RegisterBuiltins(r Registry) error {
	builtins := []struct {
		descriptor  Descriptor
		constructor Constructor
	}{
		{KDJDescriptor, NewKDJStrategy},
		{SMA20Descriptor, NewSMA20Strategy},
		{VolumeDescriptor, NewVolumeStrategy},
		{MACDDescriptor, NewMACDStrategy},
		{RSIDescriptor, NewRSIStrategy},
		{StopLossDescriptor, NewStopLossStrategy},
		{CombinedDescriptor, NewCombinedConstructor(r)},
	}

	for _, b := range builtins {
		if err := r.Register(b.descriptor, b.constructor); err != nil {
			return err
		}
	}

	return nil
}
