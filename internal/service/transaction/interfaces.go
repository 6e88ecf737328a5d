package transaction

// MetricsRecorder receives fee and build events.
type MetricsRecorder interface {
	FeeEstimated(atoms int64)
	TxBuilt(kind string, inputs int)
}

type nopRecorder struct{}

func (nopRecorder) FeeEstimated(int64)  {}
func (nopRecorder) TxBuilt(string, int) {}
