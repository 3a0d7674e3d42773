package bot

// Weights are the heuristic constants of the evaluator. Only their relative
// ordering matters; callers may tune them.
type Weights struct {
	CaptureNormal int
	CaptureKing   int
	ThreatNormal  int
	ThreatKing    int
	Quiet         int
	Promotion     int

	// Multipliers applied to the opponent's best reply when the moved piece
	// can be taken right away. For a multi-capture the product is halved,
	// rounding up, so 3*3 becomes 5.
	KillableNormal int
	KillableKing   int

	// PenaltyOffset is subtracted from a bucket rank to get its penalty, so the
	// lowest PenaltyOffset buckets turn into bonuses.
	PenaltyOffset int

	FutureCapture  int
	SafeQuietBonus int
}

func DefaultWeights() Weights {
	return Weights{
		CaptureNormal:  2,
		CaptureKing:    3,
		ThreatNormal:   2,
		ThreatKing:     3,
		Quiet:          1,
		Promotion:      2,
		KillableNormal: 2,
		KillableKing:   3,
		PenaltyOffset:  2,
		FutureCapture:  2,
		SafeQuietBonus: 1,
	}
}

func (w Weights) capture(king bool) int {
	if king {
		return w.CaptureKing
	}
	return w.CaptureNormal
}

func (w Weights) threat(king bool) int {
	if king {
		return w.ThreatKing
	}
	return w.ThreatNormal
}

func (w Weights) killable(king bool) int {
	if king {
		return w.KillableKing
	}
	return w.KillableNormal
}
