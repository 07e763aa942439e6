package motion

// FeatureVector is a flattened row of StatsFields values per finalized trajectory
type FeatureVector []float64

// Row returns the values contributed by the i-th trajectory of the vector
func (fv FeatureVector) Row(i int) []float64 {
	return fv[i*StatsFields : (i+1)*StatsFields]
}

// Rows returns number of trajectories the vector was built from, excluding the direction seed
func (fv FeatureVector) Rows() int {
	return len(fv) / StatsFields
}

// assembleFeatures builds feature vector from trajectories ordered newest first.
// The oldest trajectory only seeds the direction chain. Every newer trajectory contributes
// [vLong, vLat, aLong, aLat, curvature, length, turn] where turn is folded difference between
// its direction and the direction of the trajectory finalized just before it.
// Rows are laid out from the oldest pair to the newest one.
func assembleFeatures(newestFirst []*Trajectory) FeatureVector {
	if len(newestFirst) < 2 {
		return FeatureVector{}
	}
	oldest := len(newestFirst) - 1
	fv := make(FeatureVector, 0, StatsFields*oldest)
	lastDir := newestFirst[oldest].Stats().Direction
	for i := oldest - 1; i >= 0; i-- {
		st := newestFirst[i].Stats()
		turn := FoldAngle(st.Direction - lastDir)
		lastDir = st.Direction
		fv = append(fv,
			st.VelocityLong,
			st.VelocityLat,
			st.AccelLong,
			st.AccelLat,
			st.Curvature,
			st.Length,
			turn,
		)
	}
	return fv
}
