// Package beam defines the value types exchanged with the optics engine.
//
//   - [PhaseMatrix]: 7×7 homogeneous transfer matrix (linear map + translation)
//   - [PhaseVector]: six phase-space coordinates plus the homogeneous 1
//   - [Twiss], [TwissSet]: per-plane ellipse parameters
//   - [Plane]: the (x,x'), (y,y') and (z,z') planes
//
// All values are plain arrays and copy on assignment, so they may be shared
// between goroutines without locking.
//
// # Construction
//
// Matrices from external sources go through [NewPhaseMatrix], which checks
// the shape and the homogeneous last row:
//
//	m, err := beam.NewPhaseMatrix(rows)
//	if errors.Is(err, beam.ErrShapeMismatch) {
//	    // wrong number of rows or columns
//	}
//
// [FromTwiss] builds an uncoupled periodic map from known Twiss parameters
// and phase advances.
package beam
