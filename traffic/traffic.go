// Package traffic defines the participant records exchanged with the
// dynamic-game planner: the measured pose and admissible lanes consumed by a
// planning call, and the predicted trajectory and control produced by it.
package traffic

// TrajectoryPoint is one predicted sample of a participant trajectory.
type TrajectoryPoint struct {
	X, Y   float64 // position [m]
	V      float64 // speed [m/s]
	Psi    float64 // heading [rad]
	Omega  float64 // yaw rate [rad/s]
	Beta   float64 // side-slip angle [rad]
	TStart float64 // sample start time [s]
	TEnd   float64 // sample end time [s]
}

// ControlInput is one predicted control sample.
type ControlInput struct {
	A     float64 // longitudinal acceleration [m/s²]
	Delta float64 // steering angle [rad]
}

// Participant is one traffic agent. The pose, target speed and lanes are
// inputs to a planning call; the predicted fields are populated by the
// planner and left untouched on the input.
type Participant struct {
	X, Y    float64 // current position [m]
	V       float64 // current speed [m/s]
	Psi     float64 // current heading [rad]
	VTarget float64 // desired speed [m/s]

	Center Lane // the lane the agent follows, always present
	Left   Lane // left neighbour lane, may be absent
	Right  Lane // right neighbour lane, may be absent

	PredictedTrajectory []TrajectoryPoint
	PredictedControl    []ControlInput
}

// Participants is an ordered collection of traffic agents.
type Participants []Participant
