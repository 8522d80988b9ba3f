package valueobjects

// ComputeScore returns the percentage of correct answers rounded half up.
// A session with no answers scores 0.
func ComputeScore(correct, answered int) int {
	if answered <= 0 || correct <= 0 {
		return 0
	}
	if correct > answered {
		correct = answered
	}
	return (200*correct + answered) / (2 * answered)
}
