package thread

// IsHigherPriority reports whether priority a outranks priority b under
// the scheduler's comparator: lower numeric value means higher priority.
func IsHigherPriority(a, b int8) bool {
	return a < b
}
