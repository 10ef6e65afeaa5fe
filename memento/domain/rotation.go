package domain

// NextType returns the type that follows lastType in the Quote -> Historical Example -> Exercise cycle.
// An empty or unrecognized lastType restarts the cycle at Quote.
func NextType(lastType string) PostType {
	switch PostType(lastType) {
	case TypeQuote:
		return TypeHistoricalExample
	case TypeHistoricalExample:
		return TypeExercise
	default:
		return TypeQuote
	}
}
