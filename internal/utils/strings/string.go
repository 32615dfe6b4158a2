package strings

// Pluralize picks the word form matching count
func Pluralize(singular, plural string, count int) string {
	if count == 1 {
		return singular
	}
	return plural
}
