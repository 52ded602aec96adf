package strx

// Small string helpers shared across services.

// Coalesce picks s unless it is empty, in which case the fallback d is used.
func Coalesce(s, d string) string {
	if s != "" {
		return s
	}
	return d
}
