package evaluate

import "slices"

// MissingTags returns the required keys absent from present, in required order.
func MissingTags(required, present []string) []string {
	missing := make([]string, 0)
	for _, key := range required {
		if !slices.Contains(present, key) {
			missing = append(missing, key)
		}
	}
	return missing
}

// TagsCompliant is true when the resource carries tags and none of the required keys is missing.
func TagsCompliant(required, present []string) bool {
	return len(present) > 0 && len(MissingTags(required, present)) == 0
}
