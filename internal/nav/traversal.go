package nav

// PhysicalIndex maps the direction-agnostic logical step counter onto the
// waypoint slot it addresses: walking from the far end when reversed, the
// slot itself otherwise.
func PhysicalIndex(logical, count int, reversed bool) int {
	if reversed {
		return count - 1 - logical
	}
	return logical
}
