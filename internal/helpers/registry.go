package helpers

const (
	// NameJoin is the template name of the join helper
	NameJoin = "join"

	// NameModChoose is the template name of the modChoose helper
	NameModChoose = "modChoose"
)

// Helpers returns the helper set keyed by template name. Each call returns a
// new map, so callers may add their own helpers to it.
func Helpers() map[string]Func {
	return map[string]Func{
		NameJoin:      JoinFunc,
		NameModChoose: ModChoose,
	}
}
