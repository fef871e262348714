package helpers

import "strings"

// DefaultGlue separates joined items when no delimiter is given
const DefaultGlue = " "

// GlueKey is the named argument holding the delimiter for scalar joins
const GlueKey = "glue"

// Join concatenates values with a delimiter.
//
// When the first positional argument is a sequence, its items are joined and
// the optional second positional argument is the delimiter; the named glue is
// not consulted. Otherwise every positional argument is joined, using the
// named glue when present.
func Join(args Args) (string, error) {
	argc := args.Argc()
	first := args.Arg(0)
	items, isSequence := Classify(first)

	if argc == 0 || (isSequence && argc > 2) {
		return "", &ArityError{
			Helper: NameJoin,
			Want:   "at least 1 (at most 2 when the first argument is a list: the list and the delimiter)",
			Got:    argc,
		}
	}

	glue := DefaultGlue
	list := args.Positional

	if isSequence {
		list = items
		if argc == 2 {
			glue = Stringify(args.Arg(1))
		}
	} else if g, ok := args.NamedArg(GlueKey); ok {
		glue = Stringify(g)
	}

	parts := make([]string, len(list))
	for i, item := range list {
		parts[i] = Stringify(item)
	}

	return strings.Join(parts, glue), nil
}

// JoinFunc adapts Join to the Func signature
func JoinFunc(args Args) (interface{}, error) {
	out, err := Join(args)
	if err != nil {
		return nil, err
	}
	return out, nil
}
