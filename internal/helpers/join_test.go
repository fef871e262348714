package helpers

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJoinArity(t *testing.T) {
	tests := []struct {
		name string
		args Args
	}{
		{
			name: "no positional arguments",
			args: NewArgs(nil),
		},
		{
			name: "no positional arguments with glue",
			args: NewArgs(map[string]interface{}{"glue": "myGlue"}),
		},
		{
			name: "no positional arguments with unrelated named arguments",
			args: NewArgs(map[string]interface{}{"bad": "namedArg", "and": "anotherOne"}),
		},
		{
			name: "list followed by two more arguments",
			args: NewArgs(nil, []interface{}{}, "b", "c"),
		},
		{
			name: "string list followed by two more arguments",
			args: NewArgs(nil, []string{"a"}, "-", "+"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Join(tt.args)
			require.Error(t, err)
			assert.Empty(t, out)
			assert.True(t, errors.Is(err, ErrArity))

			var arityErr *ArityError
			require.True(t, errors.As(err, &arityErr))
			assert.Equal(t, NameJoin, arityErr.Helper)
			assert.Equal(t, tt.args.Argc(), arityErr.Got)
		})
	}
}

func TestJoin(t *testing.T) {
	tests := []struct {
		name string
		args Args
		want string
	}{
		{
			name: "empty list without glue",
			args: NewArgs(map[string]interface{}{}, []interface{}{}),
			want: "",
		},
		{
			name: "empty list with glue",
			args: NewArgs(map[string]interface{}{}, []interface{}{}, "-"),
			want: "",
		},
		{
			name: "empty string without glue",
			args: NewArgs(map[string]interface{}{}, ""),
			want: "",
		},
		{
			name: "empty string with glue",
			args: NewArgs(map[string]interface{}{"glue": "-"}, ""),
			want: "",
		},
		{
			name: "single item list without glue",
			args: NewArgs(nil, []string{"a"}),
			want: "a",
		},
		{
			name: "single item list with glue",
			args: NewArgs(nil, []string{"a"}, "-"),
			want: "a",
		},
		{
			name: "single string without glue",
			args: NewArgs(nil, "a"),
			want: "a",
		},
		{
			name: "single string with glue",
			args: NewArgs(map[string]interface{}{"glue": "-"}, "a"),
			want: "a",
		},
		{
			name: "list with default glue",
			args: NewArgs(nil, []interface{}{"a", "b", "c"}),
			want: "a b c",
		},
		{
			name: "list with positional glue",
			args: NewArgs(nil, []interface{}{"a", "b", "c"}, "-"),
			want: "a-b-c",
		},
		{
			name: "list ignores named glue",
			args: NewArgs(map[string]interface{}{"glue": "+"}, []interface{}{"a", "b", "c"}),
			want: "a b c",
		},
		{
			name: "positional glue wins over named glue",
			args: NewArgs(map[string]interface{}{"glue": "+"}, []string{"a", "b", "c"}, "-"),
			want: "a-b-c",
		},
		{
			name: "strings with default glue",
			args: NewArgs(map[string]interface{}{}, "a", "b", "c"),
			want: "a b c",
		},
		{
			name: "strings with named glue",
			args: NewArgs(map[string]interface{}{"glue": "-"}, "a", "b", "c"),
			want: "a-b-c",
		},
		{
			name: "strings containing spaces with multi-character glue",
			args: NewArgs(map[string]interface{}{"glue": "A B"}, "C", "D", "E"),
			want: "CA BDA BE",
		},
		{
			name: "empty named glue",
			args: NewArgs(map[string]interface{}{"glue": ""}, "a", "b"),
			want: "ab",
		},
		{
			name: "nil named glue",
			args: NewArgs(map[string]interface{}{"glue": nil}, "a", "b"),
			want: "ab",
		},
		{
			name: "mixed scalar types",
			args: NewArgs(map[string]interface{}{"glue": ","}, "a", 1, 2.5, true, nil),
			want: "a,1,2.5,true,",
		},
		{
			name: "integral floats print without exponent",
			args: NewArgs(nil, []float64{1, 2, 1e6}),
			want: "1 2 1000000",
		},
		{
			name: "nested lists are comma separated",
			args: NewArgs(nil, []interface{}{"a", []interface{}{"b", "c"}, "d"}, "|"),
			want: "a|b,c|d",
		},
		{
			name: "byte slice is text",
			args: NewArgs(nil, []byte("ab"), "cd"),
			want: "ab cd",
		},
		{
			name: "array value is a list",
			args: NewArgs(nil, [3]int{1, 2, 3}, 0),
			want: "10203",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := Join(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.want, out)
		})
	}
}

func TestJoinIsIdempotent(t *testing.T) {
	args := NewArgs(map[string]interface{}{"glue": "-"}, "a", "b", "c")

	first, err := Join(args)
	require.NoError(t, err)

	for i := 0; i < 10; i++ {
		out, err := Join(args)
		require.NoError(t, err)
		assert.Equal(t, first, out)
	}
}

func TestJoinDoesNotMutateArgs(t *testing.T) {
	list := []interface{}{"a", "b"}
	named := map[string]interface{}{"glue": "-"}

	_, err := Join(NewArgs(named, list, "+"))
	require.NoError(t, err)

	assert.Equal(t, []interface{}{"a", "b"}, list)
	assert.Equal(t, map[string]interface{}{"glue": "-"}, named)
}

type label string

func (l label) String() string { return "label:" + string(l) }

func TestStringify(t *testing.T) {
	assert.Equal(t, "", Stringify(nil))
	assert.Equal(t, "x", Stringify("x"))
	assert.Equal(t, "42", Stringify(int64(42)))
	assert.Equal(t, "0.5", Stringify(0.5))
	assert.Equal(t, "false", Stringify(false))
	assert.Equal(t, "label:x", Stringify(label("x")))
	assert.Equal(t, "1,,2", Stringify([]interface{}{1, nil, 2}))
	assert.Equal(t, "map[k:v]", Stringify(map[string]string{"k": "v"}))

	var nilString *string
	var nilInt *int
	assert.Equal(t, "", Stringify(nilString))
	assert.Equal(t, "", Stringify(nilInt))
	assert.Equal(t, "a,,b", Stringify([]interface{}{"a", nilString, "b"}))

	text := "x"
	assert.Equal(t, "x", Stringify(&text))
}
