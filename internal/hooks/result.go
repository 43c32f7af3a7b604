package hooks

// Source tells genuine model output apart from templated fallback output.
type Source string

const (
	SourceGenerated Source = "generated"
	SourceFallback  Source = "fallback"
)

// Result is the outcome of a generation call that never fails outright.
// Err carries the cause when Source is SourceFallback.
type Result[T any] struct {
	Value  T
	Source Source
	Err    error
}

func Generated[T any](v T) Result[T] { return Result[T]{Value: v, Source: SourceGenerated} }

func Fallback[T any](v T, cause error) Result[T] {
	return Result[T]{Value: v, Source: SourceFallback, Err: cause}
}

func (r Result[T]) IsFallback() bool { return r.Source == SourceFallback }
