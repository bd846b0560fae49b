package fallback

type Shape int

const (
	ShapeEmpty Shape = iota
	ShapeSequence
	ShapeEntity
)

func (s Shape) String() string {
	switch s {
	case ShapeSequence:
		return "sequence"
	case ShapeEntity:
		return "entity"
	default:
		return "empty"
	}
}

// Result is what a data source call produced: a list, a single entity, or nothing.
type Result[T any] struct {
	shape  Shape
	items  []T
	entity T
}

func Sequence[T any](items []T) Result[T] {
	return Result[T]{shape: ShapeSequence, items: items}
}

func Entity[T any](v T) Result[T] {
	return Result[T]{shape: ShapeEntity, entity: v}
}

func Empty[T any]() Result[T] {
	return Result[T]{shape: ShapeEmpty}
}

func (r Result[T]) Shape() Shape { return r.shape }

// Items returns the sequence. It is nil for entity and empty results.
func (r Result[T]) Items() []T { return r.items }

func (r Result[T]) Entity() (T, bool) {
	return r.entity, r.shape == ShapeEntity
}

// Len is the number of items carried: the sequence length, 1 for an entity, 0 otherwise.
func (r Result[T]) Len() int {
	switch r.shape {
	case ShapeSequence:
		return len(r.items)
	case ShapeEntity:
		return 1
	default:
		return 0
	}
}

// satisfies reports whether a remote result is good enough to serve.
// Sequences need at least threshold items (and never zero); entities always pass.
func (r Result[T]) satisfies(threshold int) bool {
	switch r.shape {
	case ShapeSequence:
		return len(r.items) > 0 && len(r.items) >= threshold
	case ShapeEntity:
		return true
	default:
		return false
	}
}
