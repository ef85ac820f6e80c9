package hook

// Prepend returns a hook that applies hooks in the order they are given, followed by base.
// A nil base is treated as the identity hook.
func Prepend[T any](base func(next T) T, hooks ...func(next T) T) func(next T) T {
	if len(hooks) == 0 {
		return base
	}
	return func(next T) T {
		if base != nil {
			next = base(next)
		}
		for i := len(hooks) - 1; i >= 0; i-- {
			next = hooks[i](next)
		}
		return next
	}
}
