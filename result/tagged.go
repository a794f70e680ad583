package result

// Tagged is a general-purpose [TaggedError] for failures that need no
// fields beyond a kind and an optional cause.
type Tagged struct {
	Kind  string
	Cause error
}

// NewTagged returns a *Tagged with the given kind and cause.
func NewTagged(kind string, cause error) *Tagged {
	return &Tagged{Kind: kind, Cause: cause}
}

// Type implements [TaggedError].
func (t *Tagged) Type() string { return t.Kind }

func (t *Tagged) Error() string {
	if t.Cause == nil {
		return t.Kind
	}
	return t.Kind + ": " + t.Cause.Error()
}

func (t *Tagged) Unwrap() error { return t.Cause }
