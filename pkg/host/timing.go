package host

import "time"

// Timing is the computed transition/animation timing of a node.
type Timing struct {
	TransitionDuration time.Duration
	TransitionDelay    time.Duration
	// TransitionProps is the number of transitioned properties; one
	// transitionend event is expected per property.
	TransitionProps int

	AnimationDuration time.Duration
	AnimationDelay    time.Duration
	// AnimationCount is the number of animations; one animationend event
	// is expected per animation.
	AnimationCount int
}

// Resolved is the outcome of inspecting a Timing.
type Resolved struct {
	Kind    CompletionKind
	Timeout time.Duration
	Events  int
}

// Resolve picks the longer of the transition and animation timelines.
// A zero timeout resolves to CompletionNone.
func (t Timing) Resolve() Resolved {
	transition := t.TransitionDuration + t.TransitionDelay
	animation := t.AnimationDuration + t.AnimationDelay

	switch {
	case transition <= 0 && animation <= 0:
		return Resolved{Kind: CompletionNone}
	case transition >= animation:
		return Resolved{Kind: CompletionTransition, Timeout: transition, Events: max(t.TransitionProps, 1)}
	default:
		return Resolved{Kind: CompletionAnimation, Timeout: animation, Events: max(t.AnimationCount, 1)}
	}
}

// Max merges two timings, keeping the longest value of each field.
func (t Timing) Max(o Timing) Timing {
	return Timing{
		TransitionDuration: max(t.TransitionDuration, o.TransitionDuration),
		TransitionDelay:    max(t.TransitionDelay, o.TransitionDelay),
		TransitionProps:    max(t.TransitionProps, o.TransitionProps),
		AnimationDuration:  max(t.AnimationDuration, o.AnimationDuration),
		AnimationDelay:     max(t.AnimationDelay, o.AnimationDelay),
		AnimationCount:     max(t.AnimationCount, o.AnimationCount),
	}
}
