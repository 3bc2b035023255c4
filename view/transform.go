package view

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/iw2rmb/loom/buffer"
)

// ViewportHint describes the frame a transform is asked to serve.
type ViewportHint struct {
	// Range is the byte range the base tokens cover. Transforms only see
	// this range, never the whole document.
	Range       buffer.ByteRange
	Width       int
	Height      int
	TopViewLine int64
	Version     uint64
}

// LayoutHints lets a transform inform layout. Zero fields are unset.
type LayoutHints struct {
	WrapWidth          int
	TotalViewLines     int64
	TotalInjectedLines int64
}

type TransformResult struct {
	Tokens []Token
	Hints  LayoutHints
}

// Transform rewrites the token stream of the visible range. Returning
// ok=false means no response: the previous output is reused when it
// still applies.
type Transform interface {
	Transform(base []Token, hint ViewportHint) (res TransformResult, ok bool)
}

type TransformFunc func(base []Token, hint ViewportHint) (TransformResult, bool)

func (f TransformFunc) Transform(base []Token, hint ViewportHint) (TransformResult, bool) {
	return f(base, hint)
}

// Gate calls a Transform at most once per frame and guards the frame
// against its failures.
type Gate struct {
	transform Transform
	log       *zap.Logger

	frame      uint64
	calledIn   uint64
	calledOnce bool

	last       TransformResult
	lastRange  buffer.ByteRange
	lastVer    uint64
	lastOK     bool
	generation uint64
}

func NewGate(t Transform, log *zap.Logger) *Gate {
	if log == nil {
		log = zap.NewNop()
	}
	return &Gate{transform: t, log: log}
}

// SetTransform replaces the transform and drops its accepted output.
func (g *Gate) SetTransform(t Transform) {
	g.transform = t
	g.Invalidate()
}

// Invalidate drops the accepted output so the next frame asks again.
func (g *Gate) Invalidate() {
	g.lastOK = false
	g.last = TransformResult{}
	g.calledOnce = false
	g.generation++
}

func (g *Gate) Active() bool { return g.transform != nil }

// Generation changes whenever accepted output is dropped.
func (g *Gate) Generation() uint64 { return g.generation }

// NextFrame starts a new frame.
func (g *Gate) NextFrame() { g.frame++ }

// Apply returns the tokens to lay out for hint.Range. The second result
// is false when the transform could not be consulted in this frame and
// base tokens or stale output were used instead; callers rebuild on the
// next frame.
func (g *Gate) Apply(base []Token, hint ViewportHint) (TransformResult, bool) {
	if g.transform == nil {
		return TransformResult{Tokens: base}, true
	}
	if g.calledOnce && g.calledIn == g.frame {
		if res, ok := g.reuse(hint); ok {
			return res, true
		}
		return TransformResult{Tokens: base}, false
	}
	g.calledOnce = true
	g.calledIn = g.frame

	res, ok, err := g.call(base, hint)
	switch {
	case err != nil:
		g.log.Warn("transform failed, using base tokens", zap.Error(err), zap.Stringer("range", hint.Range))
		return TransformResult{Tokens: base}, true
	case !ok:
		if prev, ok := g.reuse(hint); ok {
			return prev, true
		}
		return TransformResult{Tokens: base}, true
	}
	if err := validateTokens(res.Tokens, hint.Range); err != nil {
		g.log.Warn("transform output rejected", zap.Error(err), zap.Stringer("range", hint.Range))
		return TransformResult{Tokens: base}, true
	}
	res.Tokens = resolveOverlaps(res.Tokens)
	g.last, g.lastRange, g.lastVer, g.lastOK = res, hint.Range, hint.Version, true
	return res, true
}

func (g *Gate) reuse(hint ViewportHint) (TransformResult, bool) {
	if g.lastOK && g.lastRange == hint.Range && g.lastVer == hint.Version {
		return g.last, true
	}
	return TransformResult{}, false
}

func (g *Gate) call(base []Token, hint ViewportHint) (res TransformResult, ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("transform panicked: %v", r)
		}
	}()
	in := append([]Token(nil), base...)
	res, ok = g.transform.Transform(in, hint)
	return res, ok, nil
}

func validateTokens(tokens []Token, r buffer.ByteRange) error {
	for i, t := range tokens {
		if t.Text == "" && t.Kind != TokenBreak {
			return fmt.Errorf("token %d: empty text", i)
		}
		if t.Source < 0 {
			continue
		}
		if t.Source < r.Start || t.Source >= r.End || t.sourceEnd() > r.End {
			return fmt.Errorf("token %d: source %d outside %s", i, t.Source, r)
		}
	}
	return nil
}

// resolveOverlaps drops sourced tokens that claim bytes already claimed
// by an earlier token, or that go backwards, keeping the higher
// priority one. Synthetic tokens always stay.
func resolveOverlaps(tokens []Token) []Token {
	kept := make([]bool, len(tokens))
	stack := make([]int, 0, len(tokens))
	for i, t := range tokens {
		if t.Source < 0 {
			kept[i] = true
			continue
		}
		keep := true
		for len(stack) > 0 {
			top := tokens[stack[len(stack)-1]]
			if t.Source >= top.sourceEnd() {
				break
			}
			if t.Priority > top.Priority {
				kept[stack[len(stack)-1]] = false
				stack = stack[:len(stack)-1]
				continue
			}
			keep = false
			break
		}
		if keep {
			kept[i] = true
			stack = append(stack, i)
		}
	}
	out := tokens[:0:0]
	for i, t := range tokens {
		if kept[i] {
			out = append(out, t)
		}
	}
	return out
}
