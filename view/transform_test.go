package view

import (
	"testing"

	"github.com/iw2rmb/loom/buffer"
)

func baseTokens(text string) []Token { return tokenize([]byte(text), 0) }

func hintFor(text string, version uint64) ViewportHint {
	return ViewportHint{Range: buffer.ByteRange{Start: 0, End: int64(len(text))}, Version: version}
}

func TestGate_NoTransformPassesBase(t *testing.T) {
	g := NewGate(nil, nil)
	base := baseTokens("ab cd")
	res, ok := g.Apply(base, hintFor("ab cd", 0))
	if !ok || len(res.Tokens) != len(base) {
		t.Fatalf("Apply: got %d tokens ok=%v, want %d ok=true", len(res.Tokens), ok, len(base))
	}
}

func TestGate_CalledAtMostOncePerFrame(t *testing.T) {
	calls := 0
	g := NewGate(TransformFunc(func(base []Token, _ ViewportHint) (TransformResult, bool) {
		calls++
		return TransformResult{Tokens: base}, true
	}), nil)

	g.NextFrame()
	if _, ok := g.Apply(baseTokens("abc"), hintFor("abc", 0)); !ok {
		t.Fatalf("first Apply: ok=false")
	}
	// Same range and version: accepted output is reused without a call.
	if _, ok := g.Apply(baseTokens("abc"), hintFor("abc", 0)); !ok {
		t.Fatalf("reuse Apply: ok=false")
	}
	// A different range cannot be served this frame.
	res, ok := g.Apply(baseTokens("abcd"), hintFor("abcd", 0))
	if ok {
		t.Fatalf("second-range Apply: ok=true, want false")
	}
	if len(res.Tokens) != 1 || res.Tokens[0].Text != "abcd" {
		t.Fatalf("second-range Apply tokens: got %+v, want base", res.Tokens)
	}
	if calls != 1 {
		t.Fatalf("calls in one frame: got %d, want 1", calls)
	}

	g.NextFrame()
	if _, ok := g.Apply(baseTokens("abcd"), hintFor("abcd", 0)); !ok {
		t.Fatalf("next-frame Apply: ok=false")
	}
	if calls != 2 {
		t.Fatalf("calls after next frame: got %d, want 2", calls)
	}
}

func TestGate_NoResponseReusesAcceptedOutput(t *testing.T) {
	respond := true
	g := NewGate(TransformFunc(func(base []Token, _ ViewportHint) (TransformResult, bool) {
		if !respond {
			return TransformResult{}, false
		}
		return TransformResult{Tokens: append(SyntheticLine(">", ""), base...)}, true
	}), nil)

	g.NextFrame()
	first, _ := g.Apply(baseTokens("abc"), hintFor("abc", 1))
	if len(first.Tokens) != 3 {
		t.Fatalf("accepted tokens: got %d, want 3", len(first.Tokens))
	}

	respond = false
	g.NextFrame()
	again, ok := g.Apply(baseTokens("abc"), hintFor("abc", 1))
	if !ok || len(again.Tokens) != 3 || again.Tokens[0].Text != ">" {
		t.Fatalf("no response, same range: got %+v ok=%v, want prior output", again.Tokens, ok)
	}

	g.NextFrame()
	moved, _ := g.Apply(baseTokens("abc"), hintFor("abc", 2))
	if len(moved.Tokens) != 1 || moved.Tokens[0].Text != "abc" {
		t.Fatalf("no response, new version: got %+v, want base tokens", moved.Tokens)
	}
}

func TestGate_PanicFallsBackToBase(t *testing.T) {
	g := NewGate(TransformFunc(func([]Token, ViewportHint) (TransformResult, bool) {
		panic("boom")
	}), nil)
	g.NextFrame()
	res, ok := g.Apply(baseTokens("abc"), hintFor("abc", 0))
	if !ok || len(res.Tokens) != 1 || res.Tokens[0].Text != "abc" {
		t.Fatalf("panicking transform: got %+v ok=%v, want base", res.Tokens, ok)
	}
}

func TestGate_RejectsInvalidOutput(t *testing.T) {
	cases := map[string][]Token{
		"source past range": {{Kind: TokenText, Text: "x", Source: 10}},
		"source end past":   {{Kind: TokenText, Text: "abcd", Source: 0}},
		"empty text":        {{Kind: TokenText, Text: "", Source: NoSource}},
	}
	for name, out := range cases {
		out := out
		g := NewGate(TransformFunc(func([]Token, ViewportHint) (TransformResult, bool) {
			return TransformResult{Tokens: out}, true
		}), nil)
		g.NextFrame()
		res, _ := g.Apply(baseTokens("abc"), hintFor("abc", 0))
		if len(res.Tokens) != 1 || res.Tokens[0].Text != "abc" {
			t.Fatalf("%s: got %+v, want base tokens", name, res.Tokens)
		}
	}
}

func TestGate_InvalidateBumpsGeneration(t *testing.T) {
	g := NewGate(TransformFunc(func(base []Token, _ ViewportHint) (TransformResult, bool) {
		return TransformResult{Tokens: base}, true
	}), nil)
	g.NextFrame()
	g.Apply(baseTokens("abc"), hintFor("abc", 0))
	gen := g.Generation()
	g.Invalidate()
	if g.Generation() == gen {
		t.Fatalf("generation unchanged after Invalidate")
	}
	// Invalidate allows another call in the same frame.
	if _, ok := g.Apply(baseTokens("abcd"), hintFor("abcd", 0)); !ok {
		t.Fatalf("Apply after Invalidate: ok=false")
	}
}

func TestResolveOverlaps_HighestPriorityWins(t *testing.T) {
	toks := []Token{
		{Kind: TokenText, Text: "abc", Source: 0, Priority: 1},
		{Kind: TokenText, Text: "bc", Source: 1, Priority: 5},
		Synthetic("!", ""),
		{Kind: TokenText, Text: "d", Source: 3},
	}
	got := resolveOverlaps(toks)
	want := []string{"bc", "!", "d"}
	if len(got) != len(want) {
		t.Fatalf("resolved: got %+v, want %v", got, want)
	}
	for i := range want {
		if got[i].Text != want[i] {
			t.Fatalf("resolved %d: got %q, want %q", i, got[i].Text, want[i])
		}
	}
}

func TestResolveOverlaps_TieKeepsEarlier(t *testing.T) {
	toks := []Token{
		{Kind: TokenText, Text: "ab", Source: 0, Priority: 2},
		{Kind: TokenText, Text: "b", Source: 1, Priority: 2},
		{Kind: TokenText, Text: "c", Source: 2},
	}
	got := resolveOverlaps(toks)
	if len(got) != 2 || got[0].Text != "ab" || got[1].Text != "c" {
		t.Fatalf("resolved: got %+v, want [ab c]", got)
	}
}
