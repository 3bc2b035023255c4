package highlight

import (
	"strings"

	"github.com/alecthomas/chroma/v2"
	lru "github.com/hashicorp/golang-lru/v2"
	"go.uber.org/zap"

	"github.com/iw2rmb/loom/buffer"
	"github.com/iw2rmb/loom/view"
)

const (
	DefaultContextLines = 50
	DefaultCacheSize    = 64

	// trailingLines are lexed after a range so that constructs opened
	// inside it can close.
	trailingLines = 8

	// contextBytes bounds the lexer context of documents without a line index.
	contextBytes = 8 << 10
)

type Options struct {
	// Language is a Chroma lexer name. Empty means detect from Filename
	// and the start of the document.
	Language string
	Filename string

	// ContextLines is how many lines before a range are lexed with it so
	// that multi-line constructs start in the right state.
	ContextLines int
	CacheSize    int

	Logger *zap.Logger
}

// Highlighter implements view.Highlighter over a Store. Spans are cached
// per store version and range.
type Highlighter struct {
	store *buffer.Store
	lexer chroma.Lexer
	lang  string
	opt   Options
	log   *zap.Logger
	cache *lru.Cache[cacheKey, []view.HighlightSpan]
}

type cacheKey struct {
	version uint64
	r       buffer.ByteRange
}

var _ view.Highlighter = (*Highlighter)(nil)

func New(store *buffer.Store, opt Options) *Highlighter {
	if opt.ContextLines <= 0 {
		opt.ContextLines = DefaultContextLines
	}
	if opt.CacheSize <= 0 {
		opt.CacheSize = DefaultCacheSize
	}
	if opt.Logger == nil {
		opt.Logger = zap.NewNop()
	}

	sample, err := store.Read(buffer.ByteRange{End: minInt64(store.Len(), sniffLen)})
	if err != nil && !buffer.IsTransient(err) {
		sample = nil
	}
	lang := opt.Language
	if lang == "" {
		lang = Detect(opt.Filename, sample)
	}
	cache, _ := lru.New[cacheKey, []view.HighlightSpan](opt.CacheSize)
	h := &Highlighter{
		store: store,
		lexer: lexerFor(lang, sample),
		opt:   opt,
		log:   opt.Logger,
		cache: cache,
	}
	h.lang = h.lexer.Config().Name
	h.log.Debug("highlighter ready", zap.String("language", h.lang), zap.String("file", opt.Filename))
	return h
}

// Language returns the name of the lexer in use.
func (h *Highlighter) Language() string { return h.lang }

// Spans returns the styled spans within r. Unstyled text gets no span.
func (h *Highlighter) Spans(r buffer.ByteRange) []view.HighlightSpan {
	key := cacheKey{version: h.store.Version(), r: r}
	if spans, ok := h.cache.Get(key); ok {
		return spans
	}

	from, to := h.contextStart(r.Start), h.contextEnd(r.End)
	text, err := h.store.Read(buffer.ByteRange{Start: from, End: to})
	if err != nil {
		// Partial content would lex differently; try again once loaded.
		if !buffer.IsTransient(err) {
			h.log.Warn("highlight read failed", zap.Stringer("range", r), zap.Error(err))
		}
		return nil
	}
	spans, err := h.lex(string(text), from, r)
	if err != nil {
		h.log.Warn("highlight lex failed", zap.String("language", h.lang), zap.Error(err))
		return nil
	}
	h.cache.Add(key, spans)
	return spans
}

func (h *Highlighter) contextStart(off int64) int64 {
	if h.store.Indexed() {
		line, err := h.store.LineOf(off)
		if err != nil {
			return off
		}
		start, err := h.store.LineStart(maxInt64(0, line-int64(h.opt.ContextLines)))
		if err != nil {
			return off
		}
		return start
	}
	start, err := h.store.LineStartBefore(maxInt64(0, off-contextBytes))
	if err != nil || start > off {
		return off
	}
	return start
}

func (h *Highlighter) contextEnd(off int64) int64 {
	n := h.store.Len()
	if h.store.Indexed() {
		line, err := h.store.LineOf(off)
		if err != nil {
			return off
		}
		end, err := h.store.LineStart(line + trailingLines)
		if err != nil {
			return n
		}
		return end
	}
	end, err := h.store.LineEndAfter(minInt64(n, off+contextBytes/8))
	if err != nil || end < off {
		return off
	}
	return end
}

func (h *Highlighter) lex(text string, base int64, r buffer.ByteRange) ([]view.HighlightSpan, error) {
	it, err := h.lexer.Tokenise(nil, text)
	if err != nil {
		return nil, err
	}
	var out []view.HighlightSpan
	pos := 0
	for tok := it(); tok != chroma.EOF; tok = it() {
		if !strings.HasPrefix(text[pos:], tok.Value) {
			// The lexer rewrote its input (e.g. an appended newline);
			// offsets past here cannot be trusted.
			break
		}
		start, end := base+int64(pos), base+int64(pos+len(tok.Value))
		pos += len(tok.Value)
		if end <= r.Start || skipType(tok.Type) {
			continue
		}
		if start >= r.End {
			break
		}
		out = append(out, view.HighlightSpan{
			Range: buffer.ByteRange{Start: maxInt64(start, r.Start), End: minInt64(end, r.End)},
			Style: StyleKey(tok.Type),
		})
	}
	return out, nil
}

func skipType(t chroma.TokenType) bool {
	return t == chroma.Text || t == chroma.TextWhitespace || t == chroma.EOFType
}

// StyleKey is the view style key for a Chroma token type.
func StyleKey(t chroma.TokenType) view.StyleKey {
	return view.StyleKey(t.String())
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}

func maxInt64(a, b int64) int64 {
	if a > b {
		return a
	}
	return b
}
