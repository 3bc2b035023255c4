package buffer

// BufferKind names the underlying buffer a piece references.
type BufferKind uint8

const (
	// Original is the immutable source the store was loaded from.
	Original BufferKind = iota
	// Added is the append-only edit log.
	Added
)

func (k BufferKind) String() string {
	if k == Added {
		return "added"
	}
	return "original"
}

// Piece references a contiguous span of one underlying buffer.
type Piece struct {
	Buffer BufferKind
	Start  int64
	Len    int64
}

// pieceLines answers newline queries for a single piece. pieceNewlines
// returns -1 when the piece's buffer has no line index.
type pieceLines interface {
	pieceNewlines(p Piece) int64
	pieceNthNewline(p Piece, k int64) int64
}

// node is an immutable treap node. Edits build new nodes along the
// affected path and share everything else, so a tree root is a snapshot.
type node struct {
	piece       Piece
	prio        uint64
	left, right *node

	bytes    int64
	newlines int64 // -1 when any piece in the subtree is unindexed
	pieces   int
}

func (n *node) size() int64 {
	if n == nil {
		return 0
	}
	return n.bytes
}

func (n *node) lineCount() int64 {
	if n == nil {
		return 0
	}
	return n.newlines
}

func (n *node) count() int {
	if n == nil {
		return 0
	}
	return n.pieces
}

type pieceTree struct {
	root  *node
	lines pieceLines
	seed  uint64
}

// nextPrio is splitmix64; priorities only need to be well spread.
func (t *pieceTree) nextPrio() uint64 {
	t.seed += 0x9e3779b97f4a7c15
	z := t.seed
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

func (t *pieceTree) leaf(p Piece) *node {
	return t.build(p, t.nextPrio(), nil, nil)
}

func (t *pieceTree) build(p Piece, prio uint64, left, right *node) *node {
	n := &node{piece: p, prio: prio, left: left, right: right}
	n.bytes = left.size() + p.Len + right.size()
	n.pieces = left.count() + 1 + right.count()
	nl := t.lines.pieceNewlines(p)
	if nl < 0 || left.lineCount() < 0 || right.lineCount() < 0 {
		n.newlines = -1
	} else {
		n.newlines = left.lineCount() + nl + right.lineCount()
	}
	return n
}

func (t *pieceTree) withChildren(n *node, left, right *node) *node {
	if n.left == left && n.right == right {
		return n
	}
	return t.build(n.piece, n.prio, left, right)
}

// split returns the trees holding bytes [0, off) and [off, size).
// A piece straddling off is cut in two.
func (t *pieceTree) split(n *node, off int64) (*node, *node) {
	if n == nil {
		return nil, nil
	}
	lb := n.left.size()
	switch {
	case off <= lb:
		l, r := t.split(n.left, off)
		return l, t.withChildren(n, r, n.right)
	case off >= lb+n.piece.Len:
		l, r := t.split(n.right, off-lb-n.piece.Len)
		return t.withChildren(n, n.left, l), r
	}
	k := off - lb
	lp := Piece{Buffer: n.piece.Buffer, Start: n.piece.Start, Len: k}
	rp := Piece{Buffer: n.piece.Buffer, Start: n.piece.Start + k, Len: n.piece.Len - k}
	return t.merge(n.left, t.build(lp, n.prio, nil, nil)), t.merge(t.leaf(rp), n.right)
}

// merge concatenates a and b; every byte of a precedes every byte of b.
func (t *pieceTree) merge(a, b *node) *node {
	if a == nil {
		return b
	}
	if b == nil {
		return a
	}
	if a.prio > b.prio {
		return t.withChildren(a, a.left, t.merge(a.right, b))
	}
	return t.withChildren(b, t.merge(a, b.left), b.right)
}

// last returns the final piece of n.
func (t *pieceTree) last(n *node) (Piece, bool) {
	if n == nil {
		return Piece{}, false
	}
	for n.right != nil {
		n = n.right
	}
	return n.piece, true
}

// each visits, in order, every piece overlapping r together with its
// document offset. Visiting stops when fn returns false.
func (t *pieceTree) each(n *node, base int64, r ByteRange, fn func(p Piece, at int64) bool) bool {
	if n == nil || r.End <= base || r.Start >= base+n.bytes {
		return true
	}
	if !t.each(n.left, base, r, fn) {
		return false
	}
	at := base + n.left.size()
	if n.piece.Len > 0 && r.Start < at+n.piece.Len && at < r.End {
		if !fn(n.piece, at) {
			return false
		}
	}
	return t.each(n.right, at+n.piece.Len, r, fn)
}

// newlinesBefore counts newlines in [0, off). The subtree must be indexed.
func (t *pieceTree) newlinesBefore(n *node, off int64) int64 {
	var total int64
	for n != nil {
		lb := n.left.size()
		if off <= lb {
			n = n.left
			continue
		}
		total += n.left.lineCount()
		k := off - lb
		if k < n.piece.Len {
			return total + t.lines.pieceNewlines(Piece{Buffer: n.piece.Buffer, Start: n.piece.Start, Len: k})
		}
		total += t.lines.pieceNewlines(n.piece)
		off -= lb + n.piece.Len
		n = n.right
	}
	return total
}

// nthNewline returns the document offset of the k-th (1-based) newline,
// or -1 if the tree has fewer. The subtree must be indexed.
func (t *pieceTree) nthNewline(n *node, k int64) int64 {
	var base int64
	for n != nil {
		if ln := n.left.lineCount(); k <= ln {
			n = n.left
			continue
		} else {
			k -= ln
		}
		at := base + n.left.size()
		pn := t.lines.pieceNewlines(n.piece)
		if k <= pn {
			return at + t.lines.pieceNthNewline(n.piece, k)
		}
		k -= pn
		base = at + n.piece.Len
		n = n.right
	}
	return -1
}
