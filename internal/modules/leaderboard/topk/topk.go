// Package topk keeps a bounded, always-sorted view of the highest scores.
//
// Every Update costs O(K): the board is a sorted slice of at most K entries
// plus an address -> position index, and an entry only ever moves by
// swapping with its neighbours. Nothing here scans the full population.
//
// Ordering is by score descending; equal scores are ordered by ascending
// sequence number, so the earlier registrant wins a tie.
//
// Scores are expected to be non-decreasing per address. That is what makes
// the incremental scheme exact: an address outside the board can only get in
// by beating the current minimum, and a member never needs to be replaced by
// someone the board has forgotten. A decreasing score is still re-sorted
// locally but will not pull a non-member back in.
package topk

// Entry is one ranked address.
type Entry struct {
	Address string
	Score   uint64
	Seq     uint64
}

// Board is not safe for concurrent use; callers serialize access.
type Board struct {
	capacity int
	entries  []Entry
	index    map[string]int
}

// New returns an empty board holding at most capacity entries.
// It panics if capacity is not positive.
func New(capacity int) *Board {
	if capacity < 1 {
		panic("topk: capacity must be positive")
	}
	return &Board{
		capacity: capacity,
		entries:  make([]Entry, 0, capacity),
		index:    make(map[string]int, capacity),
	}
}

// ranksAbove reports whether a belongs strictly ahead of b.
func ranksAbove(a, b Entry) bool {
	if a.Score != b.Score {
		return a.Score > b.Score
	}
	return a.Seq < b.Seq
}

// Update records address's current score and reports whether the board
// changed. seq is the address's tie-break key and must be stable.
func (b *Board) Update(address string, score, seq uint64) bool {
	if i, ok := b.index[address]; ok {
		if b.entries[i].Score == score {
			return false
		}
		b.entries[i].Score = score
		i = b.siftUp(i)
		b.siftDown(i)
		return true
	}

	e := Entry{Address: address, Score: score, Seq: seq}
	if len(b.entries) < b.capacity {
		b.entries = append(b.entries, e)
		last := len(b.entries) - 1
		b.index[address] = last
		b.siftUp(last)
		return true
	}

	last := len(b.entries) - 1
	if !ranksAbove(e, b.entries[last]) {
		return false
	}
	delete(b.index, b.entries[last].Address)
	b.entries[last] = e
	b.index[address] = last
	b.siftUp(last)
	return true
}

func (b *Board) siftUp(i int) int {
	for i > 0 && ranksAbove(b.entries[i], b.entries[i-1]) {
		b.swap(i, i-1)
		i--
	}
	return i
}

func (b *Board) siftDown(i int) int {
	for i < len(b.entries)-1 && ranksAbove(b.entries[i+1], b.entries[i]) {
		b.swap(i, i+1)
		i++
	}
	return i
}

func (b *Board) swap(i, j int) {
	b.entries[i], b.entries[j] = b.entries[j], b.entries[i]
	b.index[b.entries[i].Address] = i
	b.index[b.entries[j].Address] = j
}

// Addresses returns the ranked addresses, best first.
func (b *Board) Addresses() []string {
	out := make([]string, len(b.entries))
	for i, e := range b.entries {
		out[i] = e.Address
	}
	return out
}

// Entries returns a copy of the ranked entries, best first.
func (b *Board) Entries() []Entry {
	out := make([]Entry, len(b.entries))
	copy(out, b.entries)
	return out
}

// Rank returns the 1-based position of address, if it is on the board.
func (b *Board) Rank(address string) (int, bool) {
	i, ok := b.index[address]
	if !ok {
		return 0, false
	}
	return i + 1, true
}

func (b *Board) Contains(address string) bool {
	_, ok := b.index[address]
	return ok
}

func (b *Board) Len() int      { return len(b.entries) }
func (b *Board) Capacity() int { return b.capacity }
