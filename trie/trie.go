// Trie implements a byte trie data structure, used for completing reserved
// words and function names.
// It is fast as it uses arrays instead of maps and no bound checks.
package trie // import "psf.sh/psf/trie"

type Trie struct {
	// Children of this node
	children [256]*Trie
	// This node itself is a valid word end in addition to having children.
	valid bool
	leaf  bool
}

// Shared end marker for leaves, the only node with "leaf" set.
var endMarker = &Trie{valid: true, leaf: true}

func NewTrie() *Trie {
	return &Trie{}
}

func (t *Trie) Insert(word string) {
	l := len(word)
	for i := range l {
		char := word[i]
		valid := false
		switch t.children[char] {
		case endMarker:
			// Was a word end, the new node keeps that.
			valid = true
			fallthrough
		case nil:
			if i == l-1 {
				t.children[char] = endMarker
			} else {
				t.children[char] = &Trie{valid: valid}
			}
		}
		if i == l-1 && t.children[char] != endMarker {
			t.children[char].valid = true
		}
		t = t.children[char]
	}
}

func (t *Trie) Contains(word string) bool {
	return t.Prefix(word).IsValid()
}

func (t *Trie) Prefix(word string) *Trie {
	for i := range len(word) {
		char := word[i]
		t = t.children[char]
		if t == nil {
			return nil
		}
	}
	return t
}

func (t *Trie) IsLeaf() bool {
	return t != nil && t.leaf
}

func (t *Trie) IsValid() bool {
	return t != nil && t.valid
}

// PrefixAll returns the words starting with prefix, in byte order, and the
// length of the longest prefix they all share (at least len(prefix) when
// there is a match, 0 otherwise).
func (t *Trie) PrefixAll(prefix string) (int, []string) {
	p := t.Prefix(prefix)
	if p == nil {
		return 0, nil
	}
	var words []string
	p.collect([]byte(prefix), &words)
	if len(words) == 0 {
		return 0, nil
	}
	// Walk down while there is a single way forward.
	common := len(prefix)
	for !p.valid {
		var next *Trie
		n := 0
		for _, c := range p.children {
			if c != nil {
				n++
				next = c
			}
		}
		if n != 1 {
			break
		}
		p = next
		common++
	}
	return common, words
}

func (t *Trie) collect(word []byte, words *[]string) {
	if t.valid {
		*words = append(*words, string(word))
	}
	for i, c := range t.children {
		if c != nil {
			c.collect(append(word, byte(i)), words)
		}
	}
}
