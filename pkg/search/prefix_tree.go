package search

import (
	"strconv"
	"strings"
)

// ConstructPrefixTree turns known target action sequences into fast-lookup
// constraint maps. The input is batched: one group of alternative target
// sequences per batch element. The result holds one map per batch element,
// from encoded prefix (every prefix of every alternative, including the
// empty one) to the single next allowed action at that prefix.
//
// When alternatives diverge after a shared prefix, the first sequence in
// the group wins; later alternatives never overwrite an existing entry.
func ConstructPrefixTree(targets [][][]int) []map[string]int {
	trees := make([]map[string]int, len(targets))
	for i, group := range targets {
		tree := make(map[string]int)
		for _, sequence := range group {
			for j, action := range sequence {
				key := prefixKey(sequence[:j])
				if _, ok := tree[key]; !ok {
					tree[key] = action
				}
			}
		}
		trees[i] = tree
	}
	return trees
}

// prefixKey encodes an action prefix as a map key. Go map keys must be
// comparable, so the prefix is joined into a string.
func prefixKey(actions []int) string {
	if len(actions) == 0 {
		return ""
	}
	var b strings.Builder
	for i, a := range actions {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(strconv.Itoa(a))
	}
	return b.String()
}
