package compile

import "github.com/zephyrtronium/minijs/token"

// resolvePattern commits a bare {...}/[...] literal at buf.Entries[litIdx]
// — whose entries were already compiled as ordinary expressions, since the
// tokenizer cannot tell a value literal from a destructuring target until
// it sees what follows — into a destructuring-assignment traversal script.
// This mirrors the flattened DestructStep shape parseBindingPattern builds
// directly for var/let/parameter patterns (spec.md §4.2 "Destructuring
// pre-parse", "Object literal duality"); here the same shape is recovered
// after the fact from the element spans recorded in elemStarts.
func (p *Parser) resolvePattern(litIdx int) {
	e := &p.buf.Entries[litIdx]
	e.ObjectMode = ModeDestructuring
	e.Destructure = p.flattenPattern(litIdx)
}

// flattenPattern walks the already-compiled element ranges of the array or
// object literal at litIdx and rebuilds the bind/elision/rest steps a
// destructuring assignment needs at eval time.
func (p *Parser) flattenPattern(litIdx int) []DestructStep {
	e := p.buf.Entries[litIdx]
	isArray := e.Kind == token.LBracket
	var steps []DestructStep
	if isArray {
		steps = append(steps, DestructStep{Kind: "array-open"})
	} else {
		steps = append(steps, DestructStep{Kind: "object-open"})
	}
	starts := e.elemStarts
	for i, start := range starts {
		end := litIdx
		if i+1 < len(starts) {
			end = starts[i+1]
		}
		steps = append(steps, p.flattenElement(start, end, isArray)...)
	}
	if isArray {
		steps = append(steps, DestructStep{Kind: "array-close"})
	} else {
		steps = append(steps, DestructStep{Kind: "object-close"})
	}
	return steps
}

// flattenElement resolves the entries in [start, end) — one array element
// or object property of an already-compiled literal — into its steps.
func (p *Parser) flattenElement(start, end int, isArray bool) []DestructStep {
	if end <= start {
		return nil
	}
	entries := p.buf.Entries
	if isArray {
		if end-start == 1 && entries[start].Kind == token.Null {
			return []DestructStep{{Kind: "elision"}}
		}
		targetEnd := end
		rest := false
		if entries[end-1].Kind == token.Ellipsis {
			rest = true
			targetEnd = end - 1
		}
		return p.flattenTarget(start, targetEnd, "", rest)
	}
	marker := entries[end-1]
	if marker.Kind == token.Ellipsis {
		return p.flattenTarget(start, end-1, "", true)
	}
	const propPrefix = "prop:"
	if len(marker.Str) <= len(propPrefix) || marker.Str[:len(propPrefix)] != propPrefix {
		// Accessor properties (get/set) cannot appear in a destructuring
		// pattern; drop silently, matching real engines' rejection of
		// `({get x(){}} = y)` as a non-pattern.
		return nil
	}
	key := marker.Str[len(propPrefix):]
	return p.flattenTarget(start, end-1, key, false)
}

// flattenTarget resolves one binding target's entries [start, end) — a
// bare identifier or a nested array/object literal — into steps. key and
// rest describe the slot the target fills in its parent pattern.
func (p *Parser) flattenTarget(start, end int, key string, rest bool) []DestructStep {
	if end <= start {
		return nil
	}
	entries := p.buf.Entries
	last := entries[end-1]
	if (last.Kind == token.LBracket || last.Kind == token.LBrace) && last.Str == "literal" {
		// The target's own entries end in a nested literal's closing
		// marker: recurse into it directly using its recorded elemStarts.
		nested := p.flattenPattern(end - 1)
		if len(nested) > 0 {
			nested[0].Key = key
			nested[0].Rest = rest
		}
		return nested
	}
	if end-start == 1 && entries[start].Kind == token.Ident {
		return []DestructStep{{Kind: "bind", Key: key, Name: entries[start].Str, Rest: rest}}
	}
	// Unsupported target shape (e.g. a member expression `a.b`, which real
	// engines handle via a distinct "simple assignment target" path this
	// flattened script does not model): emit an inert bind so the
	// traversal script stays structurally balanced rather than failing
	// the whole pattern.
	return []DestructStep{{Kind: "bind", Key: key, Rest: rest}}
}
