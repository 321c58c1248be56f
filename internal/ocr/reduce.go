package ocr

import "strings"

// Reduce turns a flat block list into ordered text lines and a key/value map.
//
// LINE blocks contribute their text to lines in original order. KEY blocks are
// resolved through their first VALUE relationship by ID lookup within the same
// list; unresolved or malformed relationships are skipped. Duplicate key text
// is last-write-wins. Reduce never fails, whatever the graph looks like.
func Reduce(blocks []Block) (lines []string, kv map[string]string) {
	kv = make(map[string]string)

	for _, block := range blocks {
		switch {
		case block.BlockType == BlockTypeLine:
			if block.Text != "" {
				lines = append(lines, block.Text)
			}
		case block.BlockType == BlockTypeKeyValueSet && block.hasEntityType(EntityTypeKey):
			valueBlock, ok := resolveValueBlock(block, blocks)
			if !ok {
				continue
			}
			kv[relationshipText(block)] = relationshipText(*valueBlock)
		}
	}

	return lines, kv
}

// JoinLines joins reduced lines into the newline-delimited text handed to the
// field parser.
func JoinLines(lines []string) string {
	return strings.Join(lines, "\n")
}

// resolveValueBlock follows the key block's first VALUE relationship to the
// referenced block. Document sizes are small (hundreds of blocks), so a linear
// scan is fine.
func resolveValueBlock(key Block, blocks []Block) (*Block, bool) {
	for _, rel := range key.Relationships {
		if rel.Type != RelationshipTypeValue {
			continue
		}
		if len(rel.IDs) == 0 {
			return nil, false
		}
		for i := range blocks {
			if blocks[i].ID == rel.IDs[0] {
				return &blocks[i], true
			}
		}
		return nil, false
	}
	return nil, false
}

// relationshipText derives a block's key/value text by joining the Text of
// its relationship entries. The text deliberately does NOT come from the
// resolved child blocks, so it is frequently empty; the upstream engine
// integration has always read it this way and the kv map is advisory only.
// Kept in one place so a future correction stays local.
func relationshipText(b Block) string {
	var parts []string
	for _, rel := range b.Relationships {
		if rel.Text != "" {
			parts = append(parts, rel.Text)
		}
	}
	return strings.Join(parts, " ")
}
