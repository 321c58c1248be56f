package ocr

// Block types emitted by the engine.
const (
	BlockTypeLine        = "LINE"
	BlockTypeKeyValueSet = "KEY_VALUE_SET"
	BlockTypeWord        = "WORD"
	BlockTypePage        = "PAGE"
)

// Entity types carried by KEY_VALUE_SET blocks.
const (
	EntityTypeKey   = "KEY"
	EntityTypeValue = "VALUE"
)

// RelationshipTypeValue marks the edge from a KEY block to its VALUE block.
const RelationshipTypeValue = "VALUE"

// Relationship is a typed edge between blocks. IDs reference other blocks in
// the same document.
type Relationship struct {
	Type string   `json:"Type"`
	IDs  []string `json:"Ids"`
	Text string   `json:"Text,omitempty"`
}

// Block is one unit of OCR output. Blocks form a directed graph over a single
// document; IDs are unique within a document.
type Block struct {
	ID            string         `json:"Id"`
	BlockType     string         `json:"BlockType"`
	Text          string         `json:"Text,omitempty"`
	EntityTypes   []string       `json:"EntityTypes,omitempty"`
	Relationships []Relationship `json:"Relationships,omitempty"`
}

func (b Block) hasEntityType(t string) bool {
	for _, et := range b.EntityTypes {
		if et == t {
			return true
		}
	}
	return false
}
