package ocr

import (
	"reflect"
	"testing"
)

func TestReduceLineOrder(t *testing.T) {
	blocks := []Block{
		{ID: "1", BlockType: BlockTypeLine, Text: "Some Store"},
		{ID: "2", BlockType: BlockTypeWord, Text: "ignored"},
		{ID: "3", BlockType: BlockTypeLine, Text: ""},
		{ID: "4", BlockType: BlockTypeLine, Text: "Total 12,50"},
	}

	lines, kv := Reduce(blocks)

	want := []string{"Some Store", "Total 12,50"}
	if !reflect.DeepEqual(lines, want) {
		t.Errorf("lines = %v, want %v", lines, want)
	}
	if len(kv) != 0 {
		t.Errorf("kv = %v, want empty", kv)
	}
}

func TestReduceKeyValue(t *testing.T) {
	blocks := []Block{
		{
			ID:          "k1",
			BlockType:   BlockTypeKeyValueSet,
			EntityTypes: []string{EntityTypeKey},
			Relationships: []Relationship{
				{Type: RelationshipTypeValue, IDs: []string{"v1"}, Text: "Total"},
			},
		},
		{
			ID:          "v1",
			BlockType:   BlockTypeKeyValueSet,
			EntityTypes: []string{EntityTypeValue},
			Relationships: []Relationship{
				{Type: "CHILD", IDs: []string{"w1"}, Text: "12,50"},
			},
		},
	}

	_, kv := Reduce(blocks)

	if got := kv["Total"]; got != "12,50" {
		t.Errorf("kv[Total] = %q, want %q", got, "12,50")
	}
}

// Key and value text come from relationship entries, not from the resolved
// blocks' own Text. A graph where only the blocks carry text therefore yields
// empty strings.
func TestReduceRelationshipTextSource(t *testing.T) {
	blocks := []Block{
		{
			ID:          "k1",
			BlockType:   BlockTypeKeyValueSet,
			EntityTypes: []string{EntityTypeKey},
			Text:        "Invoice Number",
			Relationships: []Relationship{
				{Type: RelationshipTypeValue, IDs: []string{"v1"}},
			},
		},
		{
			ID:          "v1",
			BlockType:   BlockTypeKeyValueSet,
			EntityTypes: []string{EntityTypeValue},
			Text:        "4711",
		},
	}

	_, kv := Reduce(blocks)

	got, ok := kv[""]
	if !ok {
		t.Fatal("expected an entry keyed by the empty string")
	}
	if got != "" {
		t.Errorf("kv[\"\"] = %q, want empty", got)
	}
}

func TestReduceDuplicateKeysLastWriteWins(t *testing.T) {
	key := func(id, valueID, text string) Block {
		return Block{
			ID:          id,
			BlockType:   BlockTypeKeyValueSet,
			EntityTypes: []string{EntityTypeKey},
			Relationships: []Relationship{
				{Type: RelationshipTypeValue, IDs: []string{valueID}, Text: text},
			},
		}
	}
	value := func(id, text string) Block {
		return Block{
			ID:          id,
			BlockType:   BlockTypeKeyValueSet,
			EntityTypes: []string{EntityTypeValue},
			Relationships: []Relationship{
				{Type: "CHILD", IDs: []string{"w"}, Text: text},
			},
		}
	}

	blocks := []Block{
		key("k1", "v1", "Total"),
		value("v1", "10,00"),
		key("k2", "v2", "Total"),
		value("v2", "20,00"),
	}

	_, kv := Reduce(blocks)

	if got := kv["Total"]; got != "20,00" {
		t.Errorf("kv[Total] = %q, want %q", got, "20,00")
	}
	if len(kv) != 1 {
		t.Errorf("len(kv) = %d, want 1", len(kv))
	}
}

func TestReduceNeverPanics(t *testing.T) {
	cases := []struct {
		name   string
		blocks []Block
	}{
		{"nil list", nil},
		{"empty list", []Block{}},
		{
			"unresolved relationship target",
			[]Block{{
				ID:          "k1",
				BlockType:   BlockTypeKeyValueSet,
				EntityTypes: []string{EntityTypeKey},
				Relationships: []Relationship{
					{Type: RelationshipTypeValue, IDs: []string{"missing"}},
				},
			}},
		},
		{
			"relationship without IDs",
			[]Block{{
				ID:          "k1",
				BlockType:   BlockTypeKeyValueSet,
				EntityTypes: []string{EntityTypeKey},
				Relationships: []Relationship{
					{Type: RelationshipTypeValue},
				},
			}},
		},
		{
			"self-referential key",
			[]Block{{
				ID:          "k1",
				BlockType:   BlockTypeKeyValueSet,
				EntityTypes: []string{EntityTypeKey},
				Relationships: []Relationship{
					{Type: RelationshipTypeValue, IDs: []string{"k1"}, Text: "loop"},
				},
			}},
		},
		{
			"key without relationships",
			[]Block{{
				ID:          "k1",
				BlockType:   BlockTypeKeyValueSet,
				EntityTypes: []string{EntityTypeKey},
			}},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lines, kv := Reduce(tc.blocks)
			if kv == nil {
				t.Error("kv map must never be nil")
			}
			_ = lines
		})
	}
}

func TestJoinLines(t *testing.T) {
	got := JoinLines([]string{"a", "b", "c"})
	if got != "a\nb\nc" {
		t.Errorf("JoinLines = %q", got)
	}
}
