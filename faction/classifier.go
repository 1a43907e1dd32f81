package faction

import (
	"fmt"
	"strconv"
)

// Table is the static category lookup behind Classify. Categories are
// disjoint: NewTable rejects any type id listed under two categories.
type Table struct {
	cats  map[uint32]Category
	names map[uint32]string
}

// NewTable builds a table from category name to member types.
func NewTable(categories map[string][]UnitType) (*Table, error) {
	t := &Table{
		cats:  make(map[uint32]Category),
		names: make(map[uint32]string),
	}
	for key, types := range categories {
		cat, err := ParseCategory(key)
		if err != nil {
			return nil, err
		}
		for _, ut := range types {
			if prev, dup := t.cats[ut.ID]; dup {
				return nil, fmt.Errorf("type %d (%s) listed as both %s and %s", ut.ID, ut.Name, prev, cat)
			}
			t.cats[ut.ID] = cat
			t.names[ut.ID] = ut.Name
		}
	}
	return t, nil
}

// Classify returns the category of typeID, or Unclassified when unknown.
func (t *Table) Classify(typeID uint32) Category {
	return t.cats[typeID]
}

func (t *Table) Name(typeID uint32) string {
	if n, ok := t.names[typeID]; ok {
		return n
	}
	return strconv.FormatUint(uint64(typeID), 10)
}

// Members returns every type id listed under cat.
func (t *Table) Members(cat Category) []uint32 {
	var ids []uint32
	for id, c := range t.cats {
		if c == cat {
			ids = append(ids, id)
		}
	}
	return ids
}

func (t *Table) Len() int { return len(t.cats) }
