package annotation

import "sort"

// Index maps selection IDs to every place they occur.
// Locations are kept in scan order: pairs by ID, pdf1 before pdf2, pages
// ascending, annotations in drawing order. The first location is the one
// Resolve returns.
type Index struct {
	locs  map[string][]Location
	order []Entry
}

// Index scans every annotation of every pair.
func (d *Document) Index() *Index {
	idx := &Index{locs: make(map[string][]Location)}
	for _, pairID := range d.PairIDs() {
		p := d.Pairs[pairID]
		for _, side := range []Side{SideQuestion, SideAnswer} {
			for _, ann := range p.Annotations(side) {
				if ann.SelectionID == "" {
					continue
				}
				loc := Location{PairID: pairID, Side: side, Page: ann.Page}
				idx.locs[ann.SelectionID] = append(idx.locs[ann.SelectionID], loc)
				idx.order = append(idx.order, Entry{SelectionID: ann.SelectionID, Location: loc})
			}
		}
	}
	return idx
}

// Resolve returns the first location of id.
func (idx *Index) Resolve(id string) (Location, bool) {
	locs := idx.locs[id]
	if len(locs) == 0 {
		return Location{}, false
	}
	return locs[0], true
}

// Locations returns every location of id.
func (idx *Index) Locations(id string) []Location {
	return idx.locs[id]
}

// ListAll returns one entry per annotation, in scan order.
func (idx *Index) ListAll() []Entry {
	out := make([]Entry, len(idx.order))
	copy(out, idx.order)
	return out
}

// Duplicates returns the sorted IDs that occur more than once.
func (idx *Index) Duplicates() []string {
	var ids []string
	for id, locs := range idx.locs {
		if len(locs) > 1 {
			ids = append(ids, id)
		}
	}
	sort.Strings(ids)
	return ids
}

// Len is the number of distinct selection IDs.
func (idx *Index) Len() int {
	return len(idx.locs)
}
