package annotation

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/MrSavageBanana/Study-Assistant/internal/jsonfile"
	"github.com/MrSavageBanana/Study-Assistant/internal/selection"
)

// DefaultFile is the file name the desktop app writes pairs to.
const DefaultFile = "pdf_pairs.json"

const timestampLayout = "2006-01-02 15:04:05"

var (
	ErrPairNotFound      = errors.New("pair not found")
	ErrSelectionNotFound = errors.New("selection not found")
)

// Document is the in-memory form of pdf_pairs.json.
type Document struct {
	Pairs map[string]*Pair `json:"pairs"`

	// Migrated counts annotations that were missing a selection_id on load
	// and got one derived from their coordinates.
	Migrated int `json:"-"`

	now func() time.Time
}

// NewDocument returns an empty document.
func NewDocument() *Document {
	return &Document{Pairs: make(map[string]*Pair), now: time.Now}
}

// Load reads pdf_pairs.json.
func Load(path string) (*Document, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("annotation store %s: %w", path, err)
	}
	return Parse(b, path)
}

// Parse decodes a pdf_pairs.json payload. name is only used in errors.
func Parse(b []byte, name string) (*Document, error) {
	doc := NewDocument()
	if err := json.Unmarshal(b, doc); err != nil {
		return nil, fmt.Errorf("annotation store %s: %w", name, err)
	}
	if doc.Pairs == nil {
		doc.Pairs = make(map[string]*Pair)
	}
	for id, p := range doc.Pairs {
		if p == nil {
			return nil, fmt.Errorf("annotation store %s: pair %q is null", name, id)
		}
		for _, side := range []Side{SideQuestion, SideAnswer} {
			n, err := fillLegacyIDs(p.Side(side))
			if err != nil {
				return nil, fmt.Errorf("annotation store %s: pair %q %s: %w", name, id, side, err)
			}
			doc.Migrated += n
		}
	}
	return doc, nil
}

// fillLegacyIDs derives IDs for annotations saved without one.
func fillLegacyIDs(pages Pages) (int, error) {
	migrated := 0
	for key, anns := range pages {
		for i := range anns {
			if anns[i].SelectionID != "" {
				continue
			}
			pageIndex, err := strconv.Atoi(key)
			if err != nil {
				return migrated, fmt.Errorf("page key %q is not a page index", key)
			}
			anns[i].SelectionID = selection.LegacyID(anns[i].Coordinates, pageIndex)
			if anns[i].Page == 0 {
				anns[i].Page = pageIndex + 1
			}
			migrated++
		}
	}
	return migrated, nil
}

// Save writes the whole document to path.
func (d *Document) Save(path string) error {
	if err := jsonfile.Write(path, d); err != nil {
		return fmt.Errorf("annotation store %s: %w", path, err)
	}
	return nil
}

// Pair returns the pair with the given ID.
func (d *Document) Pair(id string) (*Pair, bool) {
	p, ok := d.Pairs[id]
	return p, ok
}

// PairIDs returns all pair IDs in sorted order.
func (d *Document) PairIDs() []string {
	ids := make([]string, 0, len(d.Pairs))
	for id := range d.Pairs {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// AddPair registers a new pair and returns it.
func (d *Document) AddPair(name, description, pdf1Path, pdf2Path string) (*Pair, error) {
	in := pairInput{Name: name, PDF1Path: pdf1Path, PDF2Path: pdf2Path}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	ts := d.timestamp()
	p := &Pair{
		PairID:          uuid.NewString(),
		Name:            name,
		Description:     description,
		PDF1Path:        pdf1Path,
		PDF2Path:        pdf2Path,
		PDF1Annotations: Pages{},
		PDF2Annotations: Pages{},
		CreatedAt:       ts,
		UpdatedAt:       ts,
	}
	d.Pairs[p.PairID] = p
	return p, nil
}

// DeletePair removes a pair together with all of its annotations.
func (d *Document) DeletePair(id string) (*Pair, error) {
	p, ok := d.Pairs[id]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrPairNotFound, id)
	}
	delete(d.Pairs, id)
	return p, nil
}

// AddAnnotation appends a new selection to a page of a pair and returns it
// with its generated ID. An ID collision is kept; the validator reports it
// as a duplicate.
func (d *Document) AddAnnotation(pairID string, side Side, page int, r selection.Rect) (Annotation, error) {
	p, ok := d.Pairs[pairID]
	if !ok {
		return Annotation{}, fmt.Errorf("%w: %s", ErrPairNotFound, pairID)
	}
	in := annotationInput{Side: side, Page: page, Coordinates: r}
	if err := validateStruct(in); err != nil {
		return Annotation{}, err
	}

	ann := Annotation{
		SelectionID: selection.FromRect(r, page),
		Page:        page,
		Coordinates: r,
	}
	pages := p.Side(side)
	if pages == nil {
		pages = Pages{}
		p.setSide(side, pages)
	}
	key := strconv.Itoa(page - 1)
	pages[key] = append(pages[key], ann)
	p.UpdatedAt = d.timestamp()
	return ann, nil
}

// RemoveAnnotation deletes the first annotation carrying id. Pages left
// empty are dropped, matching how the desktop app saves.
func (d *Document) RemoveAnnotation(id string) (Location, error) {
	for _, pairID := range d.PairIDs() {
		p := d.Pairs[pairID]
		for _, side := range []Side{SideQuestion, SideAnswer} {
			pages := p.Side(side)
			for _, key := range sortedPageKeys(pages) {
				anns := pages[key]
				for i, ann := range anns {
					if ann.SelectionID != id {
						continue
					}
					rest := append(anns[:i:i], anns[i+1:]...)
					if len(rest) == 0 {
						delete(pages, key)
					} else {
						pages[key] = rest
					}
					p.UpdatedAt = d.timestamp()
					return Location{PairID: pairID, Side: side, Page: ann.Page}, nil
				}
			}
		}
	}
	return Location{}, fmt.Errorf("%w: %s", ErrSelectionNotFound, id)
}

// SelectionIDs returns every selection ID in one pair, in index order.
func (d *Document) SelectionIDs(pairID string) []string {
	var ids []string
	for _, e := range d.Index().ListAll() {
		if e.PairID == pairID {
			ids = append(ids, e.SelectionID)
		}
	}
	return ids
}

func (d *Document) timestamp() string {
	now := d.now
	if now == nil {
		now = time.Now
	}
	return now().Format(timestampLayout)
}

// sortedPageKeys orders page keys numerically; keys that are not numbers
// sort after all numeric keys, lexically.
func sortedPageKeys(pages Pages) []string {
	keys := make([]string, 0, len(pages))
	for k := range pages {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		a, errA := strconv.Atoi(keys[i])
		b, errB := strconv.Atoi(keys[j])
		switch {
		case errA == nil && errB == nil:
			return a < b
		case errA == nil:
			return true
		case errB == nil:
			return false
		}
		return keys[i] < keys[j]
	})
	return keys
}
