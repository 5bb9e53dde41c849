package selection

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"regexp"
)

// Prefix is the namespace tag every selection ID starts with.
const Prefix = "sel_"

// hashLen is the number of hex characters kept from the digest.
const hashLen = 12

var idRe = regexp.MustCompile(`^sel_[0-9a-f]{12}$`)

// Rect is a page-relative rectangle. All fields are in [0,1] so the
// rectangle survives re-rendering the page at another resolution.
type Rect struct {
	X      float64 `json:"x" validate:"gte=0,lte=1"`
	Y      float64 `json:"y" validate:"gte=0,lte=1"`
	Width  float64 `json:"width" validate:"gte=0,lte=1"`
	Height float64 `json:"height" validate:"gte=0,lte=1"`
}

// GenerateID creates a deterministic selection ID.
// The ID is derived from the coordinates rounded to 6 decimals and the
// 1-based page number. Rectangles that round to the same values on the same
// page collide; the validator reports that as a duplicate.
func GenerateID(x, y, width, height float64, page int) string {
	fingerprint := fmt.Sprintf("%.6f_%.6f_%.6f_%.6f_%d", x, y, width, height, page)
	sum := md5.Sum([]byte(fingerprint))
	return Prefix + hex.EncodeToString(sum[:])[:hashLen]
}

// FromRect is GenerateID for a Rect.
func FromRect(r Rect, page int) string {
	return GenerateID(r.X, r.Y, r.Width, r.Height, page)
}

// LegacyID derives the ID for an annotation saved before IDs were stored.
// pageIndex is the 0-based key the annotation was filed under in
// pdf_pairs.json; it is shifted to the 1-based page the ID is defined on.
func LegacyID(r Rect, pageIndex int) string {
	return FromRect(r, pageIndex+1)
}

// Valid reports whether id has the shape of a generated selection ID.
func Valid(id string) bool {
	return idRe.MatchString(id)
}
