// Package fingerprint produces the stable cache key shared by every cache
// layer of the engine: a hash of normalized address text plus rounded
// coordinates.
package fingerprint

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"math"
	"strings"

	"github.com/UnknownOlympus/hermes/internal/models"
)

// coordPrecision is the number of decimal places coordinates are rounded to
// before hashing. Five places is roughly 1.1m, so GPS jitter below that does
// not defeat cache hits.
const coordPrecision = 5

// Fingerprint returns a deterministic key for the given address text and
// optional coordinates. Text is trimmed, case-folded and has whitespace runs
// collapsed before hashing, so equivalent inputs always map to the same key.
func Fingerprint(addressText string, coords *models.Coordinates) string {
	payload := Normalize(addressText)
	if coords != nil {
		payload += fmt.Sprintf("|%.*f|%.*f",
			coordPrecision, round(coords.Latitude),
			coordPrecision, round(coords.Longitude),
		)
	}

	sum := sha256.Sum256([]byte(payload))

	return hex.EncodeToString(sum[:])
}

// Normalize trims the text, lowercases it, and collapses internal whitespace
// runs to single spaces.
func Normalize(text string) string {
	return strings.Join(strings.Fields(strings.ToLower(text)), " ")
}

// round rounds a coordinate to coordPrecision decimal places.
func round(value float64) float64 {
	factor := math.Pow10(coordPrecision)

	return math.Round(value*factor) / factor
}
