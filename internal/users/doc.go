package users

import (
	"sort"
	"strings"
	"time"

	"github.com/labelspy/labelspy-backend/pkg/gemini"
)

// Stored document field names. These are fixed by the existing data set.
const (
	fieldUID             = "uid"
	fieldEmail           = "email"
	fieldDisplayName     = "displayName"
	fieldCounts          = "ingredientCounts"
	fieldHistory         = "scanHistory"
	fieldScanID          = "scanId"
	fieldTimestamp       = "timestamp"
	fieldIngredientNames = "ingredientNames"
)

func userToDoc(u *UserDTO) map[string]interface{} {
	counts := u.IngredientCounts
	if counts == nil {
		counts = map[string]int64{}
	}

	history := make([]interface{}, 0, len(u.ScanHistory))
	for _, entry := range u.ScanHistory {
		history = append(history, summaryToDoc(entry))
	}

	return map[string]interface{}{
		fieldUID:         u.UID,
		fieldEmail:       u.Email,
		fieldDisplayName: u.DisplayName,
		fieldCounts:      counts,
		fieldHistory:     history,
	}
}

func summaryToDoc(s ScanSummary) map[string]interface{} {
	names := s.IngredientNames
	if names == nil {
		names = []string{}
	}
	return map[string]interface{}{
		fieldScanID:          s.ScanID,
		fieldTimestamp:       s.Timestamp.Format(time.RFC3339Nano),
		fieldIngredientNames: names,
	}
}

func docToUser(data map[string]interface{}, uid string) *UserDTO {
	return &UserDTO{
		UID:              uid,
		Email:            asString(data[fieldEmail]),
		DisplayName:      asString(data[fieldDisplayName]),
		IngredientCounts: decodeCounts(data[fieldCounts]),
		ScanHistory:      decodeHistory(data[fieldHistory]),
	}
}

// decodeCounts re-types the stored count map. Firestore hands numbers back
// as int64, but documents written by other runtimes may carry float64;
// non-numeric values are skipped rather than failing the whole read.
func decodeCounts(value interface{}) map[string]int64 {
	counts := map[string]int64{}
	raw, ok := value.(map[string]interface{})
	if !ok {
		return counts
	}
	for name, v := range raw {
		if n, ok := asCount(v); ok {
			counts[name] = n
		}
	}
	return counts
}

func asCount(value interface{}) (int64, bool) {
	switch n := value.(type) {
	case int64:
		return n, true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	default:
		return 0, false
	}
}

func decodeHistory(value interface{}) []ScanSummary {
	history := []ScanSummary{}
	raw, ok := value.([]interface{})
	if !ok {
		return history
	}
	for _, item := range raw {
		entry, ok := item.(map[string]interface{})
		if !ok {
			continue
		}
		history = append(history, ScanSummary{
			ScanID:          asString(entry[fieldScanID]),
			Timestamp:       parseTimestamp(entry[fieldTimestamp]),
			IngredientNames: asStringSlice(entry[fieldIngredientNames]),
		})
	}
	return history
}

// parseTimestamp tolerates both the RFC 3339 strings this service writes and
// native timestamps written by other tooling; anything else defaults to the
// zero time instead of failing the read.
func parseTimestamp(value interface{}) time.Time {
	switch v := value.(type) {
	case string:
		if ts, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return ts
		}
		if ts, err := time.Parse(time.RFC3339, v); err == nil {
			return ts
		}
	case time.Time:
		return v
	}
	return time.Time{}
}

func asString(value interface{}) string {
	s, _ := value.(string)
	return s
}

func asStringSlice(value interface{}) []string {
	out := []string{}
	switch items := value.(type) {
	case []string:
		return append(out, items...)
	case []interface{}:
		for _, item := range items {
			if s, ok := item.(string); ok {
				out = append(out, s)
			}
		}
	}
	return out
}

// applyIngredientCounts adds one count per non-empty trimmed ingredient name
// in the result. Duplicate names within one scan each increment the tally.
func applyIngredientCounts(counts map[string]int64, result *gemini.AnalysisResult) {
	if result == nil {
		return
	}
	for _, ingredient := range result.Ingredients {
		name := strings.TrimSpace(ingredient.Name)
		if name == "" {
			continue
		}
		counts[name]++
	}
}

// historyEntryFromResult reduces an analysis result to a history entry:
// the provider's scan id, a server-assigned timestamp, and the non-empty
// ingredient names in their original order.
func historyEntryFromResult(result *gemini.AnalysisResult, now time.Time) ScanSummary {
	entry := ScanSummary{
		Timestamp:       now,
		IngredientNames: []string{},
	}
	if result == nil {
		return entry
	}
	entry.ScanID = result.ScanID
	for _, ingredient := range result.Ingredients {
		if strings.TrimSpace(ingredient.Name) == "" {
			continue
		}
		entry.IngredientNames = append(entry.IngredientNames, ingredient.Name)
	}
	return entry
}

// topIngredients sorts by count descending with a stable name-ascending
// tiebreak and truncates to limit.
func topIngredients(counts map[string]int64, limit int) []TopIngredient {
	top := make([]TopIngredient, 0, len(counts))
	for name, count := range counts {
		top = append(top, TopIngredient{IngredientName: name, Count: count})
	}
	sort.Slice(top, func(i, j int) bool {
		if top[i].Count != top[j].Count {
			return top[i].Count > top[j].Count
		}
		return top[i].IngredientName < top[j].IngredientName
	})
	if limit >= 0 && len(top) > limit {
		top = top[:limit]
	}
	return top
}
