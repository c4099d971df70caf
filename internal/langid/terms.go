// File: internal/langid/terms.go
package langid

// builtinTerms lists hospitality and property-management vocabulary that is
// acceptable in any language and must never be flagged as a missing
// translation, keyed by target language ISO 639-1 code. Entries are
// lowercase; lookups normalize first.
var builtinTerms = map[string][]string{
	"fr": {
		// Anglicisms and industry terms a French UI legitimately contains.
		"code de confirmation", "check-in", "check-out", "client", "réservation",
		"suite", "standard", "confirmation", "premium", "deluxe", "basic",
		"superior", "service", "reception", "wifi", "breakfast", "all-inclusive",
		"email", "login", "password", "dashboard", "menu", "status", "ok",
		"application", "documents", "contacts", "filters", "search", "calendar",
		"profile", "settings", "notifications", "booking", "guest", "room",
		"property", "amenities", "rating", "review", "payment", "price",
		"tax", "total", "discount", "promotion", "cancel", "refund",
	},
	"en": {
		// Terms commonly left untranslated in English UIs.
		"check-in", "check-out", "booking", "reservation", "wifi",
		"suite", "standard", "confirmation", "premium", "deluxe", "basic",
	},
}

// defaultTerms returns the built-in allow list for a target language as a
// lookup set. Unknown languages get an empty set.
func defaultTerms(targetISO string) map[string]struct{} {
	terms := make(map[string]struct{})
	for _, term := range builtinTerms[targetISO] {
		terms[term] = struct{}{}
	}
	return terms
}
