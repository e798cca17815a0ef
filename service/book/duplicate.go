package booksvc

import (
	"strings"

	"booklend/model"
)

// Duplicate verdict reasons, ISBN being the stronger signal.
const (
	ReasonISBN  = "ISBN Match"
	ReasonTitle = "Title Match"
)

type DuplicateVerdict struct {
	IsDuplicate bool   `json:"is_duplicate"`
	Reason      string `json:"reason"`
}

// CheckDuplicate flags a candidate submission against the published catalog.
// ISBN equality wins over title equality; titles match case-insensitively and
// exactly, no fuzzy matching. The verdict never blocks submission, it only
// informs admin review.
func CheckDuplicate(candidate model.Book, existing []model.BookKey) DuplicateVerdict {
	if candidate.ISBN13 != nil {
		for _, k := range existing {
			if k.ISBN13 != nil && *k.ISBN13 == *candidate.ISBN13 {
				return DuplicateVerdict{IsDuplicate: true, Reason: ReasonISBN}
			}
		}
	}
	title := strings.ToLower(candidate.Title)
	for _, k := range existing {
		if strings.ToLower(k.Title) == title {
			return DuplicateVerdict{IsDuplicate: true, Reason: ReasonTitle}
		}
	}
	return DuplicateVerdict{}
}
