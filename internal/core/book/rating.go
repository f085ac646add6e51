// Copyright (c) 2026 Yomira. All rights reserved.
// Author: tai.buivan.jp@gmail.com

package book

import (
	"fmt"

	"github.com/taibuivan/bookshelf/internal/platform/apperr"
	"github.com/taibuivan/bookshelf/internal/platform/validate"
	"github.com/taibuivan/bookshelf/pkg/slice"
)

// # Rating Rules

const (
	MinGrade = 0
	MaxGrade = 5
)

// ValidateGrade rejects grades outside [MinGrade, MaxGrade].
func ValidateGrade(grade int) error {
	if grade < MinGrade || grade > MaxGrade {
		return validate.Field(FieldGrade, fmt.Sprintf("Must be between %d and %d", MinGrade, MaxGrade))
	}
	return nil
}

// HasRated reports whether userID already has a rating on b.
func HasRated(b *Book, userID string) bool {
	return slice.Contains(b.Ratings, func(r Rating) bool { return r.UserID == userID })
}

/*
AddRating returns a copy of b with the rating appended and the average recomputed.

b itself is never modified, so a rejected submission leaves no trace.

Returns:
  - *Book: The updated copy
  - error: VALIDATION_ERROR for an out-of-range grade,
    DUPLICATE_RATING when userID has already rated b
*/
func AddRating(b *Book, userID string, grade int) (*Book, error) {
	if err := ValidateGrade(grade); err != nil {
		return nil, err
	}

	if HasRated(b, userID) {
		return nil, apperr.DuplicateRating("You have already rated this book")
	}

	updated := b.clone()
	updated.Ratings = append(updated.Ratings, Rating{UserID: userID, Grade: grade})
	updated.AverageRating = Average(grades(updated.Ratings))

	return updated, nil
}

/*
Average returns the arithmetic mean of grades rounded to one decimal,
halves away from zero. An empty set averages to 0.

The rounding is done in integer tenths so that values such as 4.45 do not
drift through binary floating point.
*/
func Average(grades []int) float64 {
	n := len(grades)
	if n == 0 {
		return 0
	}

	sum := slice.Reduce(grades, 0, func(acc, grade int) int { return acc + grade })

	// round(sum/n, 1) == round(10*sum/n) / 10; halves go away from zero.
	numerator := 20 * sum
	denominator := 2 * n
	var tenths int
	if numerator >= 0 {
		tenths = (numerator + n) / denominator
	} else {
		tenths = (numerator - n) / denominator
	}

	return float64(tenths) / 10
}

// SeedRatings validates the ratings supplied with a new book. Each seed must
// belong to the creator (an empty user_id means the creator), so a client
// cannot file grades on behalf of other users.
func SeedRatings(ownerID string, seeds []Rating) ([]Rating, float64, error) {
	seeded := &Book{UserID: ownerID}

	for _, seed := range seeds {
		userID := seed.UserID
		if userID == "" {
			userID = ownerID
		}
		if userID != ownerID {
			return nil, 0, validate.Field("ratings", "Initial ratings may only come from the creator")
		}

		next, err := AddRating(seeded, userID, seed.Grade)
		if err != nil {
			return nil, 0, err
		}
		seeded = next
	}

	if seeded.Ratings == nil {
		seeded.Ratings = []Rating{}
	}
	return seeded.Ratings, seeded.AverageRating, nil
}

func grades(ratings []Rating) []int {
	return slice.Map(ratings, func(r Rating) int { return r.Grade })
}
