package review

import "time"

const (
	MinRating = 1
	MaxRating = 5
)

type Review struct {
	ID        int64      `json:"id"`
	ProductID int64      `json:"product_id"`
	UserID    int64      `json:"user_id"`
	Username  string     `json:"username"`
	Rating    int        `json:"rating"`
	Comment   *string    `json:"comment,omitempty"`
	CreatedAt time.Time  `json:"created_at"`
	UpdatedAt *time.Time `json:"updated_at,omitempty"`
}

func validRating(r int) bool {
	return r >= MinRating && r <= MaxRating
}
