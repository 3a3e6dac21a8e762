package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Rating — оценка одной стороны назначения другой. Уникальна для тройки
// (назначение, оценивающий, оцениваемый); создаётся только по завершённому
// назначению.
type Rating struct {
	ID                   uuid.UUID        `db:"id" json:"id"`
	AssignmentID         uuid.UUID        `db:"assignment_id" json:"assignment_id"`
	RaterID              uuid.UUID        `db:"rater_id" json:"rater_id"`
	RateeID              uuid.UUID        `db:"ratee_id" json:"ratee_id"`
	RatingType           string           `db:"rating_type" json:"rating_type"`
	Score                decimal.Decimal  `db:"score" json:"score"`
	Review               string           `db:"review" json:"review"`
	QualityScore         *decimal.Decimal `db:"quality_score" json:"quality_score,omitempty"`
	CommunicationScore   *decimal.Decimal `db:"communication_score" json:"communication_score,omitempty"`
	PunctualityScore     *decimal.Decimal `db:"punctuality_score" json:"punctuality_score,omitempty"`
	ProfessionalismScore *decimal.Decimal `db:"professionalism_score" json:"professionalism_score,omitempty"`
	IsAnonymous          bool             `db:"is_anonymous" json:"is_anonymous"`
	IsVerified           bool             `db:"is_verified" json:"is_verified"`
	HelpfulCount         int              `db:"helpful_count" json:"helpful_count"`
	CreatedAt            time.Time        `db:"created_at" json:"created_at"`
	UpdatedAt            time.Time        `db:"updated_at" json:"updated_at"`
}

// ComponentScores возвращает заполненные критерии оценки.
func (r *Rating) ComponentScores() []decimal.Decimal {
	var scores []decimal.Decimal
	for _, s := range []*decimal.Decimal{r.QualityScore, r.CommunicationScore, r.PunctualityScore, r.ProfessionalismScore} {
		if s != nil {
			scores = append(scores, *s)
		}
	}
	return scores
}

// RatingHelpful — отметка «полезно» от пользователя на оценке,
// уникальна для пары (оценка, пользователь).
type RatingHelpful struct {
	ID        uuid.UUID `db:"id" json:"id"`
	RatingID  uuid.UUID `db:"rating_id" json:"rating_id"`
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// RatingSummary — сводка рейтинга пользователя.
type RatingSummary struct {
	AverageRating decimal.Decimal `json:"average_rating"`
	TotalRatings  int             `json:"total_ratings"`
	Distribution  map[string]int  `json:"rating_distribution"`
	RecentRatings []Rating        `json:"recent_ratings"`
}
