package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/shopspring/decimal"

	"github.com/maslovdev/jobmarket-backend/internal/models"
	"github.com/maslovdev/jobmarket-backend/internal/repository/common"
)

var (
	ErrRatingExists = errors.New("rating for this triple already exists")
	ErrVoteExists   = errors.New("helpful vote already exists")
)

type RatingRepository struct {
	db *sqlx.DB
}

func NewRatingRepository(db *sqlx.DB) *RatingRepository {
	return &RatingRepository{db: db}
}

func (r *RatingRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.Rating, error) {
	return common.GetByID[models.Rating](ctx, r.db, "ratings", id, common.ErrNotFound)
}

// GetByTriple возвращает оценку по тройке (назначение, оценивающий, оцениваемый),
// nil если её нет.
func (r *RatingRepository) GetByTriple(ctx context.Context, assignmentID, raterID, rateeID uuid.UUID) (*models.Rating, error) {
	var rating models.Rating
	err := r.db.GetContext(ctx, &rating, `
		SELECT * FROM ratings WHERE assignment_id = $1 AND rater_id = $2 AND ratee_id = $3
	`, assignmentID, raterID, rateeID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &rating, nil
}

func (r *RatingRepository) ListByAssignment(ctx context.Context, assignmentID uuid.UUID) ([]models.Rating, error) {
	var ratings []models.Rating
	err := r.db.SelectContext(ctx, &ratings, `
		SELECT * FROM ratings WHERE assignment_id = $1 ORDER BY created_at
	`, assignmentID)
	return ratings, err
}

func (r *RatingRepository) ListByRatee(ctx context.Context, rateeID uuid.UUID, limit, offset int) ([]models.Rating, error) {
	var ratings []models.Rating
	err := r.db.SelectContext(ctx, &ratings, `
		SELECT * FROM ratings WHERE ratee_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`, rateeID, limit, offset)
	return ratings, err
}

// CreateWithAggregate вставляет оценку и пересчитывает агрегат пользователя
// одной транзакцией базы: читатель профиля никогда не увидит оценку без
// обновлённого среднего.
func (r *RatingRepository) CreateWithAggregate(ctx context.Context, rating *models.Rating) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, rating, `
			INSERT INTO ratings (assignment_id, rater_id, ratee_id, rating_type, score, review,
				quality_score, communication_score, punctuality_score, professionalism_score,
				is_anonymous, is_verified)
			VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
			RETURNING *
		`, rating.AssignmentID, rating.RaterID, rating.RateeID, rating.RatingType,
			rating.Score, rating.Review, rating.QualityScore, rating.CommunicationScore,
			rating.PunctualityScore, rating.ProfessionalismScore, rating.IsAnonymous, rating.IsVerified)
		if err != nil {
			if common.IsUniqueViolation(err, "ratings_assignment_id_rater_id_ratee_id_key") {
				return ErrRatingExists
			}
			return fmt.Errorf("rating repository: create %w", err)
		}
		return reaggregateUser(ctx, tx, rating.RateeID, rating.RatingType)
	})
}

// UpdateWithAggregate обновляет текст и баллы оценки и пересчитывает агрегат.
func (r *RatingRepository) UpdateWithAggregate(ctx context.Context, rating *models.Rating) error {
	return common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		err := tx.GetContext(ctx, rating, `
			UPDATE ratings SET score = $2, review = $3,
				quality_score = $4, communication_score = $5,
				punctuality_score = $6, professionalism_score = $7,
				is_anonymous = $8, updated_at = NOW()
			WHERE id = $1
			RETURNING *
		`, rating.ID, rating.Score, rating.Review, rating.QualityScore,
			rating.CommunicationScore, rating.PunctualityScore,
			rating.ProfessionalismScore, rating.IsAnonymous)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return common.ErrNotFound
			}
			return fmt.Errorf("rating repository: update %w", err)
		}
		return reaggregateUser(ctx, tx, rating.RateeID, rating.RatingType)
	})
}

// reaggregateUser пересчитывает средний рейтинг пользователя полностью по
// таблице оценок. Полный пересчёт вместо инкремента: он идемпотентен и не
// накапливает ошибку округления. Агрегат считается только по оценкам того
// типа, в котором пользователь выступает: оценки, полученные в другой роли,
// профильное среднее не смешивают.
func reaggregateUser(ctx context.Context, tx *sqlx.Tx, rateeID uuid.UUID, ratingType string) error {
	_, err := tx.ExecContext(ctx, `
		UPDATE users SET
			average_rating = COALESCE((
				SELECT ROUND(AVG(score), 2) FROM ratings
				WHERE ratee_id = $1 AND rating_type = $2
			), 0),
			ratings_count = (
				SELECT COUNT(*) FROM ratings
				WHERE ratee_id = $1 AND rating_type = $2
			),
			updated_at = NOW()
		WHERE id = $1
	`, rateeID, ratingType)
	if err != nil {
		return fmt.Errorf("rating repository: reaggregate user %w", err)
	}
	return nil
}

// Summary собирает сводку рейтинга пользователя: среднее, количество,
// распределение по целым баллам и последние оценки.
func (r *RatingRepository) Summary(ctx context.Context, rateeID uuid.UUID) (*models.RatingSummary, error) {
	summary := &models.RatingSummary{
		Distribution: map[string]int{"1": 0, "2": 0, "3": 0, "4": 0, "5": 0},
	}

	var agg struct {
		Average sql.NullFloat64 `db:"average"`
		Total   int             `db:"total"`
	}
	err := r.db.GetContext(ctx, &agg, `
		SELECT COALESCE(ROUND(AVG(score), 2), 0) AS average, COUNT(*) AS total
		FROM ratings WHERE ratee_id = $1
	`, rateeID)
	if err != nil {
		return nil, fmt.Errorf("rating repository: summary aggregate %w", err)
	}
	summary.AverageRating = decimal.NewFromFloat(agg.Average.Float64).Round(2)
	summary.TotalRatings = agg.Total

	rows, err := r.db.QueryxContext(ctx, `
		SELECT ROUND(score)::int AS bucket, COUNT(*) AS cnt
		FROM ratings WHERE ratee_id = $1
		GROUP BY bucket
	`, rateeID)
	if err != nil {
		return nil, fmt.Errorf("rating repository: summary distribution %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var bucket, cnt int
		if err := rows.Scan(&bucket, &cnt); err != nil {
			return nil, fmt.Errorf("rating repository: summary distribution scan %w", err)
		}
		if bucket >= 1 && bucket <= 5 {
			summary.Distribution[fmt.Sprintf("%d", bucket)] = cnt
		}
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rating repository: summary distribution rows %w", err)
	}

	recent, err := r.ListByRatee(ctx, rateeID, 5, 0)
	if err != nil {
		return nil, fmt.Errorf("rating repository: summary recent %w", err)
	}
	summary.RecentRatings = recent
	return summary, nil
}

// InsertHelpful добавляет отметку «полезно» и пересчитывает счётчик на оценке
// одной транзакцией. Повторная отметка того же пользователя — ErrVoteExists.
func (r *RatingRepository) InsertHelpful(ctx context.Context, ratingID, userID uuid.UUID) (int, error) {
	var count int
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO rating_helpful (rating_id, user_id) VALUES ($1, $2)
		`, ratingID, userID)
		if err != nil {
			if common.IsUniqueViolation(err, "rating_helpful_rating_id_user_id_key") {
				return ErrVoteExists
			}
			return fmt.Errorf("rating repository: insert helpful %w", err)
		}
		count, err = recountHelpful(ctx, tx, ratingID)
		return err
	})
	return count, err
}

// DeleteHelpful снимает отметку «полезно». Отсутствующая отметка —
// common.ErrNotFound.
func (r *RatingRepository) DeleteHelpful(ctx context.Context, ratingID, userID uuid.UUID) (int, error) {
	var count int
	err := common.WithTransaction(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `
			DELETE FROM rating_helpful WHERE rating_id = $1 AND user_id = $2
		`, ratingID, userID)
		if err != nil {
			return fmt.Errorf("rating repository: delete helpful %w", err)
		}
		rows, err := result.RowsAffected()
		if err != nil {
			return err
		}
		if rows == 0 {
			return common.ErrNotFound
		}
		count, err = recountHelpful(ctx, tx, ratingID)
		return err
	})
	return count, err
}

// recountHelpful выставляет helpful_count оценки в точное число отметок.
// Счётчик — производная величина, его никогда не инкрементируют вслепую.
func recountHelpful(ctx context.Context, tx *sqlx.Tx, ratingID uuid.UUID) (int, error) {
	var count int
	err := tx.GetContext(ctx, &count, `
		UPDATE ratings SET helpful_count = (
			SELECT COUNT(*) FROM rating_helpful WHERE rating_id = $1
		), updated_at = NOW()
		WHERE id = $1
		RETURNING helpful_count
	`, ratingID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, common.ErrNotFound
		}
		return 0, fmt.Errorf("rating repository: recount helpful %w", err)
	}
	return count, nil
}

// ReconcileHelpfulCounts выправляет разъехавшиеся счётчики по всей таблице.
// Вызывается фоновой задачей; возвращает число исправленных оценок.
func (r *RatingRepository) ReconcileHelpfulCounts(ctx context.Context) (int64, error) {
	result, err := r.db.ExecContext(ctx, `
		UPDATE ratings r SET helpful_count = actual.cnt
		FROM (
			SELECT r2.id, COUNT(h.id) AS cnt
			FROM ratings r2
			LEFT JOIN rating_helpful h ON h.rating_id = r2.id
			GROUP BY r2.id
		) AS actual
		WHERE actual.id = r.id AND r.helpful_count <> actual.cnt
	`)
	if err != nil {
		return 0, fmt.Errorf("rating repository: reconcile helpful counts %w", err)
	}
	return result.RowsAffected()
}
