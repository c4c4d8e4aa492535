package repositories

import (
	"context"

	"github.com/jmoiron/sqlx"

	"rental-market/internal/models"
)

// ReviewRepository persists article reviews.
type ReviewRepository interface {
	CreateReview(ctx context.Context, review models.Review) (models.Review, error)
	ListReviews(ctx context.Context, articleID int) ([]models.Review, error)
}

// ReviewRepo is a sqlx implementation of ReviewRepository.
type ReviewRepo struct {
	db *sqlx.DB
}

// NewReviewRepo constructs a ReviewRepo.
func NewReviewRepo(db *sqlx.DB) *ReviewRepo {
	return &ReviewRepo{db: db}
}

func (r *ReviewRepo) CreateReview(ctx context.Context, review models.Review) (models.Review, error) {
	var created models.Review
	err := r.db.GetContext(ctx, &created, `INSERT INTO reviews (article_id, author_id, rating, content)
        VALUES ($1, $2, $3, $4) RETURNING id, article_id, author_id, rating, content, created_at`,
		review.ArticleID, review.AuthorID, review.Rating, review.Content)
	return created, err
}

// ListReviews returns an article's reviews newest first.
func (r *ReviewRepo) ListReviews(ctx context.Context, articleID int) ([]models.Review, error) {
	reviews := []models.Review{}
	err := r.db.SelectContext(ctx, &reviews, `SELECT id, article_id, author_id, rating, content, created_at
        FROM reviews WHERE article_id=$1 ORDER BY created_at DESC, id DESC`, articleID)
	return reviews, err
}
