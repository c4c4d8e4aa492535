package services

import (
	"context"

	"rental-market/internal/apperr"
	"rental-market/internal/models"
	"rental-market/internal/repositories"
)

// ReviewService manages article reviews.
type ReviewService struct {
	reviews  repositories.ReviewRepository
	articles *ArticleService
}

func NewReviewService(reviews repositories.ReviewRepository, articles *ArticleService) *ReviewService {
	return &ReviewService{reviews: reviews, articles: articles}
}

func (s *ReviewService) List(ctx context.Context, articleID int) ([]models.Review, error) {
	reviews, err := s.reviews.ListReviews(ctx, articleID)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}
	return reviews, nil
}

func (s *ReviewService) Write(ctx context.Context, authorID, articleID, rating int, content string) (models.Review, error) {
	if rating < 1 || rating > 5 {
		return models.Review{}, apperr.BadRequest("rating must be between 1 and 5")
	}
	if _, err := s.articles.Get(ctx, articleID); err != nil {
		return models.Review{}, err
	}
	review, err := s.reviews.CreateReview(ctx, models.Review{
		ArticleID: articleID,
		AuthorID:  authorID,
		Rating:    rating,
		Content:   content,
	})
	if err != nil {
		return models.Review{}, apperr.FromStorage(err)
	}
	return review, nil
}
