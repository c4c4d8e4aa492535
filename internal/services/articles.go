package services

import (
	"context"
	"errors"
	"strings"

	"rental-market/internal/apperr"
	"rental-market/internal/models"
	"rental-market/internal/repositories"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
)

// ArticleInput is the payload for writing a listing.
type ArticleInput struct {
	Title       string
	Content     string
	PricePerDay int
	Categories  []string
	Addresses   []string
}

// ArticleService manages rental listings.
type ArticleService struct {
	articles repositories.ArticleRepository
}

func NewArticleService(articles repositories.ArticleRepository) *ArticleService {
	return &ArticleService{articles: articles}
}

func (s *ArticleService) List(ctx context.Context, filter models.ArticleFilter) ([]models.Article, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultPageSize
	}
	if filter.Limit > maxPageSize {
		filter.Limit = maxPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	filter.Category = strings.TrimSpace(filter.Category)
	filter.Query = strings.TrimSpace(filter.Query)

	articles, err := s.articles.ListArticles(ctx, filter)
	if err != nil {
		return nil, apperr.FromStorage(err)
	}
	return articles, nil
}

func (s *ArticleService) Get(ctx context.Context, articleID int) (models.Article, error) {
	article, err := s.articles.GetArticle(ctx, articleID)
	if err != nil {
		if errors.Is(err, repositories.ErrArticleNotFound) {
			return models.Article{}, apperr.NotFound("article not found")
		}
		return models.Article{}, apperr.FromStorage(err)
	}
	return article, nil
}

func (s *ArticleService) Write(ctx context.Context, authorID int, in ArticleInput) (models.Article, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return models.Article{}, apperr.BadRequest("title is required")
	}
	if in.PricePerDay < 0 {
		return models.Article{}, apperr.BadRequest("price cannot be negative")
	}

	article, err := s.articles.CreateArticle(ctx, models.Article{
		AuthorID:    authorID,
		Title:       title,
		Content:     in.Content,
		PricePerDay: in.PricePerDay,
		Categories:  cleanList(in.Categories),
		Addresses:   cleanList(in.Addresses),
	})
	if err != nil {
		return models.Article{}, apperr.FromStorage(err)
	}
	return article, nil
}

// Delete removes an article; only its author may do so.
func (s *ArticleService) Delete(ctx context.Context, callerID, articleID int) error {
	article, err := s.Get(ctx, articleID)
	if err != nil {
		return err
	}
	if article.AuthorID != callerID {
		return apperr.Forbidden("only the author can delete an article")
	}
	if err := s.articles.DeleteArticle(ctx, articleID); err != nil {
		if errors.Is(err, repositories.ErrArticleNotFound) {
			return apperr.NotFound("article not found")
		}
		return apperr.FromStorage(err)
	}
	return nil
}

// cleanList trims entries and drops blanks and duplicates, keeping order.
func cleanList(items []string) []string {
	seen := make(map[string]struct{}, len(items))
	out := make([]string, 0, len(items))
	for _, item := range items {
		item = strings.TrimSpace(item)
		if item == "" {
			continue
		}
		if _, ok := seen[item]; ok {
			continue
		}
		seen[item] = struct{}{}
		out = append(out, item)
	}
	return out
}
