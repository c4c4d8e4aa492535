package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"rental-market/internal/models"
)

var ErrArticleNotFound = errors.New("article not found")

const articleColumns = `a.id, a.author_id, a.title, a.content, a.price_per_day, a.created_at, a.updated_at`

// ArticleRepository abstracts listing persistence.
type ArticleRepository interface {
	CreateArticle(ctx context.Context, article models.Article) (models.Article, error)
	GetArticle(ctx context.Context, articleID int) (models.Article, error)
	ListArticles(ctx context.Context, filter models.ArticleFilter) ([]models.Article, error)
	DeleteArticle(ctx context.Context, articleID int) error
}

// ArticleRepo is a sqlx implementation of ArticleRepository.
type ArticleRepo struct {
	db *sqlx.DB
}

// NewArticleRepo constructs an ArticleRepo.
func NewArticleRepo(db *sqlx.DB) *ArticleRepo {
	return &ArticleRepo{db: db}
}

// CreateArticle inserts the article with its categories and addresses.
// Categories are created on demand by name.
func (r *ArticleRepo) CreateArticle(ctx context.Context, article models.Article) (models.Article, error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return models.Article{}, err
	}
	defer tx.Rollback()

	var created models.Article
	err = tx.GetContext(ctx, &created, `INSERT INTO articles AS a (author_id, title, content, price_per_day)
        VALUES ($1, $2, $3, $4) RETURNING `+articleColumns,
		article.AuthorID, article.Title, article.Content, article.PricePerDay)
	if err != nil {
		return models.Article{}, fmt.Errorf("insert article: %w", err)
	}

	for _, name := range article.Categories {
		var categoryID int
		if err := tx.GetContext(ctx, &categoryID, `INSERT INTO categories (name) VALUES ($1)
            ON CONFLICT (name) DO UPDATE SET name = EXCLUDED.name RETURNING id`, name); err != nil {
			return models.Article{}, fmt.Errorf("upsert category: %w", err)
		}
		if _, err := tx.ExecContext(ctx, `INSERT INTO article_categories (article_id, category_id) VALUES ($1, $2)
            ON CONFLICT DO NOTHING`, created.ID, categoryID); err != nil {
			return models.Article{}, fmt.Errorf("link category: %w", err)
		}
	}
	for _, address := range article.Addresses {
		if _, err := tx.ExecContext(ctx, `INSERT INTO article_addresses (article_id, address) VALUES ($1, $2)`, created.ID, address); err != nil {
			return models.Article{}, fmt.Errorf("insert address: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return models.Article{}, err
	}
	created.Categories = append([]string{}, article.Categories...)
	created.Addresses = append([]string{}, article.Addresses...)
	return created, nil
}

// GetArticle fetches one article with its relations.
func (r *ArticleRepo) GetArticle(ctx context.Context, articleID int) (models.Article, error) {
	var article models.Article
	err := r.db.GetContext(ctx, &article, `SELECT `+articleColumns+` FROM articles a WHERE a.id=$1`, articleID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Article{}, ErrArticleNotFound
	}
	if err != nil {
		return models.Article{}, err
	}
	articles := []models.Article{article}
	if err := loadArticleRelations(ctx, r.db, articles); err != nil {
		return models.Article{}, err
	}
	return articles[0], nil
}

// ListArticles returns articles newest first.
func (r *ArticleRepo) ListArticles(ctx context.Context, filter models.ArticleFilter) ([]models.Article, error) {
	var (
		where []string
		args  []any
	)
	if filter.Category != "" {
		args = append(args, filter.Category)
		where = append(where, fmt.Sprintf(`EXISTS (SELECT 1 FROM article_categories ac
            JOIN categories c ON c.id = ac.category_id
            WHERE ac.article_id = a.id AND c.name = $%d)`, len(args)))
	}
	if filter.Query != "" {
		args = append(args, "%"+filter.Query+"%")
		where = append(where, fmt.Sprintf(`a.title ILIKE $%d`, len(args)))
	}

	query := `SELECT ` + articleColumns + ` FROM articles a`
	if len(where) > 0 {
		query += ` WHERE ` + strings.Join(where, " AND ")
	}
	args = append(args, filter.Limit, filter.Offset)
	query += fmt.Sprintf(` ORDER BY a.created_at DESC, a.id DESC LIMIT $%d OFFSET $%d`, len(args)-1, len(args))

	articles := []models.Article{}
	if err := r.db.SelectContext(ctx, &articles, query, args...); err != nil {
		return nil, err
	}
	if err := loadArticleRelations(ctx, r.db, articles); err != nil {
		return nil, err
	}
	return articles, nil
}

// DeleteArticle removes an article; dependent rows cascade.
func (r *ArticleRepo) DeleteArticle(ctx context.Context, articleID int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM articles WHERE id=$1`, articleID)
	if err != nil {
		return err
	}
	return expectOneRow(res, ErrArticleNotFound)
}

// loadArticleRelations fills Categories and Addresses in place.
func loadArticleRelations(ctx context.Context, db *sqlx.DB, articles []models.Article) error {
	if len(articles) == 0 {
		return nil
	}
	ids := make([]int, 0, len(articles))
	index := make(map[int]int, len(articles))
	for i := range articles {
		ids = append(ids, articles[i].ID)
		index[articles[i].ID] = i
		articles[i].Categories = []string{}
		articles[i].Addresses = []string{}
	}

	type relation struct {
		ArticleID int    `db:"article_id"`
		Value     string `db:"value"`
	}

	query, args, err := sqlx.In(`SELECT ac.article_id, c.name AS value FROM article_categories ac
        JOIN categories c ON c.id = ac.category_id
        WHERE ac.article_id IN (?) ORDER BY c.name`, ids)
	if err != nil {
		return err
	}
	var categories []relation
	if err := db.SelectContext(ctx, &categories, db.Rebind(query), args...); err != nil {
		return err
	}
	for _, rel := range categories {
		a := &articles[index[rel.ArticleID]]
		a.Categories = append(a.Categories, rel.Value)
	}

	query, args, err = sqlx.In(`SELECT article_id, address AS value FROM article_addresses
        WHERE article_id IN (?) ORDER BY id`, ids)
	if err != nil {
		return err
	}
	var addresses []relation
	if err := db.SelectContext(ctx, &addresses, db.Rebind(query), args...); err != nil {
		return err
	}
	for _, rel := range addresses {
		a := &articles[index[rel.ArticleID]]
		a.Addresses = append(a.Addresses, rel.Value)
	}
	return nil
}
