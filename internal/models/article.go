package models

import "time"

// Article is a rental listing.
type Article struct {
	ID          int       `db:"id" json:"id"`
	AuthorID    int       `db:"author_id" json:"authorId"`
	Title       string    `db:"title" json:"title"`
	Content     string    `db:"content" json:"content"`
	PricePerDay int       `db:"price_per_day" json:"pricePerDay"`
	Categories  []string  `db:"-" json:"categories"`
	Addresses   []string  `db:"-" json:"addresses"`
	CreatedAt   time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt   time.Time `db:"updated_at" json:"updatedAt"`
}

// ArticleFilter narrows article listings.
type ArticleFilter struct {
	Category string
	Query    string
	Limit    int
	Offset   int
}

// Review is a rating left by a user on an article.
type Review struct {
	ID        int       `db:"id" json:"id"`
	ArticleID int       `db:"article_id" json:"articleId"`
	AuthorID  int       `db:"author_id" json:"authorId"`
	Rating    int       `db:"rating" json:"rating"`
	Content   string    `db:"content" json:"content"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`
}

// Bookmark is a user's saved-article collection.
type Bookmark struct {
	ID       int       `db:"id" json:"id"`
	UserID   int       `db:"user_id" json:"userId"`
	Articles []Article `db:"-" json:"articles"`
}
