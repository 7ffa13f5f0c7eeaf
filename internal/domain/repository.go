package domain

import "context"

// TemplateRepository defines persistence for template catalogue records.
type TemplateRepository interface {
	Create(ctx context.Context, tpl *Template) error
	Update(ctx context.Context, tpl *Template) error
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (*Template, error)
	ListAll(ctx context.Context) ([]Template, error)
	ListPublic(ctx context.Context, geo Geo, category Category, limit, offset int) ([]Template, error)
}

// CanvasRepository defines persistence for canvas records.
type CanvasRepository interface {
	Create(ctx context.Context, canvas *Canvas) error
	UpdateStatus(ctx context.Context, id string, status CanvasStatus) error
	GetByID(ctx context.Context, id string) (*Canvas, error)
	Delete(ctx context.Context, id string) error
}

// UserRepository defines persistence for chat users.
type UserRepository interface {
	UpsertByChatID(ctx context.Context, user *User) (*User, error)
	GetByID(ctx context.Context, id string) (*User, error)
	GetByChatID(ctx context.Context, chatID int64) (*User, error)
}
