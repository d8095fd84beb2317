package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"notetaker/model"
	"notetaker/storage"
)

type UsersService struct {
	users storage.Collection

	// enforceUnique rejects duplicate usernames/emails at creation when set.
	enforceUnique bool
}

func NewUsersService(store storage.Store, enforceUnique bool) *UsersService {
	return &UsersService{
		users:         store.Users(),
		enforceUnique: enforceUnique,
	}
}

type UserUpdate struct {
	Username *string
	Email    *string
}

func (s *UsersService) Create(ctx context.Context, username, email string) (model.User, error) {
	username = strings.TrimSpace(username)
	email = strings.TrimSpace(email)
	if username == "" {
		return model.User{}, fmt.Errorf("%w: username is required", ErrValidation)
	}
	if email == "" {
		return model.User{}, fmt.Errorf("%w: email is required", ErrValidation)
	}

	if s.enforceUnique {
		if err := s.checkUnique(ctx, "username", username); err != nil {
			return model.User{}, err
		}
		if err := s.checkUnique(ctx, "email", email); err != nil {
			return model.User{}, err
		}
	}

	doc := storage.Document{
		"username":   username,
		"email":      email,
		"created_at": time.Now().UTC(),
	}
	id, err := s.users.InsertOne(ctx, doc)
	if err != nil {
		return model.User{}, err
	}
	doc["id"] = id
	return model.UserFromDocument(doc), nil
}

func (s *UsersService) checkUnique(ctx context.Context, field, value string) error {
	_, err := s.users.FindOne(ctx, storage.Filter{field: value})
	if err == nil {
		return fmt.Errorf("%w: %s %q is taken", ErrDuplicate, field, value)
	}
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	return err
}

func (s *UsersService) Get(ctx context.Context, id string) (model.User, error) {
	doc, err := s.users.FindOne(ctx, storage.Filter{"id": id})
	if err != nil {
		return model.User{}, err
	}
	return model.UserFromDocument(doc), nil
}

// List returns users in creation order, newest first.
func (s *UsersService) List(ctx context.Context) ([]model.User, error) {
	cur, err := s.users.FindMany(ctx, nil, storage.Find().SetSort("created_at", true).SetLimit(ListLimit))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	users := []model.User{}
	for cur.Next(ctx) {
		var doc storage.Document
		if err := cur.Decode(&doc); err != nil {
			return nil, err
		}
		users = append(users, model.UserFromDocument(doc))
	}
	if err := cur.Err(); err != nil {
		return nil, err
	}
	return users, nil
}

func (s *UsersService) Update(ctx context.Context, id string, update UserUpdate) (model.User, error) {
	var updates []storage.FieldUpdate

	if update.Username != nil {
		username := strings.TrimSpace(*update.Username)
		if username == "" {
			return model.User{}, fmt.Errorf("%w: username cannot be empty", ErrValidation)
		}
		updates = append(updates, storage.SetField("username", username))
	}
	if update.Email != nil {
		email := strings.TrimSpace(*update.Email)
		if email == "" {
			return model.User{}, fmt.Errorf("%w: email cannot be empty", ErrValidation)
		}
		updates = append(updates, storage.SetField("email", email))
	}

	if len(updates) == 0 {
		return model.User{}, fmt.Errorf("%w: no updatable fields provided", ErrValidation)
	}

	doc, err := s.users.UpdateOne(ctx, storage.Filter{"id": id}, updates)
	if err != nil {
		return model.User{}, err
	}
	return model.UserFromDocument(doc), nil
}

func (s *UsersService) Delete(ctx context.Context, id string) error {
	n, err := s.users.DeleteOne(ctx, storage.Filter{"id": id})
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrNotFound
	}
	return nil
}
