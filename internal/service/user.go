package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/foodgram/backend/internal/models"
	"github.com/foodgram/backend/internal/types"
)

// SubscriptionEntry is one followed author with their recipe summaries
// and true recipe count. Recipes may be truncated by a requested limit
// while RecipesCount always reflects the full total.
type SubscriptionEntry struct {
	User         models.User
	Recipes      []models.Recipe
	RecipesCount int64
}

// UserService handles user listing, profile updates and subscriptions.
type UserService struct {
	db *gorm.DB
}

func NewUserService(db *gorm.DB) *UserService {
	return &UserService{db: db}
}

// Get retrieves a user by id.
func (s *UserService) Get(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &user, nil
}

// List returns a page of users, newest first, and the total count.
func (s *UserService) List(ctx context.Context, page types.PageParams) ([]models.User, int64, error) {
	var total int64
	if err := s.db.WithContext(ctx).Model(&models.User{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	q := s.db.WithContext(ctx).Order("created_at DESC")
	if page.Limit > 0 {
		q = q.Offset((page.Page - 1) * page.Limit).Limit(page.Limit)
	}
	if err := q.Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// UpdateMe applies a partial profile update.
func (s *UserService) UpdateMe(ctx context.Context, userID uuid.UUID, req *types.UpdateMeRequest) (*models.User, error) {
	user, err := s.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	if req.Username != nil && *req.Username != user.Username {
		var count int64
		if err := s.db.WithContext(ctx).Model(&models.User{}).Where("username = ?", *req.Username).Count(&count).Error; err != nil {
			return nil, err
		}
		if count > 0 {
			return nil, &FieldError{Field: "username", Message: "a user with this username already exists"}
		}
		user.Username = *req.Username
	}
	if req.FirstName != nil {
		user.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		user.LastName = *req.LastName
	}
	if err := s.db.WithContext(ctx).Save(user).Error; err != nil {
		return nil, err
	}
	return user, nil
}

// IsSubscribed reports whether viewer follows userID. Always false for
// an anonymous viewer.
func (s *UserService) IsSubscribed(ctx context.Context, viewer *uuid.UUID, userID uuid.UUID) (bool, error) {
	if viewer == nil {
		return false, nil
	}
	var count int64
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND followed_id = ?", *viewer, userID).
		Count(&count).Error
	return count > 0, err
}

// SubscribedSet returns which of the given users the viewer follows.
func (s *UserService) SubscribedSet(ctx context.Context, viewer *uuid.UUID, userIDs []uuid.UUID) (map[uuid.UUID]bool, error) {
	set := make(map[uuid.UUID]bool, len(userIDs))
	if viewer == nil || len(userIDs) == 0 {
		return set, nil
	}
	var rows []uuid.UUID
	err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND followed_id IN ?", *viewer, userIDs).
		Pluck("followed_id", &rows).Error
	if err != nil {
		return nil, err
	}
	for _, id := range rows {
		set[id] = true
	}
	return set, nil
}

// Subscribe creates the follow pair. Self-follows are a validation
// error and duplicates are a Conflict; a racing duplicate hitting the
// unique constraint maps to the same Conflict.
func (s *UserService) Subscribe(ctx context.Context, followerID, followedID uuid.UUID) (*models.User, error) {
	followed, err := s.Get(ctx, followedID)
	if err != nil {
		return nil, err
	}
	if followerID == followedID {
		return nil, ErrSelfFollow
	}
	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Follow{}).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Count(&count).Error; err != nil {
		return nil, err
	}
	if count > 0 {
		return nil, conflictf("you are already subscribed to user %s", followed.Username)
	}
	follow := models.Follow{FollowerID: followerID, FollowedID: followedID}
	if err := s.db.WithContext(ctx).Create(&follow).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, conflictf("you are already subscribed to user %s", followed.Username)
		}
		return nil, err
	}
	return followed, nil
}

// Unsubscribe removes the follow pair; a missing pair is a Conflict.
func (s *UserService) Unsubscribe(ctx context.Context, followerID, followedID uuid.UUID) error {
	followed, err := s.Get(ctx, followedID)
	if err != nil {
		return err
	}
	result := s.db.WithContext(ctx).
		Where("follower_id = ? AND followed_id = ?", followerID, followedID).
		Delete(&models.Follow{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return conflictf("you were not subscribed to user %s", followed.Username)
	}
	return nil
}

// Subscriptions pages over the users the viewer follows.
func (s *UserService) Subscriptions(ctx context.Context, viewer uuid.UUID, page types.PageParams) ([]models.User, int64, error) {
	base := s.db.WithContext(ctx).Model(&models.User{}).
		Joins("JOIN follows ON follows.followed_id = users.id").
		Where("follows.follower_id = ?", viewer)

	var total int64
	if err := base.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	var users []models.User
	q := base.Order("follows.created_at DESC")
	if page.Limit > 0 {
		q = q.Offset((page.Page - 1) * page.Limit).Limit(page.Limit)
	}
	if err := q.Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// SubscriptionEntry assembles the nested view for one followed author.
// recipesLimit >= 0 truncates the recipe list (zero included);
// a negative limit means no truncation. RecipesCount is always the
// true total.
func (s *UserService) SubscriptionEntry(ctx context.Context, user models.User, recipesLimit int) (SubscriptionEntry, error) {
	entry := SubscriptionEntry{User: user}
	if err := s.db.WithContext(ctx).Model(&models.Recipe{}).
		Where("author_id = ?", user.ID).
		Count(&entry.RecipesCount).Error; err != nil {
		return entry, err
	}
	if recipesLimit == 0 {
		return entry, nil
	}
	q := s.db.WithContext(ctx).Where("author_id = ?", user.ID).Order("name")
	if recipesLimit > 0 {
		q = q.Limit(recipesLimit)
	}
	if err := q.Find(&entry.Recipes).Error; err != nil {
		return entry, err
	}
	return entry, nil
}
