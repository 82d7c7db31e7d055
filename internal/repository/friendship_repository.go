package repository

import (
	"context"
	"fmt"
	"qa_forum_backend/internal/model"
	"time"

	"github.com/go-redis/redis/v8"
	"gorm.io/gorm"
)

const friendIDsTTL = 10 * time.Minute

type FriendshipRepository struct {
	DB    *gorm.DB
	Redis *redis.Client
	ctx   context.Context
}

func NewFriendshipRepository(db *gorm.DB, rdb *redis.Client) *FriendshipRepository {
	return &FriendshipRepository{
		DB:    db,
		Redis: rdb,
		ctx:   context.Background(),
	}
}

func friendsKey(userID string) string {
	return fmt.Sprintf("forum:friends:%s", userID)
}

func (r *FriendshipRepository) invalidate(userIDs ...string) {
	if r.Redis == nil {
		return
	}
	keys := make([]string, 0, len(userIDs))
	for _, id := range userIDs {
		keys = append(keys, friendsKey(id))
	}
	r.Redis.Del(r.ctx, keys...)
}

func (r *FriendshipRepository) Create(a, b string) error {
	f := model.NewFriendship(a, b)
	if err := r.DB.Create(&f).Error; err != nil {
		return err
	}
	r.invalidate(a, b)
	return nil
}

func (r *FriendshipRepository) Delete(a, b string) (bool, error) {
	f := model.NewFriendship(a, b)
	res := r.DB.Where("user_a_id = ? AND user_b_id = ?", f.UserAID, f.UserBID).Delete(&model.Friendship{})
	if res.Error != nil {
		return false, res.Error
	}
	r.invalidate(a, b)
	return res.RowsAffected > 0, nil
}

func (r *FriendshipRepository) Exists(a, b string) (bool, error) {
	f := model.NewFriendship(a, b)
	var count int64
	err := r.DB.Model(&model.Friendship{}).
		Where("user_a_id = ? AND user_b_id = ?", f.UserAID, f.UserBID).
		Count(&count).Error
	return count > 0, err
}

// FriendIDs reads both sides of the pair index.
func (r *FriendshipRepository) FriendIDs(userID string) ([]string, error) {
	var rows []model.Friendship
	if err := r.DB.Where("user_a_id = ? OR user_b_id = ?", userID, userID).Find(&rows).Error; err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(rows))
	for _, f := range rows {
		if f.UserAID == userID {
			ids = append(ids, f.UserBID)
		} else {
			ids = append(ids, f.UserAID)
		}
	}
	return ids, nil
}

// FriendIDsCached serves FriendIDs from a Redis set when Redis is enabled.
func (r *FriendshipRepository) FriendIDsCached(userID string) ([]string, error) {
	if r.Redis == nil {
		return r.FriendIDs(userID)
	}

	key := friendsKey(userID)
	cached, err := r.Redis.SMembers(r.ctx, key).Result()
	if err == nil && len(cached) > 0 {
		return cached, nil
	}

	ids, err := r.FriendIDs(userID)
	if err != nil {
		return nil, err
	}
	if len(ids) > 0 {
		members := make([]interface{}, len(ids))
		for i, id := range ids {
			members[i] = id
		}
		pipe := r.Redis.Pipeline()
		pipe.SAdd(r.ctx, key, members...)
		pipe.Expire(r.ctx, key, friendIDsTTL)
		pipe.Exec(r.ctx)
	}
	return ids, nil
}
