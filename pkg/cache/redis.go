package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"classquiz/internal/models"

	"github.com/go-redis/redis/v8"
)

const quizTTL = 24 * time.Hour

type RedisCache struct {
	client *redis.Client
	ctx    context.Context
}

func NewRedisCache(addr string) *RedisCache {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})
	return &RedisCache{
		client: client,
		ctx:    context.Background(),
	}
}

func quizKey(quizID uint) string {
	return fmt.Sprintf("quiz:%d", quizID)
}

func (c *RedisCache) SetQuiz(quiz *models.Quiz) error {
	data, err := json.Marshal(quiz)
	if err != nil {
		return err
	}
	return c.client.Set(c.ctx, quizKey(quiz.ID), data, quizTTL).Err()
}

func (c *RedisCache) GetQuiz(quizID uint) (*models.Quiz, error) {
	data, err := c.client.Get(c.ctx, quizKey(quizID)).Bytes()
	if err != nil {
		return nil, err
	}
	var quiz models.Quiz
	err = json.Unmarshal(data, &quiz)
	return &quiz, err
}

func (c *RedisCache) InvalidateQuiz(quizID uint) error {
	return c.client.Del(c.ctx, quizKey(quizID)).Err()
}
