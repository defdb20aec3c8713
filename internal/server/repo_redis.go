package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"

	"github.com/agrimitra/farmcal/internal/task"
)

const (
	redisTasksKey = "farmcal:tasks"
	redisOrderKey = "farmcal:task_order"
)

// RedisRepository stores tasks in a redis hash keyed by task id, with a
// companion list preserving insertion order.
type RedisRepository struct {
	rc *redis.Client
}

func NewRedisRepository(rc *redis.Client) *RedisRepository {
	return &RedisRepository{rc: rc}
}

func (r *RedisRepository) List(ctx context.Context) ([]task.Task, error) {
	ids, err := r.rc.LRange(ctx, redisOrderKey, 0, -1).Result()
	if err != nil {
		return nil, fmt.Errorf("redis list order: %w", err)
	}
	if len(ids) == 0 {
		return []task.Task{}, nil
	}
	vals, err := r.rc.HMGet(ctx, redisTasksKey, ids...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis fetch tasks: %w", err)
	}
	tasks := make([]task.Task, 0, len(vals))
	for _, v := range vals {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var t task.Task
		if err := json.Unmarshal([]byte(raw), &t); err != nil {
			return nil, fmt.Errorf("redis decode task: %w", err)
		}
		tasks = append(tasks, t)
	}
	return tasks, nil
}

func (r *RedisRepository) Add(ctx context.Context, tasks ...task.Task) error {
	if len(tasks) == 0 {
		return nil
	}
	pipe := r.rc.TxPipeline()
	for _, t := range tasks {
		raw, err := json.Marshal(t)
		if err != nil {
			return fmt.Errorf("redis encode task: %w", err)
		}
		pipe.HSet(ctx, redisTasksKey, t.ID, raw)
		pipe.RPush(ctx, redisOrderKey, t.ID)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("redis add tasks: %w", err)
	}
	return nil
}

func (r *RedisRepository) Get(ctx context.Context, id string) (task.Task, error) {
	raw, err := r.rc.HGet(ctx, redisTasksKey, id).Result()
	if errors.Is(err, redis.Nil) {
		return task.Task{}, ErrNotFound
	}
	if err != nil {
		return task.Task{}, fmt.Errorf("redis get task: %w", err)
	}
	var t task.Task
	if err := json.Unmarshal([]byte(raw), &t); err != nil {
		return task.Task{}, fmt.Errorf("redis decode task: %w", err)
	}
	return t, nil
}

func (r *RedisRepository) Put(ctx context.Context, t task.Task) error {
	exists, err := r.rc.HExists(ctx, redisTasksKey, t.ID).Result()
	if err != nil {
		return fmt.Errorf("redis check task: %w", err)
	}
	if !exists {
		return ErrNotFound
	}
	raw, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("redis encode task: %w", err)
	}
	if err := r.rc.HSet(ctx, redisTasksKey, t.ID, raw).Err(); err != nil {
		return fmt.Errorf("redis put task: %w", err)
	}
	return nil
}

func (r *RedisRepository) Remove(ctx context.Context, id string) error {
	removed, err := r.rc.HDel(ctx, redisTasksKey, id).Result()
	if err != nil {
		return fmt.Errorf("redis delete task: %w", err)
	}
	if removed == 0 {
		return ErrNotFound
	}
	if err := r.rc.LRem(ctx, redisOrderKey, 1, id).Err(); err != nil {
		return fmt.Errorf("redis trim order: %w", err)
	}
	return nil
}
