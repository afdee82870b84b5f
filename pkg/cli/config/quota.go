package config

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/urfave/cli/v3"

	"github.com/kataribe-dev/kataribe/pkg/service/quota"
	"github.com/kataribe-dev/kataribe/pkg/utils/logging"
)

// Quota holds CLI flags for quota limiter configuration
type Quota struct {
	redisAddr     string
	redisPassword string
	redisDB       int
	limit         int
	window        time.Duration
}

// Flags returns CLI flags for quota configuration
func (q *Quota) Flags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:        "quota-redis-addr",
			Usage:       "Redis address for the durable quota store (host:port). Empty runs the limiter on the in-process store only",
			Sources:     cli.EnvVars("KATARIBE_QUOTA_REDIS_ADDR"),
			Destination: &q.redisAddr,
		},
		&cli.StringFlag{
			Name:        "quota-redis-password",
			Usage:       "Redis password",
			Sources:     cli.EnvVars("KATARIBE_QUOTA_REDIS_PASSWORD"),
			Destination: &q.redisPassword,
		},
		&cli.IntFlag{
			Name:        "quota-redis-db",
			Usage:       "Redis database number",
			Sources:     cli.EnvVars("KATARIBE_QUOTA_REDIS_DB"),
			Destination: &q.redisDB,
		},
		&cli.IntFlag{
			Name:        "quota-limit",
			Usage:       "Questions allowed per identity per window",
			Value:       quota.DefaultQuota,
			Sources:     cli.EnvVars("KATARIBE_QUOTA_LIMIT"),
			Destination: &q.limit,
		},
		&cli.DurationFlag{
			Name:        "quota-window",
			Usage:       "Quota window length",
			Value:       quota.DefaultWindow,
			Sources:     cli.EnvVars("KATARIBE_QUOTA_WINDOW"),
			Destination: &q.window,
		},
	}
}

// LogValue implements slog.LogValuer, hiding the Redis password
func (q Quota) LogValue() slog.Value {
	return slog.GroupValue(
		slog.String("redis_addr", q.redisAddr),
		slog.Int("redis_db", q.redisDB),
		slog.Int("limit", q.limit),
		slog.Duration("window", q.window),
	)
}

// Configure builds the quota limiter and performs the initial
// connection attempt. This never fails: an unreachable or absent Redis
// leaves the limiter on its in-process store.
func (q *Quota) Configure(ctx context.Context) *quota.Limiter {
	opts := []quota.Option{}
	if q.limit > 0 {
		opts = append(opts, quota.WithQuota(q.limit))
	}
	if q.window > 0 {
		opts = append(opts, quota.WithWindow(q.window))
	}

	if q.redisAddr == "" {
		logging.Default().Warn("no durable quota store configured, quota counts reset on restart")
		return quota.New(nil, opts...)
	}

	backend := quota.NewRedisBackend(redis.NewClient(&redis.Options{
		Addr:     q.redisAddr,
		Password: q.redisPassword,
		DB:       q.redisDB,
	}))

	limiter := quota.New(backend, opts...)
	limiter.Connect(ctx)
	return limiter
}
