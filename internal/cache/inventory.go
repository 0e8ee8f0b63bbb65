package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix     = "user:%d"
	StatsKey          = "admin:stats"
	JTIBlacklistIndex = "jwt:blacklist:%s"
)

const (
	UserTTL  = 5 * time.Minute
	StatsTTL = 30 * time.Second
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func BlacklistKey(jti string) string {
	return fmt.Sprintf(JTIBlacklistIndex, jti)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateStats(ctx context.Context) {
	Invalidate(ctx, StatsKey)
}
