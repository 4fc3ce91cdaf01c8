package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"conser-control/backend/internal/dto"
	"conser-control/backend/pkg/redis"
)

const catalogGenerationKey = "sst:catalog:generation"

// requirementsCache 职能需求汇总缓存（Redis 可选）
//
// 键格式 sst:requirements:<generation>:<date>:<function_id>。
// 目录或绑定的任何写操作都会递增 generation，使全部旧汇总一次性失效；
// 汇总含"今日发放"到期预览，因此键中带日期，跨日自然失效。
// rdb 为 nil 或 Redis 出错时降级为直接查库，错误只记录不返回。
type requirementsCache struct {
	rdb    *redis.Client
	ttl    time.Duration
	logger *zap.Logger
}

func newRequirementsCache(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *requirementsCache {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &requirementsCache{rdb: rdb, ttl: ttl, logger: logger}
}

func (c *requirementsCache) enabled() bool {
	return c != nil && c.rdb != nil
}

func (c *requirementsCache) key(ctx context.Context, functionID string, today time.Time) (string, error) {
	gen, err := c.rdb.Generation(ctx, catalogGenerationKey)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("sst:requirements:%d:%s:%s", gen, today.Format(dateLayout), functionID), nil
}

// get 返回缓存的汇总以及本次读取所用的键。
// 未命中时调用方应将新构建的汇总写回同一个键：若构建期间发生写操作，
// 该键所属代际已被淘汰，旧汇总不会被后续读取命中。键为空表示不可回写。
func (c *requirementsCache) get(ctx context.Context, functionID string, today time.Time) (*dto.RequirementsSummaryResponse, string, bool) {
	if !c.enabled() {
		return nil, "", false
	}
	key, err := c.key(ctx, functionID, today)
	if err != nil {
		c.logger.Warn("读取缓存代际失败", zap.Error(err))
		return nil, "", false
	}
	var summary dto.RequirementsSummaryResponse
	ok, err := c.rdb.GetJSON(ctx, key, &summary)
	if err != nil {
		c.logger.Warn("读取职能需求缓存失败", zap.String("function_id", functionID), zap.Error(err))
		return nil, "", false
	}
	if !ok {
		return nil, key, false
	}
	return &summary, key, true
}

func (c *requirementsCache) set(ctx context.Context, key string, summary *dto.RequirementsSummaryResponse) {
	if !c.enabled() || key == "" {
		return
	}
	if err := c.rdb.SetJSON(ctx, key, summary, c.ttl); err != nil {
		c.logger.Warn("写入职能需求缓存失败", zap.String("function_id", summary.FunctionID), zap.Error(err))
	}
}

func (c *requirementsCache) invalidate(ctx context.Context) {
	if !c.enabled() {
		return
	}
	if err := c.rdb.BumpGeneration(ctx, catalogGenerationKey); err != nil {
		c.logger.Warn("刷新目录缓存代际失败", zap.Error(err))
	}
}
