package ioc

import (
	"context"
	"time"

	"go.uber.org/zap"

	"pexipmon/internal/app"
	"pexipmon/internal/loader"
)

// InitTopologySink 构建 Neo4j 拓扑写入器，未配置 neo4j.uri 时返回 nil。
func InitTopologySink(ctx context.Context, cfg app.Config, logger *zap.Logger) (app.TopologySink, func(), error) {
	if !cfg.Neo4j.Enabled() {
		return nil, func() {}, nil
	}
	client, err := loader.NewClient(ctx, loader.Config{
		URI:                  cfg.Neo4j.URI,
		Username:             cfg.Neo4j.Username,
		Password:             cfg.Neo4j.Password,
		Database:             cfg.Neo4j.Database,
		MaxConnectionPool:    cfg.Neo4j.MaxConnectionPool,
		ConnectionTimeoutSec: cfg.Neo4j.ConnectTimeoutSecond,
	})
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		closeCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := client.Close(closeCtx); err != nil {
			logger.Warn("close neo4j client failed", zap.Error(err))
		}
	}
	logger.Info("topology sink enabled", zap.String("uri", cfg.Neo4j.URI))
	return loader.NewSink(client, cfg.Neo4j.BatchSize, logger), cleanup, nil
}
