package logging

import (
	"strings"

	"go.uber.org/zap"
)

// New 构建全局日志器。mode 为 "prod"/"production" 时输出 JSON，其余为开发模式。
func New(mode string) (*zap.SugaredLogger, error) {
	var cfg zap.Config
	switch strings.ToLower(mode) {
	case "prod", "production":
		cfg = zap.NewProductionConfig()
	default:
		cfg = zap.NewDevelopmentConfig()
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	return logger.Sugar(), nil
}
