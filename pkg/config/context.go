package config

import "context"

type contextKey string

const (
	configCtxKey  contextKey = "config"
	serviceCtxKey contextKey = "config_service"
)

// ContextWithConfig stores cfg and the service that loaded it in ctx.
func ContextWithConfig(ctx context.Context, cfg *Config, svc Service) context.Context {
	ctx = context.WithValue(ctx, configCtxKey, cfg)
	return context.WithValue(ctx, serviceCtxKey, svc)
}

// FromContext returns the configuration stored in ctx, or nil.
func FromContext(ctx context.Context) *Config {
	if ctx == nil {
		return nil
	}
	cfg, _ := ctx.Value(configCtxKey).(*Config)
	return cfg
}

// ServiceFromContext returns the service that loaded the configuration in ctx.
func ServiceFromContext(ctx context.Context) Service {
	if ctx == nil {
		return nil
	}
	svc, _ := ctx.Value(serviceCtxKey).(Service)
	return svc
}
