package demo

import (
	"context"

	"go.uber.org/fx"
)

// ============================================================================
// Fx 模块
// ============================================================================

// Module 返回运行模拟负载的 Fx 模块
//
// 启动时创建 Runner 并在后台运行，停止时取消并等待全部 goroutine 退出。
func Module(cfg Config) fx.Option {
	return fx.Module("demo",
		fx.Supply(cfg),
		fx.Provide(NewRunner),
		fx.Invoke(registerLifecycle),
	)
}

// lifecycleInput 生命周期输入参数
type lifecycleInput struct {
	fx.In

	LC     fx.Lifecycle
	Runner *Runner
}

func registerLifecycle(input lifecycleInput) {
	var (
		cancel context.CancelFunc
		done   chan error
	)
	input.LC.Append(fx.Hook{
		OnStart: func(_ context.Context) error {
			var ctx context.Context
			ctx, cancel = context.WithCancel(context.Background())
			done = make(chan error, 1)
			go func() { done <- input.Runner.Run(ctx) }()
			return nil
		},
		OnStop: func(ctx context.Context) error {
			cancel()
			select {
			case err := <-done:
				s := input.Runner.Stats()
				logger.Info("模拟负载已停止",
					"published", s.Published,
					"received", s.Received,
					"lost", s.Lost,
					"torn", s.Torn)
				return err
			case <-ctx.Done():
				return ctx.Err()
			}
		},
	})
}
