package composer

import (
	"github.com/Carmen-Shannon/splatfx/engine/renderer/shader"
	"github.com/Carmen-Shannon/splatfx/engine/scheduler"
)

// ComposerBuilderOption is a functional option for configuring a Composer.
type ComposerBuilderOption func(*composer)

// WithScheduler sets the scheduler the kernel comparison runs on. Defaults to a private
// wall-clock scheduler, which only fires if someone polls it.
//
// Parameters:
//   - s: the shared frame scheduler
//
// Returns:
//   - ComposerBuilderOption: option function to apply
func WithScheduler(s *scheduler.Scheduler) ComposerBuilderOption {
	return func(c *composer) {
		c.sched = s
	}
}

// WithShaderBuilder shares a shader builder and its include registry.
func WithShaderBuilder(b *shader.Builder) ComposerBuilderOption {
	return func(c *composer) {
		c.builder = b
	}
}
