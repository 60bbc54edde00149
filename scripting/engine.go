// Package scripting evaluates user-supplied filter preset scripts.
// A preset is a small JavaScript program that returns an object of
// filter fields; missing fields inherit the defaults and numeric
// fields are clamped, so a preset can never put the viewer into an
// invalid state.
package scripting

import (
	"context"
	"fmt"

	"github.com/dop251/goja"

	"github.com/duskview/duskview/colorize"
)

// Engine runs preset scripts on a goja runtime. An Engine is not safe
// for concurrent use; create one per evaluation site.
type Engine struct {
	vm *goja.Runtime
}

// NewEngine builds a runtime with the preset globals installed:
// `defaults` holds the stock filter settings.
func NewEngine() *Engine {
	e := &Engine{vm: goja.New()}
	e.vm.Set("defaults", settingsToMap(colorize.DefaultSettings()))
	return e
}

// EvalPreset runs script and decodes its result into filter settings.
// The script's returned object may set any subset of darkMode,
// preserveColor, inversion, brightness, contrast, and sepia; omitted
// fields keep their defaults. Cancellation interrupts the runtime.
func (e *Engine) EvalPreset(ctx context.Context, script string) (colorize.Settings, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	if err := ctx.Err(); err != nil {
		return colorize.Settings{}, err
	}

	done := make(chan struct{})
	defer close(done)
	defer e.vm.ClearInterrupt()

	go func() {
		select {
		case <-ctx.Done():
			e.vm.Interrupt(ctx.Err())
		case <-done:
		}
	}()

	val, err := e.vm.RunString(script)
	if err != nil {
		if interrupted, ok := err.(*goja.InterruptedError); ok {
			if cause := interrupted.Unwrap(); cause != nil {
				return colorize.Settings{}, cause
			}
			return colorize.Settings{}, context.Canceled
		}
		return colorize.Settings{}, fmt.Errorf("scripting: evaluate preset: %w", err)
	}
	return decodeSettings(val)
}

func settingsToMap(s colorize.Settings) map[string]interface{} {
	return map[string]interface{}{
		"darkMode":      s.DarkMode,
		"preserveColor": s.PreserveColor,
		"inversion":     s.Inversion,
		"brightness":    s.Brightness,
		"contrast":      s.Contrast,
		"sepia":         s.Sepia,
	}
}

func decodeSettings(val goja.Value) (colorize.Settings, error) {
	settings := colorize.DefaultSettings()
	if val == nil || goja.IsUndefined(val) || goja.IsNull(val) {
		return colorize.Settings{}, fmt.Errorf("scripting: preset returned no value")
	}
	exported := val.Export()
	fields, ok := exported.(map[string]interface{})
	if !ok {
		return colorize.Settings{}, fmt.Errorf("scripting: preset returned %T, want an object", exported)
	}
	if v, ok := boolField(fields, "darkMode"); ok {
		settings.DarkMode = v
	}
	if v, ok := boolField(fields, "preserveColor"); ok {
		settings.PreserveColor = v
	}
	if v, ok := intField(fields, "inversion"); ok {
		settings.Inversion = v
	}
	if v, ok := intField(fields, "brightness"); ok {
		settings.Brightness = v
	}
	if v, ok := intField(fields, "contrast"); ok {
		settings.Contrast = v
	}
	if v, ok := intField(fields, "sepia"); ok {
		settings.Sepia = v
	}
	settings = settings.Clamp()
	return settings, nil
}

func boolField(fields map[string]interface{}, key string) (bool, bool) {
	raw, ok := fields[key]
	if !ok {
		return false, false
	}
	v, ok := raw.(bool)
	return v, ok
}

func intField(fields map[string]interface{}, key string) (int, bool) {
	raw, ok := fields[key]
	if !ok {
		return 0, false
	}
	switch v := raw.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}
