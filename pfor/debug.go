//go:build debug

package pfor

import "go.uber.org/zap"

// zapConfig returns the base logger configuration. Debug builds always log in
// development mode.
func zapConfig(bool) zap.Config {
	return zap.NewDevelopmentConfig()
}
