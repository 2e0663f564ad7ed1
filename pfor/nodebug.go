//go:build !debug

package pfor

import "go.uber.org/zap"

// zapConfig returns the base logger configuration.
func zapConfig(development bool) zap.Config {
	if development {
		return zap.NewDevelopmentConfig()
	}
	return zap.NewProductionConfig()
}
