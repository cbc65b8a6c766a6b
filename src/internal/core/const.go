// FILE: logward/src/internal/core/const.go
package core

// Serialization bounds
const (
	DefaultMaxDepth      = 10
	DefaultMaxCauseDepth = 3

	CircularRefMarker = "[Circular Reference]"
	MaxDepthMarker    = "[Max Depth Exceeded]"
)

// Delivery defaults
const (
	DefaultBufferSize = 1000

	// Discord hard cap on message content
	WebhookContentLimit = 2000
)
