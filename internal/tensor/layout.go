package tensor

import (
	"fmt"
	"strings"
)

// Layout is the physical axis order of a rank-4 image tensor.
type Layout int

// Supported layouts.
const (
	// ChannelsFirst stores (batch, channel, height, width).
	ChannelsFirst Layout = iota
	// ChannelsLast stores (batch, height, width, channel).
	ChannelsLast
)

// String returns the conventional NCHW/NHWC name of the layout.
func (l Layout) String() string {
	switch l {
	case ChannelsFirst:
		return "NCHW"
	case ChannelsLast:
		return "NHWC"
	default:
		return fmt.Sprintf("Layout(%d)", int(l))
	}
}

// Valid reports whether l is one of the supported layouts.
func (l Layout) Valid() bool {
	return l == ChannelsFirst || l == ChannelsLast
}

// ParseLayout accepts "NCHW"/"channels-first" and "NHWC"/"channels-last",
// case-insensitively.
func ParseLayout(s string) (Layout, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "nchw", "channels-first", "channels_first", "first":
		return ChannelsFirst, nil
	case "nhwc", "channels-last", "channels_last", "last":
		return ChannelsLast, nil
	default:
		return 0, fmt.Errorf("unknown layout %q (want NCHW or NHWC)", s)
	}
}
