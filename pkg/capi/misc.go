package capi

import (
	"bytes"
)

// Version is the bridge version reported by ov_genai_bridge_version.
const Version = "0.3.0"

// BridgeVersion writes Version, two-phase.
func (b *Bridge) BridgeVersion(output []byte, outputSize *uint) Status {
	return b.call("bridge_version", func() error {
		return writeString(Version, output, outputSize)
	})
}

// MetricsText writes the Prometheus text exposition of the bridge metrics,
// two-phase. It is empty when metrics are disabled. The exposition includes
// the call counters, so it can grow between the size query and the fill.
func (b *Bridge) MetricsText(output []byte, outputSize *uint) Status {
	return b.call("metrics_text", func() error {
		var buf bytes.Buffer
		if b.expose != nil {
			if err := b.expose(&buf); err != nil {
				return err
			}
		}
		return writeString(buf.String(), output, outputSize)
	})
}
