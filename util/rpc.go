// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package util

// ConfigItem represents an RPC persistent configuration request.
type ConfigItem struct {
	// Item is the configuration key
	Item uint32
	// Value is the configuration value
	Value uint64
}

// LEDStatus represents an RPC LED state request.
type LEDStatus struct {
	// Name is the LED name
	Name string
	// On is the LED state
	On bool
}
