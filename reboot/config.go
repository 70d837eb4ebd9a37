// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package reboot

import (
	"encoding/binary"
	"errors"
	"sync"
)

const (
	configMagic     = 0x47434647 // GFCG
	configEntrySize = 16
)

// ConfigPage represents persistent configuration items stored in a memory
// page which survives warm resets. Each entry holds a magic word, the item
// key and its value.
type ConfigPage struct {
	sync.Mutex

	// Mem is the page memory.
	Mem []byte
}

func (c *ConfigPage) entry(i int) (valid bool, item uint32, value uint64) {
	e := c.Mem[i*configEntrySize : (i+1)*configEntrySize]

	valid = binary.LittleEndian.Uint32(e[0:4]) == configMagic
	item = binary.LittleEndian.Uint32(e[4:8])
	value = binary.LittleEndian.Uint64(e[8:16])

	return
}

func (c *ConfigPage) put(i int, item uint32, value uint64) {
	e := c.Mem[i*configEntrySize : (i+1)*configEntrySize]

	binary.LittleEndian.PutUint32(e[0:4], configMagic)
	binary.LittleEndian.PutUint32(e[4:8], item)
	binary.LittleEndian.PutUint64(e[8:16], value)
}

func (c *ConfigPage) find(item uint32) int {
	for i := 0; i < len(c.Mem)/configEntrySize; i++ {
		if valid, key, _ := c.entry(i); valid && key == item {
			return i
		}
	}

	return -1
}

// SetConfig sets a configuration item.
func (c *ConfigPage) SetConfig(item uint32, value uint64) error {
	c.Lock()
	defer c.Unlock()

	if i := c.find(item); i >= 0 {
		c.put(i, item, value)
		return nil
	}

	for i := 0; i < len(c.Mem)/configEntrySize; i++ {
		if valid, _, _ := c.entry(i); !valid {
			c.put(i, item, value)
			return nil
		}
	}

	return errors.New("configuration page full")
}

// GetConfig returns a configuration item value.
func (c *ConfigPage) GetConfig(item uint32) (value uint64, ok bool) {
	c.Lock()
	defer c.Unlock()

	if i := c.find(item); i >= 0 {
		_, _, value = c.entry(i)
		return value, true
	}

	return
}

// ClearConfig removes a configuration item.
func (c *ConfigPage) ClearConfig(item uint32) {
	c.Lock()
	defer c.Unlock()

	if i := c.find(item); i >= 0 {
		for j := range c.Mem[i*configEntrySize : (i+1)*configEntrySize] {
			c.Mem[i*configEntrySize+j] = 0
		}
	}
}

// Items returns all configuration items.
func (c *ConfigPage) Items() map[uint32]uint64 {
	c.Lock()
	defer c.Unlock()

	items := make(map[uint32]uint64)

	for i := 0; i < len(c.Mem)/configEntrySize; i++ {
		if valid, item, value := c.entry(i); valid {
			items[item] = value
		}
	}

	return items
}

// Staged returns whether the persistent configuration selects a staged
// payload for this boot.
func (c *ConfigPage) Staged() bool {
	v, ok := c.GetConfig(ConfigItem)
	return ok && v == ConfigValue
}
