// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package fatal

import (
	"encoding/json"
	"fmt"
)

// DefaultConfigPath is the configuration file location on the boot media.
const DefaultConfigPath = "/fatal.json"

// DefaultPayloadPath is the recovery payload location on the boot media.
const DefaultPayloadPath = "/payload.bin"

const defaultDescription = `A fatal error occurred in a secure world applet.

The system will restart automatically. If a recovery payload
is present on the microSD card it is staged for the next boot,
otherwise the system restarts normally.

If the problem persists, collect the information shown on
this screen and report it.`

// FileReader is the interface to the boot media filesystem.
type FileReader interface {
	ReadAll(path string) ([]byte, error)
}

// Link represents a troubleshooting reference shown on the fatal screen.
type Link struct {
	Label string `json:"label"`
	URL   string `json:"url"`
}

// Config represents the fatal screen configuration.
type Config struct {
	// ErrorMessage is a format string receiving the error module,
	// description and raw value.
	ErrorMessage string `json:"error_message"`
	// ErrorDescription is shown below the firmware version.
	ErrorDescription string `json:"error_description"`
	// FirmwareVersion identifies the running firmware.
	FirmwareVersion string `json:"firmware_version"`
	// Links lists troubleshooting references.
	Links []Link `json:"links"`
	// PayloadPath is the recovery payload staged on reboot.
	PayloadPath string `json:"payload_path"`
	// RebootDelay is the number of seconds the screen is shown before
	// rebooting, 0 waits for a console command.
	RebootDelay int `json:"reboot_delay"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	return &Config{
		ErrorMessage:     "Error Code: 2%03d-%04d (0x%x)\n",
		ErrorDescription: defaultDescription,
		FirmwareVersion:  "GoTEE",
		Links: []Link{
			{"Guide", "https://github.com/usbarmory/GoTEE/wiki"},
			{"Issues", "https://github.com/usbarmory/GoTEE/issues"},
		},
		PayloadPath: DefaultPayloadPath,
		RebootDelay: 10,
	}
}

// LoadConfig reads a JSON configuration, fields absent from the file keep
// their default value. The default configuration is returned alongside any
// error.
func LoadConfig(files FileReader, path string) (conf *Config, err error) {
	conf = DefaultConfig()

	buf, err := files.ReadAll(path)

	if err != nil {
		return conf, fmt.Errorf("could not read %s, %v", path, err)
	}

	c := DefaultConfig()

	if err = json.Unmarshal(buf, c); err != nil {
		return conf, fmt.Errorf("invalid configuration %s, %v", path, err)
	}

	if c.RebootDelay < 0 {
		return conf, fmt.Errorf("invalid configuration %s, negative reboot delay", path)
	}

	return c, nil
}
