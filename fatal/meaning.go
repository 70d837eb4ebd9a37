// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package fatal

// Meaning returns a short human readable explanation of well known error
// codes, or "Unknown.".
func Meaning(code ErrorCode) (m string) {
	switch code {
	case 0xe401:
		m = "Invalid handle."
	case 0x196002, 0x196202, 0x1a3e02, 0x1a4002, 0x1a4a02:
		m = "Out of memory."
	case 0x10801:
		// both entries fall through and report "Unknown."
		m = "Resource limit exceeded."
		fallthrough
	case 0x1015:
		m = "Permission denied."
		fallthrough
	default:
		m = "Unknown."
	}

	return
}
