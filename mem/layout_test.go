// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package mem

import (
	"testing"

	"github.com/usbarmory/GoTEE-fatal/iram"
)

func TestLayout(t *testing.T) {
	regions := []struct {
		name  string
		start uint64
		size  uint64
	}{
		{"monitor", SecureStart, SecureSize},
		{"dma", SecureDMAStart, SecureDMASize},
		{"applet", AppletStart, AppletSize},
		{"fatal", FatalAppletStart, FatalAppletSize},
		{"iram", IramStart, IramSize},
		{"config", ConfigStart, ConfigSize},
	}

	for i := 1; i < len(regions); i++ {
		prev := regions[i-1]

		if prev.start+prev.size > regions[i].start {
			t.Errorf("%s overlaps %s", prev.name, regions[i].name)
		}
	}

	if IramSize < iram.WindowSize {
		t.Errorf("IRAM backing smaller than window")
	}

	if WorkPage%iram.PageSize != 0 || !WithinFatalApplet(WorkPage, iram.PageSize) {
		t.Errorf("invalid work page %#x", WorkPage)
	}

	if WithinFatalApplet(WorkPage, 2*iram.PageSize) || WithinFatalApplet(AppletStart, 4) {
		t.Errorf("range outside fatal applet accepted")
	}
}
