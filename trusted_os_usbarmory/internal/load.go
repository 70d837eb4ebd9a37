// Copyright (c) The GoTEE authors. All Rights Reserved.
//
// Use of this source code is governed by the license
// that can be found in the LICENSE file.

package gotee

import (
	"fmt"
	"log"

	"github.com/usbarmory/tamago/arm"
	"github.com/usbarmory/tamago/dma"
	"github.com/usbarmory/tamago/soc/nxp/imx6ul"

	"github.com/usbarmory/GoTEE/monitor"

	"github.com/usbarmory/armory-boot/exec"

	"github.com/usbarmory/GoTEE-fatal/util"
)

var (
	// TA is the workload applet ELF executable
	TA []byte
	// FA is the fatal screen applet ELF executable
	FA []byte
)

// applet represents a loaded Secure World user mode applet.
type applet struct {
	*monitor.ExecCtx

	name    string
	symbols *util.Symbols
}

func configureMMU(region *dma.Region) {
	start := uint32(region.Start())
	end := uint32(region.End())

	// user mode access, identity mapped
	imx6ul.ARM.ConfigureMMU(start, end, start, arm.MemoryRegion|arm.TTE_AP_011<<10)
}

// loadApplet loads a TamaGo unikernel as Secure World user mode applet,
// serving the argument RPC receiver.
func loadApplet(name string, elf []byte, region *dma.Region, rpc *RPC, out *util.Output) (ta *applet, err error) {
	image := &exec.ELFImage{
		Region: region,
		ELF:    elf,
	}

	configureMMU(image.Region)

	if err = image.Load(); err != nil {
		return nil, fmt.Errorf("SM could not load %s, %v", name, err)
	}

	ctx, err := monitor.Load(image.Entry(), image.Region, true)

	if err != nil {
		return nil, fmt.Errorf("SM could not load %s, %v", name, err)
	}

	log.Printf("SM loaded %s addr:%#x entry:%#x size:%d", name, ctx.Memory.Start(), ctx.R15, len(elf))

	ta = &applet{
		ExecCtx: ctx,
		name:    name,
	}

	if ta.symbols, err = util.NewSymbols(elf); err != nil {
		log.Printf("SM %s has no debugging information, %v", name, err)
		err = nil
	}

	ctx.Server.Register(rpc)

	// set stack pointer to the end of available memory
	ctx.R13 = uint32(ctx.Memory.End())

	// override default handler to improve logging and trap crashes
	ctx.Handler = goHandler(out)

	return
}

// run executes an applet until it exits or crashes, a crash is returned as
// error.
func (ta *applet) run() (err error) {
	mode := arm.ModeName(int(ta.SPSR) & 0x1f)

	log.Printf("SM starting %s mode:%s sp:%#.8x pc:%#.8x", ta.name, mode, ta.R13, ta.R15)

	err = ta.Run()

	log.Printf("SM stopped %s mode:%s sp:%#.8x lr:%#.8x pc:%#.8x err:%v", ta.name, mode, ta.R13, ta.R14, ta.R15, err)

	if err != nil && ta.symbols != nil {
		pcLine, _ := ta.symbols.PCToLine(uint64(ta.R15))
		lrLine, _ := ta.symbols.PCToLine(uint64(ta.R14))

		if pcLine != "" || lrLine != "" {
			log.Printf("SM %s stack trace:\n  %s\n  %s", ta.name, pcLine, lrLine)
		}
	}

	return
}
