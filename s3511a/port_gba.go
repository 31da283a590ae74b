//go:build gameboyadvance

package s3511a

import (
	"runtime/volatile"
	"unsafe"
)

var (
	regData      = (*volatile.Register16)(unsafe.Pointer(uintptr(AddrData)))
	regDirection = (*volatile.Register16)(unsafe.Pointer(uintptr(AddrDirection)))
	regControl   = (*volatile.Register16)(unsafe.Pointer(uintptr(AddrControl)))
	regIME       = (*volatile.Register16)(unsafe.Pointer(uintptr(AddrIME)))
)

// GBA is the cartridge GPIO port of the console the program runs on.
var GBA Port = gbaPort{}

type gbaPort struct{}

func (gbaPort) ReadData() Data { return Data(regData.Get()) }

func (gbaPort) WriteData(d Data) { regData.Set(uint16(d)) }

func (gbaPort) WriteDirection(m RwMode) { regDirection.Set(uint16(m)) }

func (gbaPort) WriteEnable(on bool) {
	if on {
		regControl.Set(1)
	} else {
		regControl.Set(0)
	}
}

// ReadEnable only reads back 1 once the port is readable; cartridges without
// GPIO return ROM contents here.
func (gbaPort) ReadEnable() bool { return regControl.Get() == 1 }

func (gbaPort) InterruptsEnabled() bool { return regIME.Get()&1 != 0 }

func (gbaPort) SetInterruptsEnabled(on bool) {
	if on {
		regIME.Set(1)
	} else {
		regIME.Set(0)
	}
}
