package hal

import (
	"rvos/device"
	"rvos/device/uart"
	"rvos/kernel/kfmt"
)

// managedDevices contains the devices discovered by the HAL.
type managedDevices struct {
	activeConsole device.CharDevice
}

var devices managedDevices

// ActiveConsole returns the currently active console device.
func ActiveConsole() device.CharDevice {
	return devices.activeConsole
}

// DetectHardware initializes drivers for the hardware the virt machine is
// known to provide. The first character device to come up becomes the active
// console and receives all buffered kfmt output.
func DetectHardware() {
	probe(uart.HWProbes())
}

// probe executes the probe function for each driver and initializes each
// detected device.
func probe(probeFns []device.ProbeFn) {
	for _, probeFn := range probeFns {
		drv := probeFn()
		if drv == nil {
			continue
		}

		if err := drv.DriverInit(kfmt.GetOutputSink()); err != nil {
			kfmt.Printf("[hal] %s: init failed: %s\r\n", drv.DriverName(), err.Message)
			continue
		}

		if cons, ok := drv.(device.CharDevice); ok && devices.activeConsole == nil {
			devices.activeConsole = cons
			kfmt.SetOutputSink(cons)
		}

		major, minor, patch := drv.DriverVersion()
		kfmt.Printf("[hal] %s(%d.%d.%d): initialized\r\n", drv.DriverName(), major, minor, patch)
	}
}
