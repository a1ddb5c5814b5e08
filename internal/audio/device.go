package audio

import (
	"fmt"
	"strings"

	"github.com/gen2brain/malgo"
)

// DeviceInfo describes an audio device
type DeviceInfo struct {
	ID        string
	Name      string
	IsDefault bool
}

// String returns a human-readable representation of the device
func (d DeviceInfo) String() string {
	marker := ""
	if d.IsDefault {
		marker = " [DEFAULT]"
	}
	return fmt.Sprintf("%s: %s%s", d.ID, d.Name, marker)
}

// ListCaptureDevices returns all available microphone devices
func ListCaptureDevices() ([]DeviceInfo, error) {
	return listDevices(malgo.Capture)
}

// ListPlaybackDevices returns all available output devices
func ListPlaybackDevices() ([]DeviceInfo, error) {
	return listDevices(malgo.Playback)
}

func listDevices(kind malgo.DeviceType) ([]DeviceInfo, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize malgo context: %w", err)
	}
	defer func() {
		_ = ctx.Uninit()
		ctx.Free()
	}()

	infos, err := ctx.Devices(kind)
	if err != nil {
		return nil, fmt.Errorf("failed to enumerate devices: %w", err)
	}

	devices := make([]DeviceInfo, 0, len(infos))
	for _, info := range infos {
		devices = append(devices, DeviceInfo{
			ID:        info.ID.String(),
			Name:      strings.TrimRight(info.Name(), "\x00"),
			IsDefault: info.IsDefault != 0,
		})
	}

	return devices, nil
}

// FindCaptureDevice resolves a device by name or ID; an empty name selects
// the default device.
func FindCaptureDevice(name string) (*DeviceInfo, error) {
	devices, err := ListCaptureDevices()
	if err != nil {
		return nil, err
	}
	if len(devices) == 0 {
		return nil, fmt.Errorf("no capture devices found")
	}

	if name == "" {
		for i := range devices {
			if devices[i].IsDefault {
				return &devices[i], nil
			}
		}
		return &devices[0], nil
	}

	for i := range devices {
		if deviceMatches(devices[i].ID, devices[i].Name, name) {
			return &devices[i], nil
		}
	}

	return nil, fmt.Errorf("capture device %q not found", name)
}

// deviceMatches reports whether a device's ID or name matches a configured
// selector. IDs compare exactly, names case-insensitively.
func deviceMatches(id, name, selector string) bool {
	return id == selector || strings.EqualFold(name, selector)
}
