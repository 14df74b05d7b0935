// Package mic captures the default input device with miniaudio.
package mic

import (
	"context"
	"fmt"

	"github.com/gen2brain/malgo"
	"github.com/rs/zerolog"
)

// Config describes the capture format.
type Config struct {
	SampleRate int
	Channels   int
}

// Device is an opened capture device.
type Device struct {
	ctx    *malgo.AllocatedContext
	device *malgo.Device
	log    zerolog.Logger
}

// Open initialises the audio context and a S16 capture device. onFrame is
// invoked on the driver thread for every captured buffer and must not block.
func Open(cfg Config, onFrame func([]byte), log zerolog.Logger) (*Device, error) {
	ctx, err := malgo.InitContext(nil, malgo.ContextConfig{}, func(msg string) {
		log.Debug().Str("backend", msg).Msg("miniaudio")
	})
	if err != nil {
		return nil, fmt.Errorf("mic: init context: %w", err)
	}

	deviceConfig := malgo.DefaultDeviceConfig(malgo.Capture)
	deviceConfig.Capture.Format = malgo.FormatS16
	deviceConfig.Capture.Channels = uint32(cfg.Channels)
	deviceConfig.SampleRate = uint32(cfg.SampleRate)
	deviceConfig.Alsa.NoMMap = 1

	callbacks := malgo.DeviceCallbacks{
		Data: func(_, pInputSample []byte, framecount uint32) {
			if framecount == 0 {
				return
			}
			n := int(framecount) * cfg.Channels * 2
			if n > len(pInputSample) {
				n = len(pInputSample)
			}
			onFrame(pInputSample[:n])
		},
	}

	device, err := malgo.InitDevice(ctx.Context, deviceConfig, callbacks)
	if err != nil {
		_ = ctx.Uninit()
		ctx.Free()
		return nil, fmt.Errorf("mic: init device: %w", err)
	}

	return &Device{ctx: ctx, device: device, log: log}, nil
}

// Run starts capture and blocks until ctx is cancelled, then releases the device.
func (d *Device) Run(ctx context.Context) error {
	defer d.close()

	if err := d.device.Start(); err != nil {
		return fmt.Errorf("mic: start: %w", err)
	}
	d.log.Info().Msg("microphone stream started")

	<-ctx.Done()

	if err := d.device.Stop(); err != nil {
		d.log.Warn().Err(err).Msg("microphone stop failed")
	}
	d.log.Info().Msg("microphone stream stopped")
	return nil
}

func (d *Device) close() {
	d.device.Uninit()
	_ = d.ctx.Uninit()
	d.ctx.Free()
}
