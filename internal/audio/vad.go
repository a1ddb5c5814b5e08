package audio

import (
	"math"
)

// VADConfig holds configuration for voice activity detection
type VADConfig struct {
	// EnergyThreshold is the minimum RMS energy to consider as speech
	// Typical values: 0.001 to 0.1 (lower = more sensitive)
	EnergyThreshold float64

	// SilenceFrames is the number of consecutive silent frames before an
	// utterance is considered finished
	SilenceFrames int

	// SpeechFrames is the number of consecutive speech frames before
	// speech onset is reported
	SpeechFrames int

	// CalibrationHeadroom multiplies the measured ambient energy when
	// Calibrate derives a threshold. Must be > 1.
	CalibrationHeadroom float64
}

// DefaultVADConfig returns a default VAD configuration
func DefaultVADConfig() VADConfig {
	return VADConfig{
		EnergyThreshold:     0.01,
		SilenceFrames:       33, // ~1s of silence at 30ms frames
		SpeechFrames:        3,  // ~90ms of speech
		CalibrationHeadroom: 2.5,
	}
}

// VAD detects speech vs silence in a stream of audio frames
type VAD struct {
	config            VADConfig
	silenceFrameCount int
	speechFrameCount  int
	speaking          bool
}

// NewVAD creates a new voice activity detector
func NewVAD(config VADConfig) *VAD {
	return &VAD{config: config}
}

// Calibrate derives the energy threshold from ambient-noise frames captured
// before the user starts speaking. The configured threshold acts as a floor
// so a silent room does not produce a hair-trigger detector.
func (v *VAD) Calibrate(frames [][]byte) {
	if len(frames) == 0 {
		return
	}

	var sum float64
	for _, frame := range frames {
		sum += frameEnergy(frame)
	}
	ambient := sum / float64(len(frames))

	headroom := v.config.CalibrationHeadroom
	if headroom <= 1 {
		headroom = 2.5
	}

	calibrated := ambient * headroom
	if calibrated > v.config.EnergyThreshold {
		v.config.EnergyThreshold = calibrated
	}
}

// ProcessFrame processes an audio frame and returns whether speech is active
// Returns: (isSpeechActive, speechStarted, speechEnded)
func (v *VAD) ProcessFrame(frame []byte) (bool, bool, bool) {
	frameHasSpeech := frameEnergy(frame) > v.config.EnergyThreshold

	speechStarted := false
	speechEnded := false

	if frameHasSpeech {
		v.speechFrameCount++
		v.silenceFrameCount = 0

		if !v.speaking && v.speechFrameCount >= v.config.SpeechFrames {
			v.speaking = true
			speechStarted = true
		}
	} else {
		v.silenceFrameCount++
		v.speechFrameCount = 0

		if v.speaking && v.silenceFrameCount >= v.config.SilenceFrames {
			v.speaking = false
			speechEnded = true
		}
	}

	return v.speaking, speechStarted, speechEnded
}

// IsSpeaking returns whether speech is currently active
func (v *VAD) IsSpeaking() bool {
	return v.speaking
}

// Threshold returns the active energy threshold (after any calibration)
func (v *VAD) Threshold() float64 {
	return v.config.EnergyThreshold
}

// Reset resets the VAD state
func (v *VAD) Reset() {
	v.silenceFrameCount = 0
	v.speechFrameCount = 0
	v.speaking = false
}

// frameEnergy calculates the RMS energy of a 16-bit PCM buffer
func frameEnergy(data []byte) float64 {
	sampleCount := len(data) / 2
	if sampleCount == 0 {
		return 0
	}

	var sum float64
	for i := 0; i < sampleCount; i++ {
		// 16-bit little-endian sample normalized to -1.0 .. 1.0
		sample := int16(data[i*2]) | int16(data[i*2+1])<<8
		normalized := float64(sample) / 32768.0
		sum += normalized * normalized
	}

	return math.Sqrt(sum / float64(sampleCount))
}
