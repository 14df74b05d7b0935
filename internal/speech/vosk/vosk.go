// Package vosk adapts the Vosk offline recognizer to speech.Recognizer.
package vosk

import (
	"encoding/json"
	"fmt"
	"os"

	vosk "github.com/alphacep/vosk-api/go"
)

// Recognizer wraps a Vosk model and its streaming recognizer.
type Recognizer struct {
	model *vosk.VoskModel
	rec   *vosk.VoskRecognizer
}

type voskResult struct {
	Text string `json:"text"`
}

// New loads the model directory at modelPath. A missing directory is
// reported as an error wrapping os.ErrNotExist so callers can degrade quietly.
func New(modelPath string, sampleRate float64) (*Recognizer, error) {
	if _, err := os.Stat(modelPath); err != nil {
		return nil, fmt.Errorf("vosk: model %q: %w", modelPath, err)
	}

	// Suppress Vosk logs
	vosk.SetLogLevel(-1)

	model, err := vosk.NewModel(modelPath)
	if err != nil {
		return nil, fmt.Errorf("vosk: load model: %w", err)
	}

	rec, err := vosk.NewRecognizer(model, sampleRate)
	if err != nil {
		model.Free()
		return nil, fmt.Errorf("vosk: create recognizer: %w", err)
	}

	return &Recognizer{model: model, rec: rec}, nil
}

// Accept feeds one S16LE frame. A non-zero AcceptWaveform marks the end of an utterance.
func (r *Recognizer) Accept(frame []byte) (string, bool, error) {
	if r.rec.AcceptWaveform(frame) == 0 {
		return "", false, nil
	}

	var res voskResult
	if err := json.Unmarshal([]byte(r.rec.Result()), &res); err != nil {
		return "", false, fmt.Errorf("vosk: decode result: %w", err)
	}
	return res.Text, true, nil
}

// Close releases the native recognizer and model.
func (r *Recognizer) Close() error {
	r.rec.Free()
	r.model.Free()
	return nil
}
