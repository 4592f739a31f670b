// Package worker runs the async background tasks: reverse-geocoding newly
// created pins so they carry a human-readable address.
package worker

import (
	"encoding/json"

	"github.com/hibiken/asynq"
)

const TaskPinReverseGeocode = "pins.reverse_geocode"

type PinReverseGeocodePayload struct {
	PinID string  `json:"pinId"`
	Lat   float64 `json:"lat"`
	Lon   float64 `json:"lon"`
}

func NewPinReverseGeocodeTask(payload PinReverseGeocodePayload) (*asynq.Task, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return nil, err
	}
	return asynq.NewTask(TaskPinReverseGeocode, data), nil
}

func ParsePinReverseGeocodePayload(task *asynq.Task) (PinReverseGeocodePayload, error) {
	var payload PinReverseGeocodePayload
	if err := json.Unmarshal(task.Payload(), &payload); err != nil {
		return PinReverseGeocodePayload{}, err
	}
	return payload, nil
}
