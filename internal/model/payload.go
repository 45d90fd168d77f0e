package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
)

var ErrMalformedPayload = errors.New("malformed payload")

// Member is a single share of a boss reward.
type Member struct {
	Name  string  `json:"name" validate:"required,max=64"`
	Share float64 `json:"share" validate:"gte=0,lte=100"`
}

// RewardPayload is the declared shape every stored record payload must satisfy.
// Fields beyond members are kept as-is in the raw payload.
type RewardPayload struct {
	Members []Member `json:"members" validate:"required,min=1,dive"`
}

var (
	payloadValidator     *validator.Validate
	payloadValidatorOnce sync.Once
)

func validate() *validator.Validate {
	payloadValidatorOnce.Do(func() {
		payloadValidator = validator.New(validator.WithRequiredStructEnabled())
	})
	return payloadValidator
}

// ParsePayload decodes raw and checks it against the RewardPayload schema.
func ParsePayload(raw json.RawMessage) (RewardPayload, error) {
	var p RewardPayload
	if len(raw) == 0 {
		return p, fmt.Errorf("%w: empty", ErrMalformedPayload)
	}
	if err := json.Unmarshal(raw, &p); err != nil {
		return p, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	if err := validate().Struct(p); err != nil {
		return p, fmt.Errorf("%w: %w", ErrMalformedPayload, err)
	}
	return p, nil
}
