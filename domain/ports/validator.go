package ports

import "github.com/reglet-dev/jsonffi/domain/entities"

// EnvelopeValidator checks a serialized response against the envelope schema.
type EnvelopeValidator interface {
	Validate(data []byte) error
	Report(data []byte) *entities.ValidationResult
}
