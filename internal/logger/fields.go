package logger

import (
	"strings"

	"go.uber.org/zap"
)

const (
	// FieldSponsor is the structured log field key for a sponsor name.
	FieldSponsor = "sponsor"
	// FieldWebsite is the structured log field key for a sponsor website.
	FieldWebsite = "website"
)

// StringField describes a string-valued structured logging field.
type StringField struct {
	Key   string
	Value string
}

// StringFields converts the provided key/value pairs into zap fields, trimming
// whitespace and omitting entries with empty keys or values.
func StringFields(fields ...StringField) []zap.Field {
	result := make([]zap.Field, 0, len(fields))
	for _, field := range fields {
		key := strings.TrimSpace(field.Key)
		if key == "" {
			continue
		}

		value := strings.TrimSpace(field.Value)
		if value == "" {
			continue
		}

		result = append(result, zap.String(key, value))
	}

	return result
}

// WithFields safely attaches the provided fields to the logger.
// A nil logger is replaced with a no-op logger.
func WithFields(logger *zap.Logger, fields ...zap.Field) *zap.Logger {
	if logger == nil {
		logger = zap.NewNop()
	}

	if len(fields) == 0 {
		return logger
	}

	return logger.With(fields...)
}

// SponsorFields returns the fields describing a sponsor candidate. Empty values are skipped.
func SponsorFields(name, website string) []zap.Field {
	return StringFields(
		StringField{Key: FieldSponsor, Value: name},
		StringField{Key: FieldWebsite, Value: website},
	)
}

// WithSponsor attaches the sponsor fields to the provided logger.
func WithSponsor(logger *zap.Logger, name, website string) *zap.Logger {
	return WithFields(logger, SponsorFields(name, website)...)
}
