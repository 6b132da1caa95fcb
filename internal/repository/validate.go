package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"reflect"

	"nba_stats/ingestion/internal/metrics"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// Validate sql.Null* fields by their underlying value; invalid nulls read as empty.
	v.RegisterCustomTypeFunc(nullValue,
		sql.NullString{}, sql.NullInt32{}, sql.NullInt64{}, sql.NullFloat64{})
	return v
}

func nullValue(field reflect.Value) interface{} {
	if valuer, ok := field.Interface().(driver.Valuer); ok {
		if val, err := valuer.Value(); err == nil {
			return val
		}
	}
	return nil
}

// filterValid drops nil and invalid records, logging each rejection.
func filterValid[T any](ctx context.Context, table string, items []*T, describe func(*T) string) []*T {
	valid := make([]*T, 0, len(items))
	rejected := 0
	for _, item := range items {
		if item == nil {
			rejected++
			continue
		}
		if err := validate.StructCtx(ctx, item); err != nil {
			rejected++
			log.Warn().
				Str("table", table).
				Str("record", describe(item)).
				Err(err).
				Msg("Skipping invalid record")
			continue
		}
		valid = append(valid, item)
	}

	if rejected > 0 {
		metrics.RecordRejected(table, rejected)
	}
	return valid
}
