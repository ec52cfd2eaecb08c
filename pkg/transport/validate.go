package transport

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"
)

var (
	validate     *validator.Validate
	validateOnce sync.Once
)

func validatorInstance() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New(validator.WithRequiredStructEnabled())
	})
	return validate
}

// Validate reports configuration errors of cfg.
// The error wraps ErrInvalidConfig and lists the offending fields.
func Validate(cfg Config) error {
	if cfg == nil {
		return fmt.Errorf("%w: %w", ErrInvalidConfig, ErrNoTransport)
	}

	if err := validatorInstance().Struct(cfg); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) {
			fields := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				fields = append(fields, fe.Namespace()+" ("+fe.Tag()+")")
			}
			return fmt.Errorf("%w: %s: %s", ErrInvalidConfig, cfg.Kind(), strings.Join(fields, ", "))
		}
		return fmt.Errorf("%w: %s: %v", ErrInvalidConfig, cfg.Kind(), err)
	}
	return nil
}
