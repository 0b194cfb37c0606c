package faults

import (
	"errors"
	"fmt"
)

// ConfigurationError: cadastro incompleto ou inválido (faixa de peso ausente,
// peso médio zerado, farinha por lote não definida). Aborta a operação antes
// de qualquer escrita e vai verbatim para o chamador.
type ConfigurationError struct {
	Msg string
}

func (e *ConfigurationError) Error() string { return e.Msg }

func Configf(format string, args ...any) *ConfigurationError {
	return &ConfigurationError{Msg: fmt.Sprintf(format, args...)}
}

// ValidationError: entrada rejeitada (quantidade não positiva, unidades reais
// <= 0, transição de estado inválida). Nada é escrito.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func Validationf(format string, args ...any) *ValidationError {
	return &ValidationError{Msg: fmt.Sprintf(format, args...)}
}

func IsConfiguration(err error) bool {
	var ce *ConfigurationError
	return errors.As(err, &ce)
}

func IsValidation(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}
