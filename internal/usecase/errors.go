package usecase

import "errors"

const (
	CodeValidation     = "VALIDATION_ERROR"
	CodeLeadNotFound   = "LEAD_NOT_FOUND"
	CodeStatusNotFound = "STATUS_NOT_FOUND"
	CodeNoStatuses     = "NO_STATUSES"
	CodePersistence    = "PERSISTENCE_ERROR"
)

// DomainError é erro de regra de negócio: volta pro usuário como 4xx.
type DomainError struct {
	Code    string
	Message string
	Fields  []ValidationError
}

func (e *DomainError) Error() string {
	return e.Message
}

func IsDomainError(err error) bool {
	var de *DomainError
	return errors.As(err, &de)
}

// TechnicalError é falha de infraestrutura (banco, rede, broker).
type TechnicalError struct {
	Code    string
	Message string
	Err     error
}

func (e *TechnicalError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

func (e *TechnicalError) Unwrap() error {
	return e.Err
}

func IsTechnicalError(err error) bool {
	var te *TechnicalError
	return errors.As(err, &te)
}

func validationFailed(errs []ValidationError) *DomainError {
	msg := "validation failed: "
	for i, e := range errs {
		if i > 0 {
			msg += ", "
		}
		msg += e.Field + " (" + e.Message + ")"
	}
	return &DomainError{Code: CodeValidation, Message: msg, Fields: errs}
}
