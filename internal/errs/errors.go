package errs

import "errors"

var (
	// ErrTicketNotFound — тикет с указанным id отсутствует в базе.
	ErrTicketNotFound = errors.New("ticket not found")
	// ErrStorageUnavailable — хранилище недоступно, операция прервана без
	// частичной записи.
	ErrStorageUnavailable = errors.New("storage unavailable")
	// ErrMalformedCallback — payload кнопки не содержит корректный id тикета.
	ErrMalformedCallback = errors.New("malformed callback payload")
)
