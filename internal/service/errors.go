// errors.go — ошибки бизнес-логики сервисного слоя.
package service

import "errors"

var (
	// ErrNotFound — ресурс не найден.
	ErrNotFound = errors.New("ресурс не найден")
	// ErrAmbiguousIdentifier — идентификатору соответствует
	// более одного оригинала.
	ErrAmbiguousIdentifier = errors.New("идентификатору соответствует несколько снимков")
	// ErrUnsupportedFormat — формат оригинала не поддерживается
	// генератором превью.
	ErrUnsupportedFormat = errors.New("неподдерживаемый формат изображения")
	// ErrValidation — ошибка валидации входных данных.
	ErrValidation = errors.New("ошибка валидации")
	// ErrStorageUnavailable — blob-хранилище недоступно.
	ErrStorageUnavailable = errors.New("хранилище недоступно")
)
