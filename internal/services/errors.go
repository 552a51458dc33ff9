// Package services содержит ошибки бизнес-уровня, общие для всех сервисов.
package services

import "errors"

var (
	// ErrForbidden возвращается, если у вызывающего нет прав на запись.
	ErrForbidden = errors.New("forbidden")
	// ErrInvalidInput возвращается при некорректных входных данных.
	ErrInvalidInput = errors.New("invalid input")
)
