package services

import "errors"

// Общие ошибки сервисного слоя, маппятся на HTTP статусы в handlers.
var (
	// Регистрация
	ErrNotRegistered             = errors.New("user is not registered in this guild")
	ErrAlreadyRegistered         = errors.New("user is already registered in this guild")
	ErrReRegistrationForbidden   = errors.New("re-registration is disabled for this guild")
	ErrRegistrationLimitExceeded = errors.New("guild registration limit exceeded")
	ErrRenameForbidden           = errors.New("self-rename is disabled for this guild")
	ErrDisplayNameRequired       = errors.New("display name is required")

	// Ручные корректировки
	ErrDuplicateAdjustment = errors.New("manual score adjustment was already applied or rejected")
	ErrAdjustmentNotFound  = errors.New("manual score adjustment not found")
	ErrAdjustmentMismatch  = errors.New("manual score adjustment does not target this player")

	// Конфигурация рангов
	ErrRankOverlap   = errors.New("a rank with this points threshold already exists")
	ErrRankRoleTaken = errors.New("role is already mapped to a rank in this guild")
	ErrRankNotFound  = errors.New("rank not found")

	ErrCompetitionNotFound = errors.New("competition not found")
	ErrInvalidRankMode     = errors.New("invalid rank mode")
	ErrInvalidOutcome      = errors.New("invalid game outcome")

	// Аутентификация
	ErrInvalidCredentials = errors.New("invalid admin credentials")

	// Частичный сбой внешней синхронизации ролей. Очки к этому моменту уже
	// зафиксированы и не откатываются.
	ErrReconciliationPartial = errors.New("one or more role directives failed")
)
