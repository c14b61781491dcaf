package domain

import "errors"

var (
	// Ошибка отсутствующего идентификатора салона (tenant).
	ErrSalonRequired = errors.New("salon_id is required")
	// Ошибка отсутствующего портного у заказа.
	ErrTailorRequired = errors.New("tailor_id is required")
	// Ошибка отрицательной полной цены заказа.
	ErrPrixNegative = errors.New("prix_total must be non-negative")
	// Ошибка отрицательного аванса.
	ErrAvanceNegative = errors.New("avance must be non-negative")
	// Ошибка несоответствия остатка формуле prix_total - avance.
	ErrResteMismatch = errors.New("reste does not match prix_total - avance")
	// Ошибка отрицательного остатка у открытого заказа.
	ErrResteNegative = errors.New("reste must be non-negative for an open order")
	// Ошибка отсутствующего идентификатора заказа в запросе на закрытие.
	ErrOrderIDRequired = errors.New("order_id is required")

	// ErrOrderNotFound возвращается, если заказ не найден в реестре.
	ErrOrderNotFound = errors.New("order not found")
	// ErrActorNotFound возвращается, если сотрудник с таким кодом не заведён.
	ErrActorNotFound = errors.New("actor not found")
	// ErrOrderNotTerminated — попытка подтвердить выдачу заказа, который ещё не закрыт по оплате.
	ErrOrderNotTerminated = errors.New("order is not terminated")
	// ErrInvalidStatusTransition — запрошенный переход нарушает однонаправленный жизненный цикл.
	ErrInvalidStatusTransition = errors.New("invalid order status transition")

	// ErrConfigIncomplete — в конфигурации подключения не хватает обязательных ключей.
	ErrConfigIncomplete = errors.New("database configuration is incomplete")
	// ErrConnectionFailed — не удалось установить подключение к базе.
	ErrConnectionFailed = errors.New("database connection failed")
	// ErrProbeFailed — живое на вид подключение перестало отвечать.
	ErrProbeFailed = errors.New("database probe failed")
	// ErrBootstrapFailed — не удалось инициализировать схему; оборачивается именем под-схемы.
	ErrBootstrapFailed = errors.New("schema bootstrap failed")

	// ErrBadCredentials — неверный код сотрудника или пароль.
	// Штатный отрицательный результат, а не сбой.
	ErrBadCredentials = errors.New("bad credentials")
)

// IsNotFound проверяет, является ли ошибка отсутствием записи.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrOrderNotFound) || errors.Is(err, ErrActorNotFound)
}
