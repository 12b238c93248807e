package payment

import "errors"

// Сообщения, которые показываются покупателю.
const (
	MessageRejected  = "Ошибка при создании платежа"
	MessageTransport = "Ошибка соединения с сервером оплаты"
)

var (
	// ErrPaymentRejected возвращается, если сервис ответил без ссылки на подтверждение оплаты.
	ErrPaymentRejected = errors.New("payment rejected")
	// ErrPaymentTransport возвращается, если запрос до сервиса не дошёл или ответ оборвался.
	ErrPaymentTransport = errors.New("payment transport failure")
	// ErrPaymentInProgress возвращается, пока предыдущая попытка оплаты в сессии не завершилась.
	ErrPaymentInProgress = errors.New("payment already in progress")
	// ErrMalformedResponse возвращается, если тело ответа не разобрано как JSON.
	ErrMalformedResponse = errors.New("malformed payment response")
)

// RejectedError содержит сообщение платёжного сервиса об отказе.
type RejectedError struct {
	StatusCode int
	Message    string
	Details    string
}

func (e *RejectedError) Error() string {
	return "payment rejected: " + e.Message
}

// Is позволяет сравнивать RejectedError с ErrPaymentRejected.
func (e *RejectedError) Is(target error) bool {
	return target == ErrPaymentRejected
}
