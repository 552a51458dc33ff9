package models

// Значения фильтров и ключей сортировки, которые понимает конвейер выборки.
// Любое другое значение фильтра трактуется как отсутствие фильтра.
const (
	FilterAll = "all"

	RecurringTrue    = "true"
	RecurringFalse   = "false"
	RecurringPastDue = "past-due"

	SortName        = "name"
	SortCostHigh    = "cost-high"
	SortCostLow     = "cost-low"
	SortNextPayment = "next-payment"
	SortNewest      = "newest"
)

// Criteria описывает параметры поиска, фильтрации и сортировки списка подписок.
type Criteria struct {
	Search    string `json:"search,omitempty"`
	Category  string `json:"category,omitempty"`
	Recurring string `json:"recurring,omitempty"`
	Status    string `json:"status,omitempty"`
	Sort      string `json:"sort,omitempty"`
}

// Диапазоны суммы платежа для страницы предстоящих платежей.
const (
	AmountLow    = "low"
	AmountMedium = "medium"
	AmountHigh   = "high"
)

// PaymentFilter описывает фильтры страницы предстоящих платежей.
// Amount: low (< 10), medium (от 10 до 50 включительно), high (> 50).
// Urgency: overdue, due-soon или upcoming. Пустое или неизвестное значение
// фильтр не применяет.
type PaymentFilter struct {
	Amount  string `json:"amount,omitempty"`
	Urgency string `json:"urgency,omitempty"`
}
