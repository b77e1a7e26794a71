package bus

type EventId uint8

const (
	BalanceEvent EventId = iota
	EquityEvent
	OrderAcceptedEvent
	OrderRejectedEvent
	OrderFilledEvent
	TradeOpenEvent
	TradeCloseEvent
)
