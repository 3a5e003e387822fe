package domain

import "time"

// nowFunc подменяется в тестах для детерминированных таймстемпов.
var nowFunc = func() time.Time { return time.Now().UTC() }

// NewOrderParams — входные данные для создания заказа.
type NewOrderParams struct {
	// ID необязателен: если не задан, генерируется новый.
	ID         EntityID
	CustomerID EntityID
}

// Order — агрегат заказа. Все изменения проходят через методы,
// которые обновляют UpdatedAt.
type Order struct {
	id            EntityID
	customerID    EntityID
	status        Status
	paymentStatus PaymentStatus
	lines         OrderLineList
	version       int64
	createdAt     time.Time
	updatedAt     time.Time
}

// NewOrder создаёт заказ без позиций и без статусов.
func NewOrder(params NewOrderParams) *Order {
	id := params.ID
	if id.IsZero() {
		id = NewEntityID()
	}
	now := nowFunc()
	return &Order{
		id:         id,
		customerID: params.CustomerID,
		createdAt:  now,
		updatedAt:  now,
	}
}

// OrderSnapshot — плоское представление заказа для хранилищ и транспорта.
type OrderSnapshot struct {
	ID            string
	CustomerID    string
	Status        string
	PaymentStatus string
	Lines         []OrderLineSnapshot
	Version       int64
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// OrderLineSnapshot — плоское представление позиции заказа.
type OrderLineSnapshot struct {
	ID        string
	ProductID string
}

// RestoreOrder восстанавливает агрегат из хранилища.
// Переходы статусов здесь не проверяются: состояние уже было принято ранее.
func RestoreOrder(s OrderSnapshot) *Order {
	orderID := EntityIDFrom(s.ID)
	lines := make([]OrderLine, 0, len(s.Lines))
	for _, l := range s.Lines {
		lines = append(lines, RestoreOrderLine(EntityIDFrom(l.ID), orderID, EntityIDFrom(l.ProductID)))
	}
	return &Order{
		id:            orderID,
		customerID:    EntityIDFrom(s.CustomerID),
		status:        Status(s.Status),
		paymentStatus: PaymentStatus(s.PaymentStatus),
		lines:         NewOrderLineList(lines...),
		version:       s.Version,
		createdAt:     s.CreatedAt,
		updatedAt:     s.UpdatedAt,
	}
}

// Snapshot возвращает копию состояния заказа.
func (o *Order) Snapshot() OrderSnapshot {
	items := o.lines.Items()
	lines := make([]OrderLineSnapshot, 0, len(items))
	for _, l := range items {
		lines = append(lines, OrderLineSnapshot{ID: l.ID().String(), ProductID: l.ProductID().String()})
	}
	return OrderSnapshot{
		ID:            o.id.String(),
		CustomerID:    o.customerID.String(),
		Status:        string(o.status),
		PaymentStatus: string(o.paymentStatus),
		Lines:         lines,
		Version:       o.version,
		CreatedAt:     o.createdAt,
		UpdatedAt:     o.updatedAt,
	}
}

func (o *Order) ID() EntityID                 { return o.id }
func (o *Order) CustomerID() EntityID         { return o.customerID }
func (o *Order) Status() Status               { return o.status }
func (o *Order) PaymentStatus() PaymentStatus { return o.paymentStatus }
func (o *Order) Lines() OrderLineList         { return NewOrderLineList(o.lines.Items()...) }
func (o *Order) Version() int64               { return o.version }
func (o *Order) CreatedAt() time.Time         { return o.createdAt }
func (o *Order) UpdatedAt() time.Time         { return o.updatedAt }

// SetStatus переводит заказ в новый статус по таблице переходов.
// Назначение текущего статуса ничего не меняет.
func (o *Order) SetStatus(next Status) error {
	if !next.Valid() {
		return ErrInvalidStatus
	}
	if o.status == next {
		return nil
	}
	if !o.status.CanTransitionTo(next) {
		return &InvalidStatusTransitionError{From: o.status, To: next}
	}
	o.status = next
	o.touch()
	return nil
}

// SetPaymentStatus заменяет статус оплаты.
func (o *Order) SetPaymentStatus(status PaymentStatus) {
	o.paymentStatus = status
	o.touch()
}

// ReplaceLines заменяет список позиций целиком.
func (o *Order) ReplaceLines(lines OrderLineList) {
	o.lines = NewOrderLineList(lines.Items()...)
	o.touch()
}

// AdvanceVersion увеличивает версию после успешного Save в хранилище.
func (o *Order) AdvanceVersion() {
	o.version++
}

func (o *Order) touch() {
	now := nowFunc()
	if now.Before(o.updatedAt) {
		now = o.updatedAt
	}
	o.updatedAt = now
}
