package domain

// OrderLine связывает заказ с одним продуктом каталога.
// Цена и описание продукта живут во внешнем каталоге.
type OrderLine struct {
	id        EntityID
	orderID   EntityID
	productID EntityID
}

// NewOrderLine создаёт позицию с новым идентификатором.
func NewOrderLine(orderID, productID EntityID) OrderLine {
	return OrderLine{id: NewEntityID(), orderID: orderID, productID: productID}
}

// RestoreOrderLine восстанавливает позицию из хранилища.
func RestoreOrderLine(id, orderID, productID EntityID) OrderLine {
	if id.IsZero() {
		id = NewEntityID()
	}
	return OrderLine{id: id, orderID: orderID, productID: productID}
}

func (l OrderLine) ID() EntityID        { return l.id }
func (l OrderLine) OrderID() EntityID   { return l.orderID }
func (l OrderLine) ProductID() EntityID { return l.productID }

// OrderLineList — упорядоченный список позиций одного заказа.
// Два элемента не могут ссылаться на один productID: дубликат молча отбрасывается.
type OrderLineList struct {
	items []OrderLine
}

// NewOrderLineList строит список, сохраняя первое вхождение каждого продукта.
func NewOrderLineList(items ...OrderLine) OrderLineList {
	var list OrderLineList
	list.AddMany(items...)
	return list
}

// Add добавляет позицию, если продукт ещё не встречался.
func (l *OrderLineList) Add(item OrderLine) {
	if l.containsProduct(item.productID) {
		return
	}
	l.items = append(l.items, item)
}

// AddMany добавляет позиции по одной в порядке аргументов.
func (l *OrderLineList) AddMany(items ...OrderLine) {
	for _, item := range items {
		l.Add(item)
	}
}

// Remove удаляет позицию по её идентификатору.
func (l *OrderLineList) Remove(item OrderLine) {
	for i, existing := range l.items {
		if existing.id.Equals(item.id) {
			l.items = append(l.items[:i:i], l.items[i+1:]...)
			return
		}
	}
}

// Items возвращает копию позиций в порядке вставки.
func (l OrderLineList) Items() []OrderLine {
	out := make([]OrderLine, len(l.items))
	copy(out, l.items)
	return out
}

// Len возвращает количество позиций.
func (l OrderLineList) Len() int {
	return len(l.items)
}

// ProductIDs возвращает идентификаторы продуктов в порядке вставки.
func (l OrderLineList) ProductIDs() []EntityID {
	ids := make([]EntityID, 0, len(l.items))
	for _, item := range l.items {
		ids = append(ids, item.productID)
	}
	return ids
}

func (l OrderLineList) containsProduct(productID EntityID) bool {
	for _, existing := range l.items {
		if existing.productID.Equals(productID) {
			return true
		}
	}
	return false
}
