package domain

// Result несёт либо полезную нагрузку, либо ошибку use case.
// Ровно одна из ветвей заполнена: конструкторы Ok и Fail это гарантируют.
type Result[T any] struct {
	value T
	err   error
}

// Ok создаёт успешный результат.
func Ok[T any](value T) Result[T] {
	return Result[T]{value: value}
}

// Fail создаёт результат-ошибку. nil заменяется на ErrUnknown,
// чтобы ветка ошибки не могла оказаться пустой.
func Fail[T any](err error) Result[T] {
	if err == nil {
		err = ErrUnknown
	}
	return Result[T]{err: err}
}

// IsSuccess сообщает, что результат успешный.
func (r Result[T]) IsSuccess() bool {
	return r.err == nil
}

// IsFailure сообщает, что результат содержит ошибку.
func (r Result[T]) IsFailure() bool {
	return r.err != nil
}

// Value возвращает полезную нагрузку (нулевое значение для ошибки).
func (r Result[T]) Value() T {
	return r.value
}

// Err возвращает ошибку или nil.
func (r Result[T]) Err() error {
	return r.err
}

// Unwrap раскладывает результат в привычную пару (value, error).
func (r Result[T]) Unwrap() (T, error) {
	return r.value, r.err
}
